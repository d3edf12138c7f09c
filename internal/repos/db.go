package repos

import (
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	applog "storefront/internal/log"
)

// OpenDB connects with driver (sqlite | postgres | pgx). SQLite databases get
// the schema and demo catalog on first start; PostgreSQL catalogs are expected
// to be provisioned already.
func OpenDB(driver, dsn string) (*sqlx.DB, error) {
	if _, err := dialectFor(driver); err != nil {
		return nil, err
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" && strings.Contains(dsn, ":memory:") {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if driver != "sqlite" {
		applog.L().Info("db.bootstrap.skip", zap.String("driver", driver))
		return db, nil
	}
	if err := EnsureSchema(db); err != nil {
		return nil, err
	}
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Dialect picks the SQL dialect from the driver the handle was opened with.
func DialectOf(db *sqlx.DB) Dialect {
	d, err := dialectFor(db.DriverName())
	if err != nil {
		return sqliteDialect{}
	}
	return d
}

// EnsureSchema creates the SQLite catalog and cart tables if they are missing.
func EnsureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS categories(
  id INTEGER PRIMARY KEY,
  parent_id INTEGER NULL REFERENCES categories(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_categories_parent ON categories(parent_id);

CREATE TABLE IF NOT EXISTS brands(
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS collections(
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS product_attributes(
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS attribute_values(
  id INTEGER PRIMARY KEY,
  attribute_id INTEGER NOT NULL REFERENCES product_attributes(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  sort_order INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_attribute_values_attribute ON attribute_values(attribute_id);

CREATE TABLE IF NOT EXISTS product_types(
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS product_type_product_attributes(
  product_type_id INTEGER NOT NULL REFERENCES product_types(id) ON DELETE CASCADE,
  attribute_id INTEGER NOT NULL REFERENCES product_attributes(id) ON DELETE CASCADE,
  PRIMARY KEY(product_type_id, attribute_id)
);

CREATE TABLE IF NOT EXISTS product_type_variant_attributes(
  product_type_id INTEGER NOT NULL REFERENCES product_types(id) ON DELETE CASCADE,
  attribute_id INTEGER NOT NULL REFERENCES product_attributes(id) ON DELETE CASCADE,
  PRIMARY KEY(product_type_id, attribute_id)
);

CREATE TABLE IF NOT EXISTS products(
  id INTEGER PRIMARY KEY,
  product_type_id INTEGER NOT NULL REFERENCES product_types(id),
  category_id INTEGER NOT NULL REFERENCES categories(id),
  brand_id INTEGER NULL REFERENCES brands(id),
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL CHECK (price >= 0),
  available_on TEXT NULL,
  is_published INTEGER NOT NULL DEFAULT 1,
  attributes TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_brand    ON products(brand_id);
CREATE INDEX IF NOT EXISTS idx_products_name     ON products(name);

CREATE TABLE IF NOT EXISTS product_variants(
  id INTEGER PRIMARY KEY,
  product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  sku TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL DEFAULT '',
  price_override NUMERIC NULL,
  quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
  attributes TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_product_variants_product ON product_variants(product_id);

CREATE TABLE IF NOT EXISTS product_collections(
  product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  collection_id INTEGER NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
  PRIMARY KEY(product_id, collection_id)
);

CREATE TABLE IF NOT EXISTS product_ratings(
  id INTEGER PRIMARY KEY,
  product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  value INTEGER NOT NULL CHECK (value BETWEEN 1 AND 5)
);

CREATE TABLE IF NOT EXISTS carts(
  id TEXT PRIMARY KEY,
  session_id TEXT UNIQUE NOT NULL,
  updated_at TEXT
);

CREATE TABLE IF NOT EXISTS cart_items(
  cart_id    TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
  variant_id INTEGER NOT NULL REFERENCES product_variants(id) ON DELETE RESTRICT,
  qty INTEGER NOT NULL CHECK (qty >= 1),
  price_at_add NUMERIC NOT NULL,
  created_at TEXT,
  updated_at TEXT,
  PRIMARY KEY (cart_id, variant_id)
);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	applog.L().Info("db.seed", zap.String("catalog", "demo"))

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	tx.MustExec(`INSERT INTO categories(id,parent_id,name,slug) VALUES
	  (1,NULL,'Apparel','apparel'),
	  (2,1,'Shoes','shoes'),
	  (3,2,'Sneakers','sneakers'),
	  (4,1,'T-Shirts','t-shirts'),
	  (5,NULL,'Accessories','accessories')`)

	tx.MustExec(`INSERT INTO brands(id,name,slug) VALUES
	  (1,'Nike','nike'),
	  (2,'Batik Keris','batik-keris')`)

	tx.MustExec(`INSERT INTO collections(id,name,slug) VALUES (1,'Summer Sale','summer-sale')`)

	tx.MustExec(`INSERT INTO product_attributes(id,name,slug) VALUES
	  (1,'Brand','brand'),
	  (2,'Color','color'),
	  (3,'Jenis','jenis'),
	  (4,'Gender','gender'),
	  (5,'Size','size')`)

	tx.MustExec(`INSERT INTO attribute_values(id,attribute_id,name,slug,sort_order) VALUES
	  (1,1,'Nike','nike',0),
	  (2,1,'Keris','keris',1),
	  (3,2,'Red','red',0),
	  (4,2,'Blue','blue',1),
	  (5,2,'Black','black',2),
	  (6,3,'Batik','batik',0),
	  (7,3,'Polos','polos',1),
	  (8,4,'Men','men',0),
	  (9,4,'Women','women',1),
	  (10,5,'S','s',0),
	  (11,5,'M','m',1),
	  (12,5,'42','42',2),
	  (13,5,'43','43',3)`)

	tx.MustExec(`INSERT INTO product_types(id,name) VALUES (1,'Shoe'),(2,'Apparel')`)
	tx.MustExec(`INSERT INTO product_type_product_attributes(product_type_id,attribute_id) VALUES
	  (1,1),(1,2),(1,4),(2,3),(2,2)`)
	tx.MustExec(`INSERT INTO product_type_variant_attributes(product_type_id,attribute_id) VALUES
	  (1,5),(2,5)`)

	tx.MustExec(`INSERT INTO products(id,product_type_id,category_id,brand_id,name,description,price,attributes) VALUES
	  (1,1,3,1,'Air Runner','Lightweight running sneaker',120,'{"1":"1","2":"3","4":"8"}'),
	  (2,1,2,1,'Court Classic','Leather court shoe',95.5,'{"1":"1","2":"5","4":"9"}'),
	  (3,2,4,2,'Batik Shirt','Hand-stamped batik',45,'{"3":"6","2":"4"}'),
	  (4,2,4,2,'Plain Tee','Cotton tee',15,'{"3":"7","2":"5"}'),
	  (5,2,5,2,'Leather Belt','Full-grain belt',30,'{"2":"5"}')`)

	tx.MustExec(`INSERT INTO product_variants(id,product_id,sku,name,quantity,attributes) VALUES
	  (1,1,'AR-42','42',5,'{"5":"12"}'),
	  (2,1,'AR-43','43',0,'{"5":"13"}'),
	  (3,2,'CC-42','42',3,'{"5":"12"}'),
	  (4,3,'BS-M','M',10,'{"5":"11"}'),
	  (5,4,'PT-S','S',10,'{"5":"10"}'),
	  (6,5,'LB-1','One size',2,'{}')`)

	tx.MustExec(`INSERT INTO product_collections(product_id,collection_id) VALUES (1,1),(3,1)`)
	tx.MustExec(`INSERT INTO product_ratings(product_id,value) VALUES (1,4),(1,5)`)

	return tx.Commit()
}
