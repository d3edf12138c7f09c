package repos

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Dialect covers the two places where SQLite and PostgreSQL disagree: how the
// product attribute map is unpacked into (key, value) rows and how a text
// value is coerced to an integer without failing the statement.
type Dialect interface {
	Name() string
	// Unpack returns a table expression over column yielding key and value text columns.
	Unpack(column string) string
	// SafeInt returns expr as an integer, or NULL when expr is not all digits.
	SafeInt(expr string) string
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

// Text that is not valid JSON unpacks to no rows.
func (sqliteDialect) Unpack(column string) string {
	return fmt.Sprintf("json_each(CASE WHEN json_valid(%[1]s) THEN %[1]s ELSE '{}' END)", column)
}

func (sqliteDialect) SafeInt(expr string) string {
	t := "CAST(" + expr + " AS TEXT)"
	return fmt.Sprintf("CASE WHEN %[1]s <> '' AND %[1]s NOT GLOB '*[^0-9]*' THEN CAST(%[1]s AS INTEGER) END", t)
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

// hstore's each() yields (key, value) as text.
func (postgresDialect) Unpack(column string) string { return "each(" + column + ")" }

func (postgresDialect) SafeInt(expr string) string {
	return fmt.Sprintf("CASE WHEN %[1]s ~ '^[0-9]+$' THEN CAST(%[1]s AS integer) END", expr)
}

func dialectFor(driver string) (Dialect, error) {
	switch driver {
	case "sqlite":
		return sqliteDialect{}, nil
	case "postgres", "pgx":
		return postgresDialect{}, nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
}

// bind expands slice arguments and rewrites placeholders for the connection's driver.
func bind(db *sqlx.DB, q string, args []any) (string, []any, error) {
	q, args, err := sqlx.In(q, args...)
	if err != nil {
		return "", nil, err
	}
	return db.Rebind(q), args, nil
}
