package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	applog "storefront/internal/log"
)

type Config struct {
	Port         string
	DBDriver     string // sqlite | postgres | pgx
	DBDSN        string
	LogFile      string
	LogLevel     string
	TemplatesDir string
	StaticDir    string
	CatalogFile  string
	Catalog      Catalog
}

// Catalog holds the listing knobs that used to be hard-coded next to the views.
type Catalog struct {
	Filters FilterConfig  `yaml:"filters"`
	Listing ListingConfig `yaml:"listing"`
}

type FilterConfig struct {
	// Attribute names offered as filters on category pages.
	CategoryAttributes []string `yaml:"category_attributes"`
	// Attribute names offered as filters on brand pages.
	BrandAttributes []string `yaml:"brand_attributes"`
}

type ListingConfig struct {
	PageSize int `yaml:"page_size"`
}

func DefaultCatalog() Catalog {
	return Catalog{
		Filters: FilterConfig{
			CategoryAttributes: []string{"Brand", "Jenis", "Color", "Gender"},
			BrandAttributes:    []string{"Jenis", "Color", "Gender"},
		},
		Listing: ListingConfig{PageSize: 24},
	}
}

func Load() Config {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		applog.L().Warn("config.env", zap.Error(err))
	}

	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		DBDriver:     getEnv("DB_DRIVER", "sqlite"),
		DBDSN:        getEnv("DB_DSN", "storefront.db"),
		LogFile:      getEnv("LOG_FILE", "./storefront.log"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		TemplatesDir: getEnv("TEMPLATES_DIR", "./web/templates"),
		StaticDir:    getEnv("STATIC_DIR", "./web/static"),
		CatalogFile:  getEnv("CATALOG_CONFIG", "./catalog.yaml"),
		Catalog:      DefaultCatalog(),
	}
	if n := getEnvInt("PAGE_SIZE", 0); n > 0 {
		cfg.Catalog.Listing.PageSize = n
	}

	cat, err := LoadCatalog(cfg.CatalogFile, cfg.Catalog)
	switch {
	case err == nil:
		cfg.Catalog = cat
	case os.IsNotExist(err):
		applog.L().Info("config.catalog.default", zap.String("file", cfg.CatalogFile))
	default:
		applog.L().Warn("config.catalog", zap.String("file", cfg.CatalogFile), zap.Error(err))
	}

	applog.L().Info("config.load",
		zap.String("port", cfg.Port),
		zap.String("db_driver", cfg.DBDriver),
		zap.String("log_file", cfg.LogFile),
		zap.Int("page_size", cfg.Catalog.Listing.PageSize),
	)
	return cfg
}

// LoadCatalog overlays the YAML file at path onto base. Keys missing from the
// file keep their base values.
func LoadCatalog(path string, base Catalog) (Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return base, err
	}
	out := base
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return base, err
	}
	if out.Listing.PageSize <= 0 {
		out.Listing.PageSize = base.Listing.PageSize
	}
	return out, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}
