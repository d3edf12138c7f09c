package config_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"storefront/internal/config"
)

func TestLoadCatalogOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	yaml := "filters:\n  brand_attributes: [Color]\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	base := config.DefaultCatalog()
	got, err := config.LoadCatalog(path, base)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Filters.BrandAttributes, []string{"Color"}) {
		t.Fatalf("brand attributes = %v", got.Filters.BrandAttributes)
	}
	if !reflect.DeepEqual(got.Filters.CategoryAttributes, base.Filters.CategoryAttributes) {
		t.Fatalf("category attributes should keep defaults, got %v", got.Filters.CategoryAttributes)
	}
	if got.Listing.PageSize != 24 {
		t.Fatalf("page size = %d, want default 24", got.Listing.PageSize)
	}
}

func TestLoadCatalogErrors(t *testing.T) {
	base := config.DefaultCatalog()
	if _, err := config.LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"), base); !os.IsNotExist(err) {
		t.Fatalf("expected a not-exist error, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("filters: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := config.LoadCatalog(path, base)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if !reflect.DeepEqual(got, base) {
		t.Fatal("a bad file must leave the base catalog untouched")
	}
}

func TestShippedCatalogFile(t *testing.T) {
	got, err := config.LoadCatalog("../../catalog.yaml", config.Catalog{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Filters.CategoryAttributes) == 0 || got.Listing.PageSize <= 0 {
		t.Fatalf("catalog.yaml incomplete: %+v", got)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("PAGE_SIZE", "7")
	t.Setenv("CATALOG_CONFIG", filepath.Join(t.TempDir(), "none.yaml"))

	cfg := config.Load()
	if cfg.Port != "9999" || cfg.DBDriver != "pgx" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Catalog.Listing.PageSize != 7 {
		t.Fatalf("page size = %d, want 7", cfg.Catalog.Listing.PageSize)
	}
}
