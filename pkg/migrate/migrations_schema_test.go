package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopkart-labs/shopkart-backend/pkg/migrate"
)

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestStorefrontSchemaContainsCartConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_storefront_schema.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected exactly one storefront schema migration, found %d", len(matches))
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE carts",
		"CONSTRAINT carts_owner_exclusive CHECK ((user_id IS NULL) <> (session_token IS NULL))",
		"WHERE is_paid = false AND user_id IS NOT NULL",
		"WHERE is_paid = false AND session_token IS NOT NULL",
		"CHECK (quantity >= 1)",
		"CREATE UNIQUE INDEX cart_items_selection_key",
		"CREATE UNIQUE INDEX coupons_code_key ON coupons (lower(code))",
		"CREATE UNIQUE INDEX payments_cart_id_key ON payments (cart_id)",
		"DROP TABLE IF EXISTS payments",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
