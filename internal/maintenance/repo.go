package maintenance

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// flushTables lists every storefront table in dependency order. Truncation
// cascades, the ordering just keeps the statement readable.
var flushTables = []string{
	"payments",
	"cart_items",
	"carts",
	"coupons",
	"product_size_variants",
	"product_color_variants",
	"products",
	"size_variants",
	"color_variants",
	"categories",
	"users",
}

// Repository wipes storefront tables. Schema migration bookkeeping is left
// untouched so the database stays deployable afterwards.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FlushAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range flushTables {
			if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
				return fmt.Errorf("truncate %s: %w", table, err)
			}
		}
		return nil
	})
}
