package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Product represents a catalog listing. Prices are stored in paise, the
// smallest currency subunit.
type Product struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID    uuid.UUID      `gorm:"column:category_id;type:uuid;not null"`
	Category      *Category      `gorm:"foreignKey:CategoryID"`
	Name          string         `gorm:"column:name;not null"`
	Slug          string         `gorm:"column:slug;not null;uniqueIndex"`
	Description   *string        `gorm:"column:description"`
	PricePaise    int64          `gorm:"column:price_paise;not null;check:price_paise >= 0"`
	Tags          pq.StringArray `gorm:"column:tags;type:text[]"`
	IsActive      bool           `gorm:"column:is_active;not null;default:true"`
	SizeVariants  []SizeVariant  `gorm:"many2many:product_size_variants"`
	ColorVariants []ColorVariant `gorm:"many2many:product_color_variants"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
