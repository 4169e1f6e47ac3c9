package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartItem is one line of a cart: a product, optional size/color variants and
// a quantity. The product reference is nullable because catalog deletions must
// not break existing carts; a line whose product is gone prices at zero.
type CartItem struct {
	ID             uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID         uuid.UUID     `gorm:"column:cart_id;type:uuid;not null;index"`
	ProductID      *uuid.UUID    `gorm:"column:product_id;type:uuid"`
	Product        *Product      `gorm:"foreignKey:ProductID;constraint:OnDelete:SET NULL"`
	SizeVariantID  *uuid.UUID    `gorm:"column:size_variant_id;type:uuid"`
	SizeVariant    *SizeVariant  `gorm:"foreignKey:SizeVariantID;constraint:OnDelete:SET NULL"`
	ColorVariantID *uuid.UUID    `gorm:"column:color_variant_id;type:uuid"`
	ColorVariant   *ColorVariant `gorm:"foreignKey:ColorVariantID;constraint:OnDelete:SET NULL"`
	Quantity       int           `gorm:"column:quantity;not null;default:1;check:quantity >= 1"`
	CreatedAt      time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// SameSelection reports whether the line matches the (product, size, color)
// key used to merge repeated adds into a single line.
func (i *CartItem) SameSelection(productID uuid.UUID, sizeID, colorID *uuid.UUID) bool {
	if i == nil || i.ProductID == nil || *i.ProductID != productID {
		return false
	}
	return uuidPtrEqual(i.SizeVariantID, sizeID) && uuidPtrEqual(i.ColorVariantID, colorID)
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
