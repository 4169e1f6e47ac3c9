package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Coupon is a flat-amount discount rule with an eligibility floor and an
// expiry flag. Codes match case-insensitively and are stored uppercased.
type Coupon struct {
	ID                 uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code               string    `gorm:"column:code;not null;uniqueIndex"`
	DiscountPaise      int64     `gorm:"column:discount_paise;not null;check:discount_paise >= 0"`
	MinimumAmountPaise int64     `gorm:"column:minimum_amount_paise;not null;default:0;check:minimum_amount_paise >= 0"`
	IsExpired          bool      `gorm:"column:is_expired;not null;default:false"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Coupon) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
