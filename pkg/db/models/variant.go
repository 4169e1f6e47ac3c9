package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SizeVariant is reference data: a size label plus the surcharge it adds to a
// product's base price.
type SizeVariant struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Label          string    `gorm:"column:label;not null;uniqueIndex"`
	SurchargePaise int64     `gorm:"column:surcharge_paise;not null;default:0;check:surcharge_paise >= 0"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *SizeVariant) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// ColorVariant mirrors SizeVariant for color options.
type ColorVariant struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Label          string    `gorm:"column:label;not null;uniqueIndex"`
	SurchargePaise int64     `gorm:"column:surcharge_paise;not null;default:0;check:surcharge_paise >= 0"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *ColorVariant) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
