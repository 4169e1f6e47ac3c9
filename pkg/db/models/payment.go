package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopkart-labs/shopkart-backend/pkg/enums"
)

// Payment tracks gateway payment progress for a cart. Exactly one Payment
// exists per cart; re-initiating checkout reuses the row and refreshes the
// amount and gateway order reference.
type Payment struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID           uuid.UUID           `gorm:"column:cart_id;type:uuid;not null;uniqueIndex"`
	Cart             *Cart               `gorm:"foreignKey:CartID"`
	GatewayOrderID   *string             `gorm:"column:gateway_order_id;index"`
	GatewayPaymentID *string             `gorm:"column:gateway_payment_id"`
	GatewaySignature *string             `gorm:"column:gateway_signature"`
	AmountPaise      int64               `gorm:"column:amount_paise;not null;check:amount_paise >= 0"`
	Currency         enums.Currency      `gorm:"column:currency;not null;default:'INR'"`
	Status           enums.PaymentStatus `gorm:"column:status;not null;default:'created'"`
	InvoicePath      *string             `gorm:"column:invoice_path"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
