package payments

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopkart-labs/shopkart-backend/pkg/db/models"
	"github.com/shopkart-labs/shopkart-backend/pkg/enums"
	"github.com/shopkart-labs/shopkart-backend/pkg/money"
)

// InitiateResult is everything the checkout widget needs to collect payment.
type InitiateResult struct {
	PaymentID      uuid.UUID `json:"payment_id"`
	GatewayOrderID string    `json:"gateway_order_id"`
	GatewayKeyID   string    `json:"gateway_key_id"`
	AmountPaise    int64     `json:"amount_paise"`
	Amount         string    `json:"amount"`
	Currency       string    `json:"currency"`
}

// VerifyInput carries the gateway callback fields for signature verification.
type VerifyInput struct {
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

// PaymentDTO is the public projection of a payment.
type PaymentDTO struct {
	ID               uuid.UUID           `json:"id"`
	CartID           uuid.UUID           `json:"cart_id"`
	Status           enums.PaymentStatus `json:"status"`
	AmountPaise      int64               `json:"amount_paise"`
	Amount           string              `json:"amount"`
	Currency         enums.Currency      `json:"currency"`
	GatewayOrderID   *string             `json:"gateway_order_id,omitempty"`
	GatewayPaymentID *string             `json:"gateway_payment_id,omitempty"`
	InvoiceAvailable bool                `json:"invoice_available"`
	CreatedAt        time.Time           `json:"created_at"`
}

// ToPaymentDTO maps the model to its public projection.
func ToPaymentDTO(payment *models.Payment) *PaymentDTO {
	if payment == nil {
		return nil
	}
	return &PaymentDTO{
		ID:               payment.ID,
		CartID:           payment.CartID,
		Status:           payment.Status,
		AmountPaise:      payment.AmountPaise,
		Amount:           money.DisplayString(payment.AmountPaise),
		Currency:         payment.Currency,
		GatewayOrderID:   payment.GatewayOrderID,
		GatewayPaymentID: payment.GatewayPaymentID,
		InvoiceAvailable: payment.InvoicePath != nil && *payment.InvoicePath != "",
		CreatedAt:        payment.CreatedAt,
	}
}
