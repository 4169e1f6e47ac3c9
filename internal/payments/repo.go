package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopkart-labs/shopkart-backend/pkg/db/models"
)

// PaymentStore is the persistence surface for payment rows. The cart close
// lives here too so that payment finalization runs in a single transaction.
type PaymentStore interface {
	WithTx(tx *gorm.DB) PaymentStore
	Create(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	FindByCartID(ctx context.Context, cartID uuid.UUID) (*models.Payment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	FindByGatewayOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	MarkCartPaid(ctx context.Context, cartID uuid.UUID) error
}

// Repository implements PaymentStore on GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a payment repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) PaymentStore {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Cart").
		Preload("Cart.Items").
		Preload("Cart.Items.Product").
		Preload("Cart.Items.SizeVariant").
		Preload("Cart.Items.ColorVariant").
		Preload("Cart.Coupon").
		Preload("Cart.User")
}

// Create inserts a new payment row.
func (r *Repository) Create(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

// Update saves the payment row.
func (r *Repository) Update(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if err := r.db.WithContext(ctx).Save(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

// FindByCartID loads the payment attached to a cart.
func (r *Repository) FindByCartID(ctx context.Context, cartID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.preloaded(ctx).Where("cart_id = ?", cartID).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// FindByID loads a payment with its cart.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.preloaded(ctx).Where("id = ?", id).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// FindByGatewayOrderID loads a payment by the gateway order reference.
func (r *Repository) FindByGatewayOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.preloaded(ctx).Where("gateway_order_id = ?", orderID).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// MarkCartPaid closes the cart tied to a successful payment.
func (r *Repository) MarkCartPaid(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("is_paid", true).Error
}
