package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopkart-labs/shopkart-backend/pkg/db"
	"github.com/shopkart-labs/shopkart-backend/pkg/db/models"
)

// Repository exposes persistence operations for carts and their items.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(q *gorm.DB) *gorm.DB { return q.Order("cart_items.created_at ASC") }).
		Preload("Items.Product").
		Preload("Items.SizeVariant").
		Preload("Items.ColorVariant").
		Preload("Coupon")
}

// FindOpenByUser loads the open cart owned by the user.
func (r *Repository) FindOpenByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.preloaded(ctx).
		Where("user_id = ? AND is_paid = ?", userID, false).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindOpenBySession loads the open cart owned by the anonymous session token.
func (r *Repository) FindOpenBySession(ctx context.Context, token string) (*models.Cart, error) {
	var cart models.Cart
	err := r.preloaded(ctx).
		Where("session_token = ? AND is_paid = ?", token, false).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindByID loads a cart with items and coupon.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.preloaded(ctx).Where("id = ?", id).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// Create inserts a new open cart.
func (r *Repository) Create(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// GetOrCreateForUser returns the user's open cart, creating one if missing.
// A concurrent create racing on the partial unique index falls back to the
// winner's row.
func (r *Repository) GetOrCreateForUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := r.FindOpenByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	owner := userID
	if _, err := r.Create(ctx, &models.Cart{UserID: &owner}); err != nil {
		if !db.IsUniqueViolation(err) {
			return nil, err
		}
	}
	return r.FindOpenByUser(ctx, userID)
}

// GetOrCreateForSession mirrors GetOrCreateForUser for anonymous carts.
func (r *Repository) GetOrCreateForSession(ctx context.Context, token string) (*models.Cart, error) {
	cart, err := r.FindOpenBySession(ctx, token)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	owner := token
	if _, err := r.Create(ctx, &models.Cart{SessionToken: &owner}); err != nil {
		if !db.IsUniqueViolation(err) {
			return nil, err
		}
	}
	return r.FindOpenBySession(ctx, token)
}

// FindItem loads a cart item by id.
func (r *Repository) FindItem(ctx context.Context, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).Where("id = ?", itemID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem inserts a new cart line.
func (r *Repository) CreateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItemQuantity sets the quantity of a line.
func (r *Repository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

// DeleteItem removes a line from its cart.
func (r *Repository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", itemID).
		Delete(&models.CartItem{}).Error
}

// SetCoupon attaches or clears (nil) the cart's coupon.
func (r *Repository) SetCoupon(ctx context.Context, cartID uuid.UUID, couponID *uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("coupon_id", couponID).Error
}

// MarkPaid closes the cart after a successful payment.
func (r *Repository) MarkPaid(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("is_paid", true).Error
}
