package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopkart-labs/shopkart-backend/pkg/db/models"
	pkgerrors "github.com/shopkart-labs/shopkart-backend/pkg/errors"
	"github.com/shopkart-labs/shopkart-backend/pkg/money"
)

// Owner identifies who a cart belongs to: an authenticated user or an
// anonymous session token, never both.
type Owner struct {
	UserID       *uuid.UUID
	SessionToken string
}

// Valid reports whether exactly one identity is set.
func (o Owner) Valid() bool {
	if o.UserID != nil && *o.UserID != uuid.Nil {
		return o.SessionToken == ""
	}
	return strings.TrimSpace(o.SessionToken) != ""
}

func (o Owner) owns(cart *models.Cart) bool {
	if o.UserID != nil && *o.UserID != uuid.Nil {
		return cart.OwnedByUser(*o.UserID)
	}
	return cart.OwnedBySession(o.SessionToken)
}

type cartStore interface {
	GetOrCreateForUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	GetOrCreateForSession(ctx context.Context, token string) (*models.Cart, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	FindItem(ctx context.Context, itemID uuid.UUID) (*models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	SetCoupon(ctx context.Context, cartID uuid.UUID, couponID *uuid.UUID) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type couponLoader interface {
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
}

// AddItemInput carries the payload for adding a line to a cart.
type AddItemInput struct {
	ProductID uuid.UUID
	Size      string
	Color     string
	Quantity  int
}

// Service exposes cart operations. Every mutation verifies ownership first
// and rejects with FORBIDDEN without touching the cart.
type Service interface {
	Get(ctx context.Context, owner Owner) (*CartDTO, error)
	Count(ctx context.Context, owner Owner) (int, error)
	Resolve(ctx context.Context, owner Owner) (*models.Cart, error)
	AddItem(ctx context.Context, owner Owner, input AddItemInput) (*CartDTO, error)
	UpdateItemQuantity(ctx context.Context, owner Owner, itemID uuid.UUID, quantity int) (*CartDTO, error)
	RemoveItem(ctx context.Context, owner Owner, itemID uuid.UUID) (*CartDTO, error)
	ApplyCoupon(ctx context.Context, owner Owner, code string) (*CartDTO, error)
	RemoveCoupon(ctx context.Context, owner Owner) (*CartDTO, error)
}

type service struct {
	repo     cartStore
	products productLoader
	coupons  couponLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo cartStore, products productLoader, coupons couponLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if coupons == nil {
		return nil, fmt.Errorf("coupon loader required")
	}
	return &service{repo: repo, products: products, coupons: coupons}, nil
}

// Resolve returns the owner's open cart, creating it on first touch.
func (s *service) Resolve(ctx context.Context, owner Owner) (*models.Cart, error) {
	if !owner.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}
	var (
		cart *models.Cart
		err  error
	)
	if owner.UserID != nil && *owner.UserID != uuid.Nil {
		cart, err = s.repo.GetOrCreateForUser(ctx, *owner.UserID)
	} else {
		cart, err = s.repo.GetOrCreateForSession(ctx, owner.SessionToken)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve cart")
	}
	return cart, nil
}

// Get returns the priced view of the owner's cart.
func (s *service) Get(ctx context.Context, owner Owner) (*CartDTO, error) {
	cart, err := s.Resolve(ctx, owner)
	if err != nil {
		return nil, err
	}
	return ToCartDTO(cart), nil
}

// Count returns the summed quantity across the owner's cart lines.
func (s *service) Count(ctx context.Context, owner Owner) (int, error) {
	cart, err := s.Resolve(ctx, owner)
	if err != nil {
		return 0, err
	}
	return ItemCount(cart), nil
}

// AddItem appends a product selection to the cart. An existing line with the
// same (product, size, color) absorbs the quantity instead of duplicating.
// Variant labels the product does not offer resolve to no variant.
func (s *service) AddItem(ctx context.Context, owner Owner, input AddItemInput) (*CartDTO, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	quantity := input.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	sizeID := matchSizeVariant(product, input.Size)
	colorID := matchColorVariant(product, input.Color)

	cart, err := s.Resolve(ctx, owner)
	if err != nil {
		return nil, err
	}

	var existing *models.CartItem
	for i := range cart.Items {
		if cart.Items[i].SameSelection(product.ID, sizeID, colorID) {
			existing = &cart.Items[i]
			break
		}
	}

	if existing != nil {
		if err := s.repo.UpdateItemQuantity(ctx, existing.ID, existing.Quantity+quantity); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge cart item")
		}
	} else {
		productID := product.ID
		item := &models.CartItem{
			CartID:         cart.ID,
			ProductID:      &productID,
			SizeVariantID:  sizeID,
			ColorVariantID: colorID,
			Quantity:       quantity,
		}
		if _, err := s.repo.CreateItem(ctx, item); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart item")
		}
	}

	return s.reload(ctx, cart.ID)
}

// UpdateItemQuantity sets a line's quantity; zero or below removes the line.
func (s *service) UpdateItemQuantity(ctx context.Context, owner Owner, itemID uuid.UUID, quantity int) (*CartDTO, error) {
	item, cart, err := s.ownedItem(ctx, owner, itemID)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
		}
	} else {
		if err := s.repo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
		}
	}

	return s.reload(ctx, cart.ID)
}

// RemoveItem deletes a line from the cart.
func (s *service) RemoveItem(ctx context.Context, owner Owner, itemID uuid.UUID) (*CartDTO, error) {
	item, cart, err := s.ownedItem(ctx, owner, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
	}
	return s.reload(ctx, cart.ID)
}

// ApplyCoupon attaches a coupon by its case-insensitive code. A coupon that
// is expired or whose minimum exceeds the current subtotal is rejected here;
// once attached it survives subtotal drops without contributing.
func (s *service) ApplyCoupon(ctx context.Context, owner Owner, code string) (*CartDTO, error) {
	if strings.TrimSpace(code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}

	cart, err := s.Resolve(ctx, owner)
	if err != nil {
		return nil, err
	}

	coupon, err := s.coupons.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}

	if coupon.IsExpired {
		return nil, pkgerrors.New(pkgerrors.CodeCouponNotApplicable, "coupon has expired")
	}
	subtotal := Subtotal(cart)
	if subtotal < coupon.MinimumAmountPaise {
		return nil, pkgerrors.New(pkgerrors.CodeCouponNotApplicable, "cart subtotal is below the coupon minimum").
			WithDetails(map[string]string{
				"minimum_amount": money.DisplayString(coupon.MinimumAmountPaise),
				"subtotal":       money.DisplayString(subtotal),
			})
	}

	couponID := coupon.ID
	if err := s.repo.SetCoupon(ctx, cart.ID, &couponID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach coupon")
	}
	return s.reload(ctx, cart.ID)
}

// RemoveCoupon detaches any coupon from the cart.
func (s *service) RemoveCoupon(ctx context.Context, owner Owner) (*CartDTO, error) {
	cart, err := s.Resolve(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetCoupon(ctx, cart.ID, nil); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detach coupon")
	}
	return s.reload(ctx, cart.ID)
}

// ownedItem loads an item and verifies the caller owns its cart and the cart
// is still open.
func (s *service) ownedItem(ctx context.Context, owner Owner, itemID uuid.UUID) (*models.CartItem, *models.Cart, error) {
	if !owner.Valid() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}
	if itemID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}

	item, err := s.repo.FindItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}

	cart, err := s.repo.FindByID(ctx, item.CartID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	if !owner.owns(cart) {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "cart item belongs to another cart")
	}
	if cart.IsPaid {
		return nil, nil, pkgerrors.New(pkgerrors.CodeConflict, "cart is already paid")
	}
	return item, cart, nil
}

func (s *service) reload(ctx context.Context, cartID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.FindByID(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
	}
	return ToCartDTO(cart), nil
}

func matchSizeVariant(product *models.Product, label string) *uuid.UUID {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil
	}
	for _, v := range product.SizeVariants {
		if strings.EqualFold(v.Label, label) {
			id := v.ID
			return &id
		}
	}
	return nil
}

func matchColorVariant(product *models.Product, label string) *uuid.UUID {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil
	}
	for _, v := range product.ColorVariants {
		if strings.EqualFold(v.Label, label) {
			id := v.ID
			return &id
		}
	}
	return nil
}
