package cart

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shopkart-labs/shopkart-backend/pkg/db/models"
	pkgerrors "github.com/shopkart-labs/shopkart-backend/pkg/errors"
)

type memCartStore struct {
	carts map[uuid.UUID]*models.Cart
	items map[uuid.UUID]*models.CartItem
}

func newMemCartStore() *memCartStore {
	return &memCartStore{
		carts: map[uuid.UUID]*models.Cart{},
		items: map[uuid.UUID]*models.CartItem{},
	}
}

func (m *memCartStore) GetOrCreateForUser(_ context.Context, userID uuid.UUID) (*models.Cart, error) {
	for _, cart := range m.carts {
		if cart.OwnedByUser(userID) && !cart.IsPaid {
			return m.snapshot(cart.ID), nil
		}
	}
	owner := userID
	cart := &models.Cart{ID: uuid.New(), UserID: &owner}
	m.carts[cart.ID] = cart
	return m.snapshot(cart.ID), nil
}

func (m *memCartStore) GetOrCreateForSession(_ context.Context, token string) (*models.Cart, error) {
	for _, cart := range m.carts {
		if cart.OwnedBySession(token) && !cart.IsPaid {
			return m.snapshot(cart.ID), nil
		}
	}
	owner := token
	cart := &models.Cart{ID: uuid.New(), SessionToken: &owner}
	m.carts[cart.ID] = cart
	return m.snapshot(cart.ID), nil
}

func (m *memCartStore) FindByID(_ context.Context, id uuid.UUID) (*models.Cart, error) {
	if _, ok := m.carts[id]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.snapshot(id), nil
}

func (m *memCartStore) FindItem(_ context.Context, itemID uuid.UUID) (*models.CartItem, error) {
	item, ok := m.items[itemID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *item
	return &copied, nil
}

func (m *memCartStore) CreateItem(_ context.Context, item *models.CartItem) (*models.CartItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	copied := *item
	m.items[item.ID] = &copied
	return item, nil
}

func (m *memCartStore) UpdateItemQuantity(_ context.Context, itemID uuid.UUID, quantity int) error {
	if item, ok := m.items[itemID]; ok {
		item.Quantity = quantity
	}
	return nil
}

func (m *memCartStore) DeleteItem(_ context.Context, itemID uuid.UUID) error {
	delete(m.items, itemID)
	return nil
}

func (m *memCartStore) SetCoupon(_ context.Context, cartID uuid.UUID, couponID *uuid.UUID) error {
	if cart, ok := m.carts[cartID]; ok {
		cart.CouponID = couponID
	}
	return nil
}

// snapshot imitates the repository preloads: items with product/variant rows
// and the attached coupon resolved.
func (m *memCartStore) snapshot(cartID uuid.UUID) *models.Cart {
	stored := m.carts[cartID]
	cart := *stored
	cart.Items = nil
	for _, item := range m.items {
		if item.CartID != cartID {
			continue
		}
		loaded := *item
		if loaded.ProductID != nil {
			if product, ok := testProducts[*loaded.ProductID]; ok {
				loaded.Product = product
				if loaded.SizeVariantID != nil {
					for i := range product.SizeVariants {
						if product.SizeVariants[i].ID == *loaded.SizeVariantID {
							loaded.SizeVariant = &product.SizeVariants[i]
						}
					}
				}
				if loaded.ColorVariantID != nil {
					for i := range product.ColorVariants {
						if product.ColorVariants[i].ID == *loaded.ColorVariantID {
							loaded.ColorVariant = &product.ColorVariants[i]
						}
					}
				}
			}
		}
		cart.Items = append(cart.Items, loaded)
	}
	if cart.CouponID != nil {
		if coupon, ok := testCoupons[*cart.CouponID]; ok {
			cart.Coupon = coupon
		}
	}
	return &cart
}

var (
	testProducts = map[uuid.UUID]*models.Product{}
	testCoupons  = map[uuid.UUID]*models.Coupon{}
)

type mapProductLoader struct{}

func (mapProductLoader) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if product, ok := testProducts[id]; ok {
		return product, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type mapCouponLoader struct{}

func (mapCouponLoader) FindByCode(_ context.Context, code string) (*models.Coupon, error) {
	for _, coupon := range testCoupons {
		if strings.EqualFold(coupon.Code, code) {
			return coupon, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func registerProduct(pricePaise int64) *models.Product {
	product := &models.Product{
		ID:         uuid.New(),
		Name:       "Tee",
		Slug:       uuid.NewString(),
		PricePaise: pricePaise,
		IsActive:   true,
		SizeVariants: []models.SizeVariant{
			{ID: uuid.New(), Label: "L", SurchargePaise: 5000},
		},
		ColorVariants: []models.ColorVariant{
			{ID: uuid.New(), Label: "Black", SurchargePaise: 2000},
		},
	}
	testProducts[product.ID] = product
	return product
}

func registerCoupon(code string, discount, minimum int64, expired bool) *models.Coupon {
	coupon := &models.Coupon{
		ID:                 uuid.New(),
		Code:               strings.ToUpper(code),
		DiscountPaise:      discount,
		MinimumAmountPaise: minimum,
		IsExpired:          expired,
	}
	testCoupons[coupon.ID] = coupon
	return coupon
}

func newCartFixture(t *testing.T) (Service, *memCartStore) {
	t.Helper()
	testProducts = map[uuid.UUID]*models.Product{}
	testCoupons = map[uuid.UUID]*models.Coupon{}
	store := newMemCartStore()
	svc, err := NewService(store, mapProductLoader{}, mapCouponLoader{})
	require.NoError(t, err)
	return svc, store
}

func userOwner() Owner {
	id := uuid.New()
	return Owner{UserID: &id}
}

func sessionOwner() Owner {
	return Owner{SessionToken: uuid.NewString()}
}

func TestResolve_CreatesOneOpenCartPerOwner(t *testing.T) {
	svc, store := newCartFixture(t)
	owner := userOwner()

	first, err := svc.Resolve(context.Background(), owner)
	require.NoError(t, err)
	second, err := svc.Resolve(context.Background(), owner)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.carts, 1)
}

func TestResolve_RequiresOwner(t *testing.T) {
	svc, _ := newCartFixture(t)

	_, err := svc.Resolve(context.Background(), Owner{})
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeValidation, domainErr.Code())
}

func TestAddItem_CreatesLineWithVariants(t *testing.T) {
	svc, _ := newCartFixture(t)
	product := registerProduct(100000)
	owner := sessionOwner()

	dto, err := svc.AddItem(context.Background(), owner, AddItemInput{
		ProductID: product.ID,
		Size:      "l",
		Color:     "BLACK",
		Quantity:  2,
	})
	require.NoError(t, err)

	require.Len(t, dto.Items, 1)
	assert.Equal(t, 2, dto.Items[0].Quantity)
	assert.Equal(t, int64(107000), dto.Items[0].UnitPricePaise)
	assert.Equal(t, int64(214000), dto.SubtotalPaise)
}

func TestAddItem_OmittedQuantityDefaultsToOne(t *testing.T) {
	svc, _ := newCartFixture(t)
	product := registerProduct(100000)

	dto, err := svc.AddItem(context.Background(), sessionOwner(), AddItemInput{ProductID: product.ID})
	require.NoError(t, err)

	require.Len(t, dto.Items, 1)
	assert.Equal(t, 1, dto.Items[0].Quantity)
}

func TestAddItem_MergesSameSelection(t *testing.T) {
	svc, store := newCartFixture(t)
	product := registerProduct(100000)
	owner := sessionOwner()

	_, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: product.ID, Size: "L"})
	require.NoError(t, err)
	dto, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: product.ID, Size: "L", Quantity: 2})
	require.NoError(t, err)

	require.Len(t, dto.Items, 1)
	assert.Equal(t, 3, dto.Items[0].Quantity)
	assert.Len(t, store.items, 1)
}

func TestAddItem_DifferentVariantMakesNewLine(t *testing.T) {
	svc, _ := newCartFixture(t)
	product := registerProduct(100000)
	owner := sessionOwner()

	_, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: product.ID, Size: "L"})
	require.NoError(t, err)
	dto, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: product.ID})
	require.NoError(t, err)

	assert.Len(t, dto.Items, 2)
}

func TestAddItem_UnknownVariantLabelResolvesToNone(t *testing.T) {
	svc, _ := newCartFixture(t)
	product := registerProduct(100000)
	owner := sessionOwner()

	dto, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: product.ID, Size: "XXXL"})
	require.NoError(t, err)

	require.Len(t, dto.Items, 1)
	assert.Nil(t, dto.Items[0].Size)
	assert.Equal(t, int64(100000), dto.Items[0].UnitPricePaise)
}

func TestAddItem_UnknownProductNotFound(t *testing.T) {
	svc, _ := newCartFixture(t)

	_, err := svc.AddItem(context.Background(), sessionOwner(), AddItemInput{ProductID: uuid.New()})
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeNotFound, domainErr.Code())
}

func TestUpdateItemQuantity_ZeroDeletesLine(t *testing.T) {
	svc, _ := newCartFixture(t)
	product := registerProduct(100000)
	owner := sessionOwner()

	dto, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: product.ID})
	require.NoError(t, err)
	itemID := dto.Items[0].ID

	dto, err = svc.UpdateItemQuantity(context.Background(), owner, itemID, 0)
	require.NoError(t, err)
	assert.Empty(t, dto.Items)
}

func TestUpdateItemQuantity_SetsQuantity(t *testing.T) {
	svc, _ := newCartFixture(t)
	product := registerProduct(100000)
	owner := sessionOwner()

	dto, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: product.ID})
	require.NoError(t, err)

	dto, err = svc.UpdateItemQuantity(context.Background(), owner, dto.Items[0].ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, dto.Items[0].Quantity)
}

func TestMutation_ForeignCartForbidden(t *testing.T) {
	svc, _ := newCartFixture(t)
	product := registerProduct(100000)
	owner := sessionOwner()
	intruder := sessionOwner()

	dto, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: product.ID})
	require.NoError(t, err)
	itemID := dto.Items[0].ID

	_, err = svc.UpdateItemQuantity(context.Background(), intruder, itemID, 5)
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeForbidden, domainErr.Code())

	_, err = svc.RemoveItem(context.Background(), intruder, itemID)
	domainErr = pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeForbidden, domainErr.Code())

	// the line is untouched
	refreshed, err := svc.Get(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, refreshed.Items, 1)
	assert.Equal(t, 1, refreshed.Items[0].Quantity)
}

func TestApplyCoupon_CaseInsensitive(t *testing.T) {
	svc, _ := newCartFixture(t)
	product := registerProduct(100000)
	registerCoupon("SAVE20", 20000, 50000, false)
	owner := sessionOwner()

	_, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: product.ID})
	require.NoError(t, err)

	dto, err := svc.ApplyCoupon(context.Background(), owner, "save20")
	require.NoError(t, err)

	require.NotNil(t, dto.Coupon)
	assert.True(t, dto.Coupon.Applied)
	assert.Equal(t, int64(20000), dto.DiscountPaise)
	assert.Equal(t, int64(80000), dto.TotalPaise)
}

func TestApplyCoupon_UnknownCodeNotFound(t *testing.T) {
	svc, _ := newCartFixture(t)

	_, err := svc.ApplyCoupon(context.Background(), sessionOwner(), "GHOST")
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeNotFound, domainErr.Code())
}

func TestApplyCoupon_ExpiredNotApplicable(t *testing.T) {
	svc, _ := newCartFixture(t)
	product := registerProduct(100000)
	registerCoupon("OLD", 20000, 0, true)
	owner := sessionOwner()

	_, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: product.ID})
	require.NoError(t, err)

	_, err = svc.ApplyCoupon(context.Background(), owner, "OLD")
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeCouponNotApplicable, domainErr.Code())
}

func TestApplyCoupon_BelowMinimumNotApplicable(t *testing.T) {
	svc, _ := newCartFixture(t)
	product := registerProduct(10000)
	registerCoupon("SAVE20", 20000, 50000, false)
	owner := sessionOwner()

	_, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: product.ID})
	require.NoError(t, err)

	_, err = svc.ApplyCoupon(context.Background(), owner, "SAVE20")
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeCouponNotApplicable, domainErr.Code())
}

func TestAttachedCoupon_StaysWhenSubtotalDrops(t *testing.T) {
	svc, _ := newCartFixture(t)
	product := registerProduct(60000)
	registerCoupon("SAVE20", 20000, 100000, false)
	owner := sessionOwner()

	dto, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)
	require.Equal(t, int64(120000), dto.SubtotalPaise)

	dto, err = svc.ApplyCoupon(context.Background(), owner, "SAVE20")
	require.NoError(t, err)
	assert.Equal(t, int64(100000), dto.TotalPaise)

	// dropping below the minimum keeps the coupon attached but inert
	dto, err = svc.UpdateItemQuantity(context.Background(), owner, dto.Items[0].ID, 1)
	require.NoError(t, err)
	require.NotNil(t, dto.Coupon)
	assert.False(t, dto.Coupon.Applied)
	assert.Equal(t, int64(0), dto.DiscountPaise)
	assert.Equal(t, int64(60000), dto.TotalPaise)
}

func TestRemoveCoupon(t *testing.T) {
	svc, _ := newCartFixture(t)
	product := registerProduct(100000)
	registerCoupon("SAVE20", 20000, 0, false)
	owner := sessionOwner()

	_, err := svc.AddItem(context.Background(), owner, AddItemInput{ProductID: product.ID})
	require.NoError(t, err)
	_, err = svc.ApplyCoupon(context.Background(), owner, "SAVE20")
	require.NoError(t, err)

	dto, err := svc.RemoveCoupon(context.Background(), owner)
	require.NoError(t, err)
	assert.Nil(t, dto.Coupon)
	assert.Equal(t, int64(100000), dto.TotalPaise)
}

func TestCount(t *testing.T) {
	svc, _ := newCartFixture(t)
	product := registerProduct(100000)
	owner := sessionOwner()

	count, err := svc.Count(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = svc.AddItem(context.Background(), owner, AddItemInput{ProductID: product.ID, Quantity: 3})
	require.NoError(t, err)

	count, err = svc.Count(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
