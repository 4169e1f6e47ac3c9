package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shopkart-labs/shopkart-backend/pkg/db/models"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  slug TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE products (
  id TEXT PRIMARY KEY,
  category_id TEXT,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT,
  price_paise INTEGER NOT NULL,
  tags TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE size_variants (
  id TEXT PRIMARY KEY,
  label TEXT NOT NULL UNIQUE,
  surcharge_paise INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE color_variants (
  id TEXT PRIMARY KEY,
  label TEXT NOT NULL UNIQUE,
  surcharge_paise INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE coupons (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL,
  discount_paise INTEGER NOT NULL,
  minimum_amount_paise INTEGER NOT NULL DEFAULT 0,
  is_expired INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE carts (
  id TEXT PRIMARY KEY,
  user_id TEXT,
  session_token TEXT,
  is_paid INTEGER NOT NULL DEFAULT 0,
  coupon_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE UNIQUE INDEX carts_one_open_per_user
  ON carts (user_id) WHERE is_paid = 0 AND user_id IS NOT NULL;`,
		`CREATE UNIQUE INDEX carts_one_open_per_session
  ON carts (session_token) WHERE is_paid = 0 AND session_token IS NOT NULL;`,
		`CREATE TABLE cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT,
  size_variant_id TEXT,
  color_variant_id TEXT,
  quantity INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func seedTestProduct(t *testing.T, conn *gorm.DB, pricePaise int64) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:       "Tee",
		Slug:       uuid.NewString(),
		PricePaise: pricePaise,
		IsActive:   true,
		CategoryID: uuid.New(),
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func TestGetOrCreateForUser_ReusesOpenCart(t *testing.T) {
	conn := setupCartTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	userID := uuid.New()

	first, err := repo.GetOrCreateForUser(ctx, userID)
	require.NoError(t, err)
	second, err := repo.GetOrCreateForUser(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestGetOrCreateForUser_PaidCartGetsReplacement(t *testing.T) {
	conn := setupCartTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	userID := uuid.New()

	first, err := repo.GetOrCreateForUser(ctx, userID)
	require.NoError(t, err)
	require.NoError(t, repo.MarkPaid(ctx, first.ID))

	second, err := repo.GetOrCreateForUser(ctx, userID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, second.IsPaid)
}

func TestGetOrCreateForSession_ReusesOpenCart(t *testing.T) {
	conn := setupCartTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	token := uuid.NewString()

	first, err := repo.GetOrCreateForSession(ctx, token)
	require.NoError(t, err)
	second, err := repo.GetOrCreateForSession(ctx, token)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestOpenCartUniqueIndexBlocksSecondInsert(t *testing.T) {
	conn := setupCartTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	userID := uuid.New()

	_, err := repo.GetOrCreateForUser(ctx, userID)
	require.NoError(t, err)

	owner := userID
	_, err = repo.Create(ctx, &models.Cart{UserID: &owner})
	require.Error(t, err)
}

func TestItemLifecycle(t *testing.T) {
	conn := setupCartTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	cart, err := repo.GetOrCreateForSession(ctx, uuid.NewString())
	require.NoError(t, err)
	product := seedTestProduct(t, conn, 100000)

	productID := product.ID
	item, err := repo.CreateItem(ctx, &models.CartItem{
		CartID:    cart.ID,
		ProductID: &productID,
		Quantity:  1,
	})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateItemQuantity(ctx, item.ID, 4))
	loaded, err := repo.FindItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.Quantity)

	reloaded, err := repo.FindByID(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	require.NotNil(t, reloaded.Items[0].Product)
	assert.Equal(t, int64(100000), reloaded.Items[0].Product.PricePaise)

	require.NoError(t, repo.DeleteItem(ctx, item.ID))
	_, err = repo.FindItem(ctx, item.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSetCoupon_AttachAndClear(t *testing.T) {
	conn := setupCartTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	cart, err := repo.GetOrCreateForSession(ctx, uuid.NewString())
	require.NoError(t, err)

	coupon := &models.Coupon{Code: "SAVE20", DiscountPaise: 20000}
	require.NoError(t, conn.Create(coupon).Error)

	couponID := coupon.ID
	require.NoError(t, repo.SetCoupon(ctx, cart.ID, &couponID))
	reloaded, err := repo.FindByID(ctx, cart.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.Coupon)
	assert.Equal(t, "SAVE20", reloaded.Coupon.Code)

	require.NoError(t, repo.SetCoupon(ctx, cart.ID, nil))
	reloaded, err = repo.FindByID(ctx, cart.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.Coupon)
}
