package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shopkart-labs/shopkart-backend/pkg/db/models"
	pkgerrors "github.com/shopkart-labs/shopkart-backend/pkg/errors"
)

type stubProductStore struct {
	products   []models.Product
	categories map[uuid.UUID]*models.Category
	sizes      map[uuid.UUID]models.SizeVariant
	colors     map[uuid.UUID]models.ColorVariant
	created    *models.Product
	lastFilter ProductFilter
}

func newStubProductStore() *stubProductStore {
	return &stubProductStore{
		categories: map[uuid.UUID]*models.Category{},
		sizes:      map[uuid.UUID]models.SizeVariant{},
		colors:     map[uuid.UUID]models.ColorVariant{},
	}
}

func (s *stubProductStore) ListProducts(_ context.Context, filter ProductFilter) ([]models.Product, error) {
	s.lastFilter = filter
	limit := filter.Limit
	if limit > len(s.products) {
		limit = len(s.products)
	}
	return s.products[:limit], nil
}

func (s *stubProductStore) FindBySlug(_ context.Context, slug string) (*models.Product, error) {
	for i := range s.products {
		if s.products[i].Slug == slug {
			return &s.products[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProductStore) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProductStore) SlugExists(_ context.Context, slug string) (bool, error) {
	for i := range s.products {
		if s.products[i].Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubProductStore) CreateProduct(_ context.Context, product *models.Product) (*models.Product, error) {
	product.ID = uuid.New()
	s.created = product
	s.products = append(s.products, *product)
	return product, nil
}

func (s *stubProductStore) FindCategoryByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	if category, ok := s.categories[id]; ok {
		return category, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProductStore) FindSizeVariants(_ context.Context, ids []uuid.UUID) ([]models.SizeVariant, error) {
	var out []models.SizeVariant
	for _, id := range ids {
		if v, ok := s.sizes[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *stubProductStore) FindColorVariants(_ context.Context, ids []uuid.UUID) ([]models.ColorVariant, error) {
	var out []models.ColorVariant
	for _, id := range ids {
		if v, ok := s.colors[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func seedProduct(store *stubProductStore, name, slugValue string, pricePaise int64) *models.Product {
	product := models.Product{
		ID:         uuid.New(),
		Name:       name,
		Slug:       slugValue,
		PricePaise: pricePaise,
		IsActive:   true,
		CreatedAt:  time.Now(),
		SizeVariants: []models.SizeVariant{
			{ID: uuid.New(), Label: "L", SurchargePaise: 5000},
			{ID: uuid.New(), Label: "XL", SurchargePaise: 10000},
		},
		ColorVariants: []models.ColorVariant{
			{ID: uuid.New(), Label: "Red", SurchargePaise: 2500},
		},
	}
	store.products = append(store.products, product)
	return &store.products[len(store.products)-1]
}

func TestList_PaginatesWithCursor(t *testing.T) {
	store := newStubProductStore()
	for i := 0; i < 3; i++ {
		seedProduct(store, "Shirt", uuid.NewString(), 100000)
	}
	svc, err := NewService(store)
	require.NoError(t, err)

	page, err := svc.List(context.Background(), ListParams{Limit: 2})
	require.NoError(t, err)

	assert.Len(t, page.Products, 2)
	assert.NotEmpty(t, page.NextCursor)
	assert.Equal(t, 3, store.lastFilter.Limit, "repo should be asked for one extra row")
}

func TestList_LastPageHasNoCursor(t *testing.T) {
	store := newStubProductStore()
	seedProduct(store, "Shirt", "shirt", 100000)
	svc, err := NewService(store)
	require.NoError(t, err)

	page, err := svc.List(context.Background(), ListParams{Limit: 5})
	require.NoError(t, err)

	assert.Len(t, page.Products, 1)
	assert.Empty(t, page.NextCursor)
}

func TestList_RejectsBadCursor(t *testing.T) {
	svc, err := NewService(newStubProductStore())
	require.NoError(t, err)

	_, err = svc.List(context.Background(), ListParams{Cursor: "not-base64!!"})
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeValidation, domainErr.Code())
}

func TestGetBySlug_ComputesVariantPrice(t *testing.T) {
	store := newStubProductStore()
	seedProduct(store, "Hoodie", "hoodie", 150000)
	svc, err := NewService(store)
	require.NoError(t, err)

	detail, err := svc.GetBySlug(context.Background(), DetailParams{Slug: "hoodie", SizeLabel: "xl", ColorLabel: "RED"})
	require.NoError(t, err)

	assert.Equal(t, int64(150000+10000+2500), detail.ComputedPricePaise)
	assert.Equal(t, "1625.00", detail.ComputedPrice)
	require.NotNil(t, detail.SelectedSize)
	assert.Equal(t, "XL", *detail.SelectedSize)
	require.NotNil(t, detail.SelectedColor)
	assert.Equal(t, "Red", *detail.SelectedColor)
}

func TestGetBySlug_IgnoresUnknownVariantLabels(t *testing.T) {
	store := newStubProductStore()
	seedProduct(store, "Hoodie", "hoodie", 150000)
	svc, err := NewService(store)
	require.NoError(t, err)

	detail, err := svc.GetBySlug(context.Background(), DetailParams{Slug: "hoodie", SizeLabel: "XXXL"})
	require.NoError(t, err)

	assert.Equal(t, int64(150000), detail.ComputedPricePaise)
	assert.Nil(t, detail.SelectedSize)
}

func TestGetBySlug_NotFound(t *testing.T) {
	svc, err := NewService(newStubProductStore())
	require.NoError(t, err)

	_, err = svc.GetBySlug(context.Background(), DetailParams{Slug: "ghost"})
	domainErr := pkgerrors.As(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, pkgerrors.CodeNotFound, domainErr.Code())
}

func TestCreateProduct_GeneratesSlug(t *testing.T) {
	store := newStubProductStore()
	categoryID := uuid.New()
	store.categories[categoryID] = &models.Category{ID: categoryID, Name: "Apparel", Slug: "apparel"}
	svc, err := NewService(store)
	require.NoError(t, err)

	created, err := svc.CreateProduct(context.Background(), CreateProductInput{
		CategoryID: categoryID,
		Name:       "Denim Jacket Blue",
		PricePaise: 250000,
		Tags:       []string{"denim", "winter"},
	})
	require.NoError(t, err)

	assert.Equal(t, "denim-jacket-blue", created.Slug)
	assert.True(t, created.IsActive)
	assert.EqualValues(t, []string{"denim", "winter"}, created.Tags)
}

func TestCreateProduct_SuffixesTakenSlug(t *testing.T) {
	store := newStubProductStore()
	categoryID := uuid.New()
	store.categories[categoryID] = &models.Category{ID: categoryID, Name: "Apparel", Slug: "apparel"}
	seedProduct(store, "Denim Jacket", "denim-jacket", 250000)
	svc, err := NewService(store)
	require.NoError(t, err)

	created, err := svc.CreateProduct(context.Background(), CreateProductInput{
		CategoryID: categoryID,
		Name:       "Denim Jacket",
		PricePaise: 250000,
	})
	require.NoError(t, err)

	assert.NotEqual(t, "denim-jacket", created.Slug)
	assert.Contains(t, created.Slug, "denim-jacket-")
}

func TestCreateProduct_Validation(t *testing.T) {
	store := newStubProductStore()
	categoryID := uuid.New()
	store.categories[categoryID] = &models.Category{ID: categoryID}
	svc, err := NewService(store)
	require.NoError(t, err)

	cases := []struct {
		name  string
		input CreateProductInput
		code  pkgerrors.Code
	}{
		{"missing name", CreateProductInput{CategoryID: categoryID, PricePaise: 100}, pkgerrors.CodeValidation},
		{"negative price", CreateProductInput{CategoryID: categoryID, Name: "X", PricePaise: -1}, pkgerrors.CodeValidation},
		{"missing category", CreateProductInput{Name: "X", PricePaise: 100}, pkgerrors.CodeValidation},
		{"unknown category", CreateProductInput{CategoryID: uuid.New(), Name: "X", PricePaise: 100}, pkgerrors.CodeNotFound},
		{"unknown size variant", CreateProductInput{CategoryID: categoryID, Name: "X", PricePaise: 100, SizeVariantIDs: []uuid.UUID{uuid.New()}}, pkgerrors.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(context.Background(), tc.input)
			domainErr := pkgerrors.As(err)
			require.NotNil(t, domainErr)
			assert.Equal(t, tc.code, domainErr.Code())
		})
	}
}
