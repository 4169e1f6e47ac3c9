package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/shopkart-labs/shopkart-backend/pkg/db"
	"github.com/shopkart-labs/shopkart-backend/pkg/db/models"
	pkgerrors "github.com/shopkart-labs/shopkart-backend/pkg/errors"
	"github.com/shopkart-labs/shopkart-backend/pkg/money"
	"github.com/shopkart-labs/shopkart-backend/pkg/pagination"
)

type productStore interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindSizeVariants(ctx context.Context, ids []uuid.UUID) ([]models.SizeVariant, error)
	FindColorVariants(ctx context.Context, ids []uuid.UUID) ([]models.ColorVariant, error)
}

// ListParams carries the query inputs for product listings.
type ListParams struct {
	CategorySlug string
	Search       string
	Tag          string
	Limit        int
	Cursor       string
}

// DetailParams selects optional variants when fetching a product.
type DetailParams struct {
	Slug       string
	SizeLabel  string
	ColorLabel string
}

// CreateProductInput carries the admin payload for a new listing.
type CreateProductInput struct {
	CategoryID      uuid.UUID
	Name            string
	Description     *string
	PricePaise      int64
	Tags            []string
	SizeVariantIDs  []uuid.UUID
	ColorVariantIDs []uuid.UUID
}

// Service exposes catalog read and admin operations.
type Service interface {
	List(ctx context.Context, params ListParams) (*ProductPage, error)
	GetBySlug(ctx context.Context, params DetailParams) (*ProductDetailDTO, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
}

type service struct {
	repo productStore
}

// NewService builds a catalog service backed by the provided repository.
func NewService(repo productStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// List returns a page of active products.
func (s *service) List(ctx context.Context, params ListParams) (*ProductPage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid pagination cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListProducts(ctx, ProductFilter{
		CategorySlug: strings.TrimSpace(params.CategorySlug),
		Search:       params.Search,
		Tag:          params.Tag,
		Cursor:       cursor,
		Limit:        limit + 1,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	page := &ProductPage{}
	if len(rows) > limit {
		last := rows[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
		rows = rows[:limit]
	}
	page.Products = make([]ProductDTO, 0, len(rows))
	for i := range rows {
		page.Products = append(page.Products, ToProductDTO(&rows[i]))
	}
	return page, nil
}

// GetBySlug loads a product and computes the price for the selected variants.
// Variant labels that the product does not offer are ignored.
func (s *service) GetBySlug(ctx context.Context, params DetailParams) (*ProductDetailDTO, error) {
	slugValue := strings.TrimSpace(params.Slug)
	if slugValue == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product slug is required")
	}

	product, err := s.repo.FindBySlug(ctx, slugValue)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	detail := &ProductDetailDTO{ProductDTO: ToProductDTO(product)}
	computed := product.PricePaise

	if label := strings.TrimSpace(params.SizeLabel); label != "" {
		for _, v := range product.SizeVariants {
			if strings.EqualFold(v.Label, label) {
				computed += v.SurchargePaise
				selected := v.Label
				detail.SelectedSize = &selected
				break
			}
		}
	}
	if label := strings.TrimSpace(params.ColorLabel); label != "" {
		for _, v := range product.ColorVariants {
			if strings.EqualFold(v.Label, label) {
				computed += v.SurchargePaise
				selected := v.Label
				detail.SelectedColor = &selected
				break
			}
		}
	}

	detail.ComputedPricePaise = computed
	detail.ComputedPrice = money.DisplayString(computed)
	return detail, nil
}

// CreateProduct inserts a listing with a slug derived from its name.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.PricePaise < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}
	if input.CategoryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id is required")
	}

	if _, err := s.repo.FindCategoryByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	sizes, err := s.repo.FindSizeVariants(ctx, input.SizeVariantIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load size variants")
	}
	if len(sizes) != len(input.SizeVariantIDs) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown size variant id")
	}
	colors, err := s.repo.FindColorVariants(ctx, input.ColorVariantIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load color variants")
	}
	if len(colors) != len(input.ColorVariantIDs) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown color variant id")
	}

	slugValue, err := s.uniqueSlug(ctx, name)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		CategoryID:    input.CategoryID,
		Name:          name,
		Slug:          slugValue,
		Description:   input.Description,
		PricePaise:    input.PricePaise,
		Tags:          input.Tags,
		IsActive:      true,
		SizeVariants:  sizes,
		ColorVariants: colors,
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

// uniqueSlug derives a URL slug from the name, suffixing a short id when the
// base form is taken.
func (s *service) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "product name yields an empty slug")
	}

	taken, err := s.repo.SlugExists(ctx, base)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
	}
	if !taken {
		return base, nil
	}
	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8]), nil
}
