package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopkart-labs/shopkart-backend/pkg/db/models"
	"github.com/shopkart-labs/shopkart-backend/pkg/pagination"
)

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategorySlug string
	Search       string
	Tag          string
	Cursor       *pagination.Cursor
	Limit        int
}

// Repository exposes persistence operations for the catalog.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided DB.
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

// ListProducts returns active products matching the filter, newest first.
// Pass a limit one above the page size to detect whether more rows remain.
func (r *Repository) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Preload("Category").
		Preload("SizeVariants").
		Preload("ColorVariants").
		Where("products.is_active = ?", true)

	if filter.CategorySlug != "" {
		query = query.
			Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", filter.CategorySlug)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(products.name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		query = query.Where("? = ANY(products.tags)", tag)
	}
	if filter.Cursor != nil {
		query = query.Where(
			"(products.created_at, products.id) < (?, ?)",
			filter.Cursor.CreatedAt, filter.Cursor.ID,
		)
	}

	limit := pagination.NormalizeLimit(filter.Limit)
	var rows []models.Product
	err := query.
		Order("products.created_at DESC, products.id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindBySlug loads an active product with its category and variants.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("SizeVariants").
		Preload("ColorVariants").
		Where("slug = ? AND is_active = ?", slug, true).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByID loads a product regardless of active state.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("SizeVariants").
		Preload("ColorVariants").
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// SlugExists reports whether a product already claims the slug.
func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("slug = ?", slug).
		Count(&count).Error
	return count > 0, err
}

// CreateProduct inserts a new product with its variant associations.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// FindCategoryByID loads a category by id.
func (r *Repository) FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// FindOrCreateCategory returns the category with the given name, creating it
// if missing.
func (r *Repository) FindOrCreateCategory(ctx context.Context, name, slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		Attrs(models.Category{Name: name, Slug: slug}).
		FirstOrCreate(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// ListCategories returns all categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindSizeVariants loads size variants by id.
func (r *Repository) FindSizeVariants(ctx context.Context, ids []uuid.UUID) ([]models.SizeVariant, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.SizeVariant
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindColorVariants loads color variants by id.
func (r *Repository) FindColorVariants(ctx context.Context, ids []uuid.UUID) ([]models.ColorVariant, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.ColorVariant
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindOrCreateSizeVariant returns the size variant with the label, creating
// it if missing.
func (r *Repository) FindOrCreateSizeVariant(ctx context.Context, label string, surchargePaise int64) (*models.SizeVariant, error) {
	var variant models.SizeVariant
	err := r.db.WithContext(ctx).
		Where("label = ?", label).
		Attrs(models.SizeVariant{Label: label, SurchargePaise: surchargePaise}).
		FirstOrCreate(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// FindOrCreateColorVariant mirrors FindOrCreateSizeVariant for colors.
func (r *Repository) FindOrCreateColorVariant(ctx context.Context, label string, surchargePaise int64) (*models.ColorVariant, error) {
	var variant models.ColorVariant
	err := r.db.WithContext(ctx).
		Where("label = ?", label).
		Attrs(models.ColorVariant{Label: label, SurchargePaise: surchargePaise}).
		FirstOrCreate(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}
