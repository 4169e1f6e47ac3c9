package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopkart-labs/shopkart-backend/pkg/db/models"
	"github.com/shopkart-labs/shopkart-backend/pkg/money"
)

// VariantDTO is the public projection of a size or color option.
type VariantDTO struct {
	ID             uuid.UUID `json:"id"`
	Label          string    `json:"label"`
	SurchargePaise int64     `json:"surcharge_paise"`
	Surcharge      string    `json:"surcharge"`
}

// ProductDTO is the public projection of a catalog listing.
type ProductDTO struct {
	ID            uuid.UUID    `json:"id"`
	Name          string       `json:"name"`
	Slug          string       `json:"slug"`
	Description   *string      `json:"description,omitempty"`
	Category      string       `json:"category"`
	CategorySlug  string       `json:"category_slug"`
	PricePaise    int64        `json:"price_paise"`
	Price         string       `json:"price"`
	Tags          []string     `json:"tags,omitempty"`
	SizeVariants  []VariantDTO `json:"size_variants,omitempty"`
	ColorVariants []VariantDTO `json:"color_variants,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

// ProductDetailDTO extends ProductDTO with the price after the selected
// variant surcharges.
type ProductDetailDTO struct {
	ProductDTO
	SelectedSize       *string `json:"selected_size,omitempty"`
	SelectedColor      *string `json:"selected_color,omitempty"`
	ComputedPricePaise int64   `json:"computed_price_paise"`
	ComputedPrice      string  `json:"computed_price"`
}

// ProductPage is one page of listings plus the cursor for the next.
type ProductPage struct {
	Products   []ProductDTO
	NextCursor string
}

func sizeVariantDTOs(rows []models.SizeVariant) []VariantDTO {
	if len(rows) == 0 {
		return nil
	}
	out := make([]VariantDTO, 0, len(rows))
	for _, v := range rows {
		out = append(out, VariantDTO{
			ID:             v.ID,
			Label:          v.Label,
			SurchargePaise: v.SurchargePaise,
			Surcharge:      money.DisplayString(v.SurchargePaise),
		})
	}
	return out
}

func colorVariantDTOs(rows []models.ColorVariant) []VariantDTO {
	if len(rows) == 0 {
		return nil
	}
	out := make([]VariantDTO, 0, len(rows))
	for _, v := range rows {
		out = append(out, VariantDTO{
			ID:             v.ID,
			Label:          v.Label,
			SurchargePaise: v.SurchargePaise,
			Surcharge:      money.DisplayString(v.SurchargePaise),
		})
	}
	return out
}

// ToProductDTO maps the model to its public projection.
func ToProductDTO(product *models.Product) ProductDTO {
	dto := ProductDTO{
		ID:            product.ID,
		Name:          product.Name,
		Slug:          product.Slug,
		Description:   product.Description,
		PricePaise:    product.PricePaise,
		Price:         money.DisplayString(product.PricePaise),
		Tags:          product.Tags,
		SizeVariants:  sizeVariantDTOs(product.SizeVariants),
		ColorVariants: colorVariantDTOs(product.ColorVariants),
		CreatedAt:     product.CreatedAt,
	}
	if product.Category != nil {
		dto.Category = product.Category.Name
		dto.CategorySlug = product.Category.Slug
	}
	return dto
}
