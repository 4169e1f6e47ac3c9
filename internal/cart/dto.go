package cart

import (
	"github.com/google/uuid"

	"github.com/shopkart-labs/shopkart-backend/pkg/db/models"
	"github.com/shopkart-labs/shopkart-backend/pkg/money"
)

// CartItemDTO is the public projection of a cart line.
type CartItemDTO struct {
	ID             uuid.UUID  `json:"id"`
	ProductID      *uuid.UUID `json:"product_id,omitempty"`
	ProductName    string     `json:"product_name,omitempty"`
	ProductSlug    string     `json:"product_slug,omitempty"`
	Size           *string    `json:"size,omitempty"`
	Color          *string    `json:"color,omitempty"`
	Quantity       int        `json:"quantity"`
	UnitPricePaise int64      `json:"unit_price_paise"`
	UnitPrice      string     `json:"unit_price"`
	LinePricePaise int64      `json:"line_price_paise"`
	LinePrice      string     `json:"line_price"`
	Unavailable    bool       `json:"unavailable,omitempty"`
}

// CouponDTO is the public projection of an attached coupon.
type CouponDTO struct {
	Code               string `json:"code"`
	DiscountPaise      int64  `json:"discount_paise"`
	MinimumAmountPaise int64  `json:"minimum_amount_paise"`
	Applied            bool   `json:"applied"`
}

// CartDTO is the priced view of a cart; every amount is recomputed from the
// catalog on each read.
type CartDTO struct {
	ID            uuid.UUID     `json:"id"`
	Items         []CartItemDTO `json:"items"`
	ItemCount     int           `json:"item_count"`
	Coupon        *CouponDTO    `json:"coupon,omitempty"`
	SubtotalPaise int64         `json:"subtotal_paise"`
	Subtotal      string        `json:"subtotal"`
	DiscountPaise int64         `json:"discount_paise"`
	Discount      string        `json:"discount"`
	TotalPaise    int64         `json:"total_paise"`
	Total         string        `json:"total"`
}

// ToCartDTO prices the cart and maps it to its public projection.
func ToCartDTO(cart *models.Cart) *CartDTO {
	if cart == nil {
		return nil
	}

	subtotal := Subtotal(cart)
	discount := DiscountAmount(cart.Coupon, subtotal)
	total := subtotal - discount
	if total < 0 {
		total = 0
	}

	dto := &CartDTO{
		ID:            cart.ID,
		Items:         make([]CartItemDTO, 0, len(cart.Items)),
		ItemCount:     ItemCount(cart),
		SubtotalPaise: subtotal,
		Subtotal:      money.DisplayString(subtotal),
		DiscountPaise: discount,
		Discount:      money.DisplayString(discount),
		TotalPaise:    total,
		Total:         money.DisplayString(total),
	}

	for i := range cart.Items {
		item := &cart.Items[i]
		line := CartItemDTO{
			ID:             item.ID,
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPricePaise: ItemUnitPrice(item),
			LinePricePaise: ItemLinePrice(item),
			Unavailable:    item.Product == nil,
		}
		line.UnitPrice = money.DisplayString(line.UnitPricePaise)
		line.LinePrice = money.DisplayString(line.LinePricePaise)
		if item.Product != nil {
			line.ProductName = item.Product.Name
			line.ProductSlug = item.Product.Slug
		}
		if item.SizeVariant != nil {
			size := item.SizeVariant.Label
			line.Size = &size
		}
		if item.ColorVariant != nil {
			color := item.ColorVariant.Label
			line.Color = &color
		}
		dto.Items = append(dto.Items, line)
	}

	if cart.Coupon != nil {
		dto.Coupon = &CouponDTO{
			Code:               cart.Coupon.Code,
			DiscountPaise:      cart.Coupon.DiscountPaise,
			MinimumAmountPaise: cart.Coupon.MinimumAmountPaise,
			Applied:            CouponApplicable(cart.Coupon, subtotal),
		}
	}

	return dto
}
