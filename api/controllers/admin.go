package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/shopkart-labs/shopkart-backend/api/responses"
	"github.com/shopkart-labs/shopkart-backend/api/validators"
	"github.com/shopkart-labs/shopkart-backend/internal/catalog"
	"github.com/shopkart-labs/shopkart-backend/internal/coupons"
	"github.com/shopkart-labs/shopkart-backend/internal/maintenance"
	pkgerrors "github.com/shopkart-labs/shopkart-backend/pkg/errors"
	"github.com/shopkart-labs/shopkart-backend/pkg/logger"
	"github.com/shopkart-labs/shopkart-backend/pkg/money"
)

type createCatalogProductRequest struct {
	CategoryID      uuid.UUID   `json:"category_id" validate:"required"`
	Name            string      `json:"name" validate:"required,max=200"`
	Description     *string     `json:"description,omitempty"`
	PricePaise      int64       `json:"price_paise" validate:"required,min=1"`
	Tags            []string    `json:"tags,omitempty" validate:"dive,max=50"`
	SizeVariantIDs  []uuid.UUID `json:"size_variant_ids,omitempty"`
	ColorVariantIDs []uuid.UUID `json:"color_variant_ids,omitempty"`
}

type createCouponRequest struct {
	Code               string `json:"code" validate:"required,max=50"`
	DiscountPaise      int64  `json:"discount_paise" validate:"required,min=1"`
	MinimumAmountPaise int64  `json:"minimum_amount_paise" validate:"min=0"`
	IsExpired          bool   `json:"is_expired"`
}

type flushRequest struct {
	Confirm string `json:"confirm" validate:"required"`
}

// AdminCreateProduct adds a catalog listing.
func AdminCreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var body createCatalogProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), catalog.CreateProductInput{
			CategoryID:      body.CategoryID,
			Name:            body.Name,
			Description:     body.Description,
			PricePaise:      body.PricePaise,
			Tags:            body.Tags,
			SizeVariantIDs:  body.SizeVariantIDs,
			ColorVariantIDs: body.ColorVariantIDs,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, catalog.ToProductDTO(product))
	}
}

// AdminCreateCoupon adds a flat-discount coupon.
func AdminCreateCoupon(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		var body createCouponRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := svc.Create(r.Context(), coupons.CreateCouponInput{
			Code:               body.Code,
			DiscountPaise:      body.DiscountPaise,
			MinimumAmountPaise: body.MinimumAmountPaise,
			IsExpired:          body.IsExpired,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"id":             coupon.ID,
			"code":           coupon.Code,
			"discount_paise": coupon.DiscountPaise,
			"discount":       money.DisplayString(coupon.DiscountPaise),
			"minimum_paise":  coupon.MinimumAmountPaise,
			"is_expired":     coupon.IsExpired,
		})
	}
}

// AdminFlush wipes storefront data after an explicit confirmation.
func AdminFlush(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "maintenance service unavailable"))
			return
		}

		var body flushRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Flush(r.Context(), body.Confirm); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"message": "storefront data flushed"})
	}
}
