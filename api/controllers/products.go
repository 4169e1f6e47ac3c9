package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopkart-labs/shopkart-backend/api/responses"
	"github.com/shopkart-labs/shopkart-backend/api/validators"
	"github.com/shopkart-labs/shopkart-backend/internal/catalog"
	pkgerrors "github.com/shopkart-labs/shopkart-backend/pkg/errors"
	"github.com/shopkart-labs/shopkart-backend/pkg/logger"
	"github.com/shopkart-labs/shopkart-backend/pkg/pagination"
	"github.com/shopkart-labs/shopkart-backend/pkg/types"
)

// ListProducts serves the paginated storefront listing with optional
// category, search, and tag filters.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		page, err := svc.List(r.Context(), catalog.ListParams{
			CategorySlug: validators.SanitizeString(query.Get("category"), 100),
			Search:       validators.SanitizeString(query.Get("search"), 200),
			Tag:          validators.SanitizeString(query.Get("tag"), 100),
			Limit:        limit,
			Cursor:       query.Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, types.PageEnvelope{
			Data:       page.Products,
			NextCursor: page.NextCursor,
		})
	}
}

// GetProduct serves the product detail, pricing the optional size and color
// selection from query parameters.
func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		query := r.URL.Query()
		detail, err := svc.GetBySlug(r.Context(), catalog.DetailParams{
			Slug:       chi.URLParam(r, "slug"),
			SizeLabel:  validators.SanitizeString(query.Get("size"), 50),
			ColorLabel: validators.SanitizeString(query.Get("color"), 50),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}
