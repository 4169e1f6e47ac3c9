package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/shopkart-labs/shopkart-backend/api/middleware"
	cartsvc "github.com/shopkart-labs/shopkart-backend/internal/cart"
	pkgerrors "github.com/shopkart-labs/shopkart-backend/pkg/errors"
	"github.com/shopkart-labs/shopkart-backend/pkg/logger"
	"github.com/shopkart-labs/shopkart-backend/pkg/types"
)

type stubCartService struct {
	cartsvc.Service

	dto       *cartsvc.CartDTO
	count     int
	err       error
	lastOwner cartsvc.Owner
	lastInput cartsvc.AddItemInput
}

func (s *stubCartService) Get(ctx context.Context, owner cartsvc.Owner) (*cartsvc.CartDTO, error) {
	s.lastOwner = owner
	return s.dto, s.err
}

func (s *stubCartService) Count(ctx context.Context, owner cartsvc.Owner) (int, error) {
	s.lastOwner = owner
	return s.count, s.err
}

func (s *stubCartService) AddItem(ctx context.Context, owner cartsvc.Owner, input cartsvc.AddItemInput) (*cartsvc.CartDTO, error) {
	s.lastOwner = owner
	s.lastInput = input
	return s.dto, s.err
}

func (s *stubCartService) ApplyCoupon(ctx context.Context, owner cartsvc.Owner, code string) (*cartsvc.CartDTO, error) {
	s.lastOwner = owner
	return s.dto, s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func withCartToken(req *http.Request, token string) *http.Request {
	return req.WithContext(middleware.WithCartToken(req.Context(), token))
}

func TestGetCartUsesContextIdentity(t *testing.T) {
	svc := &stubCartService{dto: &cartsvc.CartDTO{ID: uuid.New()}}
	handler := GetCart(svc, testLogger())

	req := withCartToken(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil), "anon-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "anon-token", svc.lastOwner.SessionToken)
}

func TestAddCartItemDecodesSelection(t *testing.T) {
	svc := &stubCartService{dto: &cartsvc.CartDTO{ID: uuid.New()}}
	handler := AddCartItem(svc, testLogger())

	productID := uuid.New()
	body := `{"product_id":"` + productID.String() + `","size":"L","color":"Blue","quantity":2}`
	req := withCartToken(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)), "anon-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, productID, svc.lastInput.ProductID)
	require.Equal(t, "L", svc.lastInput.Size)
	require.Equal(t, "Blue", svc.lastInput.Color)
	require.Equal(t, 2, svc.lastInput.Quantity)
}

func TestAddCartItemOmittedQuantityAccepted(t *testing.T) {
	svc := &stubCartService{dto: &cartsvc.CartDTO{ID: uuid.New()}}
	handler := AddCartItem(svc, testLogger())

	body := `{"product_id":"` + uuid.NewString() + `"}`
	req := withCartToken(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)), "anon-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 0, svc.lastInput.Quantity)
}

func TestAddCartItemRejectsNegativeQuantity(t *testing.T) {
	svc := &stubCartService{}
	handler := AddCartItem(svc, testLogger())

	body := `{"product_id":"` + uuid.NewString() + `","quantity":-1}`
	req := withCartToken(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)), "anon-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, string(pkgerrors.CodeValidation), envelope.Error.Code)
}

func TestApplyCouponSurfacesDomainError(t *testing.T) {
	svc := &stubCartService{
		err: pkgerrors.New(pkgerrors.CodeCouponNotApplicable, "coupon requires a larger subtotal"),
	}
	handler := ApplyCartCoupon(svc, testLogger())

	req := withCartToken(httptest.NewRequest(http.MethodPost, "/api/v1/cart/coupon", strings.NewReader(`{"code":"SAVE20"}`)), "anon-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var envelope types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, string(pkgerrors.CodeCouponNotApplicable), envelope.Error.Code)
}

func TestUpdateCartItemRejectsBadID(t *testing.T) {
	svc := &stubCartService{}
	handler := UpdateCartItem(svc, testLogger())

	router := chi.NewRouter()
	router.Patch("/api/v1/cart/items/{itemID}", handler)

	req := withCartToken(httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/not-a-uuid", strings.NewReader(`{"quantity":1}`)), "anon-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCartCount(t *testing.T) {
	svc := &stubCartService{count: 4}
	handler := GetCartCount(svc, testLogger())

	req := withCartToken(httptest.NewRequest(http.MethodGet, "/api/v1/cart/count", nil), "anon-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data map[string]int `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, 4, envelope.Data["count"])
}
