package responses

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/shopkart-labs/shopkart-backend/pkg/errors"
	"github.com/shopkart-labs/shopkart-backend/pkg/logger"
	"github.com/shopkart-labs/shopkart-backend/pkg/types"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestWriteSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]string{"hello": "world"})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var envelope types.SuccessEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, map[string]any{"hello": "world"}, envelope.Data)
}

func TestWriteErrorDomainCode(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeCouponNotApplicable, "coupon requires a larger subtotal").
		WithDetails(map[string]any{"minimum": 50000})

	WriteError(context.Background(), testLogger(), rec, err)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var envelope types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, string(pkgerrors.CodeCouponNotApplicable), envelope.Error.Code)
	require.Equal(t, "coupon requires a larger subtotal", envelope.Error.Message)
	require.NotNil(t, envelope.Error.Details)
}

func TestWriteErrorHidesInternalMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeInternal, "pg connection pool exhausted on node db-3")

	WriteError(context.Background(), testLogger(), rec, err)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var envelope types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotContains(t, envelope.Error.Message, "db-3")
}

func TestWriteErrorWrapsUntypedError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), testLogger(), rec, io.ErrUnexpectedEOF)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var envelope types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, string(pkgerrors.CodeInternal), envelope.Error.Code)
}
