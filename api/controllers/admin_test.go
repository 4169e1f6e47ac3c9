package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shopkart-labs/shopkart-backend/internal/maintenance"
	pkgerrors "github.com/shopkart-labs/shopkart-backend/pkg/errors"
	"github.com/shopkart-labs/shopkart-backend/pkg/types"
)

type stubMaintenanceService struct {
	confirm string
	err     error
}

func (s *stubMaintenanceService) Flush(ctx context.Context, confirm string) error {
	s.confirm = confirm
	if s.err != nil {
		return s.err
	}
	if strings.TrimSpace(strings.ToLower(confirm)) != "yes" {
		return pkgerrors.New(pkgerrors.CodeValidation, `flush requires confirm: "yes"`)
	}
	return nil
}

var _ maintenance.Service = (*stubMaintenanceService)(nil)

func TestAdminFlushHappyPath(t *testing.T) {
	svc := &stubMaintenanceService{}
	handler := AdminFlush(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/maintenance/flush", strings.NewReader(`{"confirm":"yes"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "yes", svc.confirm)
}

func TestAdminFlushRejectsWithoutConfirmation(t *testing.T) {
	svc := &stubMaintenanceService{}
	handler := AdminFlush(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/maintenance/flush", strings.NewReader(`{"confirm":"no"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, string(pkgerrors.CodeValidation), envelope.Error.Code)
}

func TestAdminFlushRequiresBody(t *testing.T) {
	svc := &stubMaintenanceService{}
	handler := AdminFlush(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/maintenance/flush", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
