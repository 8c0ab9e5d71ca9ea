package errors

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	assert.Equal(t, "Invalid request format", err.Error())
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
	}{
		{name: "invalid request", err: InvalidRequestWithError(errors.New("bad body")), wantStatus: http.StatusBadRequest, wantCode: "INVALID_REQUEST"},
		{name: "validation", err: ErrValidation("name", "Package name is required"), wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_FAILED"},
		{name: "not found", err: NotFoundError("Package abc"), wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND"},
		{name: "unprocessable", err: UnprocessableWithDetails("Invalid package configuration", nil), wantStatus: http.StatusUnprocessableEntity, wantCode: "INVALID_PACKAGE_CONFIGURATION"},
		{name: "catalog", err: CatalogError(errors.New("boom")), wantStatus: http.StatusInternalServerError, wantCode: "CATALOG_LOAD_FAILED"},
		{name: "storage", err: StorageError("create", errors.New("disk full")), wantStatus: http.StatusInternalServerError, wantCode: "STORAGE_ERROR"},
		{name: "internal fallback", err: ErrInternalServer, wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
		})
	}
}

func newTestHandler() *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandleError_APIError(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/packages/x", nil)
	rec := httptest.NewRecorder()
	h.HandleError(rec, req, NotFoundError("Package x"))

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	errObj := body["error"].(map[string]interface{})
	assert.Equal(t, "NOT_FOUND", errObj["error_code"])
}

func TestHandleError_UnknownErrorBecomesOpaque500(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.HandleError(rec, req, errors.New("secret internal detail"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret internal detail")
}

func TestHandleError_ContextErrors(t *testing.T) {
	h := newTestHandler()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "deadline exceeded", err: context.DeadlineExceeded, wantStatus: http.StatusGatewayTimeout},
		{name: "canceled", err: context.Canceled, wantStatus: 499},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			h.HandleError(rec, req, tt.err)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandleError_NilErrorWritesNothing(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.HandleError(rec, req, nil)

	assert.Empty(t, rec.Body.String())
}
