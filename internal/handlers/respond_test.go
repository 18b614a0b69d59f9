package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/driftline/backend/internal/apperrors"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type failureEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func recordError(t *testing.T, err error) (int, failureEnvelope) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	HTTPErrorHandler(err, e.NewContext(req, rec))

	var body failureEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestErrorHandlerEnvelopesHTTPErrors(t *testing.T) {
	status, body := recordError(t, echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID"))
	require.Equal(t, http.StatusBadRequest, status)
	require.False(t, body.Success)
	require.Equal(t, "Invalid post ID", body.Message)
	require.Equal(t, string(apperrors.KindValidation), body.Code)
}

func TestErrorHandlerEnvelopesUnauthorized(t *testing.T) {
	status, body := recordError(t, echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token"))
	require.Equal(t, http.StatusUnauthorized, status)
	require.False(t, body.Success)
	require.Equal(t, string(apperrors.KindUnauthorized), body.Code)
}

func TestErrorHandlerEnvelopesTaggedErrors(t *testing.T) {
	status, body := recordError(t, apperrors.NotFound("Post not found"))
	require.Equal(t, http.StatusNotFound, status)
	require.False(t, body.Success)
	require.Equal(t, "Post not found", body.Message)
	require.Equal(t, string(apperrors.KindNotFound), body.Code)
}

func TestErrorHandlerMasksInternalDetails(t *testing.T) {
	status, body := recordError(t, echo.NewHTTPError(http.StatusInternalServerError, "pq: connection reset by peer"))
	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, "Internal server error", body.Message)
	require.Equal(t, string(apperrors.KindInternal), body.Code)
}
