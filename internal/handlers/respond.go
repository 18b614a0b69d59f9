package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/driftline/backend/internal/apperrors"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Every endpoint answers with the same envelope:
// {success, message?, data?, meta?} on success and
// {success:false, message, code} on failure.

func respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func respondWithMeta(c echo.Context, status int, data, meta interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data, "meta": meta})
}

func respondMessage(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"success": true, "message": message})
}

// statusForKind maps the error taxonomy to HTTP status codes in one place.
func statusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindAuthorization:
		return http.StatusForbidden
	case apperrors.KindConflict:
		return http.StatusConflict
	case apperrors.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError converts any error into the failure envelope. Unclassified
// errors become a generic 500; the cause is logged, never user-exposed.
func respondError(c echo.Context, err error) error {
	kind := apperrors.KindOf(err)
	status := statusForKind(kind)

	message := err.Error()
	if kind == apperrors.KindInternal {
		log.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
		message = "Internal server error"
	}

	return c.JSON(status, echo.Map{
		"success": false,
		"message": message,
		"code":    string(kind),
	})
}

// kindForStatus is the inverse of statusForKind, for errors raised as plain
// HTTP errors (bind failures, validator output, auth middleware).
func kindForStatus(status int) apperrors.Kind {
	switch status {
	case http.StatusBadRequest:
		return apperrors.KindValidation
	case http.StatusNotFound:
		return apperrors.KindNotFound
	case http.StatusForbidden:
		return apperrors.KindAuthorization
	case http.StatusConflict:
		return apperrors.KindConflict
	case http.StatusUnauthorized:
		return apperrors.KindUnauthorized
	default:
		return apperrors.KindInternal
	}
}

// HTTPErrorHandler renders every error Echo sees in the failure envelope, so
// bind, validation and middleware errors look the same as service errors.
// Registered as e.HTTPErrorHandler.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := fmt.Sprintf("%v", httpErr.Message)
		kind := kindForStatus(httpErr.Code)
		if httpErr.Code == http.StatusInternalServerError {
			log.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
			message = "Internal server error"
		}
		_ = c.JSON(httpErr.Code, echo.Map{
			"success": false,
			"message": message,
			"code":    string(kind),
		})
		return
	}

	_ = respondError(c, err)
}
