package handlers

import (
	"net/http"

	"github.com/driftline/backend/internal/models"
	"github.com/driftline/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// DeviceHandler handles push token registration
type DeviceHandler struct {
	deviceTokenRepository repositories.DeviceTokenRepository
}

// NewDeviceHandler creates a new DeviceHandler
func NewDeviceHandler(tokenRepo repositories.DeviceTokenRepository) *DeviceHandler {
	return &DeviceHandler{deviceTokenRepository: tokenRepo}
}

// RegisterDeviceRoutes registers device token routes
func (h *DeviceHandler) RegisterDeviceRoutes(g *echo.Group) {
	g.POST("/devices", h.RegisterDevice)
	g.DELETE("/devices", h.UnregisterDevices)
}

// RegisterDevice registers (or re-activates) a push token for the
// authenticated user's device
func (h *DeviceHandler) RegisterDevice(c echo.Context) error {
	var req models.RegisterDeviceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token := &models.DeviceToken{
		UserID:   currentUserID(c),
		Token:    req.Token,
		Platform: req.Platform,
		IsActive: true,
	}
	if err := h.deviceTokenRepository.RegisterToken(token); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respond(c, http.StatusCreated, token)
}

// UnregisterDevices deactivates all of the user's device tokens (logout
// from push). Rows are kept.
func (h *DeviceHandler) UnregisterDevices(c echo.Context) error {
	if err := h.deviceTokenRepository.DeactivateTokensForUser(currentUserID(c)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return respondMessage(c, http.StatusOK, "Device tokens deactivated")
}
