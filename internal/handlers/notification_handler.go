package handlers

import (
	"net/http"
	"strconv"

	"github.com/driftline/backend/internal/models"
	"github.com/driftline/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		userRepository:         userRepo,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PATCH("/notifications/:id/read", h.MarkAsRead)
	g.PATCH("/notifications/read-all", h.MarkAllAsRead)
}

// EnrichedNotification includes actor info
type EnrichedNotification struct {
	models.Notification
	Actor models.UserCompact `json:"actor"`
}

func (h *NotificationHandler) enrichNotifications(notifications []models.Notification) []EnrichedNotification {
	enriched := make([]EnrichedNotification, len(notifications))
	userCache := make(map[uint]models.UserCompact)

	for i, n := range notifications {
		enriched[i] = EnrichedNotification{Notification: n}
		if n.ActorID == 0 {
			continue
		}
		if actor, ok := userCache[n.ActorID]; ok {
			enriched[i].Actor = actor
		} else if user, err := h.userRepository.GetUserByID(n.ActorID); err == nil {
			compact := user.ToCompact()
			userCache[n.ActorID] = compact
			enriched[i].Actor = compact
		}
	}
	return enriched
}

// GetNotifications returns a page of notifications, newest first
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	limit, offset := paginationParams(c)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	unreadOnly, _ := strconv.ParseBool(c.QueryParam("unread_only"))

	notifications, err := h.notificationRepository.GetByRecipientID(currentUserID(c), limit, offset, unreadOnly)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respondWithMeta(c, http.StatusOK,
		echo.Map{"notifications": h.enrichNotifications(notifications)},
		echo.Map{
			"limit":   limit,
			"offset":  offset,
			"hasMore": len(notifications) == limit,
		})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	count, err := h.notificationRepository.GetUnreadCount(currentUserID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respond(c, http.StatusOK, echo.Map{"count": count})
}

// MarkAsRead marks a notification as read. A second call is a reported
// no-op, never an error.
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	notifID, ok := paramUint(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}

	changed, err := h.notificationRepository.MarkAsRead(notifID, currentUserID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respond(c, http.StatusOK, echo.Map{"changed": changed})
}

// MarkAllAsRead marks all unread notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	affected, err := h.notificationRepository.MarkAllAsRead(currentUserID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respond(c, http.StatusOK, echo.Map{"marked_read": affected})
}
