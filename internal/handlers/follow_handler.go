package handlers

import (
	"net/http"

	"github.com/driftline/backend/internal/repositories"
	"github.com/driftline/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	interactions     *services.InteractionService
	followRepository repositories.FollowRepository
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(interactions *services.InteractionService, followRepo repositories.FollowRepository) *FollowHandler {
	return &FollowHandler{
		interactions:     interactions,
		followRepository: followRepo,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/follows/user/:user_id", h.FollowUser)
	g.DELETE("/follows/user/:user_id", h.UnfollowUser)
	g.GET("/follows/user/:user_id/check", h.CheckFollow)
	g.GET("/follows/user/:user_id/followers", h.GetFollowers)
	g.GET("/follows/user/:user_id/following", h.GetFollowing)
}

// FollowUser follows a user
func (h *FollowHandler) FollowUser(c echo.Context) error {
	targetID, ok := paramUint(c, "user_id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	if err := h.interactions.Follow(c.Request().Context(), currentUserID(c), targetID); err != nil {
		return respondError(c, err)
	}

	return respond(c, http.StatusCreated, echo.Map{"following": true})
}

// UnfollowUser unfollows a user; not following is reported as a conflict
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	targetID, ok := paramUint(c, "user_id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	if err := h.interactions.Unfollow(c.Request().Context(), currentUserID(c), targetID); err != nil {
		return respondError(c, err)
	}

	return respond(c, http.StatusOK, echo.Map{"following": false})
}

// CheckFollow reports whether the authenticated user follows the target
func (h *FollowHandler) CheckFollow(c echo.Context) error {
	targetID, ok := paramUint(c, "user_id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	isFollowing, err := h.followRepository.IsFollowing(currentUserID(c), targetID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respond(c, http.StatusOK, echo.Map{"user_id": targetID, "is_following": isFollowing})
}

// GetFollowers lists a user's followers
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	targetID, ok := paramUint(c, "user_id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	users, err := h.followRepository.GetFollowers(targetID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respond(c, http.StatusOK, users)
}

// GetFollowing lists the users a user follows
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	targetID, ok := paramUint(c, "user_id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	users, err := h.followRepository.GetFollowing(targetID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respond(c, http.StatusOK, users)
}
