package handlers

import (
	"net/http"

	"github.com/driftline/backend/internal/repositories"
	"github.com/driftline/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	interactions   *services.InteractionService
	likeRepository repositories.LikeRepository
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(interactions *services.InteractionService, likeRepo repositories.LikeRepository) *LikeHandler {
	return &LikeHandler{
		interactions:   interactions,
		likeRepository: likeRepo,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/likes/post/:post_id", h.LikePost)
	g.DELETE("/likes/post/:post_id", h.UnlikePost)
	g.GET("/likes/post/:post_id", h.GetLikesForPost)
	g.GET("/likes/post/:post_id/check", h.CheckLike)
}

// LikePost likes a post. A repeat like is reported as already_liked, not an
// error.
func (h *LikeHandler) LikePost(c echo.Context) error {
	postID, ok := paramUint(c, "post_id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	result, err := h.interactions.LikePost(c.Request().Context(), postID, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	status := http.StatusCreated
	if result.AlreadyLiked {
		status = http.StatusOK
	}
	return respond(c, status, result)
}

// UnlikePost removes a like; absence is reported, not an error
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	postID, ok := paramUint(c, "post_id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	result, err := h.interactions.UnlikePost(c.Request().Context(), postID, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, http.StatusOK, result)
}

// GetLikesForPost retrieves the likes and like count for a post
func (h *LikeHandler) GetLikesForPost(c echo.Context) error {
	postID, ok := paramUint(c, "post_id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	likes, err := h.likeRepository.GetLikesByPostID(postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respond(c, http.StatusOK, echo.Map{
		"post_id":     postID,
		"likes":       likes,
		"likes_count": len(likes),
	})
}

// CheckLike reports whether the authenticated user has liked a post
func (h *LikeHandler) CheckLike(c echo.Context) error {
	postID, ok := paramUint(c, "post_id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	hasLiked, err := h.likeRepository.HasUserLikedPost(postID, currentUserID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respond(c, http.StatusOK, echo.Map{"post_id": postID, "has_liked": hasLiked})
}
