package handlers

import (
	"net/http"

	"github.com/driftline/backend/internal/models"
	"github.com/driftline/backend/internal/repositories"
	"github.com/driftline/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	interactions      *services.InteractionService
	commentRepository repositories.CommentRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(interactions *services.InteractionService, commentRepo repositories.CommentRepository) *CommentHandler {
	return &CommentHandler{
		interactions:      interactions,
		commentRepository: commentRepo,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/comments/post/:post_id", h.CreateComment)
	g.GET("/comments/post/:post_id", h.GetCommentsByPostID)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CreateComment creates a new comment on a post and fans out a notification
// to the post owner
func (h *CommentHandler) CreateComment(c echo.Context) error {
	postID, ok := paramUint(c, "post_id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	comment, err := h.interactions.CreateComment(c.Request().Context(), postID, currentUserID(c), req.Content)
	if err != nil {
		return respondError(c, err)
	}

	return respond(c, http.StatusCreated, comment)
}

// GetCommentsByPostID retrieves a page of comments for a post
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	postID, ok := paramUint(c, "post_id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	limit, offset := paginationParams(c)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	comments, err := h.commentRepository.GetCommentsByPostID(postID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respondWithMeta(c, http.StatusOK, comments, echo.Map{
		"limit":   limit,
		"offset":  offset,
		"hasMore": len(comments) == limit,
	})
}

// DeleteComment deletes a comment; only its author may do so
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	commentID, ok := paramUint(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	if err := h.interactions.DeleteComment(c.Request().Context(), commentID, currentUserID(c)); err != nil {
		return respondError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
