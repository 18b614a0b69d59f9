package handlers

import (
	"errors"
	"net/http"

	"github.com/driftline/backend/internal/models"
	"github.com/driftline/backend/internal/repositories"
	"github.com/driftline/backend/internal/services"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	feed           *services.FeedService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, feed *services.FeedService) *PostHandler {
	return &PostHandler{
		postRepository: postRepo,
		userRepository: userRepo,
		feed:           feed,
	}
}

// RegisterPostRoutes registers post-related routes. The per-user listing
// allows anonymous viewers.
func (h *PostHandler) RegisterPostRoutes(authed, open *echo.Group) {
	authed.POST("/posts", h.CreatePost)
	authed.GET("/posts", h.ListOwnPosts)
	authed.GET("/posts/:id", h.GetPost)
	authed.PUT("/posts/:id", h.UpdatePost)
	authed.DELETE("/posts/:id", h.DeletePost)
	open.GET("/posts/user/:user_id", h.ListUserPosts)
}

// ListOwnPosts returns a page of the authenticated user's own posts
func (h *PostHandler) ListOwnPosts(c echo.Context) error {
	userID := currentUserID(c)
	limit, offset := paginationParams(c)

	page, err := h.feed.GetPostsByUser(userID, userID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}

	return respondWithMeta(c, http.StatusOK, echo.Map{"posts": page.Posts}, echo.Map{
		"limit":   page.Limit,
		"offset":  page.Offset,
		"hasMore": page.HasMore,
	})
}

// ListUserPosts returns a page of one user's posts. Anonymous viewers get
// like state defaulted to false.
func (h *PostHandler) ListUserPosts(c echo.Context) error {
	userID, ok := paramUint(c, "user_id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	limit, offset := paginationParams(c)

	page, err := h.feed.GetPostsByUser(userID, currentUserID(c), limit, offset)
	if err != nil {
		return respondError(c, err)
	}

	return respondWithMeta(c, http.StatusOK, echo.Map{"posts": page.Posts}, echo.Map{
		"limit":   page.Limit,
		"offset":  page.Offset,
		"hasMore": page.HasMore,
	})
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post := &models.Post{
		AuthorID: currentUserID(c),
		Content:  req.Content,
		Feeling:  req.Feeling,
	}
	if err := h.postRepository.CreatePost(post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respond(c, http.StatusCreated, post)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	id, ok := paramUint(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	post, err := h.postRepository.GetPostByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respond(c, http.StatusOK, post)
}

// UpdatePost updates an existing post. Only the author may update it.
func (h *PostHandler) UpdatePost(c echo.Context) error {
	id, ok := paramUint(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.postRepository.GetPostByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if post.AuthorID != currentUserID(c) {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this post")
	}

	if req.Content != "" {
		post.Content = req.Content
	}
	if req.Feeling != "" {
		post.Feeling = req.Feeling
	}

	if err := h.postRepository.UpdatePost(post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return respond(c, http.StatusOK, post)
}

// DeletePost soft-deletes a post. Only the author may delete it.
func (h *PostHandler) DeletePost(c echo.Context) error {
	id, ok := paramUint(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	post, err := h.postRepository.GetPostByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if post.AuthorID != currentUserID(c) {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this post")
	}

	if err := h.postRepository.DeletePost(id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
