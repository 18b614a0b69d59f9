package handlers

import (
	"net/http"
	"strconv"

	"github.com/driftline/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	feed *services.FeedService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feed *services.FeedService) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// RegisterFeedRoutes registers feed-related routes. The per-user feed
// allows anonymous viewers; the home feed requires auth and is registered
// separately by the router.
func (h *FeedHandler) RegisterFeedRoutes(authed, open *echo.Group) {
	authed.GET("/feed", h.GetFeed)
	open.GET("/feed/user/:user_id", h.GetUserPosts)
}

// GetFeed returns the authenticated user's home feed: posts by followed
// authors within the recency window, own posts only with include_own=true.
// The hasMore value is the returned-exactly-limit heuristic and is
// approximate at the exact last page.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	limit, offset := paginationParams(c)
	includeOwn, _ := strconv.ParseBool(c.QueryParam("include_own"))

	page, err := h.feed.GetUserFeed(currentUserID(c), limit, offset, includeOwn)
	if err != nil {
		return respondError(c, err)
	}

	return respondWithMeta(c, http.StatusOK, echo.Map{"posts": page.Posts}, echo.Map{
		"limit":   page.Limit,
		"offset":  page.Offset,
		"hasMore": page.HasMore,
		"window":  page.Window,
	})
}

// GetUserPosts returns a page of one user's posts. Anonymous viewers get
// like state defaulted to false.
func (h *FeedHandler) GetUserPosts(c echo.Context) error {
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
