package services

import (
	"errors"
	"time"

	"github.com/driftline/backend/internal/apperrors"
	"github.com/driftline/backend/internal/models"
	"github.com/driftline/backend/internal/repositories"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// FeedPost is a post annotated with its author and the viewer's like state.
type FeedPost struct {
	models.Post
	Author       models.UserCompact `json:"author"`
	UserHasLiked bool               `json:"user_has_liked"`
}

// FeedPage is one page of feed results. HasMore is the "returned exactly
// limit rows" heuristic: it can be wrong on the exact last page. That quirk
// is deliberate; do not replace it with a count query.
type FeedPage struct {
	Posts   []FeedPost `json:"posts"`
	Limit   int        `json:"limit"`
	Offset  int        `json:"offset"`
	HasMore bool       `json:"has_more"`
	Window  string     `json:"window"`
}

// FeedService assembles the followed-authors feed and per-user post pages.
type FeedService struct {
	posts   repositories.PostRepository
	follows repositories.FollowRepository
	likes   repositories.LikeRepository
	users   repositories.UserRepository

	window       time.Duration
	defaultLimit int
	maxLimit     int
}

// NewFeedService creates a new FeedService. window bounds feed recency; the
// response labels it but the value is a tunable, not a literal day.
func NewFeedService(
	postRepo repositories.PostRepository,
	followRepo repositories.FollowRepository,
	likeRepo repositories.LikeRepository,
	userRepo repositories.UserRepository,
	window time.Duration,
	defaultLimit, maxLimit int,
) *FeedService {
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	if maxLimit <= 0 {
		maxLimit = 100
	}
	return &FeedService{
		posts:        postRepo,
		follows:      followRepo,
		likes:        likeRepo,
		users:        userRepo,
		window:       window,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// clampPage applies the pagination rules: limit in [1,maxLimit] with a
// default, offset >= 0.
func (s *FeedService) clampPage(limit, offset int) (int, int) {
	if limit < 1 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// GetUserFeed returns posts by users the viewer follows, newest first,
// restricted to the recency window. Own posts appear only when includeOwn
// is set; self-follow is impossible so they can never arrive otherwise.
func (s *FeedService) GetUserFeed(viewerID uint, limit, offset int, includeOwn bool) (*FeedPage, error) {
	limit, offset = s.clampPage(limit, offset)

	authorIDs, err := s.follows.GetFollowingIDs(viewerID)
	if err != nil {
		return nil, apperrors.Internal("Failed to load followed users", err)
	}
	if includeOwn {
		authorIDs = append(authorIDs, viewerID)
	}

	since := time.Now().Add(-s.window)
	posts, err := s.posts.GetFeedPosts(authorIDs, since, limit, offset)
	if err != nil {
		return nil, apperrors.Internal("Failed to load feed posts", err)
	}

	feedPosts, err := s.annotate(posts, viewerID)
	if err != nil {
		return nil, err
	}

	return &FeedPage{
		Posts:   feedPosts,
		Limit:   limit,
		Offset:  offset,
		HasMore: len(posts) == limit,
		Window:  s.window.String(),
	}, nil
}

// GetPostsByUser returns a page of one user's posts. viewerID 0 means
// anonymous: like state defaults to false.
func (s *FeedService) GetPostsByUser(userID, viewerID uint, limit, offset int) (*FeedPage, error) {
	limit, offset = s.clampPage(limit, offset)

	if _, err := s.users.GetUserByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Internal("Failed to load user", err)
	}

	posts, err := s.posts.GetPostsByAuthor(userID, limit, offset)
	if err != nil {
		return nil, apperrors.Internal("Failed to load posts", err)
	}

	feedPosts, err := s.annotate(posts, viewerID)
	if err != nil {
		return nil, err
	}

	return &FeedPage{
		Posts:   feedPosts,
		Limit:   limit,
		Offset:  offset,
		HasMore: len(posts) == limit,
	}, nil
}

// annotate attaches compact author profiles and, for a known viewer, the
// per-post like state.
func (s *FeedService) annotate(posts []models.Post, viewerID uint) ([]FeedPost, error) {
	authorIDs := lo.Uniq(lo.Map(posts, func(p models.Post, _ int) uint { return p.AuthorID }))

	authors, err := s.users.GetUserByIDs(authorIDs)
	if err != nil {
		return nil, apperrors.Internal("Failed to load post authors", err)
	}
	authorMap := make(map[uint]models.UserCompact, len(authors))
	for _, u := range authors {
		authorMap[u.ID] = u.ToCompact()
	}

	likedMap := make(map[uint]bool)
	if viewerID > 0 {
		postIDs := lo.Map(posts, func(p models.Post, _ int) uint { return p.ID })
		likedMap, err = s.likes.GetLikedPostIDs(viewerID, postIDs)
		if err != nil {
			return nil, apperrors.Internal("Failed to load like state", err)
		}
	}

	feedPosts := make([]FeedPost, len(posts))
	for i, p := range posts {
		feedPosts[i] = FeedPost{
			Post:         p,
			Author:       authorMap[p.AuthorID],
			UserHasLiked: likedMap[p.ID],
		}
	}
	return feedPosts, nil
}
