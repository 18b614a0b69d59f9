package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/driftline/backend/internal/apperrors"
	"github.com/driftline/backend/internal/models"
	"github.com/driftline/backend/internal/repositories"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// commentPreviewLimit caps the comment excerpt carried in notifications.
const commentPreviewLimit = 80

// InteractionService implements the like / comment / follow actions and
// their notification fan-out. The primary write and the notification append
// are separate autocommit statements: a crash between them drops the
// notification. Push is strictly after the primary write and best-effort.
type InteractionService struct {
	posts         repositories.PostRepository
	comments      repositories.CommentRepository
	likes         repositories.LikeRepository
	follows       repositories.FollowRepository
	users         repositories.UserRepository
	notifications repositories.NotificationRepository
	push          *PushDispatcher
	log           zerolog.Logger
}

// NewInteractionService creates a new InteractionService
func NewInteractionService(
	postRepo repositories.PostRepository,
	commentRepo repositories.CommentRepository,
	likeRepo repositories.LikeRepository,
	followRepo repositories.FollowRepository,
	userRepo repositories.UserRepository,
	notifRepo repositories.NotificationRepository,
	push *PushDispatcher,
	log zerolog.Logger,
) *InteractionService {
	return &InteractionService{
		posts:         postRepo,
		comments:      commentRepo,
		likes:         likeRepo,
		follows:       followRepo,
		users:         userRepo,
		notifications: notifRepo,
		push:          push,
		log:           log,
	}
}

// LikeResult distinguishes a fresh like from a repeat; the repeat is a
// no-op signal, not an error.
type LikeResult struct {
	Liked        bool `json:"liked"`
	AlreadyLiked bool `json:"already_liked"`
}

// LikePost inserts the (post, user) like pair with insert-or-ignore
// semantics and fans out to the post owner when the like is new.
func (s *InteractionService) LikePost(ctx context.Context, postID, actorID uint) (*LikeResult, error) {
	post, err := s.posts.GetPostByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Post not found")
		}
		return nil, apperrors.Internal("Failed to load post", err)
	}

	created, err := s.likes.CreateLike(&models.Like{PostID: postID, UserID: actorID})
	if err != nil {
		return nil, apperrors.Internal("Failed to create like", err)
	}
	if !created {
		return &LikeResult{Liked: true, AlreadyLiked: true}, nil
	}

	if actorID != post.AuthorID {
		s.fanOut(ctx, fanOutEvent{
			RecipientID: post.AuthorID,
			ActorID:     actorID,
			Type:        models.NotificationTypeLike,
			EntityType:  "post",
			EntityID:    post.ID,
			Action:      "liked your post",
		})
	}

	return &LikeResult{Liked: true}, nil
}

// UnlikeResult reports whether a like row was actually removed.
type UnlikeResult struct {
	Removed bool `json:"removed"`
}

// UnlikePost deletes the (post, user) pair if present. Absence is reported
// as not removed, not as an error.
func (s *InteractionService) UnlikePost(ctx context.Context, postID, actorID uint) (*UnlikeResult, error) {
	if _, err := s.posts.GetPostByID(postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Post not found")
		}
		return nil, apperrors.Internal("Failed to load post", err)
	}

	removed, err := s.likes.DeleteLike(postID, actorID)
	if err != nil {
		return nil, apperrors.Internal("Failed to delete like", err)
	}
	return &UnlikeResult{Removed: removed}, nil
}

// CreateComment persists a comment on a post, then fans out to the post
// owner with a truncated preview of the text.
func (s *InteractionService) CreateComment(ctx context.Context, postID, actorID uint, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.Validation("Comment text must not be empty")
	}

	post, err := s.posts.GetPostByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Post not found")
		}
		return nil, apperrors.Internal("Failed to load post", err)
	}

	comment := &models.Comment{PostID: postID, UserID: actorID, Content: content}
	if err := s.comments.CreateComment(comment); err != nil {
		return nil, apperrors.Internal("Failed to create comment", err)
	}

	if actorID != post.AuthorID {
		s.fanOut(ctx, fanOutEvent{
			RecipientID: post.AuthorID,
			ActorID:     actorID,
			Type:        models.NotificationTypeComment,
			EntityType:  "post",
			EntityID:    post.ID,
			Action:      "commented: " + truncatePreview(content),
		})
	}

	return comment, nil
}

// DeleteComment soft-deletes a comment. Only the comment's author may
// delete it.
func (s *InteractionService) DeleteComment(ctx context.Context, commentID, actorID uint) error {
	comment, err := s.comments.GetCommentByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Comment not found")
		}
		return apperrors.Internal("Failed to load comment", err)
	}

	if comment.UserID != actorID {
		return apperrors.Authorization("You are not authorized to delete this comment")
	}

	if err := s.comments.DeleteComment(commentID); err != nil {
		return apperrors.Internal("Failed to delete comment", err)
	}
	return nil
}

// Follow creates the directed follow edge. Following creates no
// notification; it is entity creation only.
func (s *InteractionService) Follow(ctx context.Context, followerID, followingID uint) error {
	if followerID == followingID {
		return apperrors.Validation("Cannot follow yourself")
	}

	if _, err := s.users.GetUserByID(followingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("User not found")
		}
		return apperrors.Internal("Failed to load user", err)
	}

	isFollowing, err := s.follows.IsFollowing(followerID, followingID)
	if err != nil {
		return apperrors.Internal("Failed to check follow state", err)
	}
	if isFollowing {
		return apperrors.Conflict("Already following this user")
	}

	if err := s.follows.CreateFollow(&models.Follow{FollowerID: followerID, FollowingID: followingID}); err != nil {
		// A concurrent duplicate slips past the IsFollowing check and hits
		// the unique index instead.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Conflict("Already following this user")
		}
		return apperrors.Internal("Failed to create follow", err)
	}
	return nil
}

// Unfollow removes the follow edge; not following is a conflict, never a
// silent success.
func (s *InteractionService) Unfollow(ctx context.Context, followerID, followingID uint) error {
	deleted, err := s.follows.DeleteFollow(followerID, followingID)
	if err != nil {
		return apperrors.Internal("Failed to delete follow", err)
	}
	if !deleted {
		return apperrors.Conflict("Not following this user")
	}
	return nil
}

// fanOutEvent describes one notification + push pair. The stored message is
// the actor's display name followed by Action.
type fanOutEvent struct {
	RecipientID uint
	ActorID     uint
	Type        string
	EntityType  string
	EntityID    uint
	Action      string
}

// fanOut appends the in-app notification row, then attempts push delivery.
// Failures here are logged and swallowed: the primary fact is already
// committed and must not be rolled back.
func (s *InteractionService) fanOut(ctx context.Context, ev fanOutEvent) {
	actorName := "Someone"
	if actor, err := s.users.GetUserByID(ev.ActorID); err == nil {
		if actor.DisplayName != "" {
			actorName = actor.DisplayName
		} else {
			actorName = actor.Username
		}
	}
	message := actorName + " " + ev.Action

	notif := &models.Notification{
		RecipientID: ev.RecipientID,
		ActorID:     ev.ActorID,
		Type:        ev.Type,
		EntityType:  ev.EntityType,
		EntityID:    ev.EntityID,
		Message:     message,
	}
	if err := s.notifications.CreateNotification(notif); err != nil {
		s.log.Error().Err(err).
			Uint("recipient_id", ev.RecipientID).
			Str("type", ev.Type).
			Msg("Failed to create notification")
		return
	}

	if s.push == nil {
		return
	}
	result, err := s.push.SendToUser(ctx, ev.RecipientID, PushMessage{
		Title: "Driftline",
		Body:  message,
		Data: map[string]string{
			"type":      ev.Type,
			"entity_id": fmt.Sprintf("%d", ev.EntityID),
		},
	})
	if err != nil {
		s.log.Error().Err(err).
			Uint("recipient_id", ev.RecipientID).
			Str("type", ev.Type).
			Msg("Push dispatch failed")
		return
	}
	if !result.Skipped && result.Failed > 0 {
		s.log.Warn().
			Uint("recipient_id", ev.RecipientID).
			Int("attempted", result.Attempted).
			Int("failed", result.Failed).
			Msg("Push delivered with partial failures")
	}
}

// truncatePreview shortens comment text to commentPreviewLimit characters.
func truncatePreview(content string) string {
	runes := []rune(content)
	if len(runes) <= commentPreviewLimit {
		return content
	}
	return string(runes[:commentPreviewLimit-3]) + "..."
}
