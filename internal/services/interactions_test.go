package services

import (
	"context"
	"testing"

	"github.com/driftline/backend/internal/apperrors"
	"github.com/driftline/backend/internal/models"
	"github.com/driftline/backend/internal/repositories"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
		&models.Notification{},
		&models.DeviceToken{},
	))
	return db
}

type testEnv struct {
	db            *gorm.DB
	users         repositories.UserRepository
	posts         repositories.PostRepository
	comments      repositories.CommentRepository
	likes         repositories.LikeRepository
	follows       repositories.FollowRepository
	notifications repositories.NotificationRepository
	tokens        repositories.DeviceTokenRepository
	sender        *fakeSender
	interactions  *InteractionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)

	env := &testEnv{
		db:            db,
		users:         repositories.NewPostgresUserRepository(db),
		posts:         repositories.NewPostgresPostRepository(db),
		comments:      repositories.NewPostgresCommentRepository(db),
		likes:         repositories.NewPostgresLikeRepository(db),
		follows:       repositories.NewPostgresFollowRepository(db),
		notifications: repositories.NewPostgresNotificationRepository(db),
		tokens:        repositories.NewPostgresDeviceTokenRepository(db),
		sender:        &fakeSender{},
	}
	dispatcher := NewPushDispatcher(env.tokens, env.sender, zerolog.Nop())
	env.interactions = NewInteractionService(
		env.posts, env.comments, env.likes, env.follows, env.users,
		env.notifications, dispatcher, zerolog.Nop(),
	)
	return env
}

func (e *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:    username,
		DisplayName: username,
		Email:       username + "@example.com",
		IsActive:    true,
	}
	require.NoError(t, e.users.CreateUser(user))
	return user
}

func (e *testEnv) createPost(t *testing.T, authorID uint, content string) *models.Post {
	t.Helper()
	post := &models.Post{AuthorID: authorID, Content: content}
	require.NoError(t, e.posts.CreatePost(post))
	return post
}

func TestLikePostTwiceYieldsOneRow(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	post := env.createPost(t, bob.ID, "hello")

	first, err := env.interactions.LikePost(context.Background(), post.ID, alice.ID)
	require.NoError(t, err)
	require.True(t, first.Liked)
	require.False(t, first.AlreadyLiked)

	second, err := env.interactions.LikePost(context.Background(), post.ID, alice.ID)
	require.NoError(t, err)
	require.True(t, second.Liked)
	require.True(t, second.AlreadyLiked)

	count, err := env.likes.GetLikesCountByPostID(post.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestLikeFansOutToPostOwner(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	post := env.createPost(t, bob.ID, "hello")

	require.NoError(t, env.tokens.RegisterToken(&models.DeviceToken{
		UserID: bob.ID, Token: "bob-device-1", Platform: "android", IsActive: true,
	}))

	result, err := env.interactions.LikePost(context.Background(), post.ID, alice.ID)
	require.NoError(t, err)
	require.True(t, result.Liked)

	notifs, err := env.notifications.GetByRecipientID(bob.ID, 10, 0, false)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	require.Equal(t, models.NotificationTypeLike, notifs[0].Type)
	require.Equal(t, alice.ID, notifs[0].ActorID)
	require.Equal(t, bob.ID, notifs[0].RecipientID)
	require.Equal(t, "post", notifs[0].EntityType)
	require.Equal(t, post.ID, notifs[0].EntityID)

	// A push dispatch to bob's active token was attempted.
	require.Equal(t, [][]string{{"bob-device-1"}}, env.sender.calls)
}

func TestLikeOwnPostDoesNotNotify(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	post := env.createPost(t, alice.ID, "mine")

	_, err := env.interactions.LikePost(context.Background(), post.ID, alice.ID)
	require.NoError(t, err)

	notifs, err := env.notifications.GetByRecipientID(alice.ID, 10, 0, false)
	require.NoError(t, err)
	require.Empty(t, notifs)
	require.Empty(t, env.sender.calls)
}

func TestLikeMissingPost(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	_, err := env.interactions.LikePost(context.Background(), 999, alice.ID)
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestUnlikeAbsentLikeIsReportedNotRemoved(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	post := env.createPost(t, bob.ID, "hello")

	result, err := env.interactions.UnlikePost(context.Background(), post.ID, alice.ID)
	require.NoError(t, err)
	require.False(t, result.Removed)

	_, err = env.interactions.LikePost(context.Background(), post.ID, alice.ID)
	require.NoError(t, err)

	result, err = env.interactions.UnlikePost(context.Background(), post.ID, alice.ID)
	require.NoError(t, err)
	require.True(t, result.Removed)
}

func TestCommentValidation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	post := env.createPost(t, bob.ID, "hello")

	_, err := env.interactions.CreateComment(context.Background(), post.ID, alice.ID, "   ")
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = env.interactions.CreateComment(context.Background(), 999, alice.ID, "nice")
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestCommentOnSoftDeletedPostIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	post := env.createPost(t, bob.ID, "hello")
	require.NoError(t, env.posts.DeletePost(post.ID))

	_, err := env.interactions.CreateComment(context.Background(), post.ID, alice.ID, "nice")
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestCommentFanOutTruncatesPreview(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	post := env.createPost(t, bob.ID, "hello")

	long := ""
	for i := 0; i < 30; i++ {
		long += "abcdefghij"
	}
	_, err := env.interactions.CreateComment(context.Background(), post.ID, alice.ID, long)
	require.NoError(t, err)

	notifs, err := env.notifications.GetByRecipientID(bob.ID, 10, 0, false)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	require.Equal(t, models.NotificationTypeComment, notifs[0].Type)
	// "alice commented: " prefix plus at most 80 chars of preview.
	require.LessOrEqual(t, len([]rune(notifs[0].Message)), len("alice commented: ")+80)
	require.Contains(t, notifs[0].Message, "...")
}

func TestCommentOnOwnPostDoesNotNotify(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	post := env.createPost(t, alice.ID, "mine")

	_, err := env.interactions.CreateComment(context.Background(), post.ID, alice.ID, "replying to myself")
	require.NoError(t, err)

	notifs, err := env.notifications.GetByRecipientID(alice.ID, 10, 0, false)
	require.NoError(t, err)
	require.Empty(t, notifs)
}

func TestDeleteCommentOwnership(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	post := env.createPost(t, bob.ID, "hello")

	comment, err := env.interactions.CreateComment(context.Background(), post.ID, alice.ID, "nice")
	require.NoError(t, err)

	// bob does not own the comment even though he owns the post
	err = env.interactions.DeleteComment(context.Background(), comment.ID, bob.ID)
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindAuthorization))

	// the row is unchanged
	kept, err := env.comments.GetCommentByID(comment.ID)
	require.NoError(t, err)
	require.Equal(t, comment.Content, kept.Content)

	require.NoError(t, env.interactions.DeleteComment(context.Background(), comment.ID, alice.ID))
	_, err = env.comments.GetCommentByID(comment.ID)
	require.Error(t, err)
}

func TestFollowValidation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	err := env.interactions.Follow(context.Background(), alice.ID, alice.ID)
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	err = env.interactions.Follow(context.Background(), alice.ID, 999)
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	require.NoError(t, env.interactions.Follow(context.Background(), alice.ID, bob.ID))

	err = env.interactions.Follow(context.Background(), alice.ID, bob.ID)
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestFollowCreatesNoNotification(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	require.NoError(t, env.interactions.Follow(context.Background(), alice.ID, bob.ID))

	notifs, err := env.notifications.GetByRecipientID(bob.ID, 10, 0, false)
	require.NoError(t, err)
	require.Empty(t, notifs)
}

func TestUnfollowNotFollowingIsConflict(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	err := env.interactions.Unfollow(context.Background(), alice.ID, bob.ID)
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	require.NoError(t, env.interactions.Follow(context.Background(), alice.ID, bob.ID))
	require.NoError(t, env.interactions.Unfollow(context.Background(), alice.ID, bob.ID))
}

func TestPushFailureDoesNotFailInteraction(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	post := env.createPost(t, bob.ID, "hello")

	require.NoError(t, env.tokens.RegisterToken(&models.DeviceToken{
		UserID: bob.ID, Token: "bob-device-1", Platform: "ios", IsActive: true,
	}))
	env.sender.err = errTotalFailure

	// The like is committed and the push failure is swallowed.
	result, err := env.interactions.LikePost(context.Background(), post.ID, alice.ID)
	require.NoError(t, err)
	require.True(t, result.Liked)

	notifs, err := env.notifications.GetByRecipientID(bob.ID, 10, 0, false)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
}

func TestNotificationsAreIndependentAcrossLikeCycles(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	post := env.createPost(t, bob.ID, "hello")

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := env.interactions.LikePost(ctx, post.ID, alice.ID)
		require.NoError(t, err)
		_, err = env.interactions.UnlikePost(ctx, post.ID, alice.ID)
		require.NoError(t, err)
	}

	// Each cycle crossed the "newly liked" boundary, so two rows exist.
	notifs, err := env.notifications.GetByRecipientID(bob.ID, 10, 0, false)
	require.NoError(t, err)
	require.Len(t, notifs, 2)
	// Newest first by id descending.
	require.Greater(t, notifs[0].ID, notifs[1].ID)
}
