package handlers

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/driftline/backend/internal/models"
	"github.com/driftline/backend/internal/repositories"
	"github.com/driftline/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newPostHandlerEnv(t *testing.T) (*PostHandler, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Like{},
		&models.Follow{},
	))

	postRepo := repositories.NewPostgresPostRepository(db)
	userRepo := repositories.NewPostgresUserRepository(db)
	feed := services.NewFeedService(
		postRepo,
		repositories.NewPostgresFollowRepository(db),
		repositories.NewPostgresLikeRepository(db),
		userRepo,
		24*time.Hour, 20, 100,
	)
	return NewPostHandler(postRepo, userRepo, feed), db
}

func newGetContext(path string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)
	return c, rec
}

func TestListUserPostsAnonymousViewer(t *testing.T) {
	h, db := newPostHandlerEnv(t)
	author := &models.User{Username: "author", IsActive: true}
	require.NoError(t, db.Create(author).Error)
	require.NoError(t, db.Create(&models.Post{AuthorID: author.ID, Content: "hello from author"}).Error)

	c, rec := newGetContext("/posts/user/:user_id")
	c.SetParamNames("user_id")
	c.SetParamValues(strconv.Itoa(int(author.ID)))

	require.NoError(t, h.ListUserPosts(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "hello from author")
	require.Contains(t, rec.Body.String(), `"user_has_liked":false`)
}

func TestListUserPostsMissingUser(t *testing.T) {
	h, _ := newPostHandlerEnv(t)

	c, rec := newGetContext("/posts/user/:user_id")
	c.SetParamNames("user_id")
	c.SetParamValues("999")

	require.NoError(t, h.ListUserPosts(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), `"success":false`)
	require.Contains(t, rec.Body.String(), "not_found")
}

func TestListOwnPostsReturnsOnlyCallerPosts(t *testing.T) {
	h, db := newPostHandlerEnv(t)
	me := &models.User{Username: "me", IsActive: true}
	other := &models.User{Username: "other", IsActive: true}
	require.NoError(t, db.Create(me).Error)
	require.NoError(t, db.Create(other).Error)
	require.NoError(t, db.Create(&models.Post{AuthorID: me.ID, Content: "mine"}).Error)
	require.NoError(t, db.Create(&models.Post{AuthorID: other.ID, Content: "theirs"}).Error)

	c, rec := newGetContext("/posts")
	c.Set("userID", me.ID)

	require.NoError(t, h.ListOwnPosts(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "mine")
	require.NotContains(t, rec.Body.String(), "theirs")
}
