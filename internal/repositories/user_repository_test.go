package repositories

import (
	"testing"

	"github.com/driftline/backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestLocalUsersWithoutExternalIdentityDoNotCollide(t *testing.T) {
	repo := NewPostgresUserRepository(newTestDB(t))

	// Locally registered accounts have no external subject id; the empty
	// values must not trip the unique index.
	require.NoError(t, repo.CreateUser(&models.User{
		Username: "alice", Email: "alice@example.com", IsActive: true,
	}))
	require.NoError(t, repo.CreateUser(&models.User{
		Username: "bob", Email: "bob@example.com", IsActive: true,
	}))
}

func TestProviderUsersWithoutEmailDoNotCollide(t *testing.T) {
	repo := NewPostgresUserRepository(newTestDB(t))

	// Identity-provider tokens may lack an email claim.
	require.NoError(t, repo.CreateUser(&models.User{
		Username: "ext-1", FirebaseUID: "uid-1", IsActive: true,
	}))
	require.NoError(t, repo.CreateUser(&models.User{
		Username: "ext-2", FirebaseUID: "uid-2", IsActive: true,
	}))
}

func TestDuplicateNonEmptyIdentityIsRejected(t *testing.T) {
	repo := NewPostgresUserRepository(newTestDB(t))

	require.NoError(t, repo.CreateUser(&models.User{
		Username: "alice", Email: "alice@example.com", IsActive: true,
	}))
	err := repo.CreateUser(&models.User{
		Username: "alice2", Email: "alice@example.com", IsActive: true,
	})
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	require.NoError(t, repo.CreateUser(&models.User{
		Username: "ext-1", FirebaseUID: "uid-1", IsActive: true,
	}))
	err = repo.CreateUser(&models.User{
		Username: "ext-2", FirebaseUID: "uid-1", IsActive: true,
	})
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
