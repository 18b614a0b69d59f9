package repositories

import (
	"github.com/driftline/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceTokenRepository defines the interface for push token operations
type DeviceTokenRepository interface {
	RegisterToken(token *models.DeviceToken) error
	GetActiveTokensByUserID(userID uint) ([]models.DeviceToken, error)
	DeactivateToken(token string) error
	DeactivateTokensForUser(userID uint) error
}

// PostgresDeviceTokenRepository implements DeviceTokenRepository for PostgreSQL
type PostgresDeviceTokenRepository struct {
	db *gorm.DB
}

// NewPostgresDeviceTokenRepository creates a new PostgresDeviceTokenRepository
func NewPostgresDeviceTokenRepository(db *gorm.DB) *PostgresDeviceTokenRepository {
	return &PostgresDeviceTokenRepository{db: db}
}

// RegisterToken upserts a device token. Re-registering an existing token
// re-activates it and moves it to the registering user.
func (r *PostgresDeviceTokenRepository) RegisterToken(token *models.DeviceToken) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform", "is_active", "updated_at"}),
	}).Create(token).Error
}

// GetActiveTokensByUserID returns the user's active device tokens
func (r *PostgresDeviceTokenRepository) GetActiveTokensByUserID(userID uint) ([]models.DeviceToken, error) {
	var tokens []models.DeviceToken
	err := r.db.Where("user_id = ? AND is_active = ?", userID, true).Find(&tokens).Error
	return tokens, err
}

// DeactivateToken marks a single token inactive. The row is kept to
// preserve the audit trail.
func (r *PostgresDeviceTokenRepository) DeactivateToken(token string) error {
	return r.db.Model(&models.DeviceToken{}).Where("token = ?", token).Update("is_active", false).Error
}

// DeactivateTokensForUser marks all of a user's tokens inactive (logout)
func (r *PostgresDeviceTokenRepository) DeactivateTokensForUser(userID uint) error {
	return r.db.Model(&models.DeviceToken{}).Where("user_id = ?", userID).Update("is_active", false).Error
}
