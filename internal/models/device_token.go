package models

import "time"

// DeviceToken represents a user's registered device for push notifications.
// Supports multiple devices per user. Tokens the push provider reports as
// permanently invalid are deactivated, never deleted, to preserve the audit
// trail.
type DeviceToken struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"-" gorm:"index"`
	Token     string    `json:"-" gorm:"uniqueIndex;not null"` // FCM token, hidden from JSON
	Platform  string    `json:"platform" gorm:"size:20"`       // "ios", "android", "web"
	IsActive  bool      `json:"is_active" gorm:"default:true;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegisterDeviceRequest is the request body for registering a device token.
type RegisterDeviceRequest struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"required,oneof=ios android web"`
}
