package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification types created by the interaction handlers.
const (
	NotificationTypeLike    = "like"
	NotificationTypeComment = "comment"
	NotificationTypeFollow  = "follow"
)

// Notification is an append-only in-app notification row. After creation the
// only mutations are setting ReadAt and soft deletion.
type Notification struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	RecipientID uint           `json:"recipient_id" gorm:"index"`
	ActorID     uint           `json:"actor_id,omitempty" gorm:"index"`
	Type        string         `json:"type" gorm:"size:30;index"`
	EntityType  string         `json:"entity_type,omitempty" gorm:"size:20"`
	EntityID    uint           `json:"entity_id,omitempty"`
	Message     string         `json:"message,omitempty"`
	ReadAt      *time.Time     `json:"read_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at" gorm:"index"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
