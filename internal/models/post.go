package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a user's post. Deletion is a soft delete so comments and likes
// keep their referential history.
type Post struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	AuthorID  uint           `json:"author_id" gorm:"index"`
	Content   string         `json:"content"`
	Feeling   string         `json:"feeling,omitempty" gorm:"size:50"`
	CreatedAt time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
	Feeling string `json:"feeling,omitempty" validate:"omitempty,max=50"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Content string `json:"content,omitempty" validate:"omitempty,min=1,max=500"`
	Feeling string `json:"feeling,omitempty" validate:"omitempty,max=50"`
}
