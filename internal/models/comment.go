// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"quill/internal/render"
)

// Comment represents a comment on a post. Disabled comments stay stored but
// are hidden from regular readers by moderation.
type Comment struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Body     string `gorm:"type:text;not null" json:"body"`
	BodyHTML string `gorm:"type:text" json:"body_html"`
	Disabled bool   `gorm:"default:false" json:"disabled"`

	PostID   uint `gorm:"not null;index" json:"post_id"`
	Post     Post `gorm:"foreignKey:PostID" json:"post,omitempty"`
	AuthorID uint `gorm:"not null;index" json:"author_id"`
	Author   User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Comment) TableName() string {
	return "comments"
}

// SetBody stores the raw body and derives the sanitized rendering.
func (c *Comment) SetBody(body string) {
	c.Body = body
	c.BodyHTML = render.SafeHTML(body)
}
