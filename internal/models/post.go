// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"quill/internal/render"

	"gorm.io/gorm"
)

// Post represents a published article in the Quill application.
//
// Title and body are never assigned directly by callers: SetTitle keeps the
// slug in step with the title, and SetBody keeps BodyHTML a sanitized
// derivative of Body. BodyHTML is the only field ever rendered.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"not null" json:"title"`
	Slug     string `gorm:"index" json:"slug"`
	Body     string `gorm:"type:text;not null" json:"body"`
	BodyHTML string `gorm:"type:text" json:"body_html"`

	AuthorID uint `gorm:"not null;index" json:"author_id"`
	Author   User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Comments []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
}

// TableName specifies the table name for GORM
func (Post) TableName() string {
	return "posts"
}

// SetTitle assigns the title and recomputes the slug, but only when the slug
// is empty or the title actually changed. Reassigning the same title leaves
// an established slug untouched.
func (p *Post) SetTitle(title string) {
	changed := p.Title != title
	p.Title = title
	if p.Slug == "" || changed {
		p.Slug = render.Slugify(title)
	}
}

// SetBody stores the raw body and derives the sanitized rendering.
func (p *Post) SetBody(body string) {
	p.Body = body
	p.BodyHTML = render.SafeHTML(body)
}

// PostInput is the external JSON shape accepted when creating a post.
type PostInput struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// PostFromInput constructs a Post from external input. Both title and body
// are required; a missing field fails with a validation error naming it.
func PostFromInput(in PostInput, authorID uint) (*Post, error) {
	if in.Title == "" {
		return nil, NewValidationError("post does not have a title")
	}
	if in.Body == "" {
		return nil, NewValidationError("post does not have a body")
	}
	post := &Post{AuthorID: authorID}
	post.SetTitle(in.Title)
	post.SetBody(in.Body)
	return post, nil
}
