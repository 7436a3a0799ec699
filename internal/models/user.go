// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Actor is anything that can be checked for capabilities: a loaded User or
// the AnonymousUser stand-in. Callers never branch on "is there a user"
// before checking permissions.
type Actor interface {
	Can(perm Permission) bool
	IsAdministrator() bool
}

// User represents a registered account in the Quill application.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"unique;not null" json:"username"`
	Email        string `gorm:"unique;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Confirmed    bool   `gorm:"default:false" json:"confirmed"`
	// AcceptedTerms records the terms-of-use checkbox at registration.
	AcceptedTerms bool `gorm:"default:false" json:"accepted_terms"`

	RoleID uint  `gorm:"index" json:"role_id"`
	Role   *Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`

	Name     string `json:"name"`
	Bio      string `json:"bio"`
	Location string `json:"location"`
	Avatar   string `json:"avatar"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Posts    []Post    `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
	Comments []Comment `gorm:"foreignKey:AuthorID" json:"comments,omitempty"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// SetPassword hashes the plaintext password with bcrypt and stores the hash.
// The plaintext is never retained.
func (u *User) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashed)
	return nil
}

// VerifyPassword reports whether the plaintext password matches the stored hash.
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Can reports whether the user's role carries the capability bit.
// A user without a loaded role has no permissions.
func (u *User) Can(perm Permission) bool {
	if u == nil || u.Role == nil {
		return false
	}
	return u.Role.HasPermission(perm)
}

// IsAdministrator reports whether the user holds the admin capability.
func (u *User) IsAdministrator() bool {
	return u.Can(PermissionAdmin)
}

// AnonymousUser represents an unauthenticated actor. Every capability check
// answers false.
type AnonymousUser struct{}

// Can always returns false for anonymous actors.
func (AnonymousUser) Can(_ Permission) bool {
	return false
}

// IsAdministrator always returns false for anonymous actors.
func (AnonymousUser) IsAdministrator() bool {
	return false
}
