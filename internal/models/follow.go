// Package models contains data structures for the application's domain models.
package models

import "time"

// Follow is one edge of the social graph. The composite primary key doubles
// as the unique constraint that backstops idempotent follow requests.
// A user following themselves is valid and mandatory: the self-follow edge
// is what makes a user's own posts appear in their followed feed.
type Follow struct {
	FollowerID uint      `gorm:"primaryKey;autoIncrement:false" json:"follower_id"`
	FollowedID uint      `gorm:"primaryKey;autoIncrement:false" json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`

	Follower User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Followed User `gorm:"foreignKey:FollowedID" json:"followed,omitempty"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}
