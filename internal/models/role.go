// Package models contains data structures for the application's domain models.
package models

// Permission is a capability bit combinable by bitwise OR.
type Permission uint

const (
	// PermissionFollow allows following other users.
	PermissionFollow Permission = 1
	// PermissionComment allows commenting on posts.
	PermissionComment Permission = 2
	// PermissionWrite allows authoring posts.
	PermissionWrite Permission = 4
	// PermissionModerate allows moderating other users' comments.
	PermissionModerate Permission = 8
	// PermissionAdmin grants full administrative access.
	PermissionAdmin Permission = 16
)

// Role groups a set of permissions under a named level of access.
type Role struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"unique;not null" json:"name"`
	Default     bool   `gorm:"default:false;index" json:"default"`
	Permissions uint   `json:"permissions"`

	Users []User `gorm:"foreignKey:RoleID" json:"users,omitempty"`
}

// TableName specifies the table name for GORM
func (Role) TableName() string {
	return "roles"
}

// Role names referenced throughout the application.
const (
	RoleUser          = "User"
	RoleModerator     = "Moderator"
	RoleAdministrator = "Administrator"
)

// RoleDefinition is one row of the provisioning table: a role name, the exact
// permission set it should carry, and whether it is the default role.
type RoleDefinition struct {
	Name        string
	Permissions []Permission
	Default     bool
}

// DefaultRoleTable is the source of truth for role provisioning. Applying it
// is idempotent: each named role's bitmask is reset to exactly this set.
var DefaultRoleTable = []RoleDefinition{
	{Name: RoleUser, Permissions: []Permission{PermissionFollow, PermissionComment, PermissionWrite}, Default: true},
	{Name: RoleModerator, Permissions: []Permission{PermissionFollow, PermissionComment, PermissionWrite, PermissionModerate}},
	{Name: RoleAdministrator, Permissions: []Permission{PermissionFollow, PermissionComment, PermissionWrite, PermissionModerate, PermissionAdmin}},
}

// AddPermission sets the given capability bit.
func (r *Role) AddPermission(perm Permission) {
	if !r.HasPermission(perm) {
		r.Permissions += uint(perm)
	}
}

// RemovePermission clears the given capability bit.
func (r *Role) RemovePermission(perm Permission) {
	if r.HasPermission(perm) {
		r.Permissions -= uint(perm)
	}
}

// ResetPermissions clears the entire bitmask.
func (r *Role) ResetPermissions() {
	r.Permissions = 0
}

// HasPermission reports whether the capability bit is set.
func (r *Role) HasPermission(perm Permission) bool {
	return r.Permissions&uint(perm) == uint(perm)
}
