package model

import "time"

// Role is the closed set of access levels a user can hold.
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleEditor Role = "Editor"
	RoleViewer Role = "Viewer"
)

// Roles lists every valid role, in descending order of privilege.
var Roles = []Role{RoleAdmin, RoleEditor, RoleViewer}

// ParseRole returns the matching Role for a raw string, or false when the
// value is not part of the closed set.
func ParseRole(value string) (Role, bool) {
	for _, role := range Roles {
		if string(role) == value {
			return role, true
		}
	}
	return "", false
}

// User represents an account in the core store.
type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Username     string     `json:"username" gorm:"type:varchar(150);uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"type:varchar(255);not null"`
	Role         Role       `json:"role" gorm:"type:varchar(20);not null;default:'Viewer'"`
	Active       bool       `json:"active" gorm:"not null;default:true"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

func (User) TableName() string { return "user" }
