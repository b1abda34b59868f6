package models

import (
	"time"
)

// Role is a user's privilege level. Roles are strictly ordered reader < editor < admin.
type Role string

const (
	RoleReader Role = "reader"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// ValidRoles defines allowed user roles
var ValidRoles = map[Role]bool{
	RoleReader: true,
	RoleEditor: true,
	RoleAdmin:  true,
}

// User represents a user in the system
type User struct {
	ID              string    `json:"id" db:"id"`
	Email           *string   `json:"email" db:"email"`
	FirstName       *string   `json:"firstName" db:"first_name"`
	LastName        *string   `json:"lastName" db:"last_name"`
	ProfileImageURL *string   `json:"profileImageUrl" db:"profile_image_url"`
	Username        *string   `json:"username" db:"username"`
	Role            Role      `json:"role" db:"role"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// UpsertUser carries the identity fields refreshed on every authentication callback.
// Role is only used when the row is first created.
type UpsertUser struct {
	ID              string
	Email           *string
	FirstName       *string
	LastName        *string
	ProfileImageURL *string
	Username        *string
}
