package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserID is a value object for user identity.
type UserID string

// NewUserID generates a fresh user id.
func NewUserID() UserID { return UserID(uuid.NewString()) }

// String returns the canonical string form.
func (u UserID) String() string { return string(u) }

// User is a registered identity. ProjectID is nil for tenant-less users
// (registered with no project or with the "new" sentinel); set for users
// created inside a specific tenant. Email is stored lower-cased; within the
// uniqueness scope chosen at registration time, email is unique.
type User struct {
	ID           UserID
	ProjectID    *ProjectID
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
