package domain

import (
	"time"

	"github.com/google/uuid"
)

// MembershipID is a value object for membership identity.
type MembershipID string

// NewMembershipID generates a fresh membership id.
func NewMembershipID() MembershipID { return MembershipID(uuid.NewString()) }

// String returns the canonical string form.
func (m MembershipID) String() string { return string(m) }

// Membership links a user to a project. It may be created lazily during
// session issuance when the flow permits login without a pre-existing
// membership.
type Membership struct {
	ID        MembershipID
	ProjectID ProjectID
	UserID    UserID
	CreatedAt time.Time
}
