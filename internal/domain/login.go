package domain

import (
	"time"

	"github.com/google/uuid"
)

// LoginID is a value object for login/session identity.
type LoginID string

// NewLoginID generates a fresh login id.
func NewLoginID() LoginID { return LoginID(uuid.NewString()) }

// String returns the canonical string form.
func (l LoginID) String() string { return string(l) }

// Login is the authenticated-access artifact issued after a successful
// password authentication. Its id is the primary success payload returned
// to the caller of the registration flow. ProjectID is nil for tenant-less
// sessions.
type Login struct {
	ID              LoginID
	ClientID        ClientID
	UserID          UserID
	ProjectID       *ProjectID
	Scope           string
	Nonce           string
	RemoteAddr      string
	UserAgent       string
	Remember        bool
	AuthenticatedAt time.Time
}

// DefaultScope is applied when a request does not name a scope.
const DefaultScope = "openid"

// NewNonce generates a random nonce for requests that did not supply one.
func NewNonce() string { return uuid.NewString() }
