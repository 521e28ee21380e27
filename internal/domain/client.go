package domain

import "time"

// ClientID is a value object for client application identity.
type ClientID string

// String returns the canonical string form.
func (c ClientID) String() string { return string(c) }

// ClientApplication is a registered calling application. Registration is
// always performed on behalf of a known client; an unknown or empty client
// id fails validation before any write.
type ClientApplication struct {
	ID        ClientID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Reference returns the typed reference string for the client, e.g.
// "ClientApplication/abc123". This is the form returned to API callers.
func (c *ClientApplication) Reference() string {
	return "ClientApplication/" + string(c.ID)
}
