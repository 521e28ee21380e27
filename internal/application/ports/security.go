package ports

// PasswordHasher hashes and verifies passwords (Argon2id).
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenIssuer signs and validates access tokens (RS256). projectID is empty
// for tenant-less sessions.
type TokenIssuer interface {
	IssueAccessToken(projectID, userID, loginID string, expiresInSeconds int64) (string, error)
	// ValidateAccessToken returns the claims embedded at issuance.
	ValidateAccessToken(tokenString string) (projectID, userID, loginID string, err error)
}
