package auth

import (
	"context"

	"github.com/awsm-eng/lotus-medplum/internal/application/ports"
	domerrors "github.com/awsm-eng/lotus-medplum/internal/domain/errors"
)

// Logout revokes a refresh token. Unknown tokens are not an error; logout is
// idempotent.
type Logout struct {
	tokens ports.TokenStore
}

func NewLogout(tokens ports.TokenStore) *Logout {
	return &Logout{tokens: tokens}
}

func (uc *Logout) Execute(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := uc.tokens.RevokeRefreshToken(ctx, HashToken(refreshToken)); err != nil {
		return domerrors.Storage(err)
	}
	return nil
}
