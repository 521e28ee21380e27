package auth

import (
	"context"
	"time"

	"github.com/awsm-eng/lotus-medplum/internal/application/ports"
	domerrors "github.com/awsm-eng/lotus-medplum/internal/domain/errors"
)

type RefreshInput struct {
	RefreshToken string
}

type RefreshResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued against the same login.
type Refresh struct {
	tokens     ports.TokenStore
	issuer     ports.TokenIssuer
	accessExp  int64
	refreshExp int64
}

func NewRefresh(tokens ports.TokenStore, issuer ports.TokenIssuer, accessExp, refreshExp int64) *Refresh {
	if accessExp <= 0 {
		accessExp = DefaultAccessTokenExpiry
	}
	if refreshExp <= 0 {
		refreshExp = DefaultRefreshTokenExpiry
	}
	return &Refresh{tokens: tokens, issuer: issuer, accessExp: accessExp, refreshExp: refreshExp}
}

func (uc *Refresh) Execute(ctx context.Context, input RefreshInput) (*RefreshResult, error) {
	hash := HashToken(input.RefreshToken)
	info, err := uc.tokens.GetRefreshToken(ctx, hash)
	if err != nil {
		return nil, domerrors.Storage(err)
	}
	if info == nil || info.RevokedAt != nil || time.Now().After(info.ExpiresAt) {
		return nil, domerrors.ErrInvalidToken
	}
	if err := uc.tokens.RevokeRefreshToken(ctx, hash); err != nil {
		return nil, domerrors.Storage(err)
	}

	var projectStr string
	if info.ProjectID != nil {
		projectStr = info.ProjectID.String()
	}
	accessToken, err := uc.issuer.IssueAccessToken(projectStr, info.UserID.String(), info.LoginID.String(), uc.accessExp)
	if err != nil {
		return nil, domerrors.Storage(err)
	}
	refreshToken, err := newRefreshToken()
	if err != nil {
		return nil, domerrors.Storage(err)
	}
	next := ports.RefreshTokenInfo{
		UserID:    info.UserID,
		ProjectID: info.ProjectID,
		LoginID:   info.LoginID,
		ExpiresAt: time.Now().Add(time.Duration(uc.refreshExp) * time.Second),
	}
	if err := uc.tokens.StoreRefreshToken(ctx, next, HashToken(refreshToken)); err != nil {
		return nil, domerrors.Storage(err)
	}
	return &RefreshResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    uc.accessExp,
	}, nil
}
