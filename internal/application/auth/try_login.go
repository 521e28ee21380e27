package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/awsm-eng/lotus-medplum/internal/application/ports"
	"github.com/awsm-eng/lotus-medplum/internal/domain"
	domerrors "github.com/awsm-eng/lotus-medplum/internal/domain/errors"
)

const (
	DefaultAccessTokenExpiry  = 900    // 15 min
	DefaultRefreshTokenExpiry = 604800 // 7 days
)

// TryLoginInput carries everything needed to authenticate a user and issue a
// login. AllowNoMembership permits authentication against a project the user
// has no membership in yet; the membership is then created as part of
// issuance. The registration flow always sets it.
type TryLoginInput struct {
	ClientID          domain.ClientID
	Project           domain.ProjectRef
	Email             string
	Password          string
	Scope             string
	Nonce             string
	Remember          bool
	RemoteAddr        string
	UserAgent         string
	AllowNoMembership bool
}

// TryLoginResult is the issued session plus its bearer artifacts.
type TryLoginResult struct {
	Login        *domain.Login
	User         *domain.User
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// TryLogin is the session issuer: password authentication followed by login
// creation. Shared by self-service registration and the plain login endpoint.
type TryLogin struct {
	users       ports.UserRepository
	memberships ports.MembershipRepository
	logins      ports.LoginRepository
	tokens      ports.TokenStore
	hasher      ports.PasswordHasher
	issuer      ports.TokenIssuer
	accessExp   int64
	refreshExp  int64
}

func NewTryLogin(users ports.UserRepository, memberships ports.MembershipRepository, logins ports.LoginRepository, tokens ports.TokenStore, hasher ports.PasswordHasher, issuer ports.TokenIssuer, accessExp, refreshExp int64) *TryLogin {
	if accessExp <= 0 {
		accessExp = DefaultAccessTokenExpiry
	}
	if refreshExp <= 0 {
		refreshExp = DefaultRefreshTokenExpiry
	}
	return &TryLogin{
		users:       users,
		memberships: memberships,
		logins:      logins,
		tokens:      tokens,
		hasher:      hasher,
		issuer:      issuer,
		accessExp:   accessExp,
		refreshExp:  refreshExp,
	}
}

func (uc *TryLogin) Execute(ctx context.Context, input TryLoginInput) (*TryLoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var (
		user *domain.User
		err  error
	)
	if projectID, ok := input.Project.Existing(); ok {
		user, err = uc.users.GetByEmailInProject(ctx, projectID, email)
	} else {
		user, err = uc.users.GetByEmailAnyProject(ctx, email)
	}
	if err != nil {
		return nil, domerrors.Storage(err)
	}
	if user == nil || !uc.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, domerrors.ErrInvalidCredentials
	}

	var projectID *domain.ProjectID
	if id, ok := input.Project.Existing(); ok {
		projectID = &id
		if err := uc.ensureMembership(ctx, id, user.ID, input.AllowNoMembership); err != nil {
			return nil, err
		}
	}

	scope := input.Scope
	if scope == "" {
		scope = domain.DefaultScope
	}
	nonce := input.Nonce
	if nonce == "" {
		nonce = domain.NewNonce()
	}

	login := &domain.Login{
		ID:              domain.NewLoginID(),
		ClientID:        input.ClientID,
		UserID:          user.ID,
		ProjectID:       projectID,
		Scope:           scope,
		Nonce:           nonce,
		RemoteAddr:      input.RemoteAddr,
		UserAgent:       input.UserAgent,
		Remember:        input.Remember,
		AuthenticatedAt: time.Now(),
	}
	if err := uc.logins.Create(ctx, login); err != nil {
		return nil, domerrors.Storage(err)
	}

	var projectStr string
	if projectID != nil {
		projectStr = projectID.String()
	}
	accessToken, err := uc.issuer.IssueAccessToken(projectStr, user.ID.String(), login.ID.String(), uc.accessExp)
	if err != nil {
		return nil, domerrors.Storage(err)
	}

	refreshToken, err := newRefreshToken()
	if err != nil {
		return nil, domerrors.Storage(err)
	}
	info := ports.RefreshTokenInfo{
		UserID:    user.ID,
		ProjectID: projectID,
		LoginID:   login.ID,
		ExpiresAt: time.Now().Add(time.Duration(uc.refreshExp) * time.Second),
	}
	if err := uc.tokens.StoreRefreshToken(ctx, info, HashToken(refreshToken)); err != nil {
		return nil, domerrors.Storage(err)
	}

	return &TryLoginResult{
		Login:        login,
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    uc.accessExp,
	}, nil
}

// ensureMembership authenticates the project linkage: an existing membership
// passes, a missing one is created only when allowNoMembership is set.
func (uc *TryLogin) ensureMembership(ctx context.Context, projectID domain.ProjectID, userID domain.UserID, allowNoMembership bool) error {
	m, err := uc.memberships.GetByProjectAndUser(ctx, projectID, userID)
	if err != nil {
		return domerrors.Storage(err)
	}
	if m != nil {
		return nil
	}
	if !allowNoMembership {
		return domerrors.ErrInvalidCredentials
	}
	membership := &domain.Membership{
		ID:        domain.NewMembershipID(),
		ProjectID: projectID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	if err := uc.memberships.Create(ctx, membership); err != nil {
		return domerrors.Storage(err)
	}
	return nil
}

func newRefreshToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// HashToken returns the storage key for a refresh token. Only the hash is
// persisted.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
