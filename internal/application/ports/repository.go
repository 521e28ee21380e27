package ports

import (
	"context"
	"time"

	"github.com/awsm-eng/lotus-medplum/internal/domain"
)

// ClientRepository defines persistence for client applications.
type ClientRepository interface {
	// GetByID returns nil, nil when no client exists with the id.
	GetByID(ctx context.Context, id domain.ClientID) (*domain.ClientApplication, error)
	Create(ctx context.Context, client *domain.ClientApplication) error
}

// ProjectRepository defines persistence for projects (tenants).
type ProjectRepository interface {
	GetByID(ctx context.Context, id domain.ProjectID) (*domain.Project, error)
	Create(ctx context.Context, project *domain.Project) error
}

// UserRepository defines persistence for users. The two lookups are the two
// email-uniqueness scopes: within one project, and across all projects.
// Create returns domerrors.ErrEmailTaken when the storage-level uniqueness
// constraint rejects the write; callers must report that as the same
// conflict the fast-path lookup reports.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmailInProject(ctx context.Context, projectID domain.ProjectID, email string) (*domain.User, error)
	GetByEmailAnyProject(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, userID domain.UserID) (*domain.User, error)
}

// MembershipRepository defines persistence for project memberships.
type MembershipRepository interface {
	GetByProjectAndUser(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) (*domain.Membership, error)
	Create(ctx context.Context, membership *domain.Membership) error
}

// LoginRepository defines persistence for issued logins.
type LoginRepository interface {
	Create(ctx context.Context, login *domain.Login) error
	GetByID(ctx context.Context, id domain.LoginID) (*domain.Login, error)
}

// RefreshTokenInfo describes a stored refresh token.
type RefreshTokenInfo struct {
	UserID    domain.UserID
	ProjectID *domain.ProjectID
	LoginID   domain.LoginID
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// TokenStore defines storage for refresh tokens, keyed by token hash.
type TokenStore interface {
	StoreRefreshToken(ctx context.Context, info RefreshTokenInfo, tokenHash string) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshTokenInfo, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
}
