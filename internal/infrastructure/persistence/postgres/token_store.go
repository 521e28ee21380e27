package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/awsm-eng/lotus-medplum/internal/application/ports"
	"github.com/awsm-eng/lotus-medplum/internal/domain"
)

const (
	createRefreshTokenSQL = `INSERT INTO refresh_tokens (id, user_id, project_id, login_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	getRefreshTokenSQL = `SELECT user_id, project_id, login_id, expires_at, revoked_at
		FROM refresh_tokens WHERE token_hash = $1`
	revokeRefreshTokenSQL = `UPDATE refresh_tokens SET revoked_at = COALESCE(revoked_at, NOW()) WHERE token_hash = $1`
)

// TokenStore implements ports.TokenStore on Postgres.
type TokenStore struct {
	db DB
}

func NewTokenStore(db DB) *TokenStore {
	return &TokenStore{db: db}
}

func (s *TokenStore) StoreRefreshToken(ctx context.Context, info ports.RefreshTokenInfo, tokenHash string) error {
	var projectID *string
	if info.ProjectID != nil {
		p := info.ProjectID.String()
		projectID = &p
	}
	_, err := s.db.Exec(ctx, createRefreshTokenSQL,
		uuid.NewString(),
		info.UserID.String(),
		projectID,
		info.LoginID.String(),
		tokenHash,
		info.ExpiresAt,
		time.Now(),
	)
	return err
}

func (s *TokenStore) GetRefreshToken(ctx context.Context, tokenHash string) (*ports.RefreshTokenInfo, error) {
	var (
		info            ports.RefreshTokenInfo
		userID, loginID string
		projectID       *string
		revokedAt       *time.Time
	)
	err := s.db.QueryRow(ctx, getRefreshTokenSQL, tokenHash).Scan(&userID, &projectID, &loginID, &info.ExpiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	info.UserID = domain.UserID(userID)
	info.LoginID = domain.LoginID(loginID)
	if projectID != nil {
		pid := domain.ProjectID(*projectID)
		info.ProjectID = &pid
	}
	info.RevokedAt = revokedAt
	return &info, nil
}

func (s *TokenStore) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	_, err := s.db.Exec(ctx, revokeRefreshTokenSQL, tokenHash)
	return err
}

// Ensure TokenStore implements ports.TokenStore.
var _ ports.TokenStore = (*TokenStore)(nil)
