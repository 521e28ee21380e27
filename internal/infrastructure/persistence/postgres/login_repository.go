package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/awsm-eng/lotus-medplum/internal/application/ports"
	"github.com/awsm-eng/lotus-medplum/internal/domain"
)

const (
	createLoginSQL = `INSERT INTO logins (id, client_id, user_id, project_id, scope, nonce, remote_addr, user_agent, remember, authenticated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	getLoginByIDSQL = `SELECT id, client_id, user_id, project_id, scope, nonce, remote_addr, user_agent, remember, authenticated_at
		FROM logins WHERE id = $1`
)

// LoginRepository implements ports.LoginRepository.
type LoginRepository struct {
	db DB
}

func NewLoginRepository(db DB) *LoginRepository {
	return &LoginRepository{db: db}
}

func (r *LoginRepository) Create(ctx context.Context, login *domain.Login) error {
	var projectID *string
	if login.ProjectID != nil {
		s := login.ProjectID.String()
		projectID = &s
	}
	_, err := r.db.Exec(ctx, createLoginSQL,
		login.ID.String(),
		login.ClientID.String(),
		login.UserID.String(),
		projectID,
		login.Scope,
		login.Nonce,
		login.RemoteAddr,
		login.UserAgent,
		login.Remember,
		login.AuthenticatedAt,
	)
	return err
}

func (r *LoginRepository) GetByID(ctx context.Context, id domain.LoginID) (*domain.Login, error) {
	var (
		l                   domain.Login
		rawID, client, user string
		projectID           *string
	)
	err := r.db.QueryRow(ctx, getLoginByIDSQL, id.String()).Scan(
		&rawID, &client, &user, &projectID, &l.Scope, &l.Nonce,
		&l.RemoteAddr, &l.UserAgent, &l.Remember, &l.AuthenticatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	l.ID = domain.LoginID(rawID)
	l.ClientID = domain.ClientID(client)
	l.UserID = domain.UserID(user)
	if projectID != nil {
		pid := domain.ProjectID(*projectID)
		l.ProjectID = &pid
	}
	return &l, nil
}

// Ensure LoginRepository implements ports.LoginRepository.
var _ ports.LoginRepository = (*LoginRepository)(nil)
