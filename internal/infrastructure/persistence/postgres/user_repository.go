package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/awsm-eng/lotus-medplum/internal/application/ports"
	"github.com/awsm-eng/lotus-medplum/internal/domain"
	domerrors "github.com/awsm-eng/lotus-medplum/internal/domain/errors"
)

const (
	createUserSQL = `INSERT INTO users (id, project_id, email, password_hash, first_name, last_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	userColumns             = `id, project_id, email, password_hash, first_name, last_name, created_at, updated_at`
	getUserByEmailInProject = `SELECT ` + userColumns + ` FROM users WHERE project_id = $1 AND email = $2`
	getUserByEmailAny       = `SELECT ` + userColumns + ` FROM users WHERE email = $1 ORDER BY created_at LIMIT 1`
	getUserByID             = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
)

// UserRepository implements ports.UserRepository. The partial unique indexes
// on users (see migrations) are the authoritative uniqueness guard; Create
// reports their violation as domerrors.ErrEmailTaken.
type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	var projectID *string
	if user.ProjectID != nil {
		s := user.ProjectID.String()
		projectID = &s
	}
	_, err := r.db.Exec(ctx, createUserSQL,
		user.ID.String(),
		projectID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domerrors.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByEmailInProject(ctx context.Context, projectID domain.ProjectID, email string) (*domain.User, error) {
	return r.scanUser(r.db.QueryRow(ctx, getUserByEmailInProject, projectID.String(), email))
}

// GetByEmailAnyProject looks up an email across all tenants. The same
// email can exist once per project, so when a tenant-less login matches
// several accounts the oldest one wins. ORDER BY created_at keeps that
// pick deterministic.
func (r *UserRepository) GetByEmailAnyProject(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(r.db.QueryRow(ctx, getUserByEmailAny, email))
}

func (r *UserRepository) GetByID(ctx context.Context, userID domain.UserID) (*domain.User, error) {
	return r.scanUser(r.db.QueryRow(ctx, getUserByID, userID.String()))
}

func (r *UserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u         domain.User
		id        string
		projectID *string
	)
	err := row.Scan(&id, &projectID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.ID = domain.UserID(id)
	if projectID != nil {
		pid := domain.ProjectID(*projectID)
		u.ProjectID = &pid
	}
	return &u, nil
}

// Ensure UserRepository implements ports.UserRepository.
var _ ports.UserRepository = (*UserRepository)(nil)
