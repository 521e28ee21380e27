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
	createClientSQL  = `INSERT INTO client_applications (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`
	getClientByIDSQL = `SELECT id, name, created_at, updated_at FROM client_applications WHERE id = $1`
)

// ClientRepository implements ports.ClientRepository.
type ClientRepository struct {
	db DB
}

func NewClientRepository(db DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) GetByID(ctx context.Context, id domain.ClientID) (*domain.ClientApplication, error) {
	var (
		c     domain.ClientApplication
		rawID string
	)
	err := r.db.QueryRow(ctx, getClientByIDSQL, id.String()).Scan(&rawID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c.ID = domain.ClientID(rawID)
	return &c, nil
}

func (r *ClientRepository) Create(ctx context.Context, client *domain.ClientApplication) error {
	_, err := r.db.Exec(ctx, createClientSQL, client.ID.String(), client.Name, client.CreatedAt, client.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domerrors.ErrDuplicate
		}
		return err
	}
	return nil
}

// Ensure ClientRepository implements ports.ClientRepository.
var _ ports.ClientRepository = (*ClientRepository)(nil)
