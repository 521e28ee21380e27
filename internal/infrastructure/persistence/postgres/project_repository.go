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
	createProjectSQL  = `INSERT INTO projects (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`
	getProjectByIDSQL = `SELECT id, name, created_at, updated_at FROM projects WHERE id = $1`
)

// ProjectRepository implements ports.ProjectRepository.
type ProjectRepository struct {
	db DB
}

func NewProjectRepository(db DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) GetByID(ctx context.Context, id domain.ProjectID) (*domain.Project, error) {
	var (
		p     domain.Project
		rawID string
	)
	err := r.db.QueryRow(ctx, getProjectByIDSQL, id.String()).Scan(&rawID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p.ID = domain.ProjectID(rawID)
	return &p, nil
}

func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	_, err := r.db.Exec(ctx, createProjectSQL, project.ID.String(), project.Name, project.CreatedAt, project.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domerrors.ErrDuplicate
		}
		return err
	}
	return nil
}

// Ensure ProjectRepository implements ports.ProjectRepository.
var _ ports.ProjectRepository = (*ProjectRepository)(nil)
