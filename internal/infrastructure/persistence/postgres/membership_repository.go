package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/awsm-eng/lotus-medplum/internal/application/ports"
	"github.com/awsm-eng/lotus-medplum/internal/domain"
)

const (
	createMembershipSQL = `INSERT INTO project_memberships (id, project_id, user_id, created_at) VALUES ($1, $2, $3, $4)`
	getMembershipSQL    = `SELECT id, project_id, user_id, created_at FROM project_memberships WHERE project_id = $1 AND user_id = $2`
)

// MembershipRepository implements ports.MembershipRepository.
type MembershipRepository struct {
	db DB
}

func NewMembershipRepository(db DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

func (r *MembershipRepository) GetByProjectAndUser(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) (*domain.Membership, error) {
	var (
		m                 domain.Membership
		id, project, user string
	)
	err := r.db.QueryRow(ctx, getMembershipSQL, projectID.String(), userID.String()).Scan(&id, &project, &user, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	m.ID = domain.MembershipID(id)
	m.ProjectID = domain.ProjectID(project)
	m.UserID = domain.UserID(user)
	return &m, nil
}

func (r *MembershipRepository) Create(ctx context.Context, membership *domain.Membership) error {
	_, err := r.db.Exec(ctx, createMembershipSQL,
		membership.ID.String(),
		membership.ProjectID.String(),
		membership.UserID.String(),
		membership.CreatedAt,
	)
	// Two concurrent issuances for the same user and project can both see no
	// membership; the (project_id, user_id) unique key makes the second
	// insert a no-op outcome, not a failure.
	if isUniqueViolation(err) {
		return nil
	}
	return err
}

// Ensure MembershipRepository implements ports.MembershipRepository.
var _ ports.MembershipRepository = (*MembershipRepository)(nil)
