package admin

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/awsm-eng/lotus-medplum/internal/application/ports"
	"github.com/awsm-eng/lotus-medplum/internal/domain"
	domerrors "github.com/awsm-eng/lotus-medplum/internal/domain/errors"
)

// CreateProjectInput provisions a project (tenant). ID is optional.
type CreateProjectInput struct {
	ID   string
	Name string
}

// CreateProject provisions the tenants registrations can be scoped to.
type CreateProject struct {
	projects ports.ProjectRepository
}

func NewCreateProject(projects ports.ProjectRepository) *CreateProject {
	return &CreateProject{projects: projects}
}

func (uc *CreateProject) Execute(ctx context.Context, input CreateProjectInput) (*domain.Project, error) {
	if input.Name == "" {
		return nil, domerrors.Invalid("name", "name is required")
	}
	id := input.ID
	if id == "" {
		id = uuid.NewString()
	}
	if id == domain.NewProjectSentinel {
		return nil, domerrors.Invalid("id", `"new" is reserved`)
	}
	now := time.Now()
	project := &domain.Project{
		ID:        domain.ProjectID(id),
		Name:      input.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.projects.Create(ctx, project); err != nil {
		if errors.Is(err, domerrors.ErrDuplicate) {
			return nil, domerrors.Conflict("id", "project already exists")
		}
		return nil, domerrors.Storage(err)
	}
	return project, nil
}
