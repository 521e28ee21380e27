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

// CreateClientInput provisions a client application. ID is optional; when
// empty a uuid is assigned.
type CreateClientInput struct {
	ID   string
	Name string
}

// CreateClient provisions the client applications the registration flow
// resolves.
type CreateClient struct {
	clients ports.ClientRepository
}

func NewCreateClient(clients ports.ClientRepository) *CreateClient {
	return &CreateClient{clients: clients}
}

func (uc *CreateClient) Execute(ctx context.Context, input CreateClientInput) (*domain.ClientApplication, error) {
	if input.Name == "" {
		return nil, domerrors.Invalid("name", "name is required")
	}
	id := input.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now()
	client := &domain.ClientApplication{
		ID:        domain.ClientID(id),
		Name:      input.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.clients.Create(ctx, client); err != nil {
		if errors.Is(err, domerrors.ErrDuplicate) {
			return nil, domerrors.Conflict("id", "client already exists")
		}
		return nil, domerrors.Storage(err)
	}
	return client, nil
}
