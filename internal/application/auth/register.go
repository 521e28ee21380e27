package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/awsm-eng/lotus-medplum/internal/application/ports"
	"github.com/awsm-eng/lotus-medplum/internal/domain"
	domerrors "github.com/awsm-eng/lotus-medplum/internal/domain/errors"
)

// RegisterClientUserInput is the raw registration request after transport
// decoding. Project carries the tenant context (absent, "new", or an
// existing id); Email may arrive in any case and is normalized here before
// any comparison or write.
type RegisterClientUserInput struct {
	ClientID   domain.ClientID
	Project    domain.ProjectRef
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Scope      string
	Nonce      string
	Remember   bool
	RemoteAddr string
	UserAgent  string
}

// RegisterClientUserResult is the success payload: the resolved client
// application and the issued login.
type RegisterClientUserResult struct {
	Client *domain.ClientApplication
	Login  *domain.Login
	User   *domain.User
}

// RegisterClientUser runs the registration pipeline: validate the client
// and tenant, check email uniqueness under the tenant-derived scope, create the
// identity, then authenticate it and issue the first login. Stages run
// strictly in sequence; the first failure short-circuits. A failure after
// identity creation is surfaced as-is and the created identity persists —
// the caller can log in separately.
type RegisterClientUser struct {
	clients  ports.ClientRepository
	projects ports.ProjectRepository
	users    ports.UserRepository
	creator  *CreateUser
	tryLogin *TryLogin
}

func NewRegisterClientUser(clients ports.ClientRepository, projects ports.ProjectRepository, users ports.UserRepository, creator *CreateUser, tryLogin *TryLogin) *RegisterClientUser {
	return &RegisterClientUser{
		clients:  clients,
		projects: projects,
		users:    users,
		creator:  creator,
		tryLogin: tryLogin,
	}
}

func (uc *RegisterClientUser) Execute(ctx context.Context, input RegisterClientUserInput) (*RegisterClientUserResult, error) {
	// Validate: the calling application must be resolvable before any
	// mutation.
	if input.ClientID == "" {
		return nil, domerrors.Invalid("clientId", "ClientId is required")
	}
	client, err := uc.clients.GetByID(ctx, input.ClientID)
	if err != nil {
		return nil, domerrors.Storage(err)
	}
	if client == nil {
		return nil, domerrors.Invalid("clientId", "Invalid client")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, domerrors.Invalid("email", "Email is required")
	}

	// An existing projectId must resolve to a real tenant before it can
	// select the uniqueness scope; otherwise the insert would only fail at
	// the foreign key and surface as an internal fault.
	if projectID, ok := input.Project.Existing(); ok {
		project, err := uc.projects.GetByID(ctx, projectID)
		if err != nil {
			return nil, domerrors.Storage(err)
		}
		if project == nil {
			return nil, domerrors.Invalid("projectId", "Invalid project")
		}
	}

	// Check uniqueness. A registration bound to an existing project must
	// only collide inside that project; a tenant-less registration must not
	// collide with any identity anywhere under the same email. This read is
	// a fast path for a clear error message; the storage constraint is the
	// correctness guarantee (see CreateUser).
	var existing *domain.User
	if projectID, ok := input.Project.Existing(); ok {
		existing, err = uc.users.GetByEmailInProject(ctx, projectID, email)
	} else {
		existing, err = uc.users.GetByEmailAnyProject(ctx, email)
	}
	if err != nil {
		return nil, domerrors.Storage(err)
	}
	if existing != nil {
		return nil, domerrors.Conflict("email", "Email already registered")
	}

	// Create the identity.
	user, err := uc.creator.Execute(ctx, CreateUserInput{
		Project:   input.Project,
		Email:     email,
		Password:  input.Password,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	})
	if err != nil {
		return nil, err
	}

	// Issue the first login. The password was set a moment ago, so a
	// credential failure here is an inconsistency, not user error. No
	// rollback of the identity either way.
	result, err := uc.tryLogin.Execute(ctx, TryLoginInput{
		ClientID:          input.ClientID,
		Project:           input.Project,
		Email:             email,
		Password:          input.Password,
		Scope:             input.Scope,
		Nonce:             input.Nonce,
		Remember:          input.Remember,
		RemoteAddr:        input.RemoteAddr,
		UserAgent:         input.UserAgent,
		AllowNoMembership: true,
	})
	if err != nil {
		if errors.Is(err, domerrors.ErrInvalidCredentials) {
			return nil, domerrors.Storage(fmt.Errorf("authentication failed for newly created user %s: %w", user.ID, err))
		}
		return nil, err
	}

	return &RegisterClientUserResult{
		Client: client,
		Login:  result.Login,
		User:   user,
	}, nil
}
