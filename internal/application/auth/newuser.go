package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/awsm-eng/lotus-medplum/internal/application/ports"
	"github.com/awsm-eng/lotus-medplum/internal/domain"
	domerrors "github.com/awsm-eng/lotus-medplum/internal/domain/errors"
)

// Password policy bounds. Hashing cost makes very long inputs a DoS vector,
// so length is capped as well as floored.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

// CreateUserInput is the identity-creation payload after validation and the
// uniqueness check have passed. Email must already be normalized.
type CreateUserInput struct {
	Project   domain.ProjectRef
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// CreateUser persists a new identity. It is the only writer of user records
// in the registration flow and the place where a storage-level uniqueness
// violation is folded back into the conflict the fast-path check reports.
type CreateUser struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
}

func NewCreateUser(users ports.UserRepository, hasher ports.PasswordHasher) *CreateUser {
	return &CreateUser{users: users, hasher: hasher}
}

func (uc *CreateUser) Execute(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if len(input.Password) < MinPasswordLength {
		return nil, domerrors.Invalid("password", "password must be at least 8 characters")
	}
	if len(input.Password) > MaxPasswordLength {
		return nil, domerrors.Invalid("password", "password is too long")
	}
	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, domerrors.Storage(err)
	}

	var projectID *domain.ProjectID
	if id, ok := input.Project.Existing(); ok {
		projectID = &id
	}
	now := time.Now()
	user := &domain.User{
		ID:           domain.NewUserID(),
		ProjectID:    projectID,
		Email:        strings.ToLower(input.Email),
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		// Two pipelines can both pass the uniqueness check before either
		// writes; the unique index is the actual guarantee. Report the
		// loser's constraint violation as an ordinary conflict.
		if errors.Is(err, domerrors.ErrEmailTaken) {
			return nil, domerrors.Conflict("email", "Email already registered")
		}
		return nil, domerrors.Storage(err)
	}
	return user, nil
}
