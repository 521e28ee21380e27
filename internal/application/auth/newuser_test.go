package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awsm-eng/lotus-medplum/internal/domain"
	domerrors "github.com/awsm-eng/lotus-medplum/internal/domain/errors"
)

func TestCreateUserPasswordPolicy(t *testing.T) {
	uc := NewCreateUser(newFakeUserRepo(), &fakeHasher{})

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "too short", password: "short", wantErr: true},
		{name: "minimum length", password: "12345678"},
		{name: "too long", password: string(make([]byte, MaxPasswordLength+1)), wantErr: true},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), CreateUserInput{
				Email:    "user" + string(rune('a'+i)) + "@x.com",
				Password: tt.password,
			})
			if tt.wantErr {
				var ve *domerrors.ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, "password", ve.Field)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCreateUserHashesPassword(t *testing.T) {
	users := newFakeUserRepo()
	uc := NewCreateUser(users, &fakeHasher{})

	user, err := uc.Execute(context.Background(), CreateUserInput{
		Email:    "a@x.com",
		Password: "password123",
	})
	require.NoError(t, err)

	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.Equal(t, "hashed:password123", user.PasswordHash)
	assert.NotEmpty(t, user.ID)
	assert.Nil(t, user.ProjectID)
}

func TestCreateUserProjectScope(t *testing.T) {
	users := newFakeUserRepo()
	uc := NewCreateUser(users, &fakeHasher{})

	// "new" and absent both persist tenant-less; an existing ref persists
	// the project id.
	u1, err := uc.Execute(context.Background(), CreateUserInput{
		Project:  domain.NewProject(),
		Email:    "a@x.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Nil(t, u1.ProjectID)

	u2, err := uc.Execute(context.Background(), CreateUserInput{
		Project:  domain.ExistingProject("P1"),
		Email:    "b@x.com",
		Password: "password123",
	})
	require.NoError(t, err)
	require.NotNil(t, u2.ProjectID)
	assert.Equal(t, domain.ProjectID("P1"), *u2.ProjectID)
}

func TestCreateUserConstraintViolationBecomesConflict(t *testing.T) {
	users := newFakeUserRepo()
	uc := NewCreateUser(users, &fakeHasher{})

	_, err := uc.Execute(context.Background(), CreateUserInput{
		Email:    "a@x.com",
		Password: "password123",
	})
	require.NoError(t, err)

	// The fake enforces the unique index; the second write trips it and
	// the violation surfaces as the ordinary conflict.
	_, err = uc.Execute(context.Background(), CreateUserInput{
		Email:    "a@x.com",
		Password: "password456",
	})
	var ce *domerrors.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "email", ce.Field)
	assert.Equal(t, "Email already registered", ce.Message)
}
