package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/awsm-eng/lotus-medplum/internal/application/ports"
	"github.com/awsm-eng/lotus-medplum/internal/domain"
	domerrors "github.com/awsm-eng/lotus-medplum/internal/domain/errors"
)

// In-memory collaborators for use case tests. fakeUserRepo enforces the same
// uniqueness rules as the partial unique indexes so races behave like the
// real store.

type fakeClientRepo struct {
	clients map[domain.ClientID]*domain.ClientApplication
}

func newFakeClientRepo(clients ...*domain.ClientApplication) *fakeClientRepo {
	m := make(map[domain.ClientID]*domain.ClientApplication)
	for _, c := range clients {
		m[c.ID] = c
	}
	return &fakeClientRepo{clients: m}
}

func (r *fakeClientRepo) GetByID(ctx context.Context, id domain.ClientID) (*domain.ClientApplication, error) {
	return r.clients[id], nil
}

func (r *fakeClientRepo) Create(ctx context.Context, client *domain.ClientApplication) error {
	r.clients[client.ID] = client
	return nil
}

type fakeProjectRepo struct {
	projects map[domain.ProjectID]*domain.Project
}

func newFakeProjectRepo(projects ...*domain.Project) *fakeProjectRepo {
	m := make(map[domain.ProjectID]*domain.Project)
	for _, p := range projects {
		m[p.ID] = p
	}
	return &fakeProjectRepo{projects: m}
}

func (r *fakeProjectRepo) GetByID(ctx context.Context, id domain.ProjectID) (*domain.Project, error) {
	return r.projects[id], nil
}

func (r *fakeProjectRepo) Create(ctx context.Context, project *domain.Project) error {
	r.projects[project.ID] = project
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users []*domain.User
}

func newFakeUserRepo() *fakeUserRepo { return &fakeUserRepo{} }

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if user.ProjectID != nil && u.ProjectID != nil && *u.ProjectID == *user.ProjectID && u.Email == user.Email {
			return domerrors.ErrEmailTaken
		}
		if user.ProjectID == nil && u.ProjectID == nil && u.Email == user.Email {
			return domerrors.ErrEmailTaken
		}
	}
	cp := *user
	r.users = append(r.users, &cp)
	return nil
}

func (r *fakeUserRepo) GetByEmailInProject(ctx context.Context, projectID domain.ProjectID, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ProjectID != nil && *u.ProjectID == projectID && u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmailAnyProject(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, userID domain.UserID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == userID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

type fakeMembershipRepo struct {
	mu          sync.Mutex
	memberships []*domain.Membership
}

func newFakeMembershipRepo() *fakeMembershipRepo { return &fakeMembershipRepo{} }

func (r *fakeMembershipRepo) GetByProjectAndUser(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) (*domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.memberships {
		if m.ProjectID == projectID && m.UserID == userID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeMembershipRepo) Create(ctx context.Context, membership *domain.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *membership
	r.memberships = append(r.memberships, &cp)
	return nil
}

func (r *fakeMembershipRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.memberships)
}

type fakeLoginRepo struct {
	mu     sync.Mutex
	logins []*domain.Login
	err    error
}

func newFakeLoginRepo() *fakeLoginRepo { return &fakeLoginRepo{} }

func (r *fakeLoginRepo) Create(ctx context.Context, login *domain.Login) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *login
	r.logins = append(r.logins, &cp)
	return nil
}

func (r *fakeLoginRepo) GetByID(ctx context.Context, id domain.LoginID) (*domain.Login, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.logins {
		if l.ID == id {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]ports.RefreshTokenInfo
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]ports.RefreshTokenInfo)}
}

func (s *fakeTokenStore) StoreRefreshToken(ctx context.Context, info ports.RefreshTokenInfo, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tokenHash] = info
	return nil
}

func (s *fakeTokenStore) GetRefreshToken(ctx context.Context, tokenHash string) (*ports.RefreshTokenInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.tokens[tokenHash]
	if !ok {
		return nil, nil
	}
	cp := info
	return &cp, nil
}

func (s *fakeTokenStore) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if info, ok := s.tokens[tokenHash]; ok && info.RevokedAt == nil {
		now := info.ExpiresAt
		info.RevokedAt = &now
		s.tokens[tokenHash] = info
	}
	return nil
}

// fakeHasher prefixes instead of hashing; verifyFail forces verification to
// fail regardless of the password.
type fakeHasher struct {
	verifyFail bool
}

func (h *fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (h *fakeHasher) Verify(password, hash string) bool {
	if h.verifyFail {
		return false
	}
	return hash == "hashed:"+password
}

type fakeIssuer struct {
	err error
}

func (i *fakeIssuer) IssueAccessToken(projectID, userID, loginID string, expiresInSeconds int64) (string, error) {
	if i.err != nil {
		return "", i.err
	}
	return strings.Join([]string{"access", projectID, userID, loginID}, "."), nil
}

func (i *fakeIssuer) ValidateAccessToken(token string) (string, string, string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 || parts[0] != "access" {
		return "", "", "", errors.New("bad token")
	}
	return parts[1], parts[2], parts[3], nil
}

// newTestTryLogin wires a TryLogin over the fakes.
func newTestTryLogin(users *fakeUserRepo, memberships *fakeMembershipRepo, logins *fakeLoginRepo, tokens *fakeTokenStore, hasher *fakeHasher) *TryLogin {
	return NewTryLogin(users, memberships, logins, tokens, hasher, &fakeIssuer{}, 0, 0)
}
