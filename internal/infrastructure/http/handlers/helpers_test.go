package handlers

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/awsm-eng/lotus-medplum/internal/application/auth"
	"github.com/awsm-eng/lotus-medplum/internal/application/ports"
	"github.com/awsm-eng/lotus-medplum/internal/domain"
	domerrors "github.com/awsm-eng/lotus-medplum/internal/domain/errors"
)

// In-memory collaborators so handler tests exercise the full pipeline
// through real use cases without a database.

type memClients struct {
	byID map[domain.ClientID]*domain.ClientApplication
}

func (r *memClients) GetByID(ctx context.Context, id domain.ClientID) (*domain.ClientApplication, error) {
	return r.byID[id], nil
}

func (r *memClients) Create(ctx context.Context, c *domain.ClientApplication) error {
	r.byID[c.ID] = c
	return nil
}

type memProjects struct {
	byID map[domain.ProjectID]*domain.Project
}

func (r *memProjects) GetByID(ctx context.Context, id domain.ProjectID) (*domain.Project, error) {
	return r.byID[id], nil
}

func (r *memProjects) Create(ctx context.Context, p *domain.Project) error {
	r.byID[p.ID] = p
	return nil
}

type memUsers struct {
	mu    sync.Mutex
	users []*domain.User
}

func (r *memUsers) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		sameScope := (u.ProjectID == nil && user.ProjectID == nil) ||
			(u.ProjectID != nil && user.ProjectID != nil && *u.ProjectID == *user.ProjectID)
		if sameScope && u.Email == user.Email {
			return domerrors.ErrEmailTaken
		}
	}
	cp := *user
	r.users = append(r.users, &cp)
	return nil
}

func (r *memUsers) GetByEmailInProject(ctx context.Context, projectID domain.ProjectID, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ProjectID != nil && *u.ProjectID == projectID && u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memUsers) GetByEmailAnyProject(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memUsers) GetByID(ctx context.Context, userID domain.UserID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, nil
}

type memMemberships struct {
	mu   sync.Mutex
	list []*domain.Membership
}

func (r *memMemberships) GetByProjectAndUser(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) (*domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.list {
		if m.ProjectID == projectID && m.UserID == userID {
			return m, nil
		}
	}
	return nil, nil
}

func (r *memMemberships) Create(ctx context.Context, m *domain.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = append(r.list, m)
	return nil
}

type memLogins struct {
	mu   sync.Mutex
	list []*domain.Login
}

func (r *memLogins) Create(ctx context.Context, l *domain.Login) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = append(r.list, l)
	return nil
}

func (r *memLogins) GetByID(ctx context.Context, id domain.LoginID) (*domain.Login, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.list {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, nil
}

type memTokens struct {
	mu     sync.Mutex
	byHash map[string]ports.RefreshTokenInfo
}

func (s *memTokens) StoreRefreshToken(ctx context.Context, info ports.RefreshTokenInfo, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byHash[tokenHash] = info
	return nil
}

func (s *memTokens) GetRefreshToken(ctx context.Context, tokenHash string) (*ports.RefreshTokenInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.byHash[tokenHash]
	if !ok {
		return nil, nil
	}
	return &info, nil
}

func (s *memTokens) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if info, ok := s.byHash[tokenHash]; ok && info.RevokedAt == nil {
		t := info.ExpiresAt
		info.RevokedAt = &t
		s.byHash[tokenHash] = info
	}
	return nil
}

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "h:" + password, nil }
func (plainHasher) Verify(password, hash string) bool    { return hash == "h:"+password }

type staticIssuer struct{}

func (staticIssuer) IssueAccessToken(projectID, userID, loginID string, expiresInSeconds int64) (string, error) {
	return "at-" + loginID, nil
}

func (staticIssuer) ValidateAccessToken(token string) (string, string, string, error) {
	return "", "", "", nil
}

type recordingEnqueuer struct {
	mu     sync.Mutex
	events []string
}

func (q *recordingEnqueuer) EnqueueWebhook(ctx context.Context, event string, payload interface{}) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, event)
	return nil
}

type handlerFixture struct {
	handler  *AuthHandler
	clients  *memClients
	projects *memProjects
	users    *memUsers
	logins   *memLogins
	tokens   *memTokens
	enqueuer *recordingEnqueuer
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	f := &handlerFixture{
		clients:  &memClients{byID: make(map[domain.ClientID]*domain.ClientApplication)},
		projects: &memProjects{byID: make(map[domain.ProjectID]*domain.Project)},
		users:    &memUsers{},
		logins:   &memLogins{},
		tokens:   &memTokens{byHash: make(map[string]ports.RefreshTokenInfo)},
		enqueuer: &recordingEnqueuer{},
	}
	require.NoError(t, f.clients.Create(context.Background(), &domain.ClientApplication{ID: "C1", Name: "Demo App"}))
	require.NoError(t, f.projects.Create(context.Background(), &domain.Project{ID: "P1", Name: "One"}))

	memberships := &memMemberships{}
	hasher := plainHasher{}
	issuer := staticIssuer{}
	creator := auth.NewCreateUser(f.users, hasher)
	tryLogin := auth.NewTryLogin(f.users, memberships, f.logins, f.tokens, hasher, issuer, 0, 0)
	register := auth.NewRegisterClientUser(f.clients, f.projects, f.users, creator, tryLogin)
	refresh := auth.NewRefresh(f.tokens, issuer, 0, 0)
	logout := auth.NewLogout(f.tokens)

	f.handler = NewAuthHandler(register, tryLogin, refresh, logout, f.enqueuer, zerolog.Nop())
	return f
}
