package application_test

import (
	"context"
	"sort"
	"sync"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"github.com/ericfisherdev/ghlink/internal/domain/model"
	"github.com/ericfisherdev/ghlink/internal/domain/port/driven"
)

// mockGitHubClient is a testify mock of driven.GitHubClient.
type mockGitHubClient struct {
	mock.Mock
}

var _ driven.GitHubClient = (*mockGitHubClient)(nil)

func (m *mockGitHubClient) AuthorizationURL(redirectURI string) string {
	args := m.Called(redirectURI)
	return args.String(0)
}

func (m *mockGitHubClient) ExchangeCode(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

func (m *mockGitHubClient) FetchIdentity(ctx context.Context, token string) (model.Identity, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(model.Identity), args.Error(1)
}

func (m *mockGitHubClient) RevokeToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockGitHubClient) Get(ctx context.Context, token, path string) ([]byte, error) {
	args := m.Called(ctx, token, path)
	body, _ := args.Get(0).([]byte)
	return body, args.Error(1)
}

// fakeIntegrationStore is an in-memory driven.IntegrationStore keyed by UserID.
type fakeIntegrationStore struct {
	mu        sync.Mutex
	byUser    map[string]model.Integration
	getErr    error
	writeErr  error
	deleteErr error
}

var _ driven.IntegrationStore = (*fakeIntegrationStore)(nil)

func newFakeStore(seed ...model.Integration) *fakeIntegrationStore {
	s := &fakeIntegrationStore{byUser: map[string]model.Integration{}}
	for _, in := range seed {
		s.byUser[in.UserID] = in
	}
	return s
}

func (s *fakeIntegrationStore) Create(_ context.Context, in model.Integration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	if _, ok := s.byUser[in.UserID]; ok {
		return driven.ErrIntegrationExists
	}
	s.byUser[in.UserID] = in
	return nil
}

func (s *fakeIntegrationStore) Upsert(_ context.Context, in model.Integration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.byUser[in.UserID] = in
	return nil
}

func (s *fakeIntegrationStore) GetByUserID(_ context.Context, userID string) (mo.Option[*model.Integration], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return mo.None[*model.Integration](), s.getErr
	}
	in, ok := s.byUser[userID]
	if !ok {
		return mo.None[*model.Integration](), nil
	}
	return mo.Some(&in), nil
}

func (s *fakeIntegrationStore) ListAll(_ context.Context) ([]model.Integration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	out := make([]model.Integration, 0, len(s.byUser))
	for _, in := range s.byUser {
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *fakeIntegrationStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.byUser[userID]; !ok {
		return driven.ErrIntegrationNotFound
	}
	delete(s.byUser, userID)
	return nil
}

func (s *fakeIntegrationStore) Ping(_ context.Context) error { return nil }

func (s *fakeIntegrationStore) get(userID string) (model.Integration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.byUser[userID]
	return in, ok
}

func (s *fakeIntegrationStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byUser)
}
