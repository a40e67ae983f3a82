package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ericfisherdev/ghlink/internal/domain/model"
	"github.com/ericfisherdev/ghlink/internal/domain/port/driven"
)

// IntegrationService runs the OAuth authorization-code flow and owns the
// lifecycle of stored integrations. It holds no state of its own beyond its
// collaborators; uniqueness and write serialization belong to the store.
type IntegrationService struct {
	store  driven.IntegrationStore
	github driven.GitHubClient
	policy model.ReauthPolicy
	now    func() time.Time
	logger *slog.Logger
}

// IntegrationOption configures an IntegrationService.
type IntegrationOption func(*IntegrationService)

// WithReauthPolicy sets what happens when a connected account authorizes again.
// The default is model.ReauthReplace.
func WithReauthPolicy(policy model.ReauthPolicy) IntegrationOption {
	return func(s *IntegrationService) { s.policy = policy }
}

// WithClock overrides the time source used for ConnectedAt.
func WithClock(now func() time.Time) IntegrationOption {
	return func(s *IntegrationService) { s.now = now }
}

// NewIntegrationService creates a new IntegrationService with the required dependencies.
func NewIntegrationService(
	store driven.IntegrationStore,
	github driven.GitHubClient,
	logger *slog.Logger,
	opts ...IntegrationOption,
) *IntegrationService {
	s := &IntegrationService{
		store:  store,
		github: github,
		policy: model.ReauthReplace,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Authorize returns the GitHub authorization URL the user should visit.
// redirectTarget overrides the registered callback when non-empty.
func (s *IntegrationService) Authorize(redirectTarget string) string {
	return s.github.AuthorizationURL(redirectTarget)
}

// ExchangeCode completes the OAuth flow: it trades code for an access token,
// resolves the GitHub identity behind it and persists the integration.
// Nothing is stored unless every upstream step succeeds.
func (s *IntegrationService) ExchangeCode(ctx context.Context, code string) (*model.Integration, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrMissingCode
	}

	token, err := s.github.ExchangeCode(ctx, code)
	if err != nil {
		s.logger.Error("github code exchange failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	identity, err := s.github.FetchIdentity(ctx, token)
	if err != nil {
		s.logger.Error("github identity lookup failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	integration := model.Integration{
		ID:          model.NewIntegrationID(),
		UserID:      identity.ID,
		Username:    identity.Login,
		AccessToken: token,
		ConnectedAt: s.now().UTC(),
	}

	switch s.policy {
	case model.ReauthReject:
		if err := s.store.Create(ctx, integration); err != nil {
			if errors.Is(err, driven.ErrIntegrationExists) {
				s.logger.Warn("rejected re-authorization of connected account",
					"user_id", identity.ID, "username", identity.Login)
				// The new token is not kept, so it must not stay live upstream.
				if revokeErr := s.github.RevokeToken(ctx, token); revokeErr != nil {
					s.logger.Warn("revoking rejected token failed",
						"user_id", identity.ID, "error", revokeErr)
				}
				return nil, driven.ErrIntegrationExists
			}
			return nil, fmt.Errorf("storing integration: %w", err)
		}
	default:
		if err := s.store.Upsert(ctx, integration); err != nil {
			return nil, fmt.Errorf("storing integration: %w", err)
		}
	}

	s.logger.Info("github integration connected", "integration", integration)
	return &integration, nil
}

// ListIntegrations returns every stored integration, unfiltered.
func (s *IntegrationService) ListIntegrations(ctx context.Context) ([]model.Integration, error) {
	integrations, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing integrations: %w", err)
	}
	return integrations, nil
}

// RemoveIntegration revokes the stored token at GitHub and then deletes the
// integration. If revocation fails the local record is kept, so a stored
// integration always means its token may still be valid upstream.
func (s *IntegrationService) RemoveIntegration(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrMissingUserID
	}

	found, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading integration %s: %w", userID, err)
	}
	integration, ok := found.Get()
	if !ok {
		return driven.ErrIntegrationNotFound
	}

	if integration.AccessToken != "" {
		if err := s.github.RevokeToken(ctx, integration.AccessToken); err != nil {
			s.logger.Error("github token revocation failed, integration kept",
				"user_id", userID, "error", err)
			return fmt.Errorf("%w: %w", ErrUpstream, err)
		}
	}

	if err := s.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("deleting integration %s: %w", userID, err)
	}

	s.logger.Info("github integration removed", "user_id", userID)
	return nil
}
