package driven

import (
	"context"
	"errors"

	"github.com/samber/mo"

	"github.com/ericfisherdev/ghlink/internal/domain/model"
)

// Sentinel errors returned by IntegrationStore implementations.
var (
	// ErrIntegrationNotFound indicates no integration is stored for the user ID.
	ErrIntegrationNotFound = errors.New("integration not found")

	// ErrIntegrationExists indicates an integration is already stored for the user ID.
	ErrIntegrationExists = errors.New("integration already exists")

	// ErrEncryptionKeyNotSet is returned when the store was built without an
	// encryption key for access tokens.
	ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set GHLINK_SECRET_KEY")
)

// IntegrationStore defines the driven port for integration persistence.
// Implementations own uniqueness of UserID and serialize concurrent writes.
// Access tokens cross this boundary as plaintext; encryption at rest is the
// adapter's concern.
type IntegrationStore interface {
	// Create inserts a new integration. Returns ErrIntegrationExists if one is
	// already stored for the same UserID.
	Create(ctx context.Context, integration model.Integration) error

	// Upsert inserts the integration or replaces the ID, username, token and
	// connected_at of the one already stored for the same UserID.
	Upsert(ctx context.Context, integration model.Integration) error

	// GetByUserID returns the integration for userID, or None if absent.
	GetByUserID(ctx context.Context, userID string) (mo.Option[*model.Integration], error)

	// ListAll returns every stored integration. There is no pagination.
	ListAll(ctx context.Context) ([]model.Integration, error)

	// Delete removes the integration for userID. Returns ErrIntegrationNotFound
	// if nothing was deleted.
	Delete(ctx context.Context, userID string) error

	// Ping reports whether the underlying storage is reachable.
	Ping(ctx context.Context) error
}
