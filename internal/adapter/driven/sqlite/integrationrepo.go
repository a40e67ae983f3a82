package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/samber/mo"

	"github.com/ericfisherdev/ghlink/internal/domain/model"
	"github.com/ericfisherdev/ghlink/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.IntegrationStore = (*IntegrationRepo)(nil)

const integrationColumns = `id, user_id, username, access_token, connected_at`

// IntegrationRepo is the SQLite implementation of the IntegrationStore port interface.
// Access tokens are encrypted with AES-256-GCM before write and decrypted after read.
type IntegrationRepo struct {
	db  *DB
	key []byte // 32-byte AES-256 key; nil disables every token operation.
}

// NewIntegrationRepo creates a new IntegrationRepo. key must be 32 bytes for
// AES-256-GCM. A nil key makes every operation that touches a token return
// driven.ErrEncryptionKeyNotSet.
func NewIntegrationRepo(db *DB, key []byte) *IntegrationRepo {
	return &IntegrationRepo{db: db, key: key}
}

// Create inserts a new integration. Returns driven.ErrIntegrationExists when
// an integration with the same user_id is already stored.
func (r *IntegrationRepo) Create(ctx context.Context, integration model.Integration) error {
	encrypted, err := r.encrypt(integration.AccessToken)
	if err != nil {
		return err
	}

	const query = `INSERT INTO integrations (` + integrationColumns + `) VALUES (?, ?, ?, ?, ?)`
	_, err = r.db.Writer.ExecContext(ctx, query,
		integration.ID,
		integration.UserID,
		integration.Username,
		encrypted,
		formatTime(integration.ConnectedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("create integration for user %s: %w", integration.UserID, driven.ErrIntegrationExists)
		}
		return fmt.Errorf("create integration for user %s: %w", integration.UserID, err)
	}

	return nil
}

// Upsert inserts the integration, or replaces every column of the one already
// stored for the same user_id.
func (r *IntegrationRepo) Upsert(ctx context.Context, integration model.Integration) error {
	encrypted, err := r.encrypt(integration.AccessToken)
	if err != nil {
		return err
	}

	const query = `INSERT INTO integrations (` + integrationColumns + `) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			id = excluded.id,
			username = excluded.username,
			access_token = excluded.access_token,
			connected_at = excluded.connected_at`
	_, err = r.db.Writer.ExecContext(ctx, query,
		integration.ID,
		integration.UserID,
		integration.Username,
		encrypted,
		formatTime(integration.ConnectedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert integration for user %s: %w", integration.UserID, err)
	}

	return nil
}

// GetByUserID retrieves the integration for userID. Returns None if absent.
func (r *IntegrationRepo) GetByUserID(ctx context.Context, userID string) (mo.Option[*model.Integration], error) {
	if r.key == nil {
		return mo.None[*model.Integration](), driven.ErrEncryptionKeyNotSet
	}

	const query = `SELECT ` + integrationColumns + ` FROM integrations WHERE user_id = ?`

	integration, err := r.scanIntegration(r.db.Reader.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return mo.None[*model.Integration](), nil
	}
	if err != nil {
		return mo.None[*model.Integration](), fmt.Errorf("get integration for user %s: %w", userID, err)
	}

	return mo.Some(integration), nil
}

// ListAll returns all integrations ordered by connection time, oldest first.
func (r *IntegrationRepo) ListAll(ctx context.Context) ([]model.Integration, error) {
	if r.key == nil {
		return nil, driven.ErrEncryptionKeyNotSet
	}

	const query = `SELECT ` + integrationColumns + ` FROM integrations ORDER BY connected_at, user_id`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list integrations: %w", err)
	}
	defer rows.Close()

	integrations := []model.Integration{}
	for rows.Next() {
		integration, err := r.scanIntegration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan integration: %w", err)
		}
		integrations = append(integrations, *integration)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate integrations: %w", err)
	}

	return integrations, nil
}

// Delete removes the integration for userID. Returns driven.ErrIntegrationNotFound
// when no row matched.
func (r *IntegrationRepo) Delete(ctx context.Context, userID string) error {
	const query = `DELETE FROM integrations WHERE user_id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("delete integration for user %s: %w", userID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete integration for user %s: %w", userID, driven.ErrIntegrationNotFound)
	}

	return nil
}

// Ping checks both connections.
func (r *IntegrationRepo) Ping(ctx context.Context) error {
	if err := r.db.Reader.PingContext(ctx); err != nil {
		return fmt.Errorf("ping reader: %w", err)
	}
	if err := r.db.Writer.PingContext(ctx); err != nil {
		return fmt.Errorf("ping writer: %w", err)
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (r *IntegrationRepo) scanIntegration(s scanner) (*model.Integration, error) {
	var integration model.Integration
	var encrypted, connectedAt string

	err := s.Scan(&integration.ID, &integration.UserID, &integration.Username, &encrypted, &connectedAt)
	if err != nil {
		return nil, err
	}

	integration.AccessToken, err = r.decrypt(encrypted)
	if err != nil {
		return nil, fmt.Errorf("decrypt token for user %s: %w", integration.UserID, err)
	}

	integration.ConnectedAt, err = parseTime(connectedAt)
	if err != nil {
		return nil, fmt.Errorf("parse connected_at: %w", err)
	}

	return &integration, nil
}

// encrypt encrypts plaintext using AES-256-GCM and returns a base64-encoded string
// containing the nonce (12 bytes) prepended to the ciphertext.
func (r *IntegrationRepo) encrypt(plaintext string) (string, error) {
	if r.key == nil {
		return "", driven.ErrEncryptionKeyNotSet
	}

	gcm, err := newGCM(r.key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decrypt decrypts a base64-encoded AES-256-GCM ciphertext.
func (r *IntegrationRepo) decrypt(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	gcm, err := newGCM(r.key)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}

	return string(plaintext), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}

// storedTimeLayout is fixed width so connected_at sorts chronologically as text.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime renders t in storedTimeLayout, always in UTC.
func formatTime(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %q", s)
}
