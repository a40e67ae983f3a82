package model

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// integrationIDPrefix tags integration row IDs so they are recognizable in logs.
const integrationIDPrefix = "ghi_"

// NewIntegrationID returns a new time-ordered integration row ID of the form
// ghi_<ULID>.
func NewIntegrationID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return integrationIDPrefix + ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
