package model

import (
	"log/slog"
	"time"
)

// Integration is a connected GitHub account and the OAuth access token issued
// for it. UserID is the GitHub numeric user ID rendered as text and is unique
// across all stored integrations.
type Integration struct {
	ID          string
	UserID      string
	Username    string
	AccessToken string
	ConnectedAt time.Time
}

// LogValue implements slog.LogValuer so an Integration can be passed to a
// logger without leaking the access token.
func (i Integration) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", i.ID),
		slog.String("user_id", i.UserID),
		slog.String("username", i.Username),
		slog.Bool("has_token", i.AccessToken != ""),
		slog.Time("connected_at", i.ConnectedAt),
	)
}

// Identity is the authenticated GitHub user as reported by GET /user.
type Identity struct {
	ID    string
	Login string
}
