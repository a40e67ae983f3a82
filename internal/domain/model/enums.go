package model

// ReauthPolicy decides what happens when an already-connected GitHub account
// completes the OAuth flow again.
type ReauthPolicy string

const (
	// ReauthReplace overwrites the stored username and token.
	ReauthReplace ReauthPolicy = "replace"
	// ReauthReject keeps the stored integration and refuses the new one.
	ReauthReject ReauthPolicy = "reject"
)

// Valid reports whether p is a known policy.
func (p ReauthPolicy) Valid() bool {
	return p == ReauthReplace || p == ReauthReject
}
