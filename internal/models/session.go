package models

import "time"

// Session is a live bearer-token session. Only the SHA-256 digest of the
// token is ever stored; the plaintext value exists client-side only.
// A user may hold any number of sessions at once, one per device.
type Session struct {
	TokenHash string     `json:"-"`
	UserID    string     `json:"userId"`
	IssuedAt  time.Time  `json:"issuedAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"` // nil when sessions do not expire
}

// Expired reports whether the session has passed its expiry, if it has one.
func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}
