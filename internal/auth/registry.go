package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/isdelr/inkwell-be/internal/models"
	"github.com/rs/zerolog/log"
)

const tokenBytes = 32

// Registry owns the set of live session tokens. It is the only shared mutable
// state in the auth core: every mutation, including its write-through to the
// sessions table, runs under the write lock, and Resolve runs under the read
// lock. Once Revoke or RevokeAll returns, no later Resolve can see the
// affected tokens, and RevokeAll cannot interleave with a concurrent Issue
// for the same user.
type Registry struct {
	db  *sql.DB
	ttl time.Duration // zero disables expiry

	mu     sync.RWMutex
	byHash map[string]models.Session
	byUser map[string]map[string]struct{} // userID -> set of token hashes
}

// TokenResolver is the read side of the registry, all the middleware needs.
type TokenResolver interface {
	Resolve(token string) (userID string, ok bool)
}

// TokenIssuer is the subset of the registry the authenticator depends on.
type TokenIssuer interface {
	Issue(userID string) (string, error)
	Revoke(token string) error
	RevokeAll(userID string) error
}

// NewRegistry creates a Registry backed by the sessions table and loads the
// surviving sessions into memory. Rows that expired while the service was
// down are deleted rather than loaded.
func NewRegistry(db *sql.DB, ttl time.Duration) (*Registry, error) {
	r := &Registry{
		db:     db,
		ttl:    ttl,
		byHash: make(map[string]models.Session),
		byUser: make(map[string]map[string]struct{}),
	}

	rows, err := db.Query("SELECT token_hash, user_id, issued_at, expires_at FROM sessions")
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}
	defer rows.Close()

	now := time.Now()
	var stale []string
	for rows.Next() {
		var s models.Session
		var expiresAt sql.NullTime
		if err := rows.Scan(&s.TokenHash, &s.UserID, &s.IssuedAt, &expiresAt); err != nil {
			return nil, err
		}
		if expiresAt.Valid {
			s.ExpiresAt = &expiresAt.Time
		}
		if s.Expired(now) {
			stale = append(stale, s.TokenHash)
			continue
		}
		r.insertLocked(s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, hash := range stale {
		if _, err := db.Exec("DELETE FROM sessions WHERE token_hash = ?", hash); err != nil {
			log.Warn().Err(err).Msg("Failed to delete expired session on startup")
		}
	}
	return r, nil
}

// Issue mints a new opaque token bound to userID and returns its plaintext
// value. The token is 32 bytes of crypto/rand output, hex encoded; only its
// SHA-256 digest is retained, so neither memory nor the database ever holds
// a usable credential.
func (r *Registry) Issue(userID string) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	token := hex.EncodeToString(buf)

	s := models.Session{
		TokenHash: hashToken(token),
		UserID:    userID,
		IssuedAt:  time.Now(),
	}
	if r.ttl > 0 {
		exp := s.IssuedAt.Add(r.ttl)
		s.ExpiresAt = &exp
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(
		"INSERT INTO sessions (token_hash, user_id, issued_at, expires_at) VALUES (?, ?, ?, ?)",
		s.TokenHash, s.UserID, s.IssuedAt, s.ExpiresAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to persist session: %w", err)
	}
	r.insertLocked(s)
	return token, nil
}

// Resolve maps a presented token to its owning user id. A token that is
// unknown, revoked, or expired resolves the same way: ok == false. Resolve
// never mutates the registry.
func (r *Registry) Resolve(token string) (string, bool) {
	hash := hashToken(token)

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byHash[hash]
	if !ok || s.Expired(time.Now()) {
		return "", false
	}
	return s.UserID, true
}

// Revoke removes a single session. Revoking an unknown or already-revoked
// token is a no-op, so logout can be retried freely.
func (r *Registry) Revoke(token string) error {
	hash := hashToken(token)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.Exec("DELETE FROM sessions WHERE token_hash = ?", hash); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	r.removeLocked(hash)
	return nil
}

// RevokeAll removes every session belonging to userID in one step. Callers
// observe either the full set or none of it.
func (r *Registry) RevokeAll(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.Exec("DELETE FROM sessions WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	for hash := range r.byUser[userID] {
		delete(r.byHash, hash)
	}
	delete(r.byUser, userID)
	return nil
}

// PruneExpired removes sessions whose expiry has passed and reports how many
// were removed. With no TTL configured there is never anything to prune.
func (r *Registry) PruneExpired() (int, error) {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	var stale []string
	for hash, s := range r.byHash {
		if s.Expired(now) {
			stale = append(stale, hash)
		}
	}
	for _, hash := range stale {
		if _, err := r.db.Exec("DELETE FROM sessions WHERE token_hash = ?", hash); err != nil {
			return 0, fmt.Errorf("failed to delete expired session: %w", err)
		}
		r.removeLocked(hash)
	}
	return len(stale), nil
}

// SessionCount returns the number of live sessions held by userID.
func (r *Registry) SessionCount(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID])
}

func (r *Registry) insertLocked(s models.Session) {
	r.byHash[s.TokenHash] = s
	if r.byUser[s.UserID] == nil {
		r.byUser[s.UserID] = make(map[string]struct{})
	}
	r.byUser[s.UserID][s.TokenHash] = struct{}{}
}

func (r *Registry) removeLocked(hash string) {
	s, ok := r.byHash[hash]
	if !ok {
		return
	}
	delete(r.byHash, hash)
	if set := r.byUser[s.UserID]; set != nil {
		delete(set, hash)
		if len(set) == 0 {
			delete(r.byUser, s.UserID)
		}
	}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
