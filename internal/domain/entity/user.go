package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated principal. Admins work the approval queue,
// everyone else submits requests.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// Principal is the resolved identity attached to an authenticated call.
type Principal struct {
	UserID  uuid.UUID
	Email   string
	IsAdmin bool
}

// Session is a server-side record of an issued token. Signing out revokes
// the record, so a still-unexpired token stops resolving.
type Session struct {
	TokenID   string
	UserID    uuid.UUID
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Revoked returns true once the session has been signed out.
func (s *Session) Revoked() bool {
	return s.RevokedAt != nil
}

// UserRef pairs a user id with its display identity for report filters.
type UserRef struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// UserListing is the partial result of resolving request submitters:
// identities that resolved, plus the ids whose lookup failed. Callers
// decide whether the failures are worth surfacing.
type UserListing struct {
	Resolved  []UserRef   `json:"resolved"`
	FailedIDs []uuid.UUID `json:"failed_ids,omitempty"`
}
