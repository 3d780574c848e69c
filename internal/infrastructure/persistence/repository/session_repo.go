package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mbet-dev/fund-tracker/internal/application/port"
	"github.com/mbet-dev/fund-tracker/internal/domain/entity"
	"github.com/mbet-dev/fund-tracker/internal/infrastructure/persistence/sqlite"
)

// SessionRepository implements port.SessionRepository
type SessionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sql.DB, logger *zap.Logger) port.SessionRepository {
	return &SessionRepository{
		db:     db,
		logger: logger,
	}
}

// Create records an issued token so sign-out can revoke it later.
func (r *SessionRepository) Create(ctx context.Context, session *entity.Session) error {
	query := `
		INSERT INTO sessions (token_id, user_id, expires_at)
		VALUES (?, ?, ?)
	`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		session.TokenID,
		session.UserID.String(),
		session.ExpiresAt.UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to create session", zap.Error(err))
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByTokenID retrieves a session by its token id. A missing row
// returns (nil, nil).
func (r *SessionRepository) GetByTokenID(ctx context.Context, tokenID string) (*entity.Session, error) {
	query := `SELECT token_id, user_id, expires_at, revoked_at, created_at FROM sessions WHERE token_id = ?`

	var session entity.Session
	var rawUserID string
	var revokedAt sql.NullTime

	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, tokenID).Scan(
		&session.TokenID,
		&rawUserID,
		&session.ExpiresAt,
		&revokedAt,
		&session.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get session", zap.Error(err))
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return nil, fmt.Errorf("malformed session user id %q: %w", rawUserID, err)
	}
	session.UserID = userID

	if revokedAt.Valid {
		t := revokedAt.Time
		session.RevokedAt = &t
	}

	return &session, nil
}

// Revoke marks a session as torn down. Revoking an unknown or already
// revoked session is a no-op.
func (r *SessionRepository) Revoke(ctx context.Context, tokenID string, at time.Time) error {
	query := `UPDATE sessions SET revoked_at = ? WHERE token_id = ? AND revoked_at IS NULL`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, at.UTC(), tokenID)
	if err != nil {
		r.logger.Error("Failed to revoke session", zap.Error(err))
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ port.SessionRepository = (*SessionRepository)(nil)
