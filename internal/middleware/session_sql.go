package middleware

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const createSessionSQL = `
INSERT INTO session (session_id, user_id, created_at, expires_at)
VALUES (?, ?, ?, ?)
`

const getSessionSQL = `
SELECT user_id, expires_at
FROM session
WHERE session_id = ?
`

const deleteSessionSQL = `
DELETE FROM session
WHERE session_id = ?
`

// julianday compares instants; the stored text carries its zone offset
const deleteExpiredSessionsSQL = `
DELETE FROM session
WHERE julianday(expires_at) < julianday(?)
`

// SQLSessionStore keeps sessions in the 'session' table so they survive restarts.
type SQLSessionStore struct {
	db  *sqlx.DB
	ttl time.Duration
}

// NewSQLSessionStore creates a session store backed by the tracker database.
func NewSQLSessionStore(db *sqlx.DB, ttl time.Duration) *SQLSessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SQLSessionStore{db: db, ttl: ttl}
}

func (s *SQLSessionStore) Create(ctx context.Context, userID string) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	// expired rows are dropped whenever someone logs in
	if _, err := s.db.ExecContext(ctx, deleteExpiredSessionsSQL, now); err != nil {
		return "", fmt.Errorf("purge sessions: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, createSessionSQL, id, userID, now, now.Add(s.ttl)); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

func (s *SQLSessionStore) Resolve(ctx context.Context, token string) (string, bool, error) {
	var row struct {
		UserID    string    `db:"user_id"`
		ExpiresAt time.Time `db:"expires_at"`
	}
	err := s.db.GetContext(ctx, &row, getSessionSQL, token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get session: %w", err)
	}

	if time.Now().After(row.ExpiresAt) {
		if err := s.Destroy(ctx, token); err != nil {
			return "", false, err
		}
		return "", false, nil
	}
	return row.UserID, true, nil
}

func (s *SQLSessionStore) Destroy(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, deleteSessionSQL, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
