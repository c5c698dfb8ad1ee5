package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clarity-app/clarity-backend/internal/repository"
)

// SessionRepository implements repository.SessionRepository using PostgreSQL
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *sqlx.DB) repository.SessionRepository {
	return &SessionRepository{db: db}
}

// Create persists a new active session and returns it
func (r *SessionRepository) Create(ctx context.Context, feature string) (*repository.Session, error) {
	session := repository.Session{
		ID:        uuid.New().String(),
		Feature:   feature,
		Status:    repository.StatusActive,
		CreatedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO sessions (id, feature, status, created_at)
		VALUES (:id, :feature, :status, :created_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &session, nil
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(ctx context.Context, id string) (*repository.Session, error) {
	var session repository.Session
	query := `
		SELECT id, feature, status, created_at, ended_at
		FROM sessions
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &session, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &session, nil
}

// End marks a session as ended. Re-ending an ended session is a no-op
// success and keeps the original end timestamp.
func (r *SessionRepository) End(ctx context.Context, id string) (*repository.Session, error) {
	query := `
		UPDATE sessions
		SET status = $2, ended_at = $3
		WHERE id = $1 AND status = $4
	`

	_, err := r.db.ExecContext(ctx, query, id, repository.StatusEnded, time.Now().UTC(), repository.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to end session: %w", err)
	}

	// Read back whether we updated or the session was already ended;
	// an unknown id surfaces as ErrNotFound here.
	return r.Get(ctx, id)
}
