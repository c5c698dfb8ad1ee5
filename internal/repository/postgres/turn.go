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

// TurnRepository implements repository.TurnRepository using PostgreSQL
type TurnRepository struct {
	db *sqlx.DB
}

// NewTurnRepository creates a new PostgreSQL turn repository
func NewTurnRepository(db *sqlx.DB) repository.TurnRepository {
	return &TurnRepository{db: db}
}

// Append adds a turn to an existing session inside a transaction that
// row-locks the session, so concurrent appends to the same session
// serialize while unrelated sessions stay independent.
func (r *TurnRepository) Append(ctx context.Context, sessionID, sender, content string) (*repository.Turn, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	err = tx.GetContext(ctx, &status, `SELECT status FROM sessions WHERE id = $1 FOR UPDATE`, sessionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	turn := repository.Turn{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Sender:    sender,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO turns (id, session_id, sender, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING seq
	`

	if err := tx.GetContext(ctx, &turn.Seq, query, turn.ID, turn.SessionID, turn.Sender, turn.Content, turn.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to append turn: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit turn: %w", err)
	}

	return &turn, nil
}

// ListBySession retrieves turns for a session in creation order, with
// insertion order breaking timestamp ties.
func (r *TurnRepository) ListBySession(ctx context.Context, sessionID string) ([]repository.Turn, error) {
	turns := []repository.Turn{}
	query := `
		SELECT id, session_id, seq, sender, content, created_at
		FROM turns
		WHERE session_id = $1
		ORDER BY created_at ASC, seq ASC
	`

	if err := r.db.SelectContext(ctx, &turns, query, sessionID); err != nil {
		return nil, err
	}

	return turns, nil
}
