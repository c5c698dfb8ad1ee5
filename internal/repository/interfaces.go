package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a session or record does not exist.
var ErrNotFound = errors.New("not found")

// Session lifecycle states.
const (
	StatusActive = "active"
	StatusEnded  = "ended"
)

// Turn sender roles.
const (
	SenderUser = "user"
	SenderAI   = "ai"
)

// Session represents a conversation or single-shot interaction context.
type Session struct {
	ID        string       `db:"id" json:"session_id"`
	Feature   string       `db:"feature" json:"feature"`
	Status    string       `db:"status" json:"status"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	EndedAt   sql.NullTime `db:"ended_at" json:"ended_at,omitempty"`
}

// Turn is one immutable message within a session's history. Turns are
// ordered by creation timestamp; Seq breaks ties by insertion order.
type Turn struct {
	ID        string    `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"session_id"`
	Seq       int64     `db:"seq" json:"-"`
	Sender    string    `db:"sender" json:"sender"`
	Content   string    `db:"content" json:"text"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Adaptation is the persisted result of a single-shot transform
// (text simplification or topic explanation). Title is only set for
// features with structured output.
type Adaptation struct {
	ID          string         `db:"id" json:"id"`
	Feature     string         `db:"feature" json:"feature"`
	InputMethod string         `db:"input_method" json:"input_method"`
	InputText   string         `db:"input_text" json:"input_text"`
	OutputText  string         `db:"output_text" json:"output_text"`
	Title       sql.NullString `db:"title" json:"title,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// SessionRepository defines session storage operations.
type SessionRepository interface {
	Create(ctx context.Context, feature string) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	// End transitions the session to ended and stamps the end time.
	// Ending an already-ended session is a no-op success that keeps the
	// original end timestamp.
	End(ctx context.Context, id string) (*Session, error)
}

// TurnRepository defines turn storage operations.
type TurnRepository interface {
	// Append adds an immutable turn to an existing session. It returns
	// ErrNotFound, without writing anything, if the session is unknown.
	Append(ctx context.Context, sessionID, sender, content string) (*Turn, error)
	// ListBySession returns turns in creation order. A session with no
	// turns yields an empty slice, not an error.
	ListBySession(ctx context.Context, sessionID string) ([]Turn, error)
}

// AdaptationRepository defines adapted-content storage operations.
type AdaptationRepository interface {
	Create(ctx context.Context, a *Adaptation) error
	Get(ctx context.Context, id string) (*Adaptation, error)
}
