// Package memory provides in-memory repository implementations with the
// same contracts as the PostgreSQL ones. They back the test suite and
// database-less development runs.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clarity-app/clarity-backend/internal/repository"
)

// Store holds all in-memory state behind one mutex. Sessions are
// independent units, so a single lock is acceptable at this scale.
type Store struct {
	mu          sync.Mutex
	sessions    map[string]repository.Session
	turns       map[string][]repository.Turn
	adaptations map[string]repository.Adaptation
	seq         int64
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		sessions:    make(map[string]repository.Session),
		turns:       make(map[string][]repository.Turn),
		adaptations: make(map[string]repository.Adaptation),
	}
}

// Sessions returns the store's repository.SessionRepository view.
func (s *Store) Sessions() repository.SessionRepository { return (*sessionRepo)(s) }

// Turns returns the store's repository.TurnRepository view.
func (s *Store) Turns() repository.TurnRepository { return (*turnRepo)(s) }

// Adaptations returns the store's repository.AdaptationRepository view.
func (s *Store) Adaptations() repository.AdaptationRepository { return (*adaptationRepo)(s) }

type sessionRepo Store

func (r *sessionRepo) Create(ctx context.Context, feature string) (*repository.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session := repository.Session{
		ID:        uuid.New().String(),
		Feature:   feature,
		Status:    repository.StatusActive,
		CreatedAt: time.Now().UTC(),
	}
	r.sessions[session.ID] = session
	return &session, nil
}

func (r *sessionRepo) Get(ctx context.Context, id string) (*repository.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &session, nil
}

func (r *sessionRepo) End(ctx context.Context, id string) (*repository.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if session.Status != repository.StatusEnded {
		session.Status = repository.StatusEnded
		session.EndedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
		r.sessions[id] = session
	}
	return &session, nil
}

type turnRepo Store

func (r *turnRepo) Append(ctx context.Context, sessionID, sender, content string) (*repository.Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sessionID]; !ok {
		return nil, repository.ErrNotFound
	}

	r.seq++
	turn := repository.Turn{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Seq:       r.seq,
		Sender:    sender,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	r.turns[sessionID] = append(r.turns[sessionID], turn)
	return &turn, nil
}

func (r *turnRepo) ListBySession(ctx context.Context, sessionID string) ([]repository.Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	turns := make([]repository.Turn, len(r.turns[sessionID]))
	copy(turns, r.turns[sessionID])
	sort.SliceStable(turns, func(i, j int) bool {
		if !turns[i].CreatedAt.Equal(turns[j].CreatedAt) {
			return turns[i].CreatedAt.Before(turns[j].CreatedAt)
		}
		return turns[i].Seq < turns[j].Seq
	})
	return turns, nil
}

type adaptationRepo Store

func (r *adaptationRepo) Create(ctx context.Context, a *repository.Adaptation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.CreatedAt = time.Now().UTC()
	r.adaptations[a.ID] = *a
	return nil
}

func (r *adaptationRepo) Get(ctx context.Context, id string) (*repository.Adaptation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.adaptations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}
