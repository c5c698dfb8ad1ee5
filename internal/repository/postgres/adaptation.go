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

// AdaptationRepository implements repository.AdaptationRepository using PostgreSQL
type AdaptationRepository struct {
	db *sqlx.DB
}

// NewAdaptationRepository creates a new PostgreSQL adaptation repository
func NewAdaptationRepository(db *sqlx.DB) repository.AdaptationRepository {
	return &AdaptationRepository{db: db}
}

// Create persists a new adapted-content record
func (r *AdaptationRepository) Create(ctx context.Context, a *repository.Adaptation) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO adaptations (id, feature, input_method, input_text, output_text, title, created_at)
		VALUES (:id, :feature, :input_method, :input_text, :output_text, :title, :created_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("failed to create adaptation: %w", err)
	}

	return nil
}

// Get retrieves an adaptation by ID
func (r *AdaptationRepository) Get(ctx context.Context, id string) (*repository.Adaptation, error) {
	var a repository.Adaptation
	query := `
		SELECT id, feature, input_method, input_text, output_text, title, created_at
		FROM adaptations
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &a, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &a, nil
}
