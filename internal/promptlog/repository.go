package promptlog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles prompt_logs PostgreSQL operations.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert persists a single prompt log entry.
func (r *Repository) Insert(ctx context.Context, e *Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO prompt_logs (id, caller_id, email, char_count, preview, source_ip)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.CallerID, e.Email, e.CharCount, e.Preview, e.SourceIP)
	if err != nil {
		return fmt.Errorf("inserting prompt log: %w", err)
	}
	return nil
}
