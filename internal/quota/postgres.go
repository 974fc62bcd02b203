package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// maxTxRetries bounds the serialization-failure retry loop. Contention on a
// single caller's row is short-lived, so a small budget is enough.
const maxTxRetries = 3

// PostgresStore persists quota records in the user_quotas table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Read(ctx context.Context, callerID string) (*Record, error) {
	rec, err := scanRecord(s.pool.QueryRow(ctx,
		`SELECT caller_id, email, used_today, total_quota, last_usage_date, reset_at
		 FROM user_quotas WHERE caller_id = $1`, callerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading quota record: %w", err)
	}
	return rec, nil
}

// Update runs fn inside a serializable transaction with the caller's row
// locked, retrying on serialization failures and deadlocks. Serializable
// isolation closes the race where two transactions both observe an absent
// row and both insert a first-use record.
func (s *PostgresStore) Update(ctx context.Context, callerID string, fn UpdateFn) (Decision, error) {
	var (
		d       Decision
		lastErr error
	)
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		d, lastErr = s.tryUpdate(ctx, callerID, fn)
		if lastErr == nil || !retryable(lastErr) {
			return d, lastErr
		}
	}
	return d, fmt.Errorf("quota update for %s kept conflicting: %w", callerID, lastErr)
}

func (s *PostgresStore) tryUpdate(ctx context.Context, callerID string, fn UpdateFn) (Decision, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return Decision{}, fmt.Errorf("beginning quota tx: %w", err)
	}
	defer tx.Rollback(ctx)

	cur, err := scanRecord(tx.QueryRow(ctx,
		`SELECT caller_id, email, used_today, total_quota, last_usage_date, reset_at
		 FROM user_quotas WHERE caller_id = $1 FOR UPDATE`, callerID))
	if errors.Is(err, pgx.ErrNoRows) {
		cur, err = nil, nil
	}
	if err != nil {
		return Decision{}, fmt.Errorf("reading quota record for update: %w", err)
	}

	next, d := fn(cur)
	if next == nil {
		// Denials on an unchanged day commit nothing.
		return d, tx.Commit(ctx)
	}

	var resetAt *time.Time
	if !next.ResetAt.IsZero() {
		resetAt = &next.ResetAt
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO user_quotas (caller_id, email, used_today, total_quota, last_usage_date, reset_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW())
		 ON CONFLICT (caller_id) DO UPDATE
		 SET email = EXCLUDED.email,
		     used_today = EXCLUDED.used_today,
		     total_quota = EXCLUDED.total_quota,
		     last_usage_date = EXCLUDED.last_usage_date,
		     reset_at = EXCLUDED.reset_at,
		     updated_at = NOW()`,
		callerID, next.Email, next.UsedToday, next.TotalQuota, next.LastUsageDate, resetAt)
	if err != nil {
		return Decision{}, fmt.Errorf("writing quota record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Decision{}, fmt.Errorf("committing quota tx: %w", err)
	}
	return d, nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var (
		rec     Record
		resetAt *time.Time
	)
	err := row.Scan(&rec.CallerID, &rec.Email, &rec.UsedToday, &rec.TotalQuota,
		&rec.LastUsageDate, &resetAt)
	if err != nil {
		return nil, err
	}
	if resetAt != nil {
		rec.ResetAt = *resetAt
	}
	return &rec, nil
}

func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	// 40001 serialization_failure, 40P01 deadlock_detected
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
