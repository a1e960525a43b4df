// Package postgres persists moderation violations using the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/solshare/feed-ranker/internal/model"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies
// connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Bootstrap performs a connectivity check to ensure Postgres is reachable.
// Ping-only; migrations own the schema.
func Bootstrap(ctx context.Context, dsn string) error {
	if dsn == "" {
		return nil // No DSN configured, skip bootstrap
	}
	db, err := Open(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return db.PingContext(ctx)
}

// ViolationStore writes moderation violations to Postgres.
type ViolationStore struct {
	db *sql.DB
}

// NewViolationStore constructs a store over an open handle.
func NewViolationStore(db *sql.DB) *ViolationStore { return &ViolationStore{db: db} }

// Record inserts one violation row.
func (s *ViolationStore) Record(ctx context.Context, v model.Violation) error {
	created := v.CreationTime
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO moderation_violations (violation_id, wallet, category, verdict, max_score, explanation, creation_time)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
    `, v.ViolationID, v.Wallet, v.Category, v.Verdict, v.MaxScore, v.Explanation, created)
	if err != nil {
		return fmt.Errorf("insert violation: %w", err)
	}
	return nil
}

// ListByWallet returns a wallet's violations, newest first.
func (s *ViolationStore) ListByWallet(ctx context.Context, wallet string, limit int) ([]model.Violation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT violation_id, wallet, category, verdict, max_score, explanation, creation_time
        FROM moderation_violations
        WHERE wallet = $1
        ORDER BY creation_time DESC
        LIMIT $2
    `, wallet, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Violation
	for rows.Next() {
		var v model.Violation
		if err := rows.Scan(&v.ViolationID, &v.Wallet, &v.Category, &v.Verdict, &v.MaxScore, &v.Explanation, &v.CreationTime); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// HealthPing implements the health pinger over the store's handle.
func (s *ViolationStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
