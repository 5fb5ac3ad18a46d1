package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/portfolio-content-api/internal/database"
	"github.com/portfolio-content-api/internal/models"
)

// postgresCache stores slots in the draft_cache table
type postgresCache struct {
	db *database.DB
}

// NewPostgresCache creates a draft cache backed by postgres
func NewPostgresCache(db *database.DB) DraftCache {
	return &postgresCache{db: db}
}

// Get retrieves the payload of a slot
func (r *postgresCache) Get(ctx context.Context, slot string) ([]byte, error) {
	query := `SELECT payload FROM draft_cache WHERE slot = $1`

	var payload string
	err := r.db.QueryRowContext(ctx, query, slot).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(payload), nil
}

// Put upserts a slot and bumps its write counter
func (r *postgresCache) Put(ctx context.Context, slot string, payload []byte) error {
	query := `
		INSERT INTO draft_cache (slot, payload, updated_at, writes)
		VALUES ($1, $2, NOW(), 1)
		ON CONFLICT (slot) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at,
			writes = draft_cache.writes + 1
	`
	_, err := r.db.ExecContext(ctx, query, slot, string(payload))
	return err
}

// Delete removes a slot
func (r *postgresCache) Delete(ctx context.Context, slot string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM draft_cache WHERE slot = $1`, slot)
	return err
}

// Slots lists the known slots that currently hold data
func (r *postgresCache) Slots(ctx context.Context) ([]string, error) {
	query := `SELECT slot FROM draft_cache WHERE slot = ANY($1) ORDER BY slot`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(models.Slots))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []string
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}
