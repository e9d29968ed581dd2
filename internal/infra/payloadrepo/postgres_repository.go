package payloadrepo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/cyclecare/internal/domain/analytics"
)

// PostgresRepository persists chart payloads in the chart_payloads table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get fetches the payload document for a profile.
func (r *PostgresRepository) Get(ctx context.Context, profileID string) ([]byte, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT payload::text
		FROM chart_payloads
		WHERE profile_id = $1
		LIMIT 1
	`, profileID)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, false, rows.Err()
	}
	var raw string
	if err := rows.Scan(&raw); err != nil {
		return nil, false, err
	}
	return []byte(raw), true, rows.Err()
}

// Save upserts the payload document for a profile. The text is stored verbatim.
func (r *PostgresRepository) Save(ctx context.Context, profileID string, raw []byte) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO chart_payloads (profile_id, payload, updated_at)
		VALUES ($1, $2::json, NOW())
		ON CONFLICT (profile_id)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()
	`, profileID, string(raw))
	return err
}

var _ analytics.PayloadRepository = (*PostgresRepository)(nil)
