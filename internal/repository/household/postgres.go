package household

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// DefaultPostgresBatchSize bounds the statements queued in one pgx batch.
const DefaultPostgresBatchSize = 100

type postgresStore struct {
	pool      *pgxpool.Pool
	logger    zerolog.Logger
	batchSize int
}

// NewPostgres returns a Store backed by the household_members table.
func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger, batchSize int) Store {
	if batchSize <= 0 {
		batchSize = DefaultPostgresBatchSize
	}
	return &postgresStore{
		pool:      pool,
		logger:    logger.With().Str("component", "household-postgres").Logger(),
		batchSize: batchSize,
	}
}

func (r *postgresStore) BatchWrite(ctx context.Context, partitionKey string, rows []Row) ([]Row, error) {
	const q = `
INSERT INTO household_members (
    household_id, member_key, position, name, contact_kind, contact_value, rsvp, dietary, dish
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (household_id, member_key) DO UPDATE SET
    position = EXCLUDED.position,
    name = EXCLUDED.name,
    contact_kind = EXCLUDED.contact_kind,
    contact_value = EXCLUDED.contact_value,
    rsvp = EXCLUDED.rsvp,
    dietary = EXCLUDED.dietary,
    dish = EXCLUDED.dish,
    updated_at = now()
`
	if len(rows) == 0 {
		return nil, nil
	}
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, row := range rows {
			batch.Queue(q, partitionKey, row.MemberKey, row.Position, row.Name,
				row.ContactKind, row.ContactValue, row.RSVP, row.Dietary, row.Dish)
		}
		br := tx.SendBatch(ctx, batch)
		for range rows {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return err
			}
		}
		return br.Close()
	})
	if err != nil {
		r.logger.Debug().Err(err).Str("household_id", partitionKey).Int("rows", len(rows)).Msg("batch write failed")
		return nil, classifyPostgres(err)
	}
	return nil, nil
}

func (r *postgresStore) Query(ctx context.Context, partitionKey string) ([]Row, error) {
	const q = `
SELECT household_id, member_key, position, name, contact_kind, contact_value, rsvp, dietary, dish
FROM household_members
WHERE household_id = $1
ORDER BY position, member_key
`
	rows, err := r.pool.Query(ctx, q, partitionKey)
	if err != nil {
		return nil, classifyPostgres(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[Row])
	if err != nil {
		return nil, classifyPostgres(err)
	}
	return out, nil
}

func (r *postgresStore) BatchDelete(ctx context.Context, partitionKey string, memberKeys []string) ([]string, error) {
	const q = `DELETE FROM household_members WHERE household_id = $1 AND member_key = ANY($2)`
	if len(memberKeys) == 0 {
		return nil, nil
	}
	if _, err := r.pool.Exec(ctx, q, partitionKey, memberKeys); err != nil {
		return nil, classifyPostgres(err)
	}
	return nil, nil
}

func (r *postgresStore) MaxBatchSize() int {
	return r.batchSize
}

func (r *postgresStore) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func classifyPostgres(err error) error {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "53300", "57P01":
			return fmt.Errorf("%w: %w", ErrTransient, err)
		}
		return err
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}
	return err
}
