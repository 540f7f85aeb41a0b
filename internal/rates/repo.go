package rates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists exchange rates.
type Store interface {
	Get(ctx context.Context, currency string) (*Rate, error)
	Upsert(ctx context.Context, rates []Rate) error
}

// Repo is the Postgres rate store.
type Repo struct {
	Pool *pgxpool.Pool
}

func (r *Repo) Get(ctx context.Context, currency string) (*Rate, error) {
	var rate Rate
	err := r.Pool.QueryRow(ctx, `
		SELECT currency, rate, fetched_at FROM exchange_rates WHERE currency = $1`,
		strings.ToUpper(currency),
	).Scan(&rate.Currency, &rate.Rate, &rate.FetchedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get rate: %w", err)
	}
	return &rate, nil
}

// Upsert replaces stored rates in a single transaction so readers never see a
// half-applied refresh.
func (r *Repo) Upsert(ctx context.Context, rates []Rate) error {
	if len(rates) == 0 {
		return nil
	}
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin rate upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, rate := range rates {
		_, err := tx.Exec(ctx, `
			INSERT INTO exchange_rates (currency, rate, fetched_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (currency) DO UPDATE SET rate = EXCLUDED.rate, fetched_at = EXCLUDED.fetched_at`,
			strings.ToUpper(rate.Currency), rate.Rate, rate.FetchedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert rate %s: %w", rate.Currency, err)
		}
	}
	return tx.Commit(ctx)
}
