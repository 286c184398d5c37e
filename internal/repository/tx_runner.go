package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TxRunner executes a unit of work inside a single transaction.
type TxRunner interface {
	RunItinerary(ctx context.Context, fn func(repo ItineraryRepository) error) error
}

type pgTxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner builds a runner over the pool.
func NewTxRunner(pool *pgxpool.Pool) TxRunner {
	return &pgTxRunner{pool: pool}
}

// RunItinerary begins a transaction, hands fn a tx-bound repository, and commits when fn succeeds.
func (r *pgTxRunner) RunItinerary(ctx context.Context, fn func(repo ItineraryRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewItineraryRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
