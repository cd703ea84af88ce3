package repo

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/socialsim/engine/internal/database"
)

// TransactionProvider yields a scoped write transaction with guaranteed
// commit-on-success, rollback-on-failure semantics (spec §4.8, §9).
type TransactionProvider interface {
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx bun.IDB) error) error
}

// BunTransactionProvider implements TransactionProvider over
// internal/database.SafeTx, so a panic or error inside fn always rolls
// back and a normal return always commits.
type BunTransactionProvider struct {
	db bun.IDB
}

func NewBunTransactionProvider(db bun.IDB) *BunTransactionProvider {
	return &BunTransactionProvider{db: db}
}

func (p *BunTransactionProvider) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx bun.IDB) error) (err error) {
	tx, err := database.BeginSafeTx(ctx, p.db)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after Commit is a no-op

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}
