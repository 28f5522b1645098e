package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repos bundles the repositories bound to one transaction.
type Repos struct {
	Users         UserRepository
	Verifications VerificationRepository
	Payments      PaymentRepository
	Campaigns     CampaignRepository
}

// Transactor runs a function inside one atomic transaction. The function
// receives repositories scoped to that transaction; any returned error
// rolls everything back, otherwise the transaction commits.
type Transactor interface {
	InTx(ctx context.Context, fn func(r Repos) error) error
}

type pgTransactor struct {
	pool *pgxpool.Pool
}

// NewTransactor builds a Postgres-backed Transactor.
func NewTransactor(pool *pgxpool.Pool) Transactor {
	return &pgTransactor{pool: pool}
}

func (t *pgTransactor) InTx(ctx context.Context, fn func(r Repos) error) error {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return err
	}
	// Rollback after a successful commit is a no-op; this guarantees the
	// connection is released on every exit path, panics included.
	defer tx.Rollback(ctx) //nolint:errcheck

	repos := Repos{
		Users:         NewUserRepository(tx),
		Verifications: NewVerificationRepository(tx),
		Payments:      NewPaymentRepository(tx),
		Campaigns:     NewCampaignRepository(tx),
	}
	if err := fn(repos); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
