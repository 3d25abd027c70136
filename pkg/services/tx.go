package services

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxBeginner starts a database transaction. *pgxpool.Pool satisfies it; tests
// substitute a fake.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
