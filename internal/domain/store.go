package domain

import "context"

// Store is the persistence surface the services depend on. Two
// implementations exist: postgres.Store for production and memory.Store
// for tests; both honor the same atomicity contract.
type Store interface {
	CartStore
	OrderStore
	ProductStore
	InventoryLedger

	// RunInTx executes fn as one unit of work: every mutation fn
	// performs through tx commits together or not at all. The
	// transaction resource is released on every exit path, including a
	// panic inside fn. Failures are reported as-is; there are no
	// retries.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
