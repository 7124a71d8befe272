package ledger

import (
	"context"
	"time"

	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// Repository defines data access for the stock ledger.
type Repository interface {
	// Append bulk inserts entries. Must be called inside a transaction
	// when the entries belong to a document mutation.
	Append(ctx context.Context, entries []Entry) error

	// Balance returns the raw signed sum of deltas for a product.
	// May be negative for legacy data; callers decide how to present it.
	Balance(ctx context.Context, productID id.ID) (types.Quantity, error)

	// BalanceBatch returns raw balances for many products in one grouped
	// query. Products without entries are absent from the result map.
	BalanceBatch(ctx context.Context, productIDs []id.ID) (map[id.ID]types.Quantity, error)

	// EntriesByDocument returns all entries recorded for a document,
	// in insertion order.
	EntriesByDocument(ctx context.Context, documentID id.ID) ([]Entry, error)

	// History returns entries matching the filter, newest first.
	History(ctx context.Context, filter HistoryFilter) ([]Entry, error)

	// LockProducts takes FOR UPDATE row locks on the given product rows
	// in deterministic (sorted) order. Serializes concurrent stock
	// mutations per product; must run inside a transaction.
	LockProducts(ctx context.Context, productIDs []id.ID) error
}

// HistoryFilter for filtering movement history.
type HistoryFilter struct {
	ProductID  *id.ID
	Types      []EntryType
	DocumentID *id.ID
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}
