// Package ledger_repo provides the PostgreSQL implementation of the
// stock ledger repository.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/ledger"
	"shopledger/internal/infrastructure/storage/postgres"
)

const (
	ledgerTable    = "stock_ledger"
	productsTable  = "cat_products"
	copyBatchFloor = 20
)

var ledgerColumns = []string{
	"id", "product_id", "entry_type", "delta",
	"document_id", "document_type", "date", "notes", "created_at",
}

// LedgerRepo implements ledger.Repository.
type LedgerRepo struct {
	txManager *postgres.TxManager
	inserter  *postgres.BatchInserter
	builder   squirrel.StatementBuilderType
}

// NewLedgerRepo creates a new ledger repository.
func NewLedgerRepo(txManager *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		txManager: txManager,
		inserter:  postgres.NewBatchInserter(txManager),
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Append bulk inserts entries. Large batches go through the COPY
// protocol; small ones use a multi-row INSERT to save a round-trip.
func (r *LedgerRepo) Append(ctx context.Context, entries []ledger.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	if len(entries) >= copyBatchFloor {
		rows := make([][]any, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []any{
				e.ID, e.ProductID, string(e.Type), e.Delta.Int64Scaled(),
				e.DocumentID, e.DocumentType, e.Date, e.Notes, e.CreatedAt,
			})
		}
		if _, err := r.inserter.CopyFromSlice(ctx, ledgerTable, ledgerColumns, rows); err != nil {
			return fmt.Errorf("copy ledger entries: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(ledgerTable).Columns(ledgerColumns...)
	for _, e := range entries {
		q = q.Values(
			e.ID, e.ProductID, string(e.Type), e.Delta.Int64Scaled(),
			e.DocumentID, e.DocumentType, e.Date, e.Notes, e.CreatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert ledger entries: %w", err)
	}

	return nil
}

// Balance returns the raw signed sum of deltas for a product.
func (r *LedgerRepo) Balance(ctx context.Context, productID id.ID) (types.Quantity, error) {
	q := r.builder.
		Select("COALESCE(SUM(delta), 0)").
		From(ledgerTable).
		Where(squirrel.Eq{"product_id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var scaled int64
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, args...).Scan(&scaled); err != nil {
		return 0, fmt.Errorf("balance: %w", err)
	}

	return types.NewQuantityFromInt64Scaled(scaled), nil
}

// BalanceBatch returns raw balances for many products in one grouped query.
func (r *LedgerRepo) BalanceBatch(ctx context.Context, productIDs []id.ID) (map[id.ID]types.Quantity, error) {
	result := make(map[id.ID]types.Quantity, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}

	q := r.builder.
		Select("product_id", "COALESCE(SUM(delta), 0) AS balance").
		From(ledgerTable).
		Where(squirrel.Eq{"product_id": productIDs}).
		GroupBy("product_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("balances: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pid id.ID
		var scaled int64
		if err := rows.Scan(&pid, &scaled); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		result[pid] = types.NewQuantityFromInt64Scaled(scaled)
	}

	return result, rows.Err()
}

// EntriesByDocument returns all entries recorded for a document in
// insertion order (UUIDv7 ids are time-ordered).
func (r *LedgerRepo) EntriesByDocument(ctx context.Context, documentID id.ID) ([]ledger.Entry, error) {
	q := r.builder.
		Select(ledgerColumns...).
		From(ledgerTable).
		Where(squirrel.Eq{"document_id": documentID}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []ledger.Entry
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("entries by document: %w", err)
	}

	return entries, nil
}

// History returns entries matching the filter, newest first.
func (r *LedgerRepo) History(ctx context.Context, filter ledger.HistoryFilter) ([]ledger.Entry, error) {
	q := r.builder.
		Select(ledgerColumns...).
		From(ledgerTable)

	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.DocumentID != nil {
		q = q.Where(squirrel.Eq{"document_id": *filter.DocumentID})
	}
	if len(filter.Types) > 0 {
		typeStrs := make([]string, 0, len(filter.Types))
		for _, t := range filter.Types {
			typeStrs = append(typeStrs, string(t))
		}
		q = q.Where(squirrel.Eq{"entry_type": typeStrs})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.ToDate})
	}

	q = q.OrderBy("date DESC", "id DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []ledger.Entry
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}

	return entries, nil
}

// LockProducts takes FOR UPDATE row locks on product rows. The ORDER BY
// keeps lock acquisition deterministic across concurrent transactions.
func (r *LedgerRepo) LockProducts(ctx context.Context, productIDs []id.ID) error {
	if len(productIDs) == 0 {
		return nil
	}

	q := r.builder.
		Select("id").
		From(productsTable).
		Where(squirrel.Eq{"id": productIDs}).
		OrderBy("id").
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("lock products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		// Drain: the lock is the point, not the rows.
	}

	return rows.Err()
}
