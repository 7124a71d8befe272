package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/tx"
	"shopledger/internal/core/types"
	"shopledger/pkg/logger"
)

// Service provides stock ledger operations. All document services go
// through it to read balances and append movements.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new ledger service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// CurrentStock returns the displayable stock level for a product.
// Raw sums can be negative for products with unrecorded history;
// those are floored at zero.
func (s *Service) CurrentStock(ctx context.Context, productID id.ID) (types.Quantity, error) {
	balance, err := s.repo.Balance(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("ledger balance: %w", err)
	}
	if balance.IsNegative() {
		return 0, nil
	}
	return balance, nil
}

// CurrentStockBatch returns displayable stock levels for many products
// with one grouped query. Every requested product appears in the result;
// products without entries map to zero.
func (s *Service) CurrentStockBatch(ctx context.Context, productIDs []id.ID) (map[id.ID]types.Quantity, error) {
	balances, err := s.repo.BalanceBatch(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("ledger balances: %w", err)
	}

	result := make(map[id.ID]types.Quantity, len(productIDs))
	for _, pid := range productIDs {
		b := balances[pid]
		if b.IsNegative() {
			b = 0
		}
		result[pid] = b
	}
	return result, nil
}

// Append validates and records entries. Must be called inside the
// caller's transaction when part of a document mutation.
func (s *Service) Append(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	for i := range entries {
		if err := entries[i].Validate(ctx); err != nil {
			return err
		}
	}

	if err := s.repo.Append(ctx, entries); err != nil {
		return fmt.Errorf("append ledger entries: %w", err)
	}

	logger.Debug(ctx, "ledger entries appended",
		"count", len(entries),
		"first_type", string(entries[0].Type),
	)

	return nil
}

// Requirement is one line of a stock availability request.
type Requirement struct {
	ProductID id.ID
	Quantity  types.Quantity
}

// StockCheck is the result of an availability check for one product.
type StockCheck struct {
	ProductID id.ID
	Available types.Quantity
	Required  types.Quantity
	OK        bool
}

// ValidateStock checks a single product requirement. Side-effect free.
func (s *Service) ValidateStock(ctx context.Context, productID id.ID, required types.Quantity) (StockCheck, error) {
	checks, err := s.ValidateStockBatch(ctx, []Requirement{{ProductID: productID, Quantity: required}})
	if err != nil {
		return StockCheck{}, err
	}
	return checks[0], nil
}

// ValidateStockBatch checks every requirement against current stock.
// Requirements for the same product are summed before the comparison,
// so a request can never pass by splitting one product across lines.
// Side-effect free: callers decide whether failures abort the request.
func (s *Service) ValidateStockBatch(ctx context.Context, requirements []Requirement) ([]StockCheck, error) {
	if len(requirements) == 0 {
		return nil, nil
	}

	required := make(map[id.ID]types.Quantity, len(requirements))
	order := make([]id.ID, 0, len(requirements))
	for _, r := range requirements {
		if _, seen := required[r.ProductID]; !seen {
			order = append(order, r.ProductID)
		}
		required[r.ProductID] += r.Quantity
	}

	available, err := s.CurrentStockBatch(ctx, order)
	if err != nil {
		return nil, err
	}

	checks := make([]StockCheck, 0, len(order))
	for _, pid := range order {
		req := required[pid]
		avail := available[pid]
		checks = append(checks, StockCheck{
			ProductID: pid,
			Available: avail,
			Required:  req,
			OK:        avail >= req,
		})
	}
	return checks, nil
}

// LockProducts serializes concurrent mutations for the given products.
// IDs are deduplicated and sorted so concurrent transactions always
// acquire locks in the same order (no deadlocks).
func (s *Service) LockProducts(ctx context.Context, productIDs []id.ID) error {
	if len(productIDs) == 0 {
		return nil
	}

	unique := make(map[id.ID]struct{}, len(productIDs))
	sorted := make([]id.ID, 0, len(productIDs))
	for _, pid := range productIDs {
		if _, ok := unique[pid]; ok {
			continue
		}
		unique[pid] = struct{}{}
		sorted = append(sorted, pid)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].String() < sorted[j].String()
	})

	return s.repo.LockProducts(ctx, sorted)
}

// Adjust records a manual stock correction. Runs in its own
// transaction: the product row is locked, the resulting balance is
// checked, and the entry is appended only when stock stays
// non-negative.
func (s *Service) Adjust(ctx context.Context, productID id.ID, delta types.Quantity, date time.Time, notes string) (Entry, error) {
	if delta.IsZero() {
		return Entry{}, apperror.NewValidation("adjustment delta cannot be zero").
			WithDetail("field", "delta")
	}

	entry := NewEntry(productID, TypeAdjustment, delta, date)
	entry.Notes = notes
	if err := entry.Validate(ctx); err != nil {
		return Entry{}, err
	}

	err := s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := s.LockProducts(txCtx, []id.ID{productID}); err != nil {
			return err
		}

		balance, err := s.repo.Balance(txCtx, productID)
		if err != nil {
			return fmt.Errorf("ledger balance: %w", err)
		}

		if (balance + delta).IsNegative() {
			return apperror.NewBusinessRule(apperror.CodeInsufficientStock,
				fmt.Sprintf("adjustment would drive stock negative: available %s, delta %s",
					balance.String(), delta.String())).
				WithDetail("productId", productID.String()).
				WithDetail("available", balance.Float64()).
				WithDetail("delta", delta.Float64())
		}

		return s.repo.Append(txCtx, []Entry{entry})
	})
	if err != nil {
		return Entry{}, err
	}

	logger.Info(ctx, "stock adjusted",
		"product_id", productID.String(),
		"delta", delta.String(),
	)

	return entry, nil
}

// EntriesByDocument returns all ledger rows recorded for a document.
func (s *Service) EntriesByDocument(ctx context.Context, documentID id.ID) ([]Entry, error) {
	return s.repo.EntriesByDocument(ctx, documentID)
}

// History returns movement history matching the filter.
func (s *Service) History(ctx context.Context, filter HistoryFilter) ([]Entry, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}
	return s.repo.History(ctx, filter)
}
