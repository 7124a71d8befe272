package product

import (
	"context"
	"fmt"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/tx"
	"shopledger/internal/core/types"
	"shopledger/internal/domain"
	"shopledger/internal/domain/ledger"
	"shopledger/pkg/logger"
)

// Service provides business operations for the product catalog.
type Service struct {
	repo      Repository
	ledgerSvc *ledger.Service
	txManager tx.Manager
}

// NewService creates a new product service.
func NewService(repo Repository, ledgerSvc *ledger.Service, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		ledgerSvc: ledgerSvc,
		txManager: txManager,
	}
}

// Create creates a product. A positive opening stock seeds one
// initialization ledger entry in the same transaction; there is no
// mutable stock column to set.
func (s *Service) Create(ctx context.Context, p *Product, openingStock types.Quantity) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	if openingStock.IsNegative() {
		return apperror.NewValidation("opening stock cannot be negative").
			WithDetail("field", "openingStock")
	}

	exists, err := s.repo.ExistsByCode(ctx, p.Code)
	if err != nil {
		return fmt.Errorf("check code: %w", err)
	}
	if exists {
		return apperror.NewDuplicate("product", "code", p.Code)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create product: %w", err)
		}

		if openingStock.IsPositive() {
			entry := ledger.NewEntry(p.ID, ledger.TypeInitialization, openingStock, time.Time{})
			entry.Notes = "opening balance"
			if err := s.ledgerSvc.Append(ctx, []ledger.Entry{entry}); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "product created",
		"id", p.ID,
		"code", p.Code,
		"opening_stock", openingStock.String(),
	)

	return nil
}

// GetByID retrieves a product by ID.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// GetByCode retrieves a product by SKU.
func (s *Service) GetByCode(ctx context.Context, code string) (*Product, error) {
	return s.repo.GetByCode(ctx, code)
}

// Update modifies a product (optimistic locking in the repository).
func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, p); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		return nil
	})
}

// Delete soft-deletes a product. Deletion is blocked while any purchase
// or sale line references the product, so historical documents keep
// resolving.
func (s *Service) Delete(ctx context.Context, productID id.ID) error {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return err
	}

	referenced, err := s.repo.IsReferenced(ctx, productID)
	if err != nil {
		return fmt.Errorf("check references: %w", err)
	}
	if referenced {
		return apperror.NewConflict("product is referenced by existing documents").
			WithDetail("productId", productID.String()).
			WithDetail("code", p.Code)
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.SetDeletionMark(ctx, productID, true)
	})
}

// List retrieves products with filtering and pagination.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Product], error) {
	return s.repo.List(ctx, filter)
}

// Resolve loads and validates every referenced product. Any unknown or
// deleted product rejects the whole set.
func (s *Service) Resolve(ctx context.Context, productIDs []id.ID) (map[id.ID]*Product, error) {
	products, err := s.repo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve products: %w", err)
	}

	for _, pid := range productIDs {
		p, ok := products[pid]
		if !ok || p.DeletionMark {
			return nil, apperror.NewValidation("unknown product").
				WithDetail("productId", pid.String())
		}
	}

	return products, nil
}
