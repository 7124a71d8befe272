package sale

import (
	"context"
	"fmt"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/tx"
	"shopledger/internal/domain"
	"shopledger/internal/domain/catalogs/product"
	"shopledger/internal/domain/ledger"
	"shopledger/pkg/logger"
)

// Service provides business operations for sale documents.
// The availability check and the ledger write happen inside one
// transaction under product row locks, so two concurrent sales cannot
// both pass the check and oversell.
type Service struct {
	repo      Repository
	products  *product.Service
	ledgerSvc *ledger.Service
	txManager tx.Manager
}

// NewService creates a new sale service.
func NewService(repo Repository, products *product.Service, ledgerSvc *ledger.Service, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		ledgerSvc: ledgerSvc,
		txManager: txManager,
	}
}

// Create records a new sale. Any shortfall rejects the whole request
// with one message enumerating every failing line.
func (s *Service) Create(ctx context.Context, doc *Sale) error {
	doc.RecalculateTotals()

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		resolved, err := s.products.Resolve(ctx, ProductIDs(doc.Lines))
		if err != nil {
			return err
		}

		if err := s.ledgerSvc.LockProducts(ctx, ProductIDs(doc.Lines)); err != nil {
			return fmt.Errorf("lock products: %w", err)
		}

		if err := s.checkAvailability(ctx, doc.Lines, resolved); err != nil {
			return err
		}

		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}

		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}

		return s.ledgerSvc.Append(ctx, doc.LedgerEntries())
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "sale created",
		"id", doc.ID,
		"invoice_number", doc.InvoiceNumber,
		"lines", len(doc.Lines),
		"total", doc.TotalAmount.String(),
	)

	return nil
}

// GetByID retrieves a sale with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Sale, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// Update edits a sale. Old lines are reversed first (returning stock
// needs no check), then the new lines are validated against the
// post-reversal balances and recorded. All inside one transaction.
func (s *Service) Update(ctx context.Context, doc *Sale) error {
	doc.RecalculateTotals()

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetForUpdate(ctx, doc.ID)
		if err != nil {
			return err
		}

		oldLines, err := s.repo.GetLines(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}

		affected := append(ProductIDs(oldLines), ProductIDs(doc.Lines)...)
		if err := s.ledgerSvc.LockProducts(ctx, affected); err != nil {
			return fmt.Errorf("lock products: %w", err)
		}

		resolved, err := s.products.Resolve(ctx, affected)
		if err != nil {
			return err
		}

		if err := s.ledgerSvc.Append(ctx, ReversalEntries(doc.ID, oldLines, doc.Date)); err != nil {
			return err
		}

		// New lines see the post-reversal balances within this
		// transaction, so swapping quantities between products works
		// without phantom shortfalls.
		if err := s.checkAvailability(ctx, doc.Lines, resolved); err != nil {
			return err
		}

		doc.CreatedAt = existing.CreatedAt
		doc.Version = existing.Version

		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}

		return s.ledgerSvc.Append(ctx, doc.LedgerEntries())
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "sale updated",
		"id", doc.ID,
		"invoice_number", doc.InvoiceNumber,
		"lines", len(doc.Lines),
	)

	return nil
}

// Delete removes a sale: sale_return entries restore the exact sold
// magnitudes, lines are removed and the header is soft-deleted.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}

		lines, err := s.repo.GetLines(ctx, docID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}

		if err := s.ledgerSvc.LockProducts(ctx, ProductIDs(lines)); err != nil {
			return fmt.Errorf("lock products: %w", err)
		}

		if err := s.ledgerSvc.Append(ctx, ReversalEntries(docID, lines, doc.Date)); err != nil {
			return err
		}

		if err := s.repo.SaveLines(ctx, docID, nil); err != nil {
			return fmt.Errorf("remove lines: %w", err)
		}

		return s.repo.Delete(ctx, docID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "sale deleted", "id", docID)
	return nil
}

// List retrieves sales with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Sale], error) {
	return s.repo.List(ctx, filter)
}

// checkAvailability validates every line against current stock and
// rejects the whole request on any shortfall.
func (s *Service) checkAvailability(ctx context.Context, lines []Line, products map[id.ID]*product.Product) error {
	checks, err := s.ledgerSvc.ValidateStockBatch(ctx, Requirements(lines))
	if err != nil {
		return err
	}

	var shortages []apperror.StockShortage
	for _, check := range checks {
		if check.OK {
			continue
		}
		name := check.ProductID.String()
		if p, ok := products[check.ProductID]; ok {
			name = p.Name
		}
		shortages = append(shortages, apperror.StockShortage{
			Product:   name,
			ProductID: check.ProductID.String(),
			Available: check.Available.Float64(),
			Required:  check.Required.Float64(),
		})
	}

	if len(shortages) > 0 {
		return apperror.NewInsufficientStock(shortages)
	}

	return nil
}
