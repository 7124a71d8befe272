package purchase

import (
	"context"
	"fmt"
	"sort"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/tx"
	"shopledger/internal/domain"
	"shopledger/internal/domain/catalogs/product"
	"shopledger/internal/domain/ledger"
	"shopledger/pkg/logger"
)

// Service provides business operations for purchase documents.
// Every mutation runs in a single database transaction: header, lines
// and ledger entries commit or roll back together.
type Service struct {
	repo      Repository
	products  *product.Service
	ledgerSvc *ledger.Service
	txManager tx.Manager
}

// NewService creates a new purchase service.
func NewService(repo Repository, products *product.Service, ledgerSvc *ledger.Service, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		ledgerSvc: ledgerSvc,
		txManager: txManager,
	}
}

// Create records a new purchase. Unknown products reject the whole
// request; nothing is written on failure.
func (s *Service) Create(ctx context.Context, doc *Purchase) error {
	doc.RecalculateTotals()

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.products.Resolve(ctx, ProductIDs(doc.Lines)); err != nil {
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

	logger.Info(ctx, "purchase created",
		"id", doc.ID,
		"invoice_number", doc.InvoiceNumber,
		"lines", len(doc.Lines),
		"total", doc.TotalAmount.String(),
	)

	return nil
}

// GetByID retrieves a purchase with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Purchase, error) {
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

// Update edits a purchase. In one transaction the old lines are
// reversed with purchase_return entries, the new lines are recorded
// with fresh purchase entries, and the total is recomputed. The
// reversal is blocked when later sales already consumed the goods.
func (s *Service) Update(ctx context.Context, doc *Purchase) error {
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

		if err := s.checkReversalSafety(ctx, oldLines, resolved); err != nil {
			return err
		}

		if err := s.ledgerSvc.Append(ctx, ReversalEntries(doc.ID, oldLines, doc.Date)); err != nil {
			return err
		}

		// Carry audit fields and the optimistic lock baseline from the
		// locked row, not from the client payload.
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

	logger.Info(ctx, "purchase updated",
		"id", doc.ID,
		"invoice_number", doc.InvoiceNumber,
		"lines", len(doc.Lines),
	)

	return nil
}

// Delete removes a purchase: old lines are reversed (subject to the
// same safety check as edit), lines are removed and the header is
// soft-deleted. Ledger history of the document stays intact.
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

		resolved, err := s.products.Resolve(ctx, ProductIDs(lines))
		if err != nil {
			return err
		}

		if err := s.checkReversalSafety(ctx, lines, resolved); err != nil {
			return err
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

	logger.Info(ctx, "purchase deleted", "id", docID)
	return nil
}

// List retrieves purchases with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Purchase], error) {
	return s.repo.List(ctx, filter)
}

// checkReversalSafety verifies that reversing the given lines keeps
// derived stock non-negative for every product. Later sales may have
// consumed purchased goods; the ledger is never allowed to go below
// zero through a reversal.
func (s *Service) checkReversalSafety(ctx context.Context, lines []Line, products map[id.ID]*product.Product) error {
	if len(lines) == 0 {
		return nil
	}

	required := QuantityByProduct(lines)
	productIDs := make([]id.ID, 0, len(required))
	for pid := range required {
		productIDs = append(productIDs, pid)
	}
	sort.Slice(productIDs, func(i, j int) bool {
		return productIDs[i].String() < productIDs[j].String()
	})

	available, err := s.ledgerSvc.CurrentStockBatch(ctx, productIDs)
	if err != nil {
		return err
	}

	for _, pid := range productIDs {
		req := required[pid]
		avail := available[pid]
		if avail < req {
			name := pid.String()
			if p, ok := products[pid]; ok {
				name = p.Name
			}
			return apperror.NewReversalBlocked(name, avail.Float64(), req.Float64()).
				WithDetail("productId", pid.String())
		}
	}

	return nil
}
