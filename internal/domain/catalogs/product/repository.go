package product

import (
	"context"

	"shopledger/internal/core/id"
	"shopledger/internal/domain"
)

// Repository defines data access for the product catalog.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, productID id.ID) (*Product, error)
	GetByCode(ctx context.Context, code string) (*Product, error)

	// GetByIDs resolves many products at once (used by document
	// services to reject unknown products in one round-trip).
	GetByIDs(ctx context.Context, productIDs []id.ID) (map[id.ID]*Product, error)

	Update(ctx context.Context, p *Product) error
	SetDeletionMark(ctx context.Context, productID id.ID, marked bool) error

	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Product], error)

	ExistsByCode(ctx context.Context, code string) (bool, error)

	// IsReferenced reports whether any purchase or sale line references
	// the product. Referenced products cannot be deleted.
	IsReferenced(ctx context.Context, productID id.ID) (bool, error)
}
