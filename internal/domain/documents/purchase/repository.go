package purchase

import (
	"context"
	"time"

	"shopledger/internal/core/id"
	"shopledger/internal/domain"
)

// Repository defines operations for purchase documents.
type Repository interface {
	Create(ctx context.Context, doc *Purchase) error
	GetByID(ctx context.Context, docID id.ID) (*Purchase, error)
	Update(ctx context.Context, doc *Purchase) error
	Delete(ctx context.Context, docID id.ID) error

	// Line operations
	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Purchase], error)

	// GetForUpdate retrieves the document header with a row lock.
	GetForUpdate(ctx context.Context, docID id.ID) (*Purchase, error)
}

// ListFilter for filtering purchases.
type ListFilter struct {
	domain.ListFilter

	VendorName string
	DateFrom   *time.Time
	DateTo     *time.Time
}
