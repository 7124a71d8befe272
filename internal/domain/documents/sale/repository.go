package sale

import (
	"context"
	"time"

	"shopledger/internal/core/id"
	"shopledger/internal/domain"
)

// Repository defines operations for sale documents.
type Repository interface {
	Create(ctx context.Context, doc *Sale) error
	GetByID(ctx context.Context, docID id.ID) (*Sale, error)
	Update(ctx context.Context, doc *Sale) error
	Delete(ctx context.Context, docID id.ID) error

	// Line operations
	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Sale], error)

	// GetForUpdate retrieves the document header with a row lock.
	GetForUpdate(ctx context.Context, docID id.ID) (*Sale, error)
}

// ListFilter for filtering sales.
type ListFilter struct {
	domain.ListFilter

	CustomerName string
	DateFrom     *time.Time
	DateTo       *time.Time
}
