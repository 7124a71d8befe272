// Package ledger provides the append-only stock ledger.
// The ledger is the single source of truth for stock levels: every
// balance is the sum of signed deltas, never a mutable counter.
package ledger

import (
	"context"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// EntryType classifies a ledger entry by its originating operation.
type EntryType string

const (
	// TypePurchase records goods received from a vendor (positive delta).
	TypePurchase EntryType = "purchase"

	// TypeSale records goods shipped to a customer (negative delta).
	TypeSale EntryType = "sale"

	// TypePurchaseReturn reverses a purchase line when the document is
	// edited or deleted (negative delta).
	TypePurchaseReturn EntryType = "purchase_return"

	// TypeSaleReturn reverses a sale line (positive delta).
	TypeSaleReturn EntryType = "sale_return"

	// TypeAdjustment records a manual stock correction (either sign).
	TypeAdjustment EntryType = "adjustment"

	// TypeInitialization seeds the opening balance of a product
	// (positive delta).
	TypeInitialization EntryType = "initialization"
)

// IsValid reports whether the entry type is one of the known values.
func (t EntryType) IsValid() bool {
	switch t {
	case TypePurchase, TypeSale, TypePurchaseReturn, TypeSaleReturn,
		TypeAdjustment, TypeInitialization:
		return true
	}
	return false
}

// expectedSign returns the required sign of Delta for the type:
// +1 positive, -1 negative, 0 any non-zero sign.
func (t EntryType) expectedSign() int {
	switch t {
	case TypePurchase, TypeSaleReturn, TypeInitialization:
		return 1
	case TypeSale, TypePurchaseReturn:
		return -1
	default:
		return 0
	}
}

// Entry is one row of the stock ledger. Entries are append-only: edits
// and deletions of documents append reversal rows, history is never
// rewritten.
type Entry struct {
	// ID is the primary key (UUIDv7, time-ordered)
	ID id.ID `db:"id" json:"id"`

	// ProductID references the product the movement applies to
	ProductID id.ID `db:"product_id" json:"productId"`

	// Type classifies the movement
	Type EntryType `db:"entry_type" json:"entryType"`

	// Delta is the signed stock change (canonical representation)
	Delta types.Quantity `db:"delta" json:"delta"`

	// DocumentID references the originating document, if any
	DocumentID *id.ID `db:"document_id" json:"documentId,omitempty"`

	// DocumentType names the originating document kind ("purchase", "sale")
	DocumentType string `db:"document_type" json:"documentType,omitempty"`

	// Date is the business date of the movement
	Date time.Time `db:"date" json:"date"`

	// Notes is an optional comment (used for manual adjustments)
	Notes string `db:"notes" json:"notes,omitempty"`

	// CreatedAt is the insertion timestamp
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewEntry creates a ledger entry with a generated ID.
func NewEntry(productID id.ID, entryType EntryType, delta types.Quantity, date time.Time) Entry {
	if date.IsZero() {
		date = time.Now().UTC()
	}
	return Entry{
		ID:        id.New(),
		ProductID: productID,
		Type:      entryType,
		Delta:     delta,
		Date:      date,
		CreatedAt: time.Now().UTC(),
	}
}

// ForDocument links the entry to its originating document.
func (e Entry) ForDocument(docID id.ID, docType string) Entry {
	e.DocumentID = &docID
	e.DocumentType = docType
	return e
}

// Validate implements entity.Validatable.
func (e *Entry) Validate(ctx context.Context) error {
	if id.IsNil(e.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}

	if !e.Type.IsValid() {
		return apperror.NewValidation("invalid entry type").
			WithDetail("field", "entryType").
			WithDetail("value", string(e.Type))
	}

	if e.Delta.IsZero() {
		return apperror.NewValidation("delta must be non-zero").
			WithDetail("field", "delta").
			WithDetail("productId", e.ProductID.String())
	}

	switch e.Type.expectedSign() {
	case 1:
		if !e.Delta.IsPositive() {
			return apperror.NewValidation("delta must be positive for this entry type").
				WithDetail("entryType", string(e.Type)).
				WithDetail("delta", e.Delta.String())
		}
	case -1:
		if !e.Delta.IsNegative() {
			return apperror.NewValidation("delta must be negative for this entry type").
				WithDetail("entryType", string(e.Type)).
				WithDetail("delta", e.Delta.String())
		}
	}

	if e.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	return nil
}
