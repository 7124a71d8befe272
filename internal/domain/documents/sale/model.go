// Package sale provides the sale transaction document.
// A sale records goods shipped to a customer; its ledger effect is one
// negative entry per line, guarded by a pre-commit availability check.
package sale

import (
	"context"
	"strings"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/entity"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/ledger"
)

// DocumentType names this document kind in ledger entries.
const DocumentType = "sale"

// Sale represents a sale transaction.
type Sale struct {
	entity.Document

	// CustomerName is the buyer (free-form, no customer catalog yet)
	CustomerName string `db:"customer_name" json:"customerName"`

	// TotalAmount is always recomputed from lines
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	// Lines is the table part: sold goods
	Lines []Line `db:"-" json:"lines"`
}

// Line represents one sold item.
type Line struct {
	LineID    id.ID          `db:"line_id" json:"lineId"`
	LineNo    int            `db:"line_no" json:"lineNo"`
	ProductID id.ID          `db:"product_id" json:"productId"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`
	Amount    types.Money    `db:"amount" json:"amount"`
}

// New creates a new sale document.
func New(customerName, invoiceNumber string, date time.Time) *Sale {
	return &Sale{
		Document:     entity.NewDocument(invoiceNumber, date),
		CustomerName: strings.TrimSpace(customerName),
		TotalAmount:  types.Zero(),
		Lines:        make([]Line, 0),
	}
}

// AddLine adds a line and recalculates totals.
func (s *Sale) AddLine(productID id.ID, quantity types.Quantity, unitPrice types.Money) {
	line := Line{
		LineID:    id.New(),
		LineNo:    len(s.Lines) + 1,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Amount:    unitPrice.Mul(quantity.Decimal()),
	}
	s.Lines = append(s.Lines, line)
	s.RecalculateTotals()
}

// RecalculateTotals updates document totals from lines.
func (s *Sale) RecalculateTotals() {
	total := types.Zero()
	for i := range s.Lines {
		s.Lines[i].LineNo = i + 1
		s.Lines[i].Amount = s.Lines[i].UnitPrice.Mul(s.Lines[i].Quantity.Decimal())
		total = total.Add(s.Lines[i].Amount)
	}
	s.TotalAmount = total
}

// Validate implements entity.Validatable.
func (s *Sale) Validate(ctx context.Context) error {
	if err := s.Document.Validate(ctx); err != nil {
		return err
	}

	if strings.TrimSpace(s.CustomerName) == "" {
		return apperror.NewValidation("customer name is required").
			WithDetail("field", "customerName")
	}

	if len(s.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range s.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// LedgerEntries generates the negative sale entries for current lines.
func (s *Sale) LedgerEntries() []ledger.Entry {
	entries := make([]ledger.Entry, 0, len(s.Lines))
	for _, line := range s.Lines {
		e := ledger.NewEntry(line.ProductID, ledger.TypeSale, line.Quantity.Neg(), s.Date)
		entries = append(entries, e.ForDocument(s.ID, DocumentType))
	}
	return entries
}

// ReversalEntries generates sale_return entries that put the goods of
// the given lines back on stock. Returning stock never needs an
// availability check.
func ReversalEntries(docID id.ID, lines []Line, date time.Time) []ledger.Entry {
	entries := make([]ledger.Entry, 0, len(lines))
	for _, line := range lines {
		e := ledger.NewEntry(line.ProductID, ledger.TypeSaleReturn, line.Quantity, date)
		entries = append(entries, e.ForDocument(docID, DocumentType))
	}
	return entries
}

// Requirements converts lines to ledger availability requirements.
func Requirements(lines []Line) []ledger.Requirement {
	reqs := make([]ledger.Requirement, 0, len(lines))
	for _, line := range lines {
		reqs = append(reqs, ledger.Requirement{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	return reqs
}

// ProductIDs returns the distinct product IDs referenced by lines.
func ProductIDs(lines []Line) []id.ID {
	seen := make(map[id.ID]struct{}, len(lines))
	ids := make([]id.ID, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	return ids
}
