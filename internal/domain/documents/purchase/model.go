// Package purchase provides the purchase transaction document.
// A purchase records goods received from a vendor; its ledger effect is
// one positive entry per line.
package purchase

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
const DocumentType = "purchase"

// Purchase represents a purchase transaction.
type Purchase struct {
	entity.Document

	// VendorName is the supplier (free-form, no vendor catalog yet)
	VendorName string `db:"vendor_name" json:"vendorName"`

	// TotalAmount is always recomputed from lines, never accepted
	// from the client
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	// Lines is the table part: purchased goods
	Lines []Line `db:"-" json:"lines"`
}

// Line represents one purchased item.
type Line struct {
	LineID    id.ID          `db:"line_id" json:"lineId"`
	LineNo    int            `db:"line_no" json:"lineNo"`
	ProductID id.ID          `db:"product_id" json:"productId"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`
	Amount    types.Money    `db:"amount" json:"amount"`
}

// New creates a new purchase document.
func New(vendorName, invoiceNumber string, date time.Time) *Purchase {
	return &Purchase{
		Document:    entity.NewDocument(invoiceNumber, date),
		VendorName:  strings.TrimSpace(vendorName),
		TotalAmount: types.Zero(),
		Lines:       make([]Line, 0),
	}
}

// AddLine adds a line and recalculates totals.
func (p *Purchase) AddLine(productID id.ID, quantity types.Quantity, unitPrice types.Money) {
	line := Line{
		LineID:    id.New(),
		LineNo:    len(p.Lines) + 1,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Amount:    unitPrice.Mul(quantity.Decimal()),
	}
	p.Lines = append(p.Lines, line)
	p.RecalculateTotals()
}

// ReplaceLines swaps the table part and recalculates totals.
func (p *Purchase) ReplaceLines(lines []Line) {
	p.Lines = make([]Line, 0, len(lines))
	for _, l := range lines {
		p.AddLine(l.ProductID, l.Quantity, l.UnitPrice)
	}
}

// RecalculateTotals updates document totals from lines.
func (p *Purchase) RecalculateTotals() {
	total := types.Zero()
	for i := range p.Lines {
		p.Lines[i].LineNo = i + 1
		p.Lines[i].Amount = p.Lines[i].UnitPrice.Mul(p.Lines[i].Quantity.Decimal())
		total = total.Add(p.Lines[i].Amount)
	}
	p.TotalAmount = total
}

// Validate implements entity.Validatable.
func (p *Purchase) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}

	if strings.TrimSpace(p.VendorName) == "" {
		return apperror.NewValidation("vendor name is required").
			WithDetail("field", "vendorName")
	}

	if len(p.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range p.Lines {
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

// LedgerEntries generates the positive purchase entries for the
// current lines.
func (p *Purchase) LedgerEntries() []ledger.Entry {
	entries := make([]ledger.Entry, 0, len(p.Lines))
	for _, line := range p.Lines {
		e := ledger.NewEntry(line.ProductID, ledger.TypePurchase, line.Quantity, p.Date)
		entries = append(entries, e.ForDocument(p.ID, DocumentType))
	}
	return entries
}

// ReversalEntries generates purchase_return entries that undo the given
// lines. Used by edit and delete; history is appended, never rewritten.
func ReversalEntries(docID id.ID, lines []Line, date time.Time) []ledger.Entry {
	entries := make([]ledger.Entry, 0, len(lines))
	for _, line := range lines {
		e := ledger.NewEntry(line.ProductID, ledger.TypePurchaseReturn, line.Quantity.Neg(), date)
		entries = append(entries, e.ForDocument(docID, DocumentType))
	}
	return entries
}

// QuantityByProduct sums line quantities per product.
func QuantityByProduct(lines []Line) map[id.ID]types.Quantity {
	totals := make(map[id.ID]types.Quantity, len(lines))
	for _, line := range lines {
		totals[line.ProductID] += line.Quantity
	}
	return totals
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
