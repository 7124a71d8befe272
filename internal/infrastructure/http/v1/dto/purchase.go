package dto

import (
	"shopledger/internal/core/types"
	"shopledger/internal/domain"
	"shopledger/internal/domain/documents/purchase"
)

// DocumentLineRequest is one line of a purchase or sale request.
type DocumentLineRequest struct {
	ProductID string         `json:"productId" binding:"required"`
	Quantity  types.Quantity `json:"quantity" binding:"required"`
	UnitPrice types.Money    `json:"unitPrice"`
}

// DocumentLineResponse is the wire shape of a document line.
type DocumentLineResponse struct {
	LineNo    int            `json:"lineNo"`
	ProductID string         `json:"productId"`
	Quantity  types.Quantity `json:"quantity"`
	UnitPrice types.Money    `json:"unitPrice"`
	Amount    types.Money    `json:"amount"`
}

// CreatePurchaseRequest for creating purchases.
type CreatePurchaseRequest struct {
	VendorName    string                `json:"vendorName" binding:"required"`
	InvoiceNumber string                `json:"invoiceNumber" binding:"required"`
	Date          Date                  `json:"date"`
	Notes         string                `json:"notes"`
	Lines         []DocumentLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToModel converts the request to a domain purchase.
func (r *CreatePurchaseRequest) ToModel() (*purchase.Purchase, error) {
	doc := purchase.New(r.VendorName, r.InvoiceNumber, r.Date.Time)
	doc.Notes = r.Notes
	for _, line := range r.Lines {
		productID, err := ParseID(line.ProductID)
		if err != nil {
			return nil, err
		}
		doc.AddLine(productID, line.Quantity, line.UnitPrice)
	}
	return doc, nil
}

// UpdatePurchaseRequest for editing purchases. The full document is
// resubmitted; the server diffs nothing, it reverses and reapplies.
type UpdatePurchaseRequest struct {
	VendorName    string                `json:"vendorName" binding:"required"`
	InvoiceNumber string                `json:"invoiceNumber" binding:"required"`
	Date          Date                  `json:"date"`
	Notes         string                `json:"notes"`
	Lines         []DocumentLineRequest `json:"lines" binding:"required,min=1,dive"`
	Version       int                   `json:"version" binding:"required,min=1"`
}

// ToModel converts the request to a domain purchase (ID set by handler).
func (r *UpdatePurchaseRequest) ToModel() (*purchase.Purchase, error) {
	doc := purchase.New(r.VendorName, r.InvoiceNumber, r.Date.Time)
	doc.Notes = r.Notes
	doc.Version = r.Version
	for _, line := range r.Lines {
		productID, err := ParseID(line.ProductID)
		if err != nil {
			return nil, err
		}
		doc.AddLine(productID, line.Quantity, line.UnitPrice)
	}
	return doc, nil
}

// PurchaseResponse is the wire shape of a purchase document.
type PurchaseResponse struct {
	ID            string                 `json:"id"`
	VendorName    string                 `json:"vendorName"`
	InvoiceNumber string                 `json:"invoiceNumber"`
	Date          Date                   `json:"date"`
	Notes         string                 `json:"notes,omitempty"`
	TotalAmount   types.Money            `json:"totalAmount"`
	Lines         []DocumentLineResponse `json:"lines"`
	DeletionMark  bool                   `json:"deletionMark"`
	Version       int                    `json:"version"`
}

// FromPurchase converts a domain purchase to its response shape.
func FromPurchase(doc *purchase.Purchase) PurchaseResponse {
	lines := make([]DocumentLineResponse, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		lines = append(lines, DocumentLineResponse{
			LineNo:    line.LineNo,
			ProductID: line.ProductID.String(),
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Amount:    line.Amount,
		})
	}
	return PurchaseResponse{
		ID:            doc.ID.String(),
		VendorName:    doc.VendorName,
		InvoiceNumber: doc.InvoiceNumber,
		Date:          NewDate(doc.Date),
		Notes:         doc.Notes,
		TotalAmount:   doc.TotalAmount,
		Lines:         lines,
		DeletionMark:  doc.DeletionMark,
		Version:       doc.Version,
	}
}

// PurchaseListResponse converts a list result (headers only).
func PurchaseListResponse(result domain.ListResult[*purchase.Purchase]) ListResponse {
	items := make([]PurchaseResponse, 0, len(result.Items))
	for _, doc := range result.Items {
		items = append(items, FromPurchase(doc))
	}
	return ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	}
}
