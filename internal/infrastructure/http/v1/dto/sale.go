package dto

import (
	"shopledger/internal/core/types"
	"shopledger/internal/domain"
	"shopledger/internal/domain/documents/sale"
)

// CreateSaleRequest for creating sales.
type CreateSaleRequest struct {
	CustomerName  string                `json:"customerName" binding:"required"`
	InvoiceNumber string                `json:"invoiceNumber" binding:"required"`
	Date          Date                  `json:"date"`
	Notes         string                `json:"notes"`
	Lines         []DocumentLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToModel converts the request to a domain sale.
func (r *CreateSaleRequest) ToModel() (*sale.Sale, error) {
	doc := sale.New(r.CustomerName, r.InvoiceNumber, r.Date.Time)
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

// UpdateSaleRequest for editing sales.
type UpdateSaleRequest struct {
	CustomerName  string                `json:"customerName" binding:"required"`
	InvoiceNumber string                `json:"invoiceNumber" binding:"required"`
	Date          Date                  `json:"date"`
	Notes         string                `json:"notes"`
	Lines         []DocumentLineRequest `json:"lines" binding:"required,min=1,dive"`
	Version       int                   `json:"version" binding:"required,min=1"`
}

// ToModel converts the request to a domain sale (ID set by handler).
func (r *UpdateSaleRequest) ToModel() (*sale.Sale, error) {
	doc := sale.New(r.CustomerName, r.InvoiceNumber, r.Date.Time)
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

// SaleResponse is the wire shape of a sale document.
type SaleResponse struct {
	ID            string                 `json:"id"`
	CustomerName  string                 `json:"customerName"`
	InvoiceNumber string                 `json:"invoiceNumber"`
	Date          Date                   `json:"date"`
	Notes         string                 `json:"notes,omitempty"`
	TotalAmount   types.Money            `json:"totalAmount"`
	Lines         []DocumentLineResponse `json:"lines"`
	DeletionMark  bool                   `json:"deletionMark"`
	Version       int                    `json:"version"`
}

// FromSale converts a domain sale to its response shape.
func FromSale(doc *sale.Sale) SaleResponse {
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
	return SaleResponse{
		ID:            doc.ID.String(),
		CustomerName:  doc.CustomerName,
		InvoiceNumber: doc.InvoiceNumber,
		Date:          NewDate(doc.Date),
		Notes:         doc.Notes,
		TotalAmount:   doc.TotalAmount,
		Lines:         lines,
		DeletionMark:  doc.DeletionMark,
		Version:       doc.Version,
	}
}

// SaleListResponse converts a list result (headers only).
func SaleListResponse(result domain.ListResult[*sale.Sale]) ListResponse {
	items := make([]SaleResponse, 0, len(result.Items))
	for _, doc := range result.Items {
		items = append(items, FromSale(doc))
	}
	return ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	}
}
