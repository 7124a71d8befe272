package dto

import (
	"shopledger/internal/core/types"
	"shopledger/internal/domain/ledger"
)

// AvailabilityResponse answers "can I sell N units right now".
type AvailabilityResponse struct {
	ProductID string         `json:"productId"`
	Available types.Quantity `json:"available"`
	Required  types.Quantity `json:"required,omitempty"`
	OK        bool           `json:"ok"`
}

// MovementResponse is one ledger row in movement history.
type MovementResponse struct {
	ID           string         `json:"id"`
	ProductID    string         `json:"productId"`
	EntryType    string         `json:"entryType"`
	Delta        types.Quantity `json:"delta"`
	DocumentID   string         `json:"documentId,omitempty"`
	DocumentType string         `json:"documentType,omitempty"`
	Date         Date           `json:"date"`
	Notes        string         `json:"notes,omitempty"`
}

// FromEntry converts a ledger entry to its wire shape.
func FromEntry(e ledger.Entry) MovementResponse {
	resp := MovementResponse{
		ID:           e.ID.String(),
		ProductID:    e.ProductID.String(),
		EntryType:    string(e.Type),
		Delta:        e.Delta,
		DocumentType: e.DocumentType,
		Date:         NewDate(e.Date),
		Notes:        e.Notes,
	}
	if e.DocumentID != nil {
		resp.DocumentID = e.DocumentID.String()
	}
	return resp
}

// MovementsResponse converts a history slice.
func MovementsResponse(entries []ledger.Entry) []MovementResponse {
	items := make([]MovementResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, FromEntry(e))
	}
	return items
}

// AdjustmentRequest records a manual stock correction.
type AdjustmentRequest struct {
	ProductID string         `json:"productId" binding:"required"`
	Delta     types.Quantity `json:"delta" binding:"required"`
	Date      Date           `json:"date"`
	Notes     string         `json:"notes"`
}
