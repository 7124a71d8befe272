// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"fmt"
	"strings"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// DateFormat is the canonical wire format for business dates.
const DateFormat = "2006-01-02"

// Date is a date-only value serialized as yyyy-MM-dd.
type Date struct {
	time.Time
}

// NewDate creates a Date from a time value (time-of-day is dropped).
func NewDate(t time.Time) Date {
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON renders the date as "yyyy-MM-dd".
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.Format(DateFormat) + `"`), nil
}

// UnmarshalJSON parses "yyyy-MM-dd"; empty strings yield the zero date.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected yyyy-MM-dd", s)
	}
	d.Time = t
	return nil
}

// ParseDate parses a yyyy-MM-dd query value.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, apperror.NewValidation(
			fmt.Sprintf("invalid date %q, expected yyyy-MM-dd", s))
	}
	return t, nil
}

// ParseID parses an entity id from a path or body value.
func ParseID(s string) (id.ID, error) {
	parsed, err := id.Parse(s)
	if err != nil {
		return id.Nil(), apperror.NewValidation("invalid id").
			WithDetail("id", s)
	}
	return parsed, nil
}

// --- Response envelope ---

// Envelope is the standard success body: {status:"success", data:...}.
type Envelope struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

// Success wraps data in the success envelope.
func Success(data any) Envelope {
	return Envelope{Status: "success", Data: data}
}

// ErrorBody is the standard error body rendered by the error middleware.
type ErrorBody struct {
	Status  string         `json:"status"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// --- Lists ---

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates an ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// CreatedDocumentResponse for document create operations. The total is
// recomputed server-side from lines, so it is returned along with the
// id to spare the client a follow-up fetch.
type CreatedDocumentResponse struct {
	ID          string      `json:"id"`
	TotalAmount types.Money `json:"totalAmount"`
}
