// Package product provides the product catalog.
package product

import (
	"context"
	"strings"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/entity"
	"shopledger/internal/core/types"
)

// Product represents a sellable item. Stock is never stored on the
// product row: balances are derived from the stock ledger.
type Product struct {
	entity.BaseCatalog

	// Code is the item SKU (unique)
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`

	// Unit is a free-form unit of measure ("pcs", "10 Kg")
	Unit string `db:"unit" json:"unit"`

	// PurchasePrice is the default buying price
	PurchasePrice types.Money `db:"purchase_price" json:"purchasePrice"`

	// SalePrice is the default selling price
	SalePrice types.Money `db:"sale_price" json:"salePrice"`

	// ReorderPoint marks the low-stock threshold; a product is low on
	// stock when current stock is strictly below this value
	ReorderPoint types.Quantity `db:"reorder_point" json:"reorderPoint"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(code, name, unit string) *Product {
	return &Product{
		BaseCatalog:   entity.NewBaseCatalog(),
		Code:          strings.TrimSpace(code),
		Name:          strings.TrimSpace(name),
		Unit:          strings.TrimSpace(unit),
		PurchasePrice: types.Zero(),
		SalePrice:     types.Zero(),
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if strings.TrimSpace(p.Code) == "" {
		return apperror.NewValidation("code is required").
			WithDetail("field", "code")
	}

	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}

	if p.PurchasePrice.IsNegative() {
		return apperror.NewValidation("purchase price cannot be negative").
			WithDetail("field", "purchasePrice")
	}

	if p.SalePrice.IsNegative() {
		return apperror.NewValidation("sale price cannot be negative").
			WithDetail("field", "salePrice")
	}

	if p.ReorderPoint.IsNegative() {
		return apperror.NewValidation("reorder point cannot be negative").
			WithDetail("field", "reorderPoint")
	}

	return nil
}
