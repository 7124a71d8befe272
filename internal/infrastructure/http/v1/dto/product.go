package dto

import (
	"shopledger/internal/core/types"
	"shopledger/internal/domain"
	"shopledger/internal/domain/catalogs/product"
)

// CreateProductRequest for creating products. OpeningStock seeds an
// initialization ledger entry; there is no stored stock column.
type CreateProductRequest struct {
	Code          string         `json:"code" binding:"required"`
	Name          string         `json:"name" binding:"required"`
	Unit          string         `json:"unit"`
	PurchasePrice types.Money    `json:"purchasePrice"`
	SalePrice     types.Money    `json:"salePrice"`
	ReorderPoint  types.Quantity `json:"reorderPoint"`
	OpeningStock  types.Quantity `json:"openingStock"`
}

// ToModel converts the request to a domain product.
func (r *CreateProductRequest) ToModel() *product.Product {
	p := product.NewProduct(r.Code, r.Name, r.Unit)
	p.PurchasePrice = r.PurchasePrice
	p.SalePrice = r.SalePrice
	p.ReorderPoint = r.ReorderPoint
	return p
}

// UpdateProductRequest for updating products. Version is required for
// optimistic locking.
type UpdateProductRequest struct {
	Code          string         `json:"code" binding:"required"`
	Name          string         `json:"name" binding:"required"`
	Unit          string         `json:"unit"`
	PurchasePrice types.Money    `json:"purchasePrice"`
	SalePrice     types.Money    `json:"salePrice"`
	ReorderPoint  types.Quantity `json:"reorderPoint"`
	Version       int            `json:"version" binding:"required,min=1"`
}

// ProductResponse is the wire shape of a product.
type ProductResponse struct {
	ID            string         `json:"id"`
	Code          string         `json:"code"`
	Name          string         `json:"name"`
	Unit          string         `json:"unit"`
	PurchasePrice types.Money    `json:"purchasePrice"`
	SalePrice     types.Money    `json:"salePrice"`
	ReorderPoint  types.Quantity `json:"reorderPoint"`
	DeletionMark  bool           `json:"deletionMark"`
	Version       int            `json:"version"`
}

// FromProduct converts a domain product to its response shape.
func FromProduct(p *product.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID.String(),
		Code:          p.Code,
		Name:          p.Name,
		Unit:          p.Unit,
		PurchasePrice: p.PurchasePrice,
		SalePrice:     p.SalePrice,
		ReorderPoint:  p.ReorderPoint,
		DeletionMark:  p.DeletionMark,
		Version:       p.Version,
	}
}

// ProductListResponse converts a list result.
func ProductListResponse(result domain.ListResult[*product.Product]) ListResponse {
	items := make([]ProductResponse, 0, len(result.Items))
	for _, p := range result.Items {
		items = append(items, FromProduct(p))
	}
	return ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	}
}
