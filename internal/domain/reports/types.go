// Package reports provides read-only reporting over the ledger and
// document tables. Aggregation happens in SQL GROUP BY queries, not in
// per-request loops.
package reports

import (
	"time"

	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// --- KPIs ---

// KPIReport is the dashboard summary.
type KPIReport struct {
	TodaysSales        types.Money `db:"todays_sales" json:"todaysSales"`
	MonthRevenue       types.Money `db:"month_revenue" json:"monthRevenue"`
	LowStockCount      int         `db:"low_stock_count" json:"lowStockCount"`
	BestSellingProduct string      `db:"best_selling_product" json:"bestSellingProduct"`
}

// --- Sales reports ---

// PeriodFilter bounds a sales report. Dates are inclusive business
// dates (canonical wire format yyyy-MM-dd).
type PeriodFilter struct {
	StartDate time.Time
	EndDate   time.Time
	Limit     int
	Offset    int
}

// MonthlySalesRow is one month of aggregated sales.
type MonthlySalesRow struct {
	Month      string         `db:"month" json:"month"` // "2026-01"
	OrderCount int            `db:"order_count" json:"orderCount"`
	UnitsSold  types.Quantity `db:"units_sold" json:"unitsSold"`
	Revenue    types.Money    `db:"revenue" json:"revenue"`
}

// YearlySalesRow is one year of aggregated sales.
type YearlySalesRow struct {
	Year       int            `db:"year" json:"year"`
	OrderCount int            `db:"order_count" json:"orderCount"`
	UnitsSold  types.Quantity `db:"units_sold" json:"unitsSold"`
	Revenue    types.Money    `db:"revenue" json:"revenue"`
}

// ProductSalesRow aggregates sales per product.
type ProductSalesRow struct {
	ProductID  id.ID          `db:"product_id" json:"productId"`
	Code       string         `db:"code" json:"code"`
	Name       string         `db:"name" json:"name"`
	UnitsSold  types.Quantity `db:"units_sold" json:"unitsSold"`
	OrderCount int            `db:"order_count" json:"orderCount"`
	Revenue    types.Money    `db:"revenue" json:"revenue"`
}

// DeadStockFilter selects products with no sale in the last Days days.
type DeadStockFilter struct {
	Days  int // default 60
	AsOf  time.Time
	Limit int
}

// DeadStockRow is a product with remaining stock and no recent sales.
type DeadStockRow struct {
	ProductID    id.ID          `db:"product_id" json:"productId"`
	Code         string         `db:"code" json:"code"`
	Name         string         `db:"name" json:"name"`
	Stock        types.Quantity `db:"stock" json:"stock"`
	LastSaleDate *time.Time     `db:"last_sale_date" json:"lastSaleDate,omitempty"`
}

// --- Inventory reports ---

// StockRow is one product's derived stock level.
type StockRow struct {
	ProductID    id.ID          `db:"product_id" json:"productId"`
	Code         string         `db:"code" json:"code"`
	Name         string         `db:"name" json:"name"`
	Unit         string         `db:"unit" json:"unit"`
	Stock        types.Quantity `db:"stock" json:"stock"`
	ReorderPoint types.Quantity `db:"reorder_point" json:"reorderPoint"`
	StockValue   types.Money    `db:"stock_value" json:"stockValue"`
}

// MonthlyStockFilter bounds the monthly turnover report.
type MonthlyStockFilter struct {
	// Month is the first day of the reported month
	Month  time.Time
	Limit  int
	Offset int
}

// MonthlyStockRow gives opening/receipt/expense/closing per product
// for one month.
type MonthlyStockRow struct {
	ProductID id.ID          `db:"product_id" json:"productId"`
	Code      string         `db:"code" json:"code"`
	Name      string         `db:"name" json:"name"`
	Opening   types.Quantity `db:"opening" json:"opening"`
	Receipt   types.Quantity `db:"receipt" json:"receipt"`
	Expense   types.Quantity `db:"expense" json:"expense"`
	Closing   types.Quantity `db:"closing" json:"closing"`
}
