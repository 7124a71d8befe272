package reports

import (
	"context"
	"time"
)

// Repository defines report data access. Implementations aggregate in
// SQL; row shapes are defined in types.go.
type Repository interface {
	// KPIs
	GetKPIs(ctx context.Context, now time.Time) (*KPIReport, error)

	// Sales
	GetMonthlySummary(ctx context.Context, filter PeriodFilter) ([]MonthlySalesRow, error)
	GetYearlySummary(ctx context.Context, filter PeriodFilter) ([]YearlySalesRow, error)
	GetProductWiseSales(ctx context.Context, filter PeriodFilter) ([]ProductSalesRow, error)
	GetTopSelling(ctx context.Context, filter PeriodFilter) ([]ProductSalesRow, error)
	GetDeadStock(ctx context.Context, filter DeadStockFilter) ([]DeadStockRow, error)

	// Inventory
	GetCurrentStock(ctx context.Context, limit, offset int) ([]StockRow, error)
	GetLowStock(ctx context.Context, limit, offset int) ([]StockRow, error)
	GetMonthlyStock(ctx context.Context, filter MonthlyStockFilter) ([]MonthlyStockRow, error)
}
