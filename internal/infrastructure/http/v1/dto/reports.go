package dto

import (
	"fmt"
	"strconv"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/domain/reports"
)

// PeriodQuery binds common report query parameters. Dates use the
// canonical yyyy-MM-dd format; empty values fall back to service
// defaults (last 12 months).
type PeriodQuery struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Limit     int    `form:"limit"`
	Offset    int    `form:"offset"`
	Format    string `form:"format"`
}

// ToFilter parses the query into a domain period filter.
func (q *PeriodQuery) ToFilter() (reports.PeriodFilter, error) {
	filter := reports.PeriodFilter{
		Limit:  q.Limit,
		Offset: q.Offset,
	}

	if q.StartDate != "" {
		start, err := ParseDate(q.StartDate)
		if err != nil {
			return filter, err
		}
		filter.StartDate = start
	}
	if q.EndDate != "" {
		end, err := ParseDate(q.EndDate)
		if err != nil {
			return filter, err
		}
		filter.EndDate = end
	}

	return filter, nil
}

// WantsCSV reports whether the client asked for CSV output.
func (q *PeriodQuery) WantsCSV() bool {
	return q.Format == "csv"
}

// --- CSV row shapes ---

func formatMoney(m interface{ String() string }) string {
	return m.String()
}

// MonthlySalesCSV renders monthly summary rows for CSV export.
func MonthlySalesCSV(rows []reports.MonthlySalesRow) ([]string, [][]string) {
	header := []string{"month", "order_count", "units_sold", "revenue"}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.Month,
			strconv.Itoa(r.OrderCount),
			r.UnitsSold.String(),
			formatMoney(r.Revenue),
		})
	}
	return header, records
}

// YearlySalesCSV renders yearly summary rows for CSV export.
func YearlySalesCSV(rows []reports.YearlySalesRow) ([]string, [][]string) {
	header := []string{"year", "order_count", "units_sold", "revenue"}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			strconv.Itoa(r.Year),
			strconv.Itoa(r.OrderCount),
			r.UnitsSold.String(),
			formatMoney(r.Revenue),
		})
	}
	return header, records
}

// ProductSalesCSV renders per-product sales rows for CSV export.
func ProductSalesCSV(rows []reports.ProductSalesRow) ([]string, [][]string) {
	header := []string{"code", "name", "units_sold", "order_count", "revenue"}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.Code,
			r.Name,
			r.UnitsSold.String(),
			strconv.Itoa(r.OrderCount),
			formatMoney(r.Revenue),
		})
	}
	return header, records
}

// DeadStockCSV renders dead stock rows for CSV export.
func DeadStockCSV(rows []reports.DeadStockRow) ([]string, [][]string) {
	header := []string{"code", "name", "stock", "last_sale_date"}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		lastSale := ""
		if r.LastSaleDate != nil {
			lastSale = r.LastSaleDate.Format(DateFormat)
		}
		records = append(records, []string{
			r.Code,
			r.Name,
			r.Stock.String(),
			lastSale,
		})
	}
	return header, records
}

// StockCSV renders stock rows for CSV export.
func StockCSV(rows []reports.StockRow) ([]string, [][]string) {
	header := []string{"code", "name", "unit", "stock", "reorder_point", "stock_value"}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.Code,
			r.Name,
			r.Unit,
			r.Stock.String(),
			r.ReorderPoint.String(),
			formatMoney(r.StockValue),
		})
	}
	return header, records
}

// MonthlyStockCSV renders monthly turnover rows for CSV export.
func MonthlyStockCSV(rows []reports.MonthlyStockRow) ([]string, [][]string) {
	header := []string{"code", "name", "opening", "receipt", "expense", "closing"}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.Code,
			r.Name,
			r.Opening.String(),
			r.Receipt.String(),
			r.Expense.String(),
			r.Closing.String(),
		})
	}
	return header, records
}

// --- DeadStock query ---

// DeadStockQuery binds the dead stock report parameters.
type DeadStockQuery struct {
	Days   int    `form:"days"`
	Limit  int    `form:"limit"`
	Format string `form:"format"`
}

// ToFilter converts the query to a domain filter.
func (q *DeadStockQuery) ToFilter(now time.Time) reports.DeadStockFilter {
	return reports.DeadStockFilter{
		Days:  q.Days,
		AsOf:  now,
		Limit: q.Limit,
	}
}

// WantsCSV reports whether the client asked for CSV output.
func (q *DeadStockQuery) WantsCSV() bool {
	return q.Format == "csv"
}

// MonthlyStockQuery binds the monthly turnover report parameters.
type MonthlyStockQuery struct {
	Month  string `form:"month"` // "2026-01"
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
	Format string `form:"format"`
}

// ToFilter converts the query to a domain filter. An empty month means
// the current month.
func (q *MonthlyStockQuery) ToFilter(now time.Time) (reports.MonthlyStockFilter, error) {
	filter := reports.MonthlyStockFilter{
		Month:  time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	if q.Month != "" {
		month, err := time.Parse("2006-01", q.Month)
		if err != nil {
			return filter, apperror.NewValidation(
				fmt.Sprintf("invalid month %q, expected yyyy-MM", q.Month))
		}
		filter.Month = month
	}
	return filter, nil
}

// WantsCSV reports whether the client asked for CSV output.
func (q *MonthlyStockQuery) WantsCSV() bool {
	return q.Format == "csv"
}
