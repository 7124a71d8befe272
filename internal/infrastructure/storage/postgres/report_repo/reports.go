// Package report_repo provides the PostgreSQL implementation of the
// reports repository. All aggregation happens in SQL; Go code only
// shapes filters and scans rows.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"shopledger/internal/domain/reports"
	"shopledger/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txManager *postgres.TxManager
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{txManager: txManager}
}

var _ reports.Repository = (*ReportRepo)(nil)

// GetKPIs returns the dashboard summary in a single query.
func (r *ReportRepo) GetKPIs(ctx context.Context, now time.Time) (*reports.KPIReport, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	const query = `
		SELECT
			(
				SELECT COALESCE(SUM(total_amount), 0)
				FROM doc_sales
				WHERE deletion_mark = false AND date >= $1
			) AS todays_sales,
			(
				SELECT COALESCE(SUM(total_amount), 0)
				FROM doc_sales
				WHERE deletion_mark = false AND date >= $2
			) AS month_revenue,
			(
				SELECT COUNT(*)
				FROM (
					SELECT p.id
					FROM cat_products p
					LEFT JOIN stock_ledger l ON l.product_id = p.id
					WHERE p.deletion_mark = false
					GROUP BY p.id, p.reorder_point
					HAVING GREATEST(COALESCE(SUM(l.delta), 0), 0) < p.reorder_point
				) low
			) AS low_stock_count,
			COALESCE((
				SELECT p.name
				FROM doc_sale_lines sl
				JOIN doc_sales s ON s.id = sl.document_id
				JOIN cat_products p ON p.id = sl.product_id
				WHERE s.deletion_mark = false AND s.date >= $2
				GROUP BY p.name
				ORDER BY SUM(sl.quantity) DESC, p.name
				LIMIT 1
			), '') AS best_selling_product
	`

	var kpi reports.KPIReport
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &kpi, query, dayStart, monthStart); err != nil {
		return nil, fmt.Errorf("kpis: %w", err)
	}

	return &kpi, nil
}

// GetMonthlySummary aggregates sales per calendar month.
func (r *ReportRepo) GetMonthlySummary(ctx context.Context, filter reports.PeriodFilter) ([]reports.MonthlySalesRow, error) {
	const query = `
		SELECT
			to_char(s.date, 'YYYY-MM') AS month,
			COUNT(DISTINCT s.id) AS order_count,
			COALESCE(SUM(sl.quantity), 0)::bigint AS units_sold,
			COALESCE(SUM(sl.amount), 0) AS revenue
		FROM doc_sales s
		JOIN doc_sale_lines sl ON sl.document_id = s.id
		WHERE s.deletion_mark = false
			AND s.date >= $1 AND s.date <= $2
		GROUP BY 1
		ORDER BY 1 DESC
		LIMIT $3 OFFSET $4
	`

	var rows []reports.MonthlySalesRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, query,
		filter.StartDate, filter.EndDate, filter.Limit, filter.Offset); err != nil {
		return nil, fmt.Errorf("monthly summary: %w", err)
	}

	return rows, nil
}

// GetYearlySummary aggregates sales per calendar year.
func (r *ReportRepo) GetYearlySummary(ctx context.Context, filter reports.PeriodFilter) ([]reports.YearlySalesRow, error) {
	const query = `
		SELECT
			EXTRACT(YEAR FROM s.date)::int AS year,
			COUNT(DISTINCT s.id) AS order_count,
			COALESCE(SUM(sl.quantity), 0)::bigint AS units_sold,
			COALESCE(SUM(sl.amount), 0) AS revenue
		FROM doc_sales s
		JOIN doc_sale_lines sl ON sl.document_id = s.id
		WHERE s.deletion_mark = false
			AND s.date >= $1 AND s.date <= $2
		GROUP BY 1
		ORDER BY 1 DESC
		LIMIT $3 OFFSET $4
	`

	var rows []reports.YearlySalesRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, query,
		filter.StartDate, filter.EndDate, filter.Limit, filter.Offset); err != nil {
		return nil, fmt.Errorf("yearly summary: %w", err)
	}

	return rows, nil
}

// GetProductWiseSales aggregates sales per product, ordered by name.
func (r *ReportRepo) GetProductWiseSales(ctx context.Context, filter reports.PeriodFilter) ([]reports.ProductSalesRow, error) {
	const query = `
		SELECT
			p.id AS product_id,
			p.code,
			p.name,
			COALESCE(SUM(sl.quantity), 0)::bigint AS units_sold,
			COUNT(DISTINCT s.id) AS order_count,
			COALESCE(SUM(sl.amount), 0) AS revenue
		FROM doc_sale_lines sl
		JOIN doc_sales s ON s.id = sl.document_id
		JOIN cat_products p ON p.id = sl.product_id
		WHERE s.deletion_mark = false
			AND s.date >= $1 AND s.date <= $2
		GROUP BY p.id, p.code, p.name
		ORDER BY p.name
		LIMIT $3 OFFSET $4
	`

	var rows []reports.ProductSalesRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, query,
		filter.StartDate, filter.EndDate, filter.Limit, filter.Offset); err != nil {
		return nil, fmt.Errorf("product wise sales: %w", err)
	}

	return rows, nil
}

// GetTopSelling returns the best sellers by units sold.
func (r *ReportRepo) GetTopSelling(ctx context.Context, filter reports.PeriodFilter) ([]reports.ProductSalesRow, error) {
	const query = `
		SELECT
			p.id AS product_id,
			p.code,
			p.name,
			COALESCE(SUM(sl.quantity), 0)::bigint AS units_sold,
			COUNT(DISTINCT s.id) AS order_count,
			COALESCE(SUM(sl.amount), 0) AS revenue
		FROM doc_sale_lines sl
		JOIN doc_sales s ON s.id = sl.document_id
		JOIN cat_products p ON p.id = sl.product_id
		WHERE s.deletion_mark = false
			AND s.date >= $1 AND s.date <= $2
		GROUP BY p.id, p.code, p.name
		ORDER BY units_sold DESC, p.name
		LIMIT $3
	`

	var rows []reports.ProductSalesRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, query,
		filter.StartDate, filter.EndDate, filter.Limit); err != nil {
		return nil, fmt.Errorf("top selling: %w", err)
	}

	return rows, nil
}

// GetDeadStock returns products with remaining stock and no sale since
// the cutoff computed from the filter.
func (r *ReportRepo) GetDeadStock(ctx context.Context, filter reports.DeadStockFilter) ([]reports.DeadStockRow, error) {
	cutoff := filter.AsOf.AddDate(0, 0, -filter.Days)

	const query = `
		WITH balances AS (
			SELECT product_id, SUM(delta)::bigint AS stock
			FROM stock_ledger
			GROUP BY product_id
		),
		last_sales AS (
			SELECT sl.product_id, MAX(s.date) AS last_sale_date
			FROM doc_sale_lines sl
			JOIN doc_sales s ON s.id = sl.document_id
			WHERE s.deletion_mark = false
			GROUP BY sl.product_id
		)
		SELECT
			p.id AS product_id,
			p.code,
			p.name,
			GREATEST(COALESCE(b.stock, 0), 0) AS stock,
			ls.last_sale_date
		FROM cat_products p
		LEFT JOIN balances b ON b.product_id = p.id
		LEFT JOIN last_sales ls ON ls.product_id = p.id
		WHERE p.deletion_mark = false
			AND COALESCE(b.stock, 0) > 0
			AND (ls.last_sale_date IS NULL OR ls.last_sale_date < $1)
		ORDER BY ls.last_sale_date NULLS FIRST, p.name
		LIMIT $2
	`

	var rows []reports.DeadStockRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, query, cutoff, filter.Limit); err != nil {
		return nil, fmt.Errorf("dead stock: %w", err)
	}

	return rows, nil
}

// GetCurrentStock returns derived stock per product with valuation at
// purchase price.
func (r *ReportRepo) GetCurrentStock(ctx context.Context, limit, offset int) ([]reports.StockRow, error) {
	const query = `
		SELECT
			p.id AS product_id,
			p.code,
			p.name,
			p.unit,
			GREATEST(COALESCE(b.stock, 0), 0) AS stock,
			p.reorder_point,
			(GREATEST(COALESCE(b.stock, 0), 0)::numeric / 10000.0) * p.purchase_price AS stock_value
		FROM cat_products p
		LEFT JOIN (
			SELECT product_id, SUM(delta)::bigint AS stock
			FROM stock_ledger
			GROUP BY product_id
		) b ON b.product_id = p.id
		WHERE p.deletion_mark = false
		ORDER BY p.name
		LIMIT $1 OFFSET $2
	`

	var rows []reports.StockRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("current stock: %w", err)
	}

	return rows, nil
}

// GetLowStock returns products whose stock is strictly below their
// reorder point.
func (r *ReportRepo) GetLowStock(ctx context.Context, limit, offset int) ([]reports.StockRow, error) {
	const query = `
		SELECT
			p.id AS product_id,
			p.code,
			p.name,
			p.unit,
			GREATEST(COALESCE(b.stock, 0), 0) AS stock,
			p.reorder_point,
			(GREATEST(COALESCE(b.stock, 0), 0)::numeric / 10000.0) * p.purchase_price AS stock_value
		FROM cat_products p
		LEFT JOIN (
			SELECT product_id, SUM(delta)::bigint AS stock
			FROM stock_ledger
			GROUP BY product_id
		) b ON b.product_id = p.id
		WHERE p.deletion_mark = false
			AND GREATEST(COALESCE(b.stock, 0), 0) < p.reorder_point
		ORDER BY p.name
		LIMIT $1 OFFSET $2
	`

	var rows []reports.StockRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}

	return rows, nil
}

// GetMonthlyStock returns opening/receipt/expense/closing per product
// for the month starting at filter.Month.
func (r *ReportRepo) GetMonthlyStock(ctx context.Context, filter reports.MonthlyStockFilter) ([]reports.MonthlyStockRow, error) {
	monthStart := filter.Month
	monthEnd := monthStart.AddDate(0, 1, 0)

	const query = `
		WITH turnover AS (
			SELECT
				product_id,
				SUM(CASE WHEN date < $1 THEN delta ELSE 0 END)::bigint AS opening,
				SUM(CASE WHEN date >= $1 AND date < $2 AND delta > 0 THEN delta ELSE 0 END)::bigint AS receipt,
				SUM(CASE WHEN date >= $1 AND date < $2 AND delta < 0 THEN -delta ELSE 0 END)::bigint AS expense,
				SUM(CASE WHEN date < $2 THEN delta ELSE 0 END)::bigint AS closing
			FROM stock_ledger
			GROUP BY product_id
		)
		SELECT
			p.id AS product_id,
			p.code,
			p.name,
			COALESCE(t.opening, 0) AS opening,
			COALESCE(t.receipt, 0) AS receipt,
			COALESCE(t.expense, 0) AS expense,
			COALESCE(t.closing, 0) AS closing
		FROM cat_products p
		LEFT JOIN turnover t ON t.product_id = p.id
		WHERE p.deletion_mark = false
		ORDER BY p.name
		LIMIT $3 OFFSET $4
	`

	var rows []reports.MonthlyStockRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, query,
		monthStart, monthEnd, filter.Limit, filter.Offset); err != nil {
		return nil, fmt.Errorf("monthly stock: %w", err)
	}

	return rows, nil
}
