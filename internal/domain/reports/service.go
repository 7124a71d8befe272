package reports

import (
	"context"
	"fmt"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/tx"
)

// Service provides report generation operations. Reports run in
// read-only transactions: consistent snapshots, no locks taken.
type Service struct {
	repo      Repository
	txManager tx.ReadOnlyManager
}

// NewService creates a new reports service.
func NewService(repo Repository, txManager tx.ReadOnlyManager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

const (
	defaultLimit = 100
	maxLimit     = 1000
)

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// normalizePeriod applies defaults (last 12 months) and validates order.
func normalizePeriod(filter PeriodFilter) (PeriodFilter, error) {
	if filter.EndDate.IsZero() {
		filter.EndDate = time.Now().UTC()
	}
	if filter.StartDate.IsZero() {
		filter.StartDate = filter.EndDate.AddDate(-1, 0, 0)
	}
	if filter.StartDate.After(filter.EndDate) {
		return filter, apperror.NewValidation("start_date must be before end_date").
			WithDetail("startDate", filter.StartDate.Format("2006-01-02")).
			WithDetail("endDate", filter.EndDate.Format("2006-01-02"))
	}
	filter.Limit, filter.Offset = clampPage(filter.Limit, filter.Offset)
	return filter, nil
}

// KPIs returns the dashboard summary.
func (s *Service) KPIs(ctx context.Context) (*KPIReport, error) {
	var report *KPIReport
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		report, err = s.repo.GetKPIs(ctx, time.Now().UTC())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("kpi report: %w", err)
	}
	return report, nil
}

// MonthlySummary aggregates sales per calendar month.
func (s *Service) MonthlySummary(ctx context.Context, filter PeriodFilter) ([]MonthlySalesRow, error) {
	filter, err := normalizePeriod(filter)
	if err != nil {
		return nil, err
	}

	var rows []MonthlySalesRow
	err = s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		rows, err = s.repo.GetMonthlySummary(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("monthly summary: %w", err)
	}
	return rows, nil
}

// YearlySummary aggregates sales per calendar year.
func (s *Service) YearlySummary(ctx context.Context, filter PeriodFilter) ([]YearlySalesRow, error) {
	filter, err := normalizePeriod(filter)
	if err != nil {
		return nil, err
	}

	var rows []YearlySalesRow
	err = s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		rows, err = s.repo.GetYearlySummary(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("yearly summary: %w", err)
	}
	return rows, nil
}

// ProductWiseSales aggregates sales per product.
func (s *Service) ProductWiseSales(ctx context.Context, filter PeriodFilter) ([]ProductSalesRow, error) {
	filter, err := normalizePeriod(filter)
	if err != nil {
		return nil, err
	}

	var rows []ProductSalesRow
	err = s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		rows, err = s.repo.GetProductWiseSales(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("product-wise sales: %w", err)
	}
	return rows, nil
}

// TopSelling returns the best sellers of the period, by units sold.
func (s *Service) TopSelling(ctx context.Context, filter PeriodFilter) ([]ProductSalesRow, error) {
	filter, err := normalizePeriod(filter)
	if err != nil {
		return nil, err
	}
	if filter.Limit > 50 {
		filter.Limit = 50
	}

	var rows []ProductSalesRow
	err = s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		rows, err = s.repo.GetTopSelling(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("top selling: %w", err)
	}
	return rows, nil
}

// DeadStock returns products with remaining stock and no sale in the
// last filter.Days days (default 60).
func (s *Service) DeadStock(ctx context.Context, filter DeadStockFilter) ([]DeadStockRow, error) {
	if filter.Days <= 0 {
		filter.Days = 60
	}
	if filter.AsOf.IsZero() {
		filter.AsOf = time.Now().UTC()
	}
	filter.Limit, _ = clampPage(filter.Limit, 0)

	var rows []DeadStockRow
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		rows, err = s.repo.GetDeadStock(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("dead stock: %w", err)
	}
	return rows, nil
}

// CurrentStock returns derived stock per product.
func (s *Service) CurrentStock(ctx context.Context, limit, offset int) ([]StockRow, error) {
	limit, offset = clampPage(limit, offset)

	var rows []StockRow
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		rows, err = s.repo.GetCurrentStock(ctx, limit, offset)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("current stock: %w", err)
	}
	return rows, nil
}

// LowStock returns products with stock strictly below reorder point.
func (s *Service) LowStock(ctx context.Context, limit, offset int) ([]StockRow, error) {
	limit, offset = clampPage(limit, offset)

	var rows []StockRow
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		rows, err = s.repo.GetLowStock(ctx, limit, offset)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	return rows, nil
}

// MonthlyStock gives opening/receipt/expense/closing per product for
// one month.
func (s *Service) MonthlyStock(ctx context.Context, filter MonthlyStockFilter) ([]MonthlyStockRow, error) {
	if filter.Month.IsZero() {
		now := time.Now().UTC()
		filter.Month = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	} else {
		filter.Month = time.Date(filter.Month.Year(), filter.Month.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	filter.Limit, filter.Offset = clampPage(filter.Limit, filter.Offset)

	var rows []MonthlyStockRow
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		rows, err = s.repo.GetMonthlyStock(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("monthly stock: %w", err)
	}
	return rows, nil
}
