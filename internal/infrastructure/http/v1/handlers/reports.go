package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"shopledger/internal/domain/reports"
	"shopledger/internal/infrastructure/http/v1/dto"
)

// ReportsHandler serves /api/v1/reports. Every sales and inventory
// report supports format=json|csv.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// Register mounts report routes on the group.
func (h *ReportsHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/kpis", h.KPIs)

	sales := rg.Group("/sales")
	{
		sales.GET("/monthly-summary", h.MonthlySummary)
		sales.GET("/yearly-summary", h.YearlySummary)
		sales.GET("/product-wise", h.ProductWiseSales)
		sales.GET("/top-selling", h.TopSelling)
		sales.GET("/dead-stock", h.DeadStock)
	}

	rg.GET("/current-stock", h.CurrentStock)
	rg.GET("/low-stock", h.LowStock)
	rg.GET("/monthly", h.MonthlyStock)
}

// KPIs handles GET /reports/kpis.
func (h *ReportsHandler) KPIs(c *gin.Context) {
	kpi, err := h.service.KPIs(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, kpi)
}

// MonthlySummary handles GET /reports/sales/monthly-summary.
func (h *ReportsHandler) MonthlySummary(c *gin.Context) {
	var query dto.PeriodQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	rows, err := h.service.MonthlySummary(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	if query.WantsCSV() {
		header, records := dto.MonthlySalesCSV(rows)
		if err := dto.WriteCSV(c, "monthly-summary.csv", header, records); err != nil {
			h.Error(c, err)
		}
		return
	}

	h.OK(c, rows)
}

// YearlySummary handles GET /reports/sales/yearly-summary.
func (h *ReportsHandler) YearlySummary(c *gin.Context) {
	var query dto.PeriodQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	rows, err := h.service.YearlySummary(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	if query.WantsCSV() {
		header, records := dto.YearlySalesCSV(rows)
		if err := dto.WriteCSV(c, "yearly-summary.csv", header, records); err != nil {
			h.Error(c, err)
		}
		return
	}

	h.OK(c, rows)
}

// ProductWiseSales handles GET /reports/sales/product-wise.
func (h *ReportsHandler) ProductWiseSales(c *gin.Context) {
	var query dto.PeriodQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	rows, err := h.service.ProductWiseSales(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	if query.WantsCSV() {
		header, records := dto.ProductSalesCSV(rows)
		if err := dto.WriteCSV(c, "product-wise-sales.csv", header, records); err != nil {
			h.Error(c, err)
		}
		return
	}

	h.OK(c, rows)
}

// TopSelling handles GET /reports/sales/top-selling.
func (h *ReportsHandler) TopSelling(c *gin.Context) {
	var query dto.PeriodQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	rows, err := h.service.TopSelling(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	if query.WantsCSV() {
		header, records := dto.ProductSalesCSV(rows)
		if err := dto.WriteCSV(c, "top-selling.csv", header, records); err != nil {
			h.Error(c, err)
		}
		return
	}

	h.OK(c, rows)
}

// DeadStock handles GET /reports/sales/dead-stock.
func (h *ReportsHandler) DeadStock(c *gin.Context) {
	var query dto.DeadStockQuery
	if !h.BindQuery(c, &query) {
		return
	}

	rows, err := h.service.DeadStock(c.Request.Context(), query.ToFilter(time.Now().UTC()))
	if err != nil {
		h.Error(c, err)
		return
	}

	if query.WantsCSV() {
		header, records := dto.DeadStockCSV(rows)
		if err := dto.WriteCSV(c, "dead-stock.csv", header, records); err != nil {
			h.Error(c, err)
		}
		return
	}

	h.OK(c, rows)
}

// CurrentStock handles GET /reports/current-stock.
func (h *ReportsHandler) CurrentStock(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 0)
	offset := h.ParseIntQuery(c, "offset", 0)

	rows, err := h.service.CurrentStock(c.Request.Context(), limit, offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	if c.Query("format") == "csv" {
		header, records := dto.StockCSV(rows)
		if err := dto.WriteCSV(c, "current-stock.csv", header, records); err != nil {
			h.Error(c, err)
		}
		return
	}

	h.OK(c, rows)
}

// LowStock handles GET /reports/low-stock. A product is low on stock
// when current stock is strictly below its reorder point.
func (h *ReportsHandler) LowStock(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 0)
	offset := h.ParseIntQuery(c, "offset", 0)

	rows, err := h.service.LowStock(c.Request.Context(), limit, offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	if c.Query("format") == "csv" {
		header, records := dto.StockCSV(rows)
		if err := dto.WriteCSV(c, "low-stock.csv", header, records); err != nil {
			h.Error(c, err)
		}
		return
	}

	h.OK(c, rows)
}

// MonthlyStock handles GET /reports/monthly.
func (h *ReportsHandler) MonthlyStock(c *gin.Context) {
	var query dto.MonthlyStockQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter(time.Now().UTC())
	if err != nil {
		h.Error(c, err)
		return
	}

	rows, err := h.service.MonthlyStock(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	if query.WantsCSV() {
		header, records := dto.MonthlyStockCSV(rows)
		if err := dto.WriteCSV(c, "monthly-stock.csv", header, records); err != nil {
			h.Error(c, err)
		}
		return
	}

	h.OK(c, rows)
}
