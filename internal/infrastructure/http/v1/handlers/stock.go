package handlers

import (
	"github.com/gin-gonic/gin"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/ledger"
	"shopledger/internal/domain/reports"
	"shopledger/internal/infrastructure/http/v1/dto"
)

// StockHandler serves /api/v1/stock. Balances are always derived from
// the ledger; there is no stored stock counter to read.
type StockHandler struct {
	*BaseHandler
	ledgerSvc  *ledger.Service
	reportsSvc *reports.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(ledgerSvc *ledger.Service, reportsSvc *reports.Service) *StockHandler {
	return &StockHandler{
		BaseHandler: NewBaseHandler(),
		ledgerSvc:   ledgerSvc,
		reportsSvc:  reportsSvc,
	}
}

// Register mounts stock routes on the group.
func (h *StockHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/balances", h.Balances)
	rg.GET("/availability/:productId", h.Availability)
	rg.GET("/movements", h.Movements)
	rg.POST("/adjustments", h.Adjust)
}

// Balances handles GET /stock/balances.
func (h *StockHandler) Balances(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 0)
	offset := h.ParseIntQuery(c, "offset", 0)

	rows, err := h.reportsSvc.CurrentStock(c.Request.Context(), limit, offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, rows)
}

// Availability handles GET /stock/availability/:productId. An optional
// required query checks whether that quantity can be sold right now.
func (h *StockHandler) Availability(c *gin.Context) {
	productID, err := dto.ParseID(c.Param("productId"))
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.AvailabilityResponse{ProductID: productID.String()}

	if rawRequired := c.Query("required"); rawRequired != "" {
		required, err := types.ParseQuantity(rawRequired)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid required quantity").
				WithDetail("required", rawRequired))
			return
		}

		check, err := h.ledgerSvc.ValidateStock(c.Request.Context(), productID, required)
		if err != nil {
			h.Error(c, err)
			return
		}
		resp.Available = check.Available
		resp.Required = check.Required
		resp.OK = check.OK
	} else {
		stock, err := h.ledgerSvc.CurrentStock(c.Request.Context(), productID)
		if err != nil {
			h.Error(c, err)
			return
		}
		resp.Available = stock
		resp.OK = stock.IsPositive()
	}

	h.OK(c, resp)
}

// Movements handles GET /stock/movements.
func (h *StockHandler) Movements(c *gin.Context) {
	filter := ledger.HistoryFilter{
		Limit:  h.ParseIntQuery(c, "limit", 0),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if raw := c.Query("product_id"); raw != "" {
		productID, err := dto.ParseID(raw)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.ProductID = &productID
	}

	if raw := c.Query("document_id"); raw != "" {
		docID, err := dto.ParseID(raw)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.DocumentID = &docID
	}

	if raw := c.Query("type"); raw != "" {
		entryType := ledger.EntryType(raw)
		if !entryType.IsValid() {
			h.Error(c, apperror.NewValidation("invalid entry type").
				WithDetail("type", raw))
			return
		}
		filter.Types = []ledger.EntryType{entryType}
	}

	if from := c.Query("date_from"); from != "" {
		t, err := dto.ParseDate(from)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.FromDate = &t
	}
	if to := c.Query("date_to"); to != "" {
		t, err := dto.ParseDate(to)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.ToDate = &t
	}

	entries, err := h.ledgerSvc.History(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.MovementsResponse(entries))
}

// Adjust handles POST /stock/adjustments. Corrections that would drive
// stock negative are rejected.
func (h *StockHandler) Adjust(c *gin.Context) {
	var req dto.AdjustmentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, err := dto.ParseID(req.ProductID)
	if err != nil {
		h.Error(c, err)
		return
	}

	entry, err := h.ledgerSvc.Adjust(c.Request.Context(), productID, req.Delta, req.Date.Time, req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromEntry(entry))
}
