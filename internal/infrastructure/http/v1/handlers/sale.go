package handlers

import (
	"github.com/gin-gonic/gin"

	"shopledger/internal/domain"
	"shopledger/internal/domain/documents/sale"
	"shopledger/internal/infrastructure/http/v1/dto"
)

// SaleHandler serves /api/v1/sales.
type SaleHandler struct {
	*BaseHandler
	service *sale.Service
}

// NewSaleHandler creates a new sale handler.
func NewSaleHandler(service *sale.Service) *SaleHandler {
	return &SaleHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// Register mounts sale routes on the group.
func (h *SaleHandler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

// Create handles POST /sales. The whole request is rejected when any
// line exceeds available stock.
func (h *SaleHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := req.ToModel()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), doc); err != nil {
		h.Error(c, err)
		return
	}

	h.CreatedDocument(c, doc.ID.String(), doc.TotalAmount)
}

// GetByID handles GET /sales/:id.
func (h *SaleHandler) GetByID(c *gin.Context) {
	docID, err := dto.ParseID(c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSale(doc))
}

// Update handles PUT /sales/:id.
func (h *SaleHandler) Update(c *gin.Context) {
	docID, err := dto.ParseID(c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}

	var req dto.UpdateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := req.ToModel()
	if err != nil {
		h.Error(c, err)
		return
	}
	doc.ID = docID

	if err := h.service.Update(c.Request.Context(), doc); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSale(doc))
}

// Delete handles DELETE /sales/:id. Deleting returns the sold goods to
// stock with sale_return entries.
func (h *SaleHandler) Delete(c *gin.Context) {
	docID, err := dto.ParseID(c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// List handles GET /sales.
func (h *SaleHandler) List(c *gin.Context) {
	filter := sale.ListFilter{
		ListFilter:   domain.DefaultListFilter(),
		CustomerName: c.Query("customer"),
	}
	filter.Search = c.Query("search")
	filter.OrderBy = c.Query("order_by")
	filter.Limit = h.ParseIntQuery(c, "limit", filter.Limit)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	if from := c.Query("date_from"); from != "" {
		t, err := dto.ParseDate(from)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.DateFrom = &t
	}
	if to := c.Query("date_to"); to != "" {
		t, err := dto.ParseDate(to)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.DateTo = &t
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.SaleListResponse(result))
}
