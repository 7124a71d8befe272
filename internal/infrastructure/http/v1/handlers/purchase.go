package handlers

import (
	"github.com/gin-gonic/gin"

	"shopledger/internal/domain"
	"shopledger/internal/domain/documents/purchase"
	"shopledger/internal/infrastructure/http/v1/dto"
)

// PurchaseHandler serves /api/v1/purchases.
type PurchaseHandler struct {
	*BaseHandler
	service *purchase.Service
}

// NewPurchaseHandler creates a new purchase handler.
func NewPurchaseHandler(service *purchase.Service) *PurchaseHandler {
	return &PurchaseHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// Register mounts purchase routes on the group.
func (h *PurchaseHandler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

// Create handles POST /purchases.
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req dto.CreatePurchaseRequest
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

// GetByID handles GET /purchases/:id.
func (h *PurchaseHandler) GetByID(c *gin.Context) {
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

	h.OK(c, dto.FromPurchase(doc))
}

// Update handles PUT /purchases/:id.
func (h *PurchaseHandler) Update(c *gin.Context) {
	docID, err := dto.ParseID(c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}

	var req dto.UpdatePurchaseRequest
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

	h.OK(c, dto.FromPurchase(doc))
}

// Delete handles DELETE /purchases/:id.
func (h *PurchaseHandler) Delete(c *gin.Context) {
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

// List handles GET /purchases.
func (h *PurchaseHandler) List(c *gin.Context) {
	filter := purchase.ListFilter{
		ListFilter: domain.DefaultListFilter(),
		VendorName: c.Query("vendor"),
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

	h.OK(c, dto.PurchaseListResponse(result))
}
