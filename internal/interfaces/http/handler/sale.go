package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	salesapp "github.com/sicua/backend/internal/application/sales"
	"github.com/sicua/backend/internal/interfaces/http/middleware"
)

const maxIdempotencyKeyLength = 128

// SaleHandler handles point-of-sale endpoints
type SaleHandler struct {
	BaseHandler
	saleService *salesapp.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *salesapp.SaleService) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
	}
}

// Create handles POST /sales. A repeated Idempotency-Key returns the sale
// recorded the first time instead of selling again.
func (h *SaleHandler) Create(c *gin.Context) {
	var req salesapp.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	req.IdempotencyKey = c.GetHeader(middleware.IdempotencyKeyHeader)
	if len(req.IdempotencyKey) > maxIdempotencyKeyLength {
		h.BadRequest(c, "Idempotency-Key is too long")
		return
	}

	sale, err := h.saleService.CreateSale(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, sale)
}

// GetByID handles GET /sales/:id
func (h *SaleHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// Receipt handles GET /sales/:id/receipt
func (h *SaleHandler) Receipt(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	receipt, err := h.saleService.GetReceipt(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, receipt)
}

// Invoice handles POST /sales/:id/invoice. Invoicing twice succeeds.
func (h *SaleHandler) Invoice(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	sale, err := h.saleService.MarkInvoiced(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// List handles GET /sales. Dates are YYYY-MM-DD and both ends are inclusive.
func (h *SaleHandler) List(c *gin.Context) {
	var filter salesapp.SaleListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	list, total, err := h.saleService.ListSales(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := pageParams(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, list, total, page, pageSize)
}

func (h *SaleHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return uuid.Nil, false
	}
	return id, true
}
