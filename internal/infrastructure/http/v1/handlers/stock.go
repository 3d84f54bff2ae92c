package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/domain/registers/stock"
	"stockbook/internal/infrastructure/http/v1/dto"
)

// StockHandler handles the balance register read endpoints. Balances are
// never written over HTTP; they change only as movements post.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service *stock.Service) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
	}
}

// ListBalances handles GET /stock/balances
func (h *StockHandler) ListBalances(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.BalanceListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.StockBalanceResponse, len(result.Items))
	for i, b := range result.Items {
		items[i] = dto.FromStockBalance(b)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// GetBalance handles GET /stock/balances/:warehouseId/:productId
func (h *StockHandler) GetBalance(c *gin.Context) {
	ctx := c.Request.Context()

	warehouseID, err := id.Parse(c.Param("warehouseId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid warehouseId format"))
		return
	}
	productID, err := id.Parse(c.Param("productId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}

	balance, err := h.service.Get(ctx, warehouseID, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromStockBalance(balance))
}

// RegisterRoutes registers stock register routes.
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/balances", h.ListBalances)
	rg.GET("/balances/:warehouseId/:productId", h.GetBalance)
}
