package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockbook/internal/core/apperror"
	"stockbook/internal/domain/reports"
	"stockbook/internal/infrastructure/http/v1/dto"
	"stockbook/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetMovementSummary handles GET /reports/movement-summary
func (h *ReportsHandler) GetMovementSummary(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.MovementSummaryQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	summary, err := h.service.GetSummary(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetStockOverview handles GET /reports/stock-overview
func (h *ReportsHandler) GetStockOverview(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.StockOverviewQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	overview, err := h.service.GetOverview(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// GetStockAlerts handles GET /reports/stock-alerts
func (h *ReportsHandler) GetStockAlerts(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.StockOverviewQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	alerts, err := h.service.GetAlerts(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": alerts,
		"count": len(alerts),
	})
}

// ExportMovements handles GET /reports/movements/export - journal as .xlsx.
func (h *ReportsHandler) ExportMovements(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.JournalExportQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	file, err := h.service.ExportJournalXLSX(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	filename := fmt.Sprintf("movements_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)

	if err := file.Write(c.Writer); err != nil {
		// Headers are already sent, the download just breaks off.
		logger.Error(ctx, "write xlsx export", "error", err)
		h.Error(c, apperror.NewInternal(err))
	}
}

// RegisterRoutes registers report routes.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/movement-summary", h.GetMovementSummary)
	rg.GET("/stock-overview", h.GetStockOverview)
	rg.GET("/stock-alerts", h.GetStockAlerts)
	rg.GET("/movements/export", h.ExportMovements)
}
