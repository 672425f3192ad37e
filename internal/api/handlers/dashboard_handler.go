package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/retailbi/internal/export"
	"github.com/andresuchdata/retailbi/internal/service"
)

type DashboardHandler struct {
	service *service.DashboardService
}

func NewDashboardHandler(service *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// writeTable streams t as an attachment in the requested format.
func writeTable(c *gin.Context, name string, t export.Table) {
	f, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		respondError(c, badRequest(err))
		return
	}

	filename := fmt.Sprintf("%s_%s.%s", name, time.Now().UTC().Format("20060102"), f)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", f.ContentType())
	c.Status(http.StatusOK)
	if err := export.Write(c.Writer, f, t); err != nil {
		_ = c.Error(err)
	}
}

func (h *DashboardHandler) PurchasesDashboard(c *gin.Context) {
	filter, err := parsePurchasesFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	data, err := h.service.Purchases(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *DashboardHandler) PurchasesExport(c *gin.Context) {
	filter, err := parsePurchasesFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	rows, err := h.service.FilteredPurchases(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	writeTable(c, "purchases", export.Purchases(rows))
}

func (h *DashboardHandler) StockDashboard(c *gin.Context) {
	filter, err := parseStockFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	data, err := h.service.Stock(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *DashboardHandler) StockExport(c *gin.Context) {
	filter, err := parseStockFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	rows, err := h.service.FilteredStock(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	writeTable(c, "stock", export.Stock(rows))
}

func (h *DashboardHandler) SalesDashboard(c *gin.Context) {
	filter, err := parseSalesFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	data, err := h.service.Sales(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *DashboardHandler) SalesExport(c *gin.Context) {
	filter, err := parseSalesFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	rows, err := h.service.FilteredSales(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	writeTable(c, "sales", export.Sales(rows))
}

func (h *DashboardHandler) ConsolidatedDashboard(c *gin.Context) {
	filter, err := parseConsolidatedFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	data, err := h.service.Consolidated(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *DashboardHandler) ConsolidatedExport(c *gin.Context) {
	filter, err := parseConsolidatedFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	rows, err := h.service.ConsolidatedRows(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	writeTable(c, "consolidated", export.Consolidated(rows))
}

func (h *DashboardHandler) CriticalExport(c *gin.Context) {
	filter, err := parseConsolidatedFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	rows, err := h.service.CriticalRows(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	writeTable(c, "critical_products", export.Consolidated(rows))
}

// Product returns the 360° view for the :name path parameter.
func (h *DashboardHandler) Product(c *gin.Context) {
	filter, err := parseConsolidatedFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.service.Product(c.Request.Context(), filter, c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *DashboardHandler) ClearCache(c *gin.Context) {
	if err := h.service.ClearCache(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
