// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/retailbi/internal/api/handlers"
	"github.com/andresuchdata/retailbi/internal/api/middleware"
	"github.com/andresuchdata/retailbi/internal/config"
	"github.com/andresuchdata/retailbi/internal/loader"
	"github.com/andresuchdata/retailbi/internal/service"
	"github.com/andresuchdata/retailbi/internal/workspace"
)

type Services struct {
	Workspace      *workspace.Workspace
	Dashboards     *service.DashboardService
	SampleDefaults loader.SampleOptions
}

func NewRouter(services *Services, cfg config.ServerConfig) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(cfg.AllowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	apiGroup := router.Group("/api/v1")
	apiGroup.GET("/health", health)

	if services == nil {
		return router
	}

	if services.Workspace != nil {
		datasetHandler := handlers.NewDatasetHandler(services.Workspace, cfg.MaxUploadMB, services.SampleDefaults)
		datasetGroup := apiGroup.Group("/datasets")
		{
			datasetGroup.GET("", datasetHandler.List)
			datasetGroup.POST("/:kind/upload", datasetHandler.Upload)
			datasetGroup.POST("/:kind/sample", datasetHandler.Sample)
			datasetGroup.POST("/:kind/import", datasetHandler.Import)
		}
	}

	if services.Dashboards != nil {
		dashboardHandler := handlers.NewDashboardHandler(services.Dashboards)
		apiGroup.DELETE("/cache", dashboardHandler.ClearCache)

		purchasesGroup := apiGroup.Group("/purchases")
		{
			purchasesGroup.GET("/dashboard", dashboardHandler.PurchasesDashboard)
			purchasesGroup.GET("/export", dashboardHandler.PurchasesExport)
		}

		stockGroup := apiGroup.Group("/stock")
		{
			stockGroup.GET("/dashboard", dashboardHandler.StockDashboard)
			stockGroup.GET("/export", dashboardHandler.StockExport)
		}

		salesGroup := apiGroup.Group("/sales")
		{
			salesGroup.GET("/dashboard", dashboardHandler.SalesDashboard)
			salesGroup.GET("/export", dashboardHandler.SalesExport)
		}

		consolidatedGroup := apiGroup.Group("/consolidated")
		{
			consolidatedGroup.GET("/dashboard", dashboardHandler.ConsolidatedDashboard)
			consolidatedGroup.GET("/export", dashboardHandler.ConsolidatedExport)
			consolidatedGroup.GET("/critical/export", dashboardHandler.CriticalExport)
			consolidatedGroup.GET("/products/:name", dashboardHandler.Product)
		}
	}

	return router
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, strings.TrimRight(trimmed, "/"))
		}
	}
	return parsed, allowAll
}
