// Package v1 wires the HTTP API: router, middleware chain and route
// registration.
package v1

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"shopledger/internal/domain/catalogs/product"
	"shopledger/internal/domain/documents/purchase"
	"shopledger/internal/domain/documents/sale"
	"shopledger/internal/domain/ledger"
	"shopledger/internal/domain/reports"
	"shopledger/internal/infrastructure/http/v1/handlers"
	"shopledger/internal/infrastructure/http/v1/middleware"
	"shopledger/pkg/logger"
)

// RouterConfig carries everything the router needs.
type RouterConfig struct {
	Logger *logger.Logger
	Pool   *pgxpool.Pool

	ProductService  *product.Service
	LedgerService   *ledger.Service
	PurchaseService *purchase.Service
	SaleService     *sale.Service
	ReportsService  *reports.Service

	AllowedOrigins []string
}

// NewRouter builds the gin engine with the full middleware chain and
// all v1 routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Trace())
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.Recovery())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID, middleware.HeaderTraceID, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	handlers.NewHealthHandler(cfg.Pool).Register(r)

	api := r.Group("/api/v1")
	{
		handlers.NewProductHandler(cfg.ProductService).Register(api.Group("/products"))
		handlers.NewPurchaseHandler(cfg.PurchaseService).Register(api.Group("/purchases"))
		handlers.NewSaleHandler(cfg.SaleService).Register(api.Group("/sales"))
		handlers.NewStockHandler(cfg.LedgerService, cfg.ReportsService).Register(api.Group("/stock"))
		handlers.NewReportsHandler(cfg.ReportsService).Register(api.Group("/reports"))
	}

	return r
}
