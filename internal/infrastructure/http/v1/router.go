// Package v1 assembles the HTTP API: routing, middleware and the wiring
// of repositories, services and handlers.
package v1

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	appctx "stockbook/internal/core/context"
	"stockbook/internal/core/id"
	"stockbook/internal/domain/audit"
	"stockbook/internal/domain/auth"
	"stockbook/internal/domain/catalogs/counterparty"
	"stockbook/internal/domain/catalogs/product"
	"stockbook/internal/domain/catalogs/warehouse"
	"stockbook/internal/domain/movements"
	"stockbook/internal/domain/registers/stock"
	"stockbook/internal/domain/reports"
	"stockbook/internal/infrastructure/http/v1/handlers"
	"stockbook/internal/infrastructure/http/v1/middleware"
	"stockbook/internal/infrastructure/numerator"
	"stockbook/internal/infrastructure/storage/postgres"
	"stockbook/internal/infrastructure/storage/postgres/catalog_repo"
	"stockbook/internal/infrastructure/storage/postgres/movement_repo"
	"stockbook/internal/infrastructure/storage/postgres/register_repo"
	"stockbook/internal/infrastructure/storage/postgres/report_repo"
	"stockbook/pkg/logger"
)

// RouterConfig carries everything the router needs to assemble the API.
type RouterConfig struct {
	// Pool is the pgx connection pool, used by the readiness and info
	// endpoints.
	Pool *postgres.Pool

	// TxManager provides transactional database access for every
	// repository the router builds.
	TxManager *postgres.TxManager

	// Logger receives the per-request log lines.
	Logger *logger.Logger

	// JWTValidator authenticates bearer tokens on protected routes.
	JWTValidator middleware.JWTValidator

	// AuthService handles login, refresh, logout and user lookup.
	AuthService *auth.Service

	// IdempotencyEnabled turns on request replay protection for
	// mutating endpoints that send an Idempotency-Key header.
	IdempotencyEnabled bool

	// IdempotencyTTL bounds how long a completed response is replayed.
	IdempotencyTTL time.Duration

	// AlertRules replaces the built-in stock alert rules when non-empty.
	AlertRules []reports.Rule

	// Version is reported by the health info endpoint.
	Version string
}

// NewRouter builds the versioned HTTP router with all API routes.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints stay outside the versioned API and need no token.
	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Version)
	healthHandler.RegisterRoutes(router.Group("/health"))

	deps, err := buildDomain(cfg)
	if err != nil {
		return nil, err
	}

	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, cfg)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))
		if cfg.IdempotencyEnabled {
			store := postgres.NewIdempotencyStore(cfg.TxManager, cfg.IdempotencyTTL)
			protected.Use(middleware.Idempotency(store))
		}

		registerCatalogRoutes(protected, deps)
		registerMovementRoutes(protected, deps)
		registerStockRoutes(protected, deps)
		registerReportRoutes(protected, deps)
		registerAuditRoutes(protected, deps)
	}

	return router, nil
}

// domainDeps bundles the service instances shared across route groups.
// Audit and alert hooks are attached to these exact instances, so route
// registration must not rebuild them.
type domainDeps struct {
	warehouses     *warehouse.Service
	products       *product.Service
	counterparties *counterparty.Service
	stock          *stock.Service
	engine         *movements.Engine
	reports        *reports.Service
	audit          *postgres.AuditStore
}

// buildDomain wires repositories, services and cross-cutting hooks.
func buildDomain(cfg RouterConfig) (*domainDeps, error) {
	// --- STOCK REGISTER ---
	stockService := stock.NewService(register_repo.NewStockRepo(cfg.TxManager))

	// --- CATALOGS ---
	warehouseService := warehouse.NewService(
		catalog_repo.NewWarehouseRepo(cfg.TxManager), cfg.TxManager, stockService)
	productService := product.NewService(
		catalog_repo.NewProductRepo(cfg.TxManager), cfg.TxManager, stockService)
	counterpartyService := counterparty.NewService(
		catalog_repo.NewCounterpartyRepo(cfg.TxManager), cfg.TxManager)

	// --- POSTING ENGINE ---
	engine := movements.NewEngine(movements.EngineConfig{
		Ledger:         movement_repo.NewMovementRepo(cfg.TxManager),
		Balances:       stockService,
		Warehouses:     warehouseService,
		Products:       productService,
		Counterparties: counterpartyService,
		Numerator:      numerator.NewService(cfg.TxManager),
		TxManager:      cfg.TxManager,
	})

	// --- REPORTS ---
	rules := cfg.AlertRules
	if len(rules) == 0 {
		rules = reports.DefaultRules()
	}
	alertEngine, err := reports.NewAlertEngine(rules)
	if err != nil {
		return nil, fmt.Errorf("compile alert rules: %w", err)
	}
	reportService := reports.NewService(report_repo.NewReportRepo(cfg.TxManager), alertEngine)

	// --- AUDIT ---
	auditStore, err := postgres.NewAuditStore(cfg.TxManager)
	if err != nil {
		return nil, fmt.Errorf("create audit store: %w", err)
	}

	audit.RegisterCatalogHooks(warehouseService.Hooks(), auditStore, "warehouse",
		func(w *warehouse.Warehouse) id.ID { return w.ID })
	audit.RegisterCatalogHooks(productService.Hooks(), auditStore, "product",
		func(p *product.Product) id.ID { return p.ID })
	audit.RegisterCatalogHooks(counterpartyService.Hooks(), auditStore, "counterparty",
		func(cp *counterparty.Counterparty) id.ID { return cp.ID })
	audit.RegisterMovementHooks(engine.Hooks(), auditStore)

	// Threshold alerts are evaluated right after each committed posting.
	engine.Hooks().OnAfterCreate(reportService.CheckMovementAlerts)

	return &domainDeps{
		warehouses:     warehouseService,
		products:       productService,
		counterparties: counterpartyService,
		stock:          stockService,
		engine:         engine,
		reports:        reportService,
		audit:          auditStore,
	}, nil
}

// registerAuthRoutes mounts login and refresh without a token, logout
// and the current-user endpoint behind one, and account listing behind
// the admin role.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	public := rg.Group("/auth")
	protected := rg.Group("/auth")
	protected.Use(middleware.Auth(cfg.JWTValidator))
	admin := rg.Group("/auth")
	admin.Use(middleware.Auth(cfg.JWTValidator))
	admin.Use(middleware.RequireRole(appctx.RoleAdmin))

	authHandler.RegisterRoutes(public, protected, admin)
}

func registerCatalogRoutes(rg *gin.RouterGroup, deps *domainDeps) {
	baseHandler := handlers.NewBaseHandler()
	catalogs := rg.Group("/catalog")

	// --- WAREHOUSES ---
	RegisterCatalogRoutes(catalogs.Group("/warehouses"),
		handlers.NewWarehouseHandler(baseHandler, deps.warehouses))

	// --- PRODUCTS ---
	RegisterCatalogRoutes(catalogs.Group("/products"),
		handlers.NewProductHandler(baseHandler, deps.products))

	// --- COUNTERPARTIES ---
	RegisterCatalogRoutes(catalogs.Group("/counterparties"),
		handlers.NewCounterpartyHandler(baseHandler, deps.counterparties))
}

func registerMovementRoutes(rg *gin.RouterGroup, deps *domainDeps) {
	baseHandler := handlers.NewBaseHandler()
	movementHandler := handlers.NewMovementHandler(baseHandler, deps.engine)
	movementHandler.RegisterRoutes(rg.Group("/movements"))
}

func registerStockRoutes(rg *gin.RouterGroup, deps *domainDeps) {
	baseHandler := handlers.NewBaseHandler()
	stockHandler := handlers.NewStockHandler(baseHandler, deps.stock)
	stockHandler.RegisterRoutes(rg.Group("/stock"))
}

func registerReportRoutes(rg *gin.RouterGroup, deps *domainDeps) {
	baseHandler := handlers.NewBaseHandler()
	reportsHandler := handlers.NewReportsHandler(baseHandler, deps.reports)
	reportsHandler.RegisterRoutes(rg.Group("/reports"))
}

// registerAuditRoutes exposes change history to administrators only.
func registerAuditRoutes(rg *gin.RouterGroup, deps *domainDeps) {
	baseHandler := handlers.NewBaseHandler()
	auditHandler := handlers.NewAuditHandler(baseHandler, deps.audit)

	group := rg.Group("/audit")
	group.Use(middleware.RequireRole(appctx.RoleAdmin))
	auditHandler.RegisterRoutes(group)
}
