// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"pgcledger/internal/app"
	"pgcledger/internal/core/tenant"
	"pgcledger/internal/infrastructure/http/v1/handlers"
	"pgcledger/internal/infrastructure/http/v1/middleware"
	"pgcledger/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Services is the assembled ledger.
	Services *app.Services

	// Tenants resolves the X-Tenant-ID header.
	Tenants tenant.Registry

	// Pool is used by health checks; nil skips the database check.
	Pool *pgxpool.Pool

	// Logger for request logging
	Logger *logger.Logger

	// History serves the audit trail of journal entries; optional.
	History handlers.HistoryReader

	// HealthChecks are extra readiness probes, e.g. Redis.
	HealthChecks map[string]handlers.Pinger
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no tenant required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.HealthChecks)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	v1 := router.Group("/api/v1")
	{
		registerAdminRoutes(v1, cfg)

		// Company-scoped endpoints
		scoped := v1.Group("")
		scoped.Use(middleware.Tenant(cfg.Tenants))

		registerChartRoutes(scoped, cfg)
		registerDocumentRoutes(scoped, cfg)
		registerPayrollRoutes(scoped, cfg)
		registerJournalRoutes(scoped, cfg)
		registerReportRoutes(scoped, cfg)
	}

	return router
}

// registerAdminRoutes registers the endpoints that work across companies.
func registerAdminRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	companyHandler := handlers.NewCompanyHandler(baseHandler, cfg.Services.Company)
	companies := rg.Group("/companies")
	{
		companies.GET("", companyHandler.List)
		companies.POST("", companyHandler.Create)
		companies.GET("/:id", companyHandler.Get)
		companies.POST("/:id/suspend", companyHandler.Suspend)
		companies.POST("/:id/activate", companyHandler.Activate)
	}

	taxHandler := handlers.NewTaxHandler(baseHandler, cfg.Services.Tax)
	taxes := rg.Group("/tax")
	{
		taxes.GET("/irt", taxHandler.ComputeIRT)
		taxes.GET("/irt-brackets", taxHandler.Brackets)
		taxes.PUT("/irt-brackets", taxHandler.ReplaceBrackets)
		taxes.POST("/irt-brackets/reset", taxHandler.ResetBrackets)
		taxes.GET("/rates", taxHandler.Rates)
		taxes.POST("/rates/reset", taxHandler.ResetRates)
	}
}

// registerChartRoutes registers accounts, parties and exchange rates.
func registerChartRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	accountHandler := handlers.NewAccountHandler(baseHandler, cfg.Services.Chart)
	accounts := rg.Group("/accounts")
	{
		accounts.GET("/tree", accountHandler.Tree)
		accounts.POST("/import", accountHandler.Import)
		accounts.POST("/initialize", accountHandler.Initialize)
		RegisterCRUDRoutes(accounts, accountHandler)
	}

	partyHandler := handlers.NewPartyHandler(baseHandler, cfg.Services.Parties)
	RegisterCRUDRoutes(rg.Group("/parties"), partyHandler)

	exchangeHandler := handlers.NewExchangeHandler(baseHandler, cfg.Services.Exchange)
	rates := rg.Group("/exchange-rates")
	{
		rates.GET("", exchangeHandler.History)
		rates.POST("", exchangeHandler.Set)
		rates.GET("/convert", exchangeHandler.Convert)
		rates.DELETE("/:id", exchangeHandler.Delete)
	}
}

// registerDocumentRoutes registers invoices, purchases and expenses.
func registerDocumentRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	// --- INVOICES ---
	{
		handler := handlers.NewInvoiceHandler(baseHandler, cfg.Services.Invoices)
		group := rg.Group("/invoices")
		RegisterDocumentRoutes(group, handler)
		group.POST("/:id/issue", handler.Issue)
		group.POST("/:id/confirm-withholding", handler.ConfirmWithholding)
	}

	// --- PURCHASES ---
	{
		handler := handlers.NewPurchaseHandler(baseHandler, cfg.Services.Purchases)
		group := rg.Group("/purchases")
		RegisterDocumentRoutes(group, handler)
		group.POST("/:id/register", handler.Register)
		group.POST("/:id/settle-withholding", handler.SettleWithholding)
	}

	// --- EXPENSES ---
	{
		handler := handlers.NewExpenseHandler(baseHandler, cfg.Services.Expenses)
		group := rg.Group("/expenses")
		group.GET("", handler.List)
		group.POST("", handler.Create)
		group.GET("/:id", handler.Get)
		group.POST("/:id/post", handler.Post)
	}
}

// registerPayrollRoutes registers employees and payroll runs.
func registerPayrollRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	handler := handlers.NewPayrollHandler(handlers.NewBaseHandler(), cfg.Services.Payroll)

	employees := rg.Group("/employees")
	{
		employees.GET("", handler.ListEmployees)
		employees.POST("", handler.CreateEmployee)
		employees.GET("/:id", handler.GetEmployee)
		employees.PUT("/:id", handler.UpdateEmployee)
		employees.POST("/:id/absences", handler.RecordAbsence)
		employees.POST("/:id/overtime", handler.RecordOvertime)
	}

	runs := rg.Group("/payroll")
	{
		runs.GET("/runs", handler.Runs)
		runs.POST("/runs", handler.Run)
		runs.PUT("/runs/:id", handler.Recalculate)
		runs.POST("/post", handler.Post)
	}
}

// registerJournalRoutes registers manual entries and year-end closing.
func registerJournalRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	journalHandler := handlers.NewJournalHandler(baseHandler, cfg.Services.Posting, cfg.History)
	journal := rg.Group("/journal")
	{
		journal.GET("", journalHandler.List)
		journal.POST("", journalHandler.Create)
		journal.GET("/:id", journalHandler.Get)
		journal.GET("/:id/history", journalHandler.History)
	}

	closingHandler := handlers.NewClosingHandler(baseHandler, cfg.Services.Closing)
	closing := rg.Group("/closing")
	{
		closing.GET("/preview", closingHandler.Preview)
		closing.POST("", closingHandler.Close)
	}
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	reportHandler := handlers.NewReportHandler(handlers.NewBaseHandler(), cfg.Services.Reports)

	reports := rg.Group("/reports")
	{
		reports.GET("/trial-balance", reportHandler.TrialBalance)
		reports.GET("/results-trial-balance", reportHandler.ResultsTrialBalance)
		reports.GET("/income-statement", reportHandler.IncomeStatement)
		reports.GET("/balance-sheet", reportHandler.BalanceSheet)
		reports.GET("/vat", reportHandler.VATMap)
		reports.GET("/journal", reportHandler.Journal)
		reports.GET("/accounts/:id/balance", reportHandler.Balance)
		reports.GET("/accounts/:id/ledger", reportHandler.GeneralLedger)
		reports.GET("/parties/:id/statement", reportHandler.PartyStatement)
	}
}
