package router

import (
	"github.com/gin-gonic/gin"
	"github.com/transitledger/backend/internal/interfaces/http/handler"
)

// Handlers carries every handler the router mounts
type Handlers struct {
	System      *handler.SystemHandler
	Accounts    *handler.AccountHandler
	Entries     *handler.JournalEntryHandler
	Revenues    *handler.TripRevenueHandler
	Receivables *handler.ReceivableHandler
	Config      *handler.SystemConfigHandler
	Payroll     *handler.PayrollHandler
	Sync        *handler.SyncHandler
}

// Setup mounts all API routes on the engine under /api/v1
func Setup(engine *gin.Engine, h Handlers) {
	engine.GET("/health", h.System.Health)
	engine.GET("/ready", h.System.Ready)

	api := engine.Group("/api/v1")

	accounts := api.Group("/accounts")
	accounts.GET("", h.Accounts.List)
	accounts.GET("/suggest-code", h.Accounts.SuggestCode)
	accounts.GET("/:id", h.Accounts.Get)
	accounts.POST("", h.Accounts.Create)
	accounts.PUT("/:id/name", h.Accounts.Rename)
	accounts.DELETE("/:id", h.Accounts.Archive)

	entries := api.Group("/journal-entries")
	entries.GET("", h.Entries.List)
	entries.GET("/:id", h.Entries.Get)
	entries.POST("", h.Entries.Create)
	entries.PUT("/:id", h.Entries.Update)
	entries.DELETE("/:id", h.Entries.Delete)
	entries.POST("/:id/post", h.Entries.Post)
	entries.POST("/:id/adjust", h.Entries.Adjust)
	entries.POST("/:id/reverse", h.Entries.Reverse)

	revenues := api.Group("/revenues")
	revenues.GET("", h.Revenues.List)
	revenues.GET("/unrecorded-trips", h.Revenues.ListUnrecordedTrips)
	revenues.GET("/:id", h.Revenues.Get)
	revenues.POST("", h.Revenues.Create)
	revenues.POST("/process-all", h.Revenues.ProcessAll)
	revenues.PUT("/:id", h.Revenues.Update)

	receivables := api.Group("/receivables")
	receivables.GET("/:id", h.Receivables.Get)
	receivables.GET("/:id/payments", h.Receivables.ListPayments)
	receivables.POST("/:id/schedule", h.Receivables.RegenerateSchedule)

	api.POST("/payments", h.Receivables.RecordPayment)

	config := api.Group("/system-configuration")
	config.GET("", h.Config.Get)
	config.PUT("", h.Config.Update)

	payroll := api.Group("/payroll")
	payroll.GET("/records", h.Payroll.ListByPeriod)
	payroll.POST("/run", h.Payroll.Run)

	api.POST("/sync", h.Sync.Trigger)
}
