package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"dorm-manager-backend/config"
	"dorm-manager-backend/internal/auth"
	"dorm-manager-backend/internal/mw"
	"dorm-manager-backend/internal/notification"
	"dorm-manager-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, sessions *auth.Sessions, pool *notification.WorkerPool, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	db := s.DB()
	handler := NewHandler(s, sessions, pool, cfg)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst, cfg.Server.RequestIPHeader)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	authed := mw.Auth(sessions, db, cfg.Session.CookieName)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Public surface
		api.GET("/healthz", handler.Healthz)
		api.POST("/auth/login", handler.Login)
		api.GET("/vacancies", caching, GetVacancies(db))
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)

		// Session required, no specific capability
		session := api.Group("")
		session.Use(authed)
		{
			session.POST("/auth/logout", handler.Logout)
			session.GET("/auth/me", handler.Me)

			session.GET("/subscriptions", handler.GetSubscription)
			session.PUT("/subscriptions", handler.PutSubscription)
			session.DELETE("/subscriptions", handler.DeleteSubscription)

			session.GET("/portal/invoices", mw.Require(auth.CapTenantPortal), handler.PortalInvoices)
			session.GET("/jobs", mw.Require(auth.CapTechnicianJobs), handler.TechnicianJobs)
		}

		// Capability-gated admin surface
		rooms := api.Group("/rooms", authed, mw.Require(auth.CapManageRooms))
		{
			rooms.GET("", GetRooms(db))
			rooms.GET("/:id", GetRoom(db))
			rooms.POST("", handler.CreateRoom)
			rooms.PUT("/:id", handler.UpdateRoom)
			rooms.DELETE("/:id", handler.DeleteRoom)
		}

		tenants := api.Group("/tenants", authed, mw.Require(auth.CapManageTenants))
		{
			tenants.GET("", GetTenants(db))
			tenants.GET("/:id", GetTenant(db))
			tenants.POST("", handler.CreateTenant)
			tenants.PUT("/:id", handler.UpdateTenant)
			tenants.DELETE("/:id", handler.DeleteTenant)
		}

		contracts := api.Group("/contracts", authed, mw.Require(auth.CapManageContracts))
		{
			contracts.GET("", GetContracts(db))
			contracts.GET("/:id", GetContract(db))
			contracts.POST("", handler.CreateContract)
			contracts.POST("/:id/terminate", handler.TerminateContract)
		}

		readings := api.Group("/meter-readings", authed, mw.Require(auth.CapRecordReadings))
		{
			readings.GET("", GetMeterReadings(db))
			readings.POST("", handler.CreateMeterReading)
			readings.POST("/bulk", handler.BulkCreateMeterReadings)
		}

		invoices := api.Group("/invoices", authed, mw.Require(auth.CapManageInvoices))
		{
			invoices.GET("", GetInvoices(db))
			invoices.GET("/:id", GetInvoice(db))
			invoices.POST("", handler.CreateInvoice)
			invoices.POST("/:id/cancel", handler.CancelInvoice)
		}

		payments := api.Group("/payments", authed)
		{
			payments.GET("", mw.Require(auth.CapManageInvoices), GetPayments(db))
			payments.POST("", mw.Require(auth.CapManageInvoices), handler.CreatePayment)
			payments.POST("/:id/verify", mw.Require(auth.CapVerifyPayments), handler.VerifyPayment)
			payments.POST("/:id/reject", mw.Require(auth.CapVerifyPayments), handler.RejectPayment)
		}

		maintenances := api.Group("/maintenances", authed, mw.Require(auth.CapManageMaintenance))
		{
			maintenances.GET("", GetMaintenances(db))
			maintenances.GET("/:id", GetMaintenance(db))
			maintenances.POST("", handler.CreateMaintenance)
			maintenances.POST("/:id/assign", handler.AssignMaintenance)
			maintenances.POST("/:id/complete", handler.CompleteMaintenance)
		}

		users := api.Group("/users", authed, mw.Require(auth.CapManageUsers))
		{
			users.GET("", GetUsers(db))
			users.POST("", handler.CreateUser)
			users.PUT("/:id", handler.UpdateUser)
			users.POST("/:id/toggle-active", handler.ToggleUserActive)
		}

		roles := api.Group("/roles", authed, mw.Require(auth.CapManageRoles))
		{
			roles.GET("", GetRoles(db))
			roles.POST("", handler.CreateRole)
			roles.PUT("/:id", handler.UpdateRole)
		}

		settings := api.Group("/settings", authed, mw.Require(auth.CapManageSettings))
		{
			settings.GET("", GetSettings(db))
			settings.PUT("", handler.PutSettings)
		}
	}

	return r
}
