// internal/router/router.go
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/localbiz/directory-backend/internal/config"
	"github.com/localbiz/directory-backend/internal/handlers"
	"github.com/localbiz/directory-backend/internal/middleware"
	"github.com/localbiz/directory-backend/internal/repository"
	"github.com/localbiz/directory-backend/internal/services"
	"github.com/localbiz/directory-backend/internal/utils"
)

const Version = "1.0.0"

// Dependencies are the collaborators the HTTP surface is built on. Identity
// defaults to the JWT resolver.
type Dependencies struct {
	Store    repository.Store
	Notifier services.Notifier
	Identity services.IdentityResolver
	Ping     handlers.Pinger
}

// Router owns the engine and the background work started for it.
type Router struct {
	Engine *gin.Engine

	notifications *services.NotificationService
	audit         *middleware.AuditLogger
	limiters      []*middleware.RateLimiter
}

func Initialize(cfg *config.Config, deps Dependencies) *Router {
	if deps.Identity == nil {
		deps.Identity = services.NewJWTIdentityResolver()
	}

	// Initialize services
	categories := services.NewCategoryCatalog(nil)
	mirror := services.NewApplicationMirror(deps.Store)
	notificationService := services.NewNotificationService(deps.Notifier, cfg)

	authService := services.NewAuthService(deps.Store, cfg)
	intakeService := services.NewIntakeService(deps.Store, mirror, deps.Identity, categories)
	businessService := services.NewBusinessService(deps.Store, mirror, notificationService, categories)
	moderationService := services.NewModerationService(deps.Store, mirror, notificationService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	intakeHandler := handlers.NewIntakeHandler(intakeService)
	businessHandler := handlers.NewBusinessHandler(businessService)
	adminHandler := handlers.NewAdminHandler(moderationService)
	healthHandler := handlers.NewHealthHandler(Version, deps.Ping)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	rt := &Router{
		notifications: notificationService,
		audit:         middleware.NewAuditLogger(deps.Store),
	}
	intakeLimiter := middleware.PerMinute(cfg.RateLimit.IntakePerMinute)
	authLimiter := middleware.PerMinute(cfg.RateLimit.AuthPerMinute)
	rt.limiters = append(rt.limiters, intakeLimiter, authLimiter)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(middleware.I18nMiddleware())
	r.Use(rt.audit.Middleware())

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authLimiter.Middleware(), authHandler.Register)
			auth.POST("/login", authLimiter.Middleware(), authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Wizard submissions
		v1.POST("/intake", intakeLimiter.Middleware(), intakeHandler.Submit)

		// Public directory
		businesses := v1.Group("/businesses")
		{
			businesses.GET("", businessHandler.ListPublic)
			businesses.GET("/:id", businessHandler.GetPublic)
		}

		// Owner routes
		me := v1.Group("/me")
		me.Use(middleware.AuthRequired())
		{
			me.GET("/businesses", businessHandler.ListMine)
			me.GET("/businesses/:id", businessHandler.GetMine)
			me.PUT("/businesses/:id", businessHandler.Update)
			me.POST("/businesses/:id/recompute", businessHandler.Recompute)
			me.POST("/businesses/:id/request-publish", businessHandler.RequestPublish)
			me.GET("/application", businessHandler.GetApplication)
		}

		// Staff routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.StaffRequired())
		{
			admin.GET("/stats", adminHandler.GetStats)

			adminBusinesses := admin.Group("/businesses")
			{
				adminBusinesses.GET("", adminHandler.ListQueue)
				adminBusinesses.GET("/:id", adminHandler.GetBusiness)
				adminBusinesses.GET("/:id/history", adminHandler.History)
				adminBusinesses.POST("/:id/approve", adminHandler.Approve)
				adminBusinesses.POST("/:id/reject", adminHandler.Reject)
				adminBusinesses.POST("/:id/request-info", adminHandler.RequestInfo)
				adminBusinesses.POST("/:id/unpublish", adminHandler.Unpublish)
				adminBusinesses.POST("/:id/archive", adminHandler.Archive)
				adminBusinesses.POST("/:id/restore", adminHandler.Restore)
				adminBusinesses.POST("/:id/mark-duplicate", adminHandler.MarkDuplicate)
				adminBusinesses.POST("/:id/delete", adminHandler.Delete)
				adminBusinesses.POST("/:id/recompute", adminHandler.Recompute)
			}
		}
	}

	rt.Engine = r
	return rt
}

// Shutdown stops the rate limiters and waits for queued notifications and
// audit writes to finish.
func (rt *Router) Shutdown() {
	for _, l := range rt.limiters {
		l.Stop()
	}
	rt.notifications.Wait()
	rt.audit.Wait()
}
