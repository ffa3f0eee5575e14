package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/pitcrewhq/pitcrew/internal/app"
	iauth "github.com/pitcrewhq/pitcrew/internal/auth"
	"github.com/pitcrewhq/pitcrew/internal/handlers"
	"github.com/pitcrewhq/pitcrew/internal/middleware"
	"github.com/pitcrewhq/pitcrew/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, notifier services.Notifier) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	audit, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	groups, err := services.NewGroupService(db, audit)
	if err != nil {
		return nil, err
	}
	invites, err := services.NewInviteService(db, groups, notifier, audit,
		services.WithInviteBaseURL(cfg.Server.ExternalURL),
		services.WithInviteAcceptPath(cfg.Invites.AcceptPath),
		services.WithInviteTokenSize(cfg.Invites.TokenBytes),
		services.WithAcceptanceResend(cfg.Invites.ResendAcceptanceNotice),
	)
	if err != nil {
		return nil, err
	}
	tasks, err := services.NewTaskService(db, groups, notifier, audit)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())

	// Health endpoint (public)
	r.GET("/health", handlers.Health(db))

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	authHandler, err := handlers.NewAuthHandler(db, jwt)
	if err != nil {
		return nil, err
	}
	groupHandler, err := handlers.NewGroupHandler(db)
	if err != nil {
		return nil, err
	}
	inviteHandler := handlers.NewInviteHandler(invites, tasks)
	taskHandler := handlers.NewTaskHandler(tasks)
	memberHandler, err := handlers.NewMemberHandler(db)
	if err != nil {
		return nil, err
	}
	auditHandler, err := handlers.NewAuditHandler(db)
	if err != nil {
		return nil, err
	}

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Public invite redemption: the token is the credential
	r.GET("/invites/:token", inviteHandler.Info)
	r.POST("/invites/:token/accept", inviteHandler.Accept)

	// Protected routes
	api := r.Group("/api")
	api.Use(middleware.Auth(jwt))

	api.GET("/auth/me", authHandler.Me)

	groupRoutes := api.Group("/groups")
	{
		groupRoutes.GET("", groupHandler.List)
		groupRoutes.POST("", groupHandler.Create)
		groupRoutes.GET("/:id", groupHandler.Get)
		groupRoutes.GET("/:id/members", groupHandler.ListMembers)
		groupRoutes.GET("/:id/invites", inviteHandler.ListForGroup)
		groupRoutes.POST("/:id/invites", inviteHandler.Create)
		groupRoutes.GET("/:id/tasks", taskHandler.ListForGroup)
		groupRoutes.POST("/:id/tasks", taskHandler.Create)
	}

	taskRoutes := api.Group("/tasks")
	{
		taskRoutes.GET("/assigned", taskHandler.ListAssigned)
		taskRoutes.PATCH("/:id/status", taskHandler.UpdateStatus)
	}

	memberRoutes := api.Group("/members")
	{
		memberRoutes.GET("", memberHandler.List)
		memberRoutes.POST("", memberHandler.Create)
		memberRoutes.GET("/:id", memberHandler.Get)
		memberRoutes.PUT("/:id", memberHandler.Update)
		memberRoutes.DELETE("/:id", memberHandler.Delete)
	}

	api.GET("/audit", auditHandler.List)

	return r, nil
}
