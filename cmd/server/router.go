package main

import (
	"net/http"

	"file-lifecycle-manager/internal/config"
	"file-lifecycle-manager/internal/daak"
	"file-lifecycle-manager/internal/file"
	"file-lifecycle-manager/internal/logger"
	"file-lifecycle-manager/internal/middleware"
	"file-lifecycle-manager/internal/template"
	"file-lifecycle-manager/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type routes struct {
	auth     *middleware.Auth
	user     *user.Handler
	template *template.Handler
	file     *file.Handler
	daak     *daak.Handler
}

func newRouter(cfg config.Config, r routes) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger.L))

	// cors setting
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: false,
	}
	if cfg.Environment == "development" {
		// Allow all origins in development
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = []string{cfg.FrontendAddress}
	}
	router.Use(cors.New(corsConfig))
	router.Use(middleware.ErrorHandler(logger.L))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.POST("/login", r.user.Login)

	authed := router.Group("/", r.auth.AuthMiddleWare())
	authed.GET("/profile", r.user.GetProfile)
	authed.GET("/departments/:id/roles/me", r.user.MyRole)
	authed.PUT("/departments/:id/roles", r.user.AssignRole)

	authed.GET("/departments/:id/templates", r.template.List)
	authed.POST("/departments/:id/templates", r.template.Create)
	authed.GET("/departments/:id/templates/resolve", r.template.Resolve)

	authed.POST("/files", r.file.Create)
	authed.GET("/files/:id", r.file.Show)
	authed.GET("/departments/:id/files", r.file.ListForDepartment)
	authed.POST("/files/:id/actions", r.file.ExecuteAction)
	authed.GET("/files/:id/allowed-actions", r.file.AllowedActions)
	authed.GET("/files/:id/levels", r.file.Levels)
	authed.GET("/files/:id/audit-trail", r.file.AuditTrail)
	authed.GET("/files/:id/participants", r.file.Participants)

	authed.POST("/daak", r.daak.Create)
	authed.GET("/departments/:id/daak", r.daak.ListForDepartment)
	authed.POST("/daak/:id/link", r.daak.Link)

	return router
}
