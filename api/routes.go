package api

import (
	"github.com/gin-gonic/gin"

	"github.com/caseflowhq/mailroom/api/handlers"
	"github.com/caseflowhq/mailroom/api/middleware"
	"github.com/caseflowhq/mailroom/internal/repository"
	"github.com/caseflowhq/mailroom/services"
)

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(r *gin.Engine, s *services.Services, repos *repository.Repositories, apikey string) {
	if s == nil {
		panic("Services cannot be nil")
	}
	if repos == nil {
		panic("Repositories cannot be nil")
	}

	r.Use(gin.Recovery())

	// setup handlers
	apiHandlers := handlers.InitHandlers(repos, s.IngestionService)

	// Health check endpoint (no custom context needed)
	r.GET("/health", handlers.HealthCheck)

	apiKeyMiddleware := middleware.APIKeyMiddleware(middleware.APIKeyConfig{
		HeaderName:  "X-MAILROOM-API-KEY",
		ValidAPIKey: apikey,
	})

	// API group with version and custom context
	api := r.Group("/v1")
	api.Use(apiKeyMiddleware)
	api.Use(middleware.CustomContextMiddleware("mailroom")) // Add firm context for all /v1/* endpoints
	api.Use(middleware.TracingMiddleware())                 // Add tracing for all /v1/* endpoints
	{
		// Mailbox account endpoints
		accounts := api.Group("/accounts")
		{
			accounts.GET("", apiHandlers.Accounts.List())
			accounts.POST("", apiHandlers.Accounts.Create())
			accounts.POST("/:id/poll", apiHandlers.Accounts.Poll())
		}

		// Import ledger endpoints
		imports := api.Group("/imports")
		{
			imports.GET("/unmatched", apiHandlers.Imports.ListUnmatched())
		}
	}
}
