// api/router.go
package api

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/nebula-seeder/api/handlers"
	"github.com/Annany2002/nebula-seeder/api/middleware"
	"github.com/Annany2002/nebula-seeder/config"
	"github.com/Annany2002/nebula-seeder/internal/auth"
	"github.com/Annany2002/nebula-seeder/internal/dataverse"
	"github.com/Annany2002/nebula-seeder/internal/generation"
	"github.com/Annany2002/nebula-seeder/internal/seeder"
	"github.com/Annany2002/nebula-seeder/internal/storage"
)

// NewPipeline wires the seeding pipeline from configuration. runDB may be nil
// to run without a ledger.
func NewPipeline(runDB *sql.DB, cfg *config.Config) *seeder.Pipeline {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	newGenerator := func(apiKey string) generation.Generator {
		return generation.NewOpenAIClient(generation.Config{
			BaseURL:     cfg.LLMBaseURL,
			APIKey:      apiKey,
			Model:       cfg.LLMModel,
			Temperature: cfg.LLMTemperature,
			MaxTokens:   cfg.LLMMaxTokens,
			Timeout:     cfg.HTTPTimeout,
		})
	}

	var runs seeder.RunRecorder
	if runDB != nil {
		runs = storage.NewRunRepo(runDB)
	}

	return seeder.NewPipeline(
		auth.NewTokenProvider(cfg.AuthorityURL, httpClient),
		dataverse.NewClient(httpClient),
		newGenerator,
		runs,
		cfg.MaxRowCount,
	)
}

// SetupRouter initializes the Gin router and sets up all routes.
func SetupRouter(runDB *sql.DB, cfg *config.Config) *gin.Engine {
	router := gin.Default() // Includes Logger and Recovery

	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	ratelimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)
	router.Use(middleware.RateLimitMiddleware(ratelimiter))
	// It should run after basic middleware like Logger/Recovery
	// but before the routing happens, so it wraps the handlers.
	router.Use(middleware.ErrorHandler())

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(cfg)
	generateHandler := handlers.NewGenerateHandler(NewPipeline(runDB, cfg))
	runHandler := handlers.NewRunHandler(storage.NewRunRepo(runDB))

	// --- Public Routes ---
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
	}

	// --- Protected Routes ---
	apiRoutes := router.Group("/api/v1")
	apiRoutes.Use(middleware.AuthMiddleware(cfg))
	{
		apiRoutes.GET("/me", authHandler.Me)

		apiRoutes.POST("/generate", generateHandler.Generate)

		apiRoutes.GET("/runs", runHandler.ListRuns)
		apiRoutes.GET("/runs/:run_id", runHandler.GetRun)
	}

	return router
}
