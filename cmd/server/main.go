package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/paperchat/backend/internal/api/handlers"
	"github.com/paperchat/backend/internal/config"
	"github.com/paperchat/backend/internal/database"
	"github.com/paperchat/backend/internal/llm"
	"github.com/paperchat/backend/internal/pipeline"
	"github.com/paperchat/backend/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	// Construct the selected storage backend
	sessionStore, err := newStore(cfg)
	if err != nil {
		log.Fatal("Failed to initialize storage: ", err)
	}

	// Sweep expired sessions on startup, then optionally on a timer. The
	// sweeper runs alongside normal traffic and never assumes it is the
	// only writer.
	if cfg.RetentionDays > 0 {
		maxAge := time.Duration(cfg.RetentionDays) * 24 * time.Hour
		runSweep(sessionStore, maxAge)
		if cfg.SweepIntervalHours > 0 {
			go func() {
				ticker := time.NewTicker(time.Duration(cfg.SweepIntervalHours) * time.Hour)
				defer ticker.Stop()
				for range ticker.C {
					runSweep(sessionStore, maxAge)
				}
			}()
		}
	}

	// Wire the answer pipeline
	client := llm.NewClient(cfg.LLMHost, cfg.LLMModel, cfg.LLMTemperature)
	searcher := pipeline.NewHTTPSearcher(cfg.SearchURL)
	orchestrator := pipeline.NewOrchestrator(
		pipeline.NewSearchRetriever(searcher, cfg.SearchTopK),
		pipeline.NewLLMDrafter(client),
		pipeline.NewLLMVerifier(client),
	)

	// Setup and run the server
	r := setupRouter(sessionStore, orchestrator, cfg)
	port := cfg.ServerPort

	log.Printf("Server starting on port %s (store backend: %s)", port, cfg.StoreBackend)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func newStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		client, err := database.InitRedis(cfg)
		if err != nil {
			return nil, err
		}
		return store.NewRedisStore(client), nil
	default:
		db, err := database.InitDB(cfg)
		if err != nil {
			return nil, err
		}
		return store.NewPostgresStore(db)
	}
}

func runSweep(s store.Store, maxAge time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := s.Sweep(ctx, maxAge); err != nil {
		log.Printf("Retention sweep failed: %v", err)
	}
}

func setupRouter(sessionStore store.Store, orchestrator *pipeline.Orchestrator, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// Configure CORS middleware
	headers := cors.DefaultConfig()
	if cfg.FrontendURL != "" {
		headers.AllowOrigins = []string{cfg.FrontendURL}
	} else {
		headers.AllowAllOrigins = true
	}
	headers.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	headers.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	headers.ExposeHeaders = []string{"Content-Length"}
	r.Use(cors.New(headers))

	handler := handlers.NewHandler(sessionStore, orchestrator)

	// API routes
	api := r.Group("/api")
	{
		qa := api.Group("/qa")
		{
			qa.POST("/conversation", handler.Conversation)
			qa.GET("/sessions", handler.ListSessions)
			qa.GET("/session/:sessionId/history", handler.GetSessionHistory)
			qa.DELETE("/session/:sessionId", handler.DeleteSession)
		}
	}

	return r
}
