// main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/nocodecorp/portal-api/internal/api/handlers"
	"github.com/nocodecorp/portal-api/internal/api/middleware"
	"github.com/nocodecorp/portal-api/internal/config"
	"github.com/nocodecorp/portal-api/internal/cron"
	"github.com/nocodecorp/portal-api/internal/directory"
	"github.com/nocodecorp/portal-api/internal/integration"
	"github.com/nocodecorp/portal-api/internal/service"
	"github.com/nocodecorp/portal-api/internal/session"
	"github.com/nocodecorp/portal-api/internal/socket"
	"github.com/nocodecorp/portal-api/internal/state"
)

func main() {
	// ============================================
	// Load environment variables
	// ============================================
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// ============================================
	// Load configuration
	// ============================================
	cfg := config.Load()

	// ============================================
	// Set Gin mode
	// ============================================
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// ============================================
	// Initialize Session Store (Redis or in-memory)
	// ============================================
	var sessions session.Store
	if cfg.RedisURL != "" {
		redisStore, err := session.NewRedisStore(cfg.RedisURL, cfg.SessionIdleTTL)
		if err != nil {
			log.Printf("⚠️ Failed to connect to Redis: %v (falling back to in-memory sessions)", err)
			sessions = session.NewMemoryStore(cfg.SessionIdleTTL)
		} else {
			sessions = redisStore
			log.Println("⚡ Redis session store enabled")
		}
	} else {
		sessions = session.NewMemoryStore(cfg.SessionIdleTTL)
		log.Println("📦 In-memory session store enabled")
	}

	// ============================================
	// Initialize Integration Endpoint Client
	// ============================================
	endpoint := integration.NewClient(integration.Config{
		TicketURL:     cfg.TicketWebhookURL,
		ClientDataURL: cfg.ClientDataWebhookURL,
		Timeout:       cfg.WebhookTimeout,
	})
	if cfg.ClientDataWebhookURL == "" {
		log.Println("⚠️  Client data webhook not configured (CLIENT_DATA_WEBHOOK_URL not set)")
	}

	// ============================================
	// Initialize WebSocket Hub
	// ============================================
	hub := socket.NewHub()
	go hub.Run()
	broadcaster := socket.NewBroadcaster(hub)

	// WebSocket handler with JWT secret for self-authentication
	wsHandler := socket.NewHandler(hub, cfg.JWTSecret)
	log.Println("🔌 WebSocket hub initialized")

	// ============================================
	// Initialize All Services
	// ============================================
	stateStore := state.NewStore()
	services := service.NewServices(&service.ServiceDeps{
		Config:      cfg,
		Endpoint:    endpoint,
		Sessions:    sessions,
		State:       stateStore,
		Directory:   directory.New(),
		Broadcaster: broadcaster,
	})
	log.Println("✨ All services initialized")

	// ============================================
	// Initialize Handlers
	// ============================================
	h := handlers.NewHandlers(services)

	// ============================================
	// Initialize Cron Scheduler
	// ============================================
	cronScheduler := cron.NewScheduler(sessions, stateStore, broadcaster, cfg.SweepInterval)
	cronScheduler.Start()
	defer cronScheduler.Stop()

	// ============================================
	// Create Gin Router
	// ============================================
	r := gin.Default()

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"timestamp":  time.Now(),
			"websocket":  "active",
			"ws_clients": hub.ConnectedCount(),
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// ============================================
		// Public routes (no auth required)
		// ============================================
		api.POST("/session", h.Session.Create)

		// WebSocket route
		api.GET("/ws", wsHandler.HandleWebSocket)

		// ============================================
		// Protected routes (require session middleware)
		// ============================================
		protected := api.Group("")
		protected.Use(middleware.SessionMiddleware(services.Tokens, sessions))
		{
			protected.GET("/session", h.Session.Get)
			protected.POST("/session/refresh", h.Session.Refresh)
			protected.DELETE("/session", h.Session.Delete)

			protected.GET("/dashboard", h.Dashboard.Get)

			protected.POST("/tickets/validate", h.Ticket.Validate)
			protected.POST("/tickets", h.Ticket.Create)
		}
	}

	// ============================================
	// Start Server with Graceful Shutdown
	// ============================================
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("🚀 Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server exited")
}
