package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatrelay-backend/internal/config"
	"chatrelay-backend/internal/database"
	"chatrelay-backend/internal/handlers"
	"chatrelay-backend/internal/middleware"
	"chatrelay-backend/internal/repository"
	"chatrelay-backend/internal/router"
	"chatrelay-backend/internal/services"
)

func main() {
	log.Println("🚀 Starting ChatRelay Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Step 4: Initialize Throttle Gate ────
	var throttle services.ThrottleGate
	rateWindow := time.Duration(cfg.ChatRateWindowSeconds) * time.Second
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("✗ Redis connection failed: %v", err)
		}
		defer redisClient.Close()
		throttle = services.NewRedisThrottle(redisClient, cfg.ChatRateLimit, rateWindow)
		log.Println("✓ Redis connected (chat throttle)")
	} else {
		throttle = services.NewMemoryThrottle(cfg.ChatRateLimit, rateWindow)
		log.Println("✓ In-memory chat throttle (REDIS_URL not set)")
	}

	// ──── Step 5: Initialize Groq Client ────
	groqClient, err := services.NewGroqClient(services.GroqConfig{
		APIKey:      cfg.GroqAPIKey,
		BaseURL:     cfg.GroqBaseURL,
		Model:       cfg.GroqModel,
		Temperature: cfg.GroqTemperature,
		MaxTokens:   cfg.GroqMaxTokens,
		TopP:        cfg.GroqTopP,
		Timeout:     time.Duration(cfg.GroqTimeoutSeconds) * time.Second,
	})
	if err != nil {
		log.Fatalf("✗ Groq client initialization failed: %v", err)
	}
	log.Printf("✓ Groq client initialized (model=%s)", cfg.GroqModel)

	// ──── Initialize Repositories & Services ────
	chatRepo := repository.NewChatRepo(pool)
	moderation := services.NewModerationFilter(cfg.ModerationTerms)

	mode := services.ModeBlocking
	if cfg.GroqStreaming {
		mode = services.ModeStreaming
	}
	chatService := services.NewChatService(
		chatRepo,
		groqClient,
		throttle,
		moderation,
		mode,
		cfg.ChatContextTurns,
		cfg.ChatHistoryLimit,
	)

	// ──── Initialize Handlers ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	chatHandler := handlers.NewChatHandler(chatService)

	// ──── Step 6: Start HTTP Server ────
	r := router.New(jwtAuth, chatHandler, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ ChatRelay Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
