package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/divyanshkhurana06/mailed0/internal/api"
	"github.com/divyanshkhurana06/mailed0/internal/auth"
	"github.com/divyanshkhurana06/mailed0/internal/config"
	"github.com/divyanshkhurana06/mailed0/internal/inbox"
	"github.com/divyanshkhurana06/mailed0/internal/registry"
	"github.com/divyanshkhurana06/mailed0/internal/repository/postgres"
	"github.com/divyanshkhurana06/mailed0/internal/tracking"
)

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	repo := postgres.New(db)

	// Open-event pipeline: pixel handler publishes, consumer persists.
	publisher := tracking.NewPublisher(redisClient)
	pixel := tracking.NewHandler(publisher)
	consumer := tracking.NewConsumer(redisClient, repo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	consumer.Start(ctx)
	defer consumer.Stop()

	reg := registry.NewService(repo)
	authManager := auth.NewManager(cfg.Google, repo)
	summarizer := inbox.NewSummarizer(cfg.Summarizer)

	handlers := api.NewHandlers(reg, authManager, summarizer, cfg.FrontendURL)
	router := api.SetupRoutes(handlers, pixel, cfg.FrontendURL)
	srv := api.NewServer(router)

	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
	go func() {
		log.Printf("mailed server listening on %s", addr)
		if err := srv.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
