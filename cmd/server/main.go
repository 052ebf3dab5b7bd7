// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/joho/godotenv"

	"github.com/unclebandit/postcampaign-backend/internal/cache"
	"github.com/unclebandit/postcampaign-backend/internal/config"
	"github.com/unclebandit/postcampaign-backend/internal/db"
	"github.com/unclebandit/postcampaign-backend/internal/handler"
	"github.com/unclebandit/postcampaign-backend/internal/poster"
	"github.com/unclebandit/postcampaign-backend/internal/queue"
	"github.com/unclebandit/postcampaign-backend/internal/repository"
	"github.com/unclebandit/postcampaign-backend/internal/service"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	db.Init(cfg.Database)
	defer db.DB.Close()

	campaignRepo := &repository.CampaignRepository{DB: db.DB}
	postRepo := &repository.PostRepository{DB: db.DB}

	var (
		locker    service.SendLocker = cache.NewLocalSendLock()
		stats     service.StatsCache
		onChanged func(campaignID int)
	)
	if cfg.Redis.URL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()

		statsCache := &cache.RedisStatsCache{Client: rdb, TTL: cfg.Redis.StatsCacheTTL}
		locker = &cache.RedisSendLock{Client: rdb, TTL: cfg.Redis.SendLockTTL}
		stats = statsCache

		q := queue.NewInMemoryQueue()
		if err := queue.StartStatsInvalidationSubscriber(q, statsCache); err != nil {
			log.Fatalf("stats subscriber: %v", err)
		}
		onChanged = queue.NotifyPostsChanged(q)
		log.Println("✅ Redis send lock and stats cache enabled")
	} else {
		log.Println("⚠️ REDIS_URL not set, using in-process send lock and no stats cache")
	}

	postService := &service.PostService{
		PostRepo:     postRepo,
		CampaignRepo: campaignRepo,
		Poster:       poster.NewHTTPClient(cfg.Poster),
		Locker:       locker,
		OnChanged:    onChanged,
		SendTimeout:  cfg.Poster.Timeout,
	}
	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo,
		PostRepo:     postRepo,
		Stats:        stats,
		Location:     service.LoadScheduleLocation(cfg.Schedule.Timezone),
		OnChanged:    onChanged,
	}

	router := handler.NewRouter(campaignService, postService)
	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.Server.CORSOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handlers.CombinedLoggingHandler(os.Stdout, cors(router)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
