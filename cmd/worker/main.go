// cmd/worker/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/unclebandit/postcampaign-backend/internal/cache"
	"github.com/unclebandit/postcampaign-backend/internal/config"
	"github.com/unclebandit/postcampaign-backend/internal/db"
	"github.com/unclebandit/postcampaign-backend/internal/poster"
	"github.com/unclebandit/postcampaign-backend/internal/queue"
	"github.com/unclebandit/postcampaign-backend/internal/repository"
	"github.com/unclebandit/postcampaign-backend/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db.Init(cfg.Database)
	defer db.DB.Close()

	postService := &service.PostService{
		PostRepo:     &repository.PostRepository{DB: db.DB},
		CampaignRepo: &repository.CampaignRepository{DB: db.DB},
		Poster:       poster.NewHTTPClient(cfg.Poster),
		Locker:       cache.NewLocalSendLock(),
		SendTimeout:  cfg.Poster.Timeout,
	}

	// With Redis the worker shares the send lock with the API server and
	// drops stale dashboard stats after each send.
	if cfg.Redis.URL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()

		stats := &cache.RedisStatsCache{Client: rdb, TTL: cfg.Redis.StatsCacheTTL}
		postService.Locker = &cache.RedisSendLock{Client: rdb, TTL: cfg.Redis.SendLockTTL}
		postService.OnChanged = func(campaignID int) {
			stats.Invalidate(context.Background(), campaignID)
		}
	}

	// Connect to RabbitMQ
	rq, err := queue.DialRabbitQueue(cfg.Queue.RabbitMQURL)
	if err != nil {
		log.Fatal(err)
	}
	defer rq.Close()

	worker := service.NewWorker(postService)
	if err := rq.Subscribe(cfg.Queue.SendQueue, worker.Handle); err != nil {
		log.Fatal(err)
	}

	log.Printf("Worker running, waiting for messages on %s...", cfg.Queue.SendQueue)
	<-ctx.Done()
	log.Println("Worker stopping")
}
