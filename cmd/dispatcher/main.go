// cmd/dispatcher/main.go
//
// dispatcher is run from cron. Each run queues every APPROVED post whose
// scheduled time has passed and exits.
package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/unclebandit/postcampaign-backend/internal/config"
	"github.com/unclebandit/postcampaign-backend/internal/db"
	"github.com/unclebandit/postcampaign-backend/internal/queue"
	"github.com/unclebandit/postcampaign-backend/internal/repository"
	"github.com/unclebandit/postcampaign-backend/internal/service"
)

func main() {
	limit := flag.IntP("limit", "n", 50, "maximum number of posts to queue in one run")
	dryRun := flag.Bool("dry-run", false, "list due posts without queueing them")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	db.Init(cfg.Database)
	defer db.DB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	posts := &repository.PostRepository{DB: db.DB}
	now := time.Now()

	if *dryRun {
		due, err := posts.ListDue(ctx, now, *limit)
		if err != nil {
			log.Fatalf("list due posts: %v", err)
		}
		for _, p := range due {
			log.Printf("due: post %d (campaign %d) scheduled %s", p.ID, p.CampaignID, p.ScheduledAt.Format(time.RFC3339))
		}
		log.Printf("%d posts due, nothing queued (dry run)", len(due))
		return
	}

	rq, err := queue.DialRabbitQueue(cfg.Queue.RabbitMQURL)
	if err != nil {
		log.Fatal(err)
	}
	defer rq.Close()

	queued, err := service.DispatchDue(ctx, posts, rq, cfg.Queue.SendQueue, now, *limit)
	if err != nil {
		log.Fatalf("dispatch: %v", err)
	}
	log.Printf("📬 queued %d due posts on %s", queued, cfg.Queue.SendQueue)
}
