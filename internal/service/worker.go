package service

import (
	"context"
	"log"
	"time"

	"github.com/unclebandit/postcampaign-backend/internal/model"
	"github.com/unclebandit/postcampaign-backend/internal/queue"
)

// Sender is the part of PostService the worker drives.
type Sender interface {
	SendNow(ctx context.Context, postID int, opts SendOptions) (*SendResult, error)
}

// Worker processes queued send jobs
type Worker struct {
	Sender Sender
}

// Constructor
func NewWorker(sender Sender) *Worker {
	return &Worker{Sender: sender}
}

// Handle is subscribed to the send queue. Only infrastructure errors are
// returned; a rejected or failed send is already recorded on the post.
func (w *Worker) Handle(payload any) error {
	job, err := queue.DecodeSendJob(payload)
	if err != nil {
		log.Println("Invalid job:", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := w.Sender.SendNow(ctx, job.PostID, SendOptions{
		AcknowledgeWarnings: job.AcknowledgeWarnings,
		RequireStatus:       job.RequireStatus,
	})
	if err != nil {
		return err
	}

	switch result.Outcome {
	case OutcomeSent:
		log.Printf("📤 job for post %d sent as %s", job.PostID, result.TweetID)
	default:
		log.Printf("job for post %d finished as %s: %s", job.PostID, result.Outcome, result.Error)
	}
	return nil
}

// DueLister is the part of the post store the dispatcher reads.
type DueLister interface {
	ListDue(ctx context.Context, before time.Time, limit int) ([]*model.Post, error)
}

// DispatchDue publishes a send job for every approved post whose time has
// come. APPROVED means an operator reviewed the post, so warnings count as
// acknowledged, but only while the post is still APPROVED when the job runs.
func DispatchDue(ctx context.Context, posts DueLister, q queue.Queue, topic string, now time.Time, limit int) (int, error) {
	due, err := posts.ListDue(ctx, now, limit)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, p := range due {
		job := queue.SendJob{
			PostID:              p.ID,
			AcknowledgeWarnings: true,
			RequireStatus:       model.PostApproved,
		}
		if err := q.Publish(topic, job); err != nil {
			log.Println("⚠️ failed to enqueue post", p.ID, ":", err)
			continue
		}
		queued++
	}
	return queued, nil
}
