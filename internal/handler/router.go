// internal/handler/router.go
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/unclebandit/postcampaign-backend/internal/controller"
	"github.com/unclebandit/postcampaign-backend/internal/service"
)

// NewRouter mounts every dashboard route on a chi router.
func NewRouter(campaigns *service.CampaignService, posts *service.PostService) http.Handler {
	campaignController := &controller.CampaignController{
		CampaignService: campaigns,
		PostService:     posts,
	}
	postController := &controller.PostController{PostService: posts}
	campaignHandler := NewCampaignHandler(campaigns)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Campaign routes
	r.Post("/campaigns", campaignController.CreateCampaign)
	r.Get("/campaigns", campaignController.ListCampaigns)
	r.Get("/campaigns/{id}", campaignHandler.GetCampaignHandlerWithStats)
	r.Put("/campaigns/{id}/status", campaignController.UpdateStatus)
	r.Post("/campaigns/{id}/posts", campaignController.CreatePost)
	r.Post("/campaigns/{id}/posts/generate", campaignController.GeneratePosts)

	// Post routes
	r.Get("/posts", postController.ListPosts)
	r.Get("/posts/{id}", postController.GetPost)
	r.Put("/posts/{id}", postController.UpdatePost)
	r.Delete("/posts/{id}", postController.DeletePost)
	r.Post("/posts/{id}/evaluate", postController.EvaluatePost)
	r.Post("/posts/{id}/send", postController.SendPost)

	return r
}
