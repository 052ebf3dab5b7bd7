// internal/handler/campaign_handler.go
package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/postcampaign-backend/internal/controller"
	"github.com/unclebandit/postcampaign-backend/internal/service"
)

// CampaignHandler serves the campaign detail page.
type CampaignHandler struct {
	Service *service.CampaignService
}

// NewCampaignHandler creates a new CampaignHandler with the given service
func NewCampaignHandler(svc *service.CampaignService) *CampaignHandler {
	return &CampaignHandler{Service: svc}
}

// GetCampaignHandlerWithStats returns a campaign plus how many of its posts
// are in each status.
func (h *CampaignHandler) GetCampaignHandlerWithStats(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		controller.BadRequest(w, "invalid campaign id")
		return
	}

	details, err := h.Service.GetCampaignDetailsWithStats(r.Context(), id)
	if err != nil {
		log.Println("❌ Error fetching campaign:", err)
		controller.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(details)
}
