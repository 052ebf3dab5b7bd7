// internal/controller/campaign_controller.go
package controller

import (
    "encoding/json"
    "net/http"
    "strconv"
    "time"

    "github.com/unclebandit/postcampaign-backend/internal/model"
    "github.com/unclebandit/postcampaign-backend/internal/service"
)

type CampaignController struct {
    CampaignService *service.CampaignService
    PostService     *service.PostService
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
    var body service.CreateCampaignInput
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        BadRequest(w, "invalid body")
        return
    }

    campaign, err := c.CampaignService.CreateCampaign(r.Context(), body)
    if err != nil {
        WriteError(w, err)
        return
    }

    writeJSON(w, http.StatusCreated, campaign)
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
    // Parse query parameters
    page, _ := strconv.Atoi(r.URL.Query().Get("page"))
    pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
    status := r.URL.Query().Get("status")

    campaigns, pagination, err := c.CampaignService.ListCampaigns(r.Context(), page, pageSize, status)
    if err != nil {
        WriteError(w, err)
        return
    }

    writeJSON(w, http.StatusOK, map[string]interface{}{
        "data":       campaigns,
        "pagination": pagination, // page, page_size, total_count, total_pages
    })
}

func (c *CampaignController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
    id, ok := idParam(w, r)
    if !ok {
        return
    }

    var body struct {
        Status model.CampaignStatus `json:"status"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        BadRequest(w, "invalid body")
        return
    }

    if err := c.CampaignService.UpdateStatus(r.Context(), id, body.Status); err != nil {
        WriteError(w, err)
        return
    }

    writeJSON(w, http.StatusOK, map[string]interface{}{
        "success":     true,
        "campaign_id": id,
        "status":      body.Status,
    })
}

func (c *CampaignController) CreatePost(w http.ResponseWriter, r *http.Request) {
    id, ok := idParam(w, r)
    if !ok {
        return
    }

    var body struct {
        DayIndex       int              `json:"day_index"`
        Slot           model.PostSlot   `json:"slot"`
        TargetAudience string           `json:"target_audience"`
        Content        string           `json:"content"`
        MediaURLs      []string         `json:"media_urls"`
        MediaAlt       *string          `json:"media_alt"`
        UseOgFallback  bool             `json:"use_og_fallback"`
        ScheduledAt    time.Time        `json:"scheduled_at"`
        Status         model.PostStatus `json:"status"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        BadRequest(w, "invalid body")
        return
    }

    post := &model.Post{
        CampaignID:     id,
        DayIndex:       body.DayIndex,
        Slot:           body.Slot,
        TargetAudience: body.TargetAudience,
        Content:        body.Content,
        MediaURLs:      body.MediaURLs,
        MediaAlt:       body.MediaAlt,
        UseOgFallback:  body.UseOgFallback,
        ScheduledAt:    body.ScheduledAt,
        Status:         body.Status,
    }
    if !post.ScheduledAt.IsZero() && c.CampaignService.Location != nil {
        post.ScheduledAt = post.ScheduledAt.In(c.CampaignService.Location)
    }

    if err := c.PostService.CreatePost(r.Context(), post); err != nil {
        WriteError(w, err)
        return
    }

    writeJSON(w, http.StatusCreated, map[string]interface{}{
        "success": true,
        "post":    post,
    })
}

func (c *CampaignController) GeneratePosts(w http.ResponseWriter, r *http.Request) {
    id, ok := idParam(w, r)
    if !ok {
        return
    }

    var body service.GenerateInput
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        BadRequest(w, "invalid body")
        return
    }

    result, err := c.CampaignService.GeneratePosts(r.Context(), id, body)
    if err != nil {
        WriteError(w, err)
        return
    }

    writeJSON(w, http.StatusOK, result)
}
