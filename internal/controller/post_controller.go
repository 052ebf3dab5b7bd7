// internal/controller/post_controller.go
package controller

import (
    "encoding/json"
    "errors"
    "io"
    "net/http"
    "strconv"

    "github.com/unclebandit/postcampaign-backend/internal/model"
    "github.com/unclebandit/postcampaign-backend/internal/service"
)

type PostController struct {
    PostService *service.PostService
}

func (c *PostController) ListPosts(w http.ResponseWriter, r *http.Request) {
    q := r.URL.Query()
    page, _ := strconv.Atoi(q.Get("page"))
    limit, _ := strconv.Atoi(q.Get("limit"))
    campaignID, _ := strconv.Atoi(q.Get("campaign_id"))

    posts, pagination, err := c.PostService.ListPosts(r.Context(), model.PostFilter{
        CampaignID: campaignID,
        Status:     model.PostStatus(q.Get("status")),
        Search:     q.Get("search"),
        Page:       page,
        Limit:      limit,
    })
    if err != nil {
        WriteError(w, err)
        return
    }

    writeJSON(w, http.StatusOK, map[string]interface{}{
        "success":    true,
        "posts":      posts,
        "pagination": pagination,
    })
}

func (c *PostController) GetPost(w http.ResponseWriter, r *http.Request) {
    id, ok := idParam(w, r)
    if !ok {
        return
    }

    post, err := c.PostService.GetPost(r.Context(), id)
    if err != nil {
        WriteError(w, err)
        return
    }

    writeJSON(w, http.StatusOK, map[string]interface{}{
        "success": true,
        "post":    post,
    })
}

// UpdatePost runs a whole edit in one request: open the editor on the stored
// post, then save the patch. A client that loaded the post earlier passes
// expected_version so edits made in between are not overwritten.
func (c *PostController) UpdatePost(w http.ResponseWriter, r *http.Request) {
    id, ok := idParam(w, r)
    if !ok {
        return
    }

    var patch model.PostPatch
    if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
        BadRequest(w, "invalid body")
        return
    }

    current, err := c.PostService.GetPost(r.Context(), id)
    if err != nil {
        WriteError(w, err)
        return
    }

    editor := service.NewPostEditor(c.PostService)
    if err := editor.StartEdit(current); err != nil {
        WriteError(w, err)
        return
    }

    updated, err := editor.SaveEdit(r.Context(), id, patch)
    if err != nil {
        WriteError(w, err)
        return
    }

    writeJSON(w, http.StatusOK, map[string]interface{}{
        "success": true,
        "post":    updated,
    })
}

func (c *PostController) DeletePost(w http.ResponseWriter, r *http.Request) {
    id, ok := idParam(w, r)
    if !ok {
        return
    }

    if err := c.PostService.DeletePost(r.Context(), id); err != nil {
        WriteError(w, err)
        return
    }

    writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (c *PostController) EvaluatePost(w http.ResponseWriter, r *http.Request) {
    id, ok := idParam(w, r)
    if !ok {
        return
    }

    report, err := c.PostService.Evaluate(r.Context(), id)
    if err != nil {
        WriteError(w, err)
        return
    }

    writeJSON(w, http.StatusOK, map[string]interface{}{
        "success":  true,
        "errors":   report.Errors,
        "warnings": report.Warnings,
    })
}

// SendPost answers 200 for every attempt that reached a decision; the body's
// success and outcome fields say what happened.
func (c *PostController) SendPost(w http.ResponseWriter, r *http.Request) {
    id, ok := idParam(w, r)
    if !ok {
        return
    }

    var opts service.SendOptions
    if err := json.NewDecoder(r.Body).Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
        BadRequest(w, "invalid body")
        return
    }

    result, err := c.PostService.SendNow(r.Context(), id, opts)
    if err != nil {
        WriteError(w, err)
        return
    }

    writeJSON(w, http.StatusOK, result)
}
