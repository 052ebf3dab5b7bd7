package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/postcampaign-backend/internal/cache"
	"github.com/unclebandit/postcampaign-backend/internal/handler"
	"github.com/unclebandit/postcampaign-backend/internal/model"
	"github.com/unclebandit/postcampaign-backend/internal/poster"
	"github.com/unclebandit/postcampaign-backend/internal/repository/repotest"
	"github.com/unclebandit/postcampaign-backend/internal/service"
)

type stubPoster struct {
	calls []poster.Request
}

func (s *stubPoster) Post(_ context.Context, req poster.Request) (*poster.Response, error) {
	s.calls = append(s.calls, req)
	return &poster.Response{Success: true, ID: "1700"}, nil
}

type testServer struct {
	handler http.Handler
	posts   *repotest.MemPostRepo
	poster  *stubPoster
}

func newTestServer() *testServer {
	campaign := &model.Campaign{
		ID: 1, Name: "Launch", StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DurationDays: 2, MorningTime: "09:00", EveningTime: "21:00", Status: model.CampaignActive,
	}
	draft := &model.Post{
		ID: 1, CampaignID: 1, Content: "Hello", TargetAudience: "founders",
		MediaURLs: []string{"https://cdn.example.com/a.png"}, Status: model.PostDraft,
	}
	posted := &model.Post{ID: 2, CampaignID: 1, Content: "Done", Status: model.PostPosted}

	campaigns := repotest.NewMemCampaignRepo(campaign)
	posts := repotest.NewMemPostRepo(draft, posted)
	stub := &stubPoster{}
	loc := service.LoadScheduleLocation("Asia/Riyadh")

	postSvc := &service.PostService{PostRepo: posts, CampaignRepo: campaigns, Poster: stub, Locker: cache.NewLocalSendLock()}
	campaignSvc := &service.CampaignService{CampaignRepo: campaigns, PostRepo: posts, Location: loc}

	return &testServer{handler: handler.NewRouter(campaignSvc, postSvc), posts: posts, poster: stub}
}

func (s *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return rr, out
}

func TestHealth(t *testing.T) {
	s := newTestServer()
	rr, out := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", out["status"])
}

func TestGetPost(t *testing.T) {
	s := newTestServer()

	rr, out := s.do(t, http.MethodGet, "/posts/1", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "Hello", out["post"].(map[string]interface{})["content"])

	rr, out = s.do(t, http.MethodGet, "/posts/42", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, false, out["success"])

	rr, _ = s.do(t, http.MethodGet, "/posts/abc", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListPosts(t *testing.T) {
	s := newTestServer()

	rr, out := s.do(t, http.MethodGet, "/posts?campaign_id=1&status=DRAFT&limit=5", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, out["posts"], 1)
	pagination := out["pagination"].(map[string]interface{})
	assert.EqualValues(t, 1, pagination["total"])
	assert.EqualValues(t, 5, pagination["limit"])

	rr, _ = s.do(t, http.MethodGet, "/posts?status=SENT", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestUpdatePost(t *testing.T) {
	s := newTestServer()

	rr, out := s.do(t, http.MethodPut, "/posts/1", `{"content":"Edited","status":"APPROVED"}`)
	require.Equal(t, http.StatusOK, rr.Code, out)
	post := out["post"].(map[string]interface{})
	assert.Equal(t, "Edited", post["content"])
	assert.Equal(t, "APPROVED", post["status"])

	// stale version from before the edit above
	rr, _ = s.do(t, http.MethodPut, "/posts/1", `{"content":"Late","expected_version":1}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr, _ = s.do(t, http.MethodPut, "/posts/2", `{"content":"Rewrite history"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr, _ = s.do(t, http.MethodPut, "/posts/1", `{"media_urls":["a","b","c","d","e"]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr, _ = s.do(t, http.MethodPut, "/posts/1", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestDeletePost(t *testing.T) {
	s := newTestServer()

	rr, _ := s.do(t, http.MethodDelete, "/posts/2", "")
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr, out := s.do(t, http.MethodDelete, "/posts/1", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, out["success"])

	rr, _ = s.do(t, http.MethodGet, "/posts/1", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEvaluatePost(t *testing.T) {
	s := newTestServer()

	rr, out := s.do(t, http.MethodPost, "/posts/1/evaluate", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, out["errors"])
	assert.Empty(t, out["warnings"])
}

func TestSendPost(t *testing.T) {
	s := newTestServer()

	rr, out := s.do(t, http.MethodPost, "/posts/1/send", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "1700", out["tweet_id"])
	require.Len(t, s.poster.calls, 1)
	assert.Equal(t, "https://cdn.example.com/a.png", s.poster.calls[0].ImageURL)

	rr, out = s.do(t, http.MethodPost, "/posts/1/send", `{"acknowledge_warnings":true}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "Post has already been sent", out["error"])
	assert.Len(t, s.poster.calls, 1)

	rr, _ = s.do(t, http.MethodPost, "/posts/1/send", `{"acknowledge_warnings":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCampaignRoutes(t *testing.T) {
	s := newTestServer()

	rr, out := s.do(t, http.MethodGet, "/campaigns/1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	stats := out["stats"].(map[string]interface{})
	assert.EqualValues(t, 2, stats["total"])
	assert.EqualValues(t, 1, stats["POSTED"])

	rr, out = s.do(t, http.MethodPost, "/campaigns/1/posts/generate", `{"contents":["a","b"],"target_audience":"all"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 4, out["created"])

	rr, _ = s.do(t, http.MethodPost, "/campaigns/1/posts/generate", `{"contents":[]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr, out = s.do(t, http.MethodPost, "/campaigns/1/posts", `{"content":"Manual","day_index":5,"slot":"PM","scheduled_at":"2026-03-05T15:00:00Z"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	post := out["post"].(map[string]interface{})
	assert.Equal(t, "manual", post["source"])
	assert.Equal(t, "06:00 PM", post["scheduled_time_label"])

	rr, _ = s.do(t, http.MethodPut, "/campaigns/1/status", `{"status":"PAUSED"}`)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, _ = s.do(t, http.MethodPut, "/campaigns/1/status", `{"status":"BOGUS"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr, out = s.do(t, http.MethodGet, "/campaigns?page=1&page_size=10", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 1, out["pagination"].(map[string]interface{})["total_count"])

	rr, _ = s.do(t, http.MethodGet, "/campaigns/9", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, out = s.do(t, http.MethodGet, "/campaigns/abc", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "invalid campaign id", out["error"])

	rr, _ = s.do(t, http.MethodPost, "/campaigns/1/posts", `{"content":"No time","day_index":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr, out = s.do(t, http.MethodPost, "/campaigns",
		`{"name":"Eid","start_date":"2026-03-20","duration_days":3,"morning_time":"08:00","evening_time":"20:00"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "DRAFT", out["status"])
}
