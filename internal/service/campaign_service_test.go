package service_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/postcampaign-backend/internal/errors"
	"github.com/unclebandit/postcampaign-backend/internal/model"
	"github.com/unclebandit/postcampaign-backend/internal/service"
)

type memStatsCache struct {
	entries     map[int]map[model.PostStatus]int
	invalidated []int
}

func (c *memStatsCache) Get(_ context.Context, id int) (map[model.PostStatus]int, bool) {
	s, ok := c.entries[id]
	return s, ok
}

func (c *memStatsCache) Set(_ context.Context, id int, stats map[model.PostStatus]int) {
	c.entries[id] = stats
}

func (c *memStatsCache) Invalidate(_ context.Context, id int) {
	delete(c.entries, id)
	c.invalidated = append(c.invalidated, id)
}

func riyadh() *time.Location {
	return service.LoadScheduleLocation("Asia/Riyadh")
}

func TestCreateCampaign(t *testing.T) {
	svc := &service.CampaignService{CampaignRepo: NewMemCampaignRepo()}

	c, err := svc.CreateCampaign(context.Background(), service.CreateCampaignInput{
		Name:         " Ramadan push ",
		StartDate:    "2026-02-18",
		DurationDays: 30,
		MorningTime:  "09:00",
		EveningTime:  "21:30",
	})
	require.NoError(t, err)
	assert.NotZero(t, c.ID)
	assert.Equal(t, "Ramadan push", c.Name)
	assert.Equal(t, model.CampaignDraft, c.Status)
	assert.True(t, c.IsActive)

	_, err = svc.CreateCampaign(context.Background(), service.CreateCampaignInput{
		Name: "x", StartDate: "18/02/2026", DurationDays: 1, MorningTime: "09:00", EveningTime: "21:00",
	})
	assert.Error(t, err)

	_, err = svc.CreateCampaign(context.Background(), service.CreateCampaignInput{
		Name: "x", StartDate: "2026-02-18", DurationDays: 1, MorningTime: "9am", EveningTime: "21:00",
	})
	assert.Error(t, err)
}

func TestListCampaignsPagination(t *testing.T) {
	var campaigns []*model.Campaign
	for i := 1; i <= 5; i++ {
		campaigns = append(campaigns, &model.Campaign{ID: i, Name: "C" + strconv.Itoa(i), Status: model.CampaignActive})
	}
	svc := &service.CampaignService{CampaignRepo: NewMemCampaignRepo(campaigns...)}

	page1, pagination1, err := svc.ListCampaigns(context.Background(), 1, 2, "")
	require.NoError(t, err)
	page3, _, _ := svc.ListCampaigns(context.Background(), 3, 2, "")

	assert.Equal(t, 5, pagination1["total_count"])
	assert.Equal(t, 3, pagination1["total_pages"])
	require.Len(t, page1, 2)
	assert.Greater(t, page1[0].ID, page1[1].ID, "expected descending order")
	assert.Len(t, page3, 1)

	_, _, err = svc.ListCampaigns(context.Background(), 1, 2, "ARCHIVED")
	assert.ErrorIs(t, err, appErrors.ErrInvalidStatus)
}

func TestGetCampaignDetailsWithStats_UsesCache(t *testing.T) {
	posts := NewMemPostRepo(draftPost(1), postedPost(2), draftPost(3))
	cache := &memStatsCache{entries: map[int]map[model.PostStatus]int{}}
	svc := &service.CampaignService{
		CampaignRepo: NewMemCampaignRepo(campaignWithOg(nil)),
		PostRepo:     posts,
		Stats:        cache,
	}

	details, err := svc.GetCampaignDetailsWithStats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, details.Stats["total"])
	assert.Equal(t, 2, details.Stats["DRAFT"])
	assert.Equal(t, 1, details.Stats["POSTED"])
	assert.Equal(t, 0, details.Stats["FAILED"])
	assert.Contains(t, cache.entries, 1)

	// cached value wins until invalidated
	cache.entries[1] = map[model.PostStatus]int{model.PostDraft: 10}
	details, _ = svc.GetCampaignDetailsWithStats(context.Background(), 1)
	assert.Equal(t, 10, details.Stats["total"])

	cache.Invalidate(context.Background(), 1)
	details, _ = svc.GetCampaignDetailsWithStats(context.Background(), 1)
	assert.Equal(t, 3, details.Stats["total"])
}

func TestUpdateCampaignStatus(t *testing.T) {
	repo := NewMemCampaignRepo(campaignWithOg(nil))
	svc := &service.CampaignService{CampaignRepo: repo}

	require.NoError(t, svc.UpdateStatus(context.Background(), 1, model.CampaignPaused))
	c, _ := repo.GetByID(context.Background(), 1)
	assert.Equal(t, model.CampaignPaused, c.Status)

	assert.ErrorIs(t, svc.UpdateStatus(context.Background(), 1, "STOPPED"), appErrors.ErrInvalidStatus)
	assert.True(t, appErrors.IsNotFound(svc.UpdateStatus(context.Background(), 99, model.CampaignActive)))
}

func TestGeneratePosts_IsIdempotent(t *testing.T) {
	c := campaignWithOg(nil)
	c.StartDate = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	c.DurationDays = 3
	posts := NewMemPostRepo()
	var changed []int
	svc := &service.CampaignService{
		CampaignRepo: NewMemCampaignRepo(c),
		PostRepo:     posts,
		Location:     riyadh(),
		OnChanged:    func(id int) { changed = append(changed, id) },
	}
	in := service.GenerateInput{Contents: []string{"a", "b", "c", "d"}, TargetAudience: "everyone"}

	res, err := svc.GeneratePosts(context.Background(), 1, in)
	require.NoError(t, err)
	assert.Equal(t, &service.GenerateResult{CampaignID: 1, Created: 6, Skipped: 0}, res)

	res, err = svc.GeneratePosts(context.Background(), 1, in)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 6, res.Skipped)
	assert.Equal(t, []int{1}, changed)

	_, err = svc.GeneratePosts(context.Background(), 2, in)
	assert.True(t, appErrors.IsNotFound(err))
}
