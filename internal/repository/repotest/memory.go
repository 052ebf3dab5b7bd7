// Package repotest provides in-memory stores for tests.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	appErrors "github.com/unclebandit/postcampaign-backend/internal/errors"
	"github.com/unclebandit/postcampaign-backend/internal/model"
	"github.com/unclebandit/postcampaign-backend/internal/repository"
)

// MemPostRepo mimics the Postgres store, including the POSTED guard and the
// version compare-and-swap.
type MemPostRepo struct {
	mu     sync.Mutex
	posts  map[int]*model.Post
	nextID int

	UpdateErr error
	MarkErr   error
}

func NewMemPostRepo(posts ...*model.Post) *MemPostRepo {
	r := &MemPostRepo{posts: map[int]*model.Post{}, nextID: 1}
	for _, p := range posts {
		if p.Version == 0 {
			p.Version = 1
		}
		r.posts[p.ID] = p
		if p.ID >= r.nextID {
			r.nextID = p.ID + 1
		}
	}
	return r
}

func clonePost(p *model.Post) *model.Post {
	c := *p
	c.MediaURLs = append([]string(nil), p.MediaURLs...)
	return &c
}

func (m *MemPostRepo) List(_ context.Context, f model.PostFilter) ([]*model.Post, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var filtered []*model.Post
	for _, p := range m.posts {
		if f.CampaignID > 0 && p.CampaignID != f.CampaignID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" &&
			!strings.Contains(strings.ToLower(p.Content), s) &&
			!strings.Contains(strings.ToLower(p.TargetAudience), s) {
			continue
		}
		filtered = append(filtered, clonePost(p))
	}
	sort.Slice(filtered, func(i, j int) bool {
		if !filtered[i].ScheduledAt.Equal(filtered[j].ScheduledAt) {
			return filtered[i].ScheduledAt.Before(filtered[j].ScheduledAt)
		}
		return filtered[i].ID < filtered[j].ID
	})

	total := len(filtered)
	start := (f.Page - 1) * f.Limit
	if start > total {
		return []*model.Post{}, total, nil
	}
	end := start + f.Limit
	if end > total {
		end = total
	}
	return filtered[start:end], total, nil
}

func (m *MemPostRepo) GetByID(_ context.Context, id int) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, appErrors.NewPostNotFound(id)
	}
	return clonePost(p), nil
}

func (m *MemPostRepo) Create(_ context.Context, p *model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.nextID
	m.nextID++
	p.Version = 1
	m.posts[p.ID] = clonePost(p)
	return nil
}

func (m *MemPostRepo) CreateBatch(_ context.Context, posts []*model.Post) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inserted := 0
	for _, p := range posts {
		dup := false
		for _, e := range m.posts {
			if e.Source == model.SourceGenerated && e.CampaignID == p.CampaignID &&
				e.DayIndex == p.DayIndex && e.Slot == p.Slot {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		p.ID = m.nextID
		m.nextID++
		p.Version = 1
		m.posts[p.ID] = clonePost(p)
		inserted++
	}
	return inserted, nil
}

func (m *MemPostRepo) Update(_ context.Context, id int, patch model.PostPatch) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	p, ok := m.posts[id]
	if !ok {
		return nil, appErrors.NewPostNotFound(id)
	}
	if p.Status == model.PostPosted {
		return nil, appErrors.ErrPostLocked
	}
	if patch.ExpectedVersion != nil && *patch.ExpectedVersion != p.Version {
		return nil, appErrors.ErrVersionConflict
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.MediaURLs != nil {
		p.MediaURLs = append([]string(nil), (*patch.MediaURLs)...)
	}
	if patch.MediaAlt != nil {
		p.MediaAlt = patch.MediaAlt
	}
	if patch.UseOgFallback != nil {
		p.UseOgFallback = *patch.UseOgFallback
	}
	if patch.TargetAudience != nil {
		p.TargetAudience = *patch.TargetAudience
	}
	p.Version++
	return clonePost(p), nil
}

func (m *MemPostRepo) MarkPosted(_ context.Context, id int, tweetID string, postedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MarkErr != nil {
		return m.MarkErr
	}
	p, ok := m.posts[id]
	if !ok {
		return appErrors.NewPostNotFound(id)
	}
	if p.Status == model.PostPosted {
		return appErrors.ErrPostLocked
	}
	p.Status = model.PostPosted
	p.PostedAt = &postedAt
	if tweetID != "" {
		p.TweetID = &tweetID
	}
	p.Error = nil
	p.Version++
	return nil
}

func (m *MemPostRepo) MarkFailed(_ context.Context, id int, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MarkErr != nil {
		return m.MarkErr
	}
	p, ok := m.posts[id]
	if !ok {
		return appErrors.NewPostNotFound(id)
	}
	if p.Status == model.PostPosted {
		return appErrors.ErrPostLocked
	}
	p.Status = model.PostFailed
	p.Error = &message
	p.Version++
	return nil
}

func (m *MemPostRepo) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return appErrors.NewPostNotFound(id)
	}
	if p.Status == model.PostPosted {
		return appErrors.ErrPostLocked
	}
	delete(m.posts, id)
	return nil
}

func (m *MemPostRepo) ListDue(_ context.Context, before time.Time, limit int) ([]*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []*model.Post
	for _, p := range m.posts {
		if p.Status == model.PostApproved && !p.ScheduledAt.After(before) {
			due = append(due, clonePost(p))
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ScheduledAt.Before(due[j].ScheduledAt) })
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (m *MemPostRepo) Stats(_ context.Context, campaignID int) (map[model.PostStatus]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := map[model.PostStatus]int{
		model.PostDraft: 0, model.PostApproved: 0, model.PostPosted: 0, model.PostFailed: 0,
	}
	for _, p := range m.posts {
		if p.CampaignID == campaignID {
			stats[p.Status]++
		}
	}
	return stats, nil
}

type MemCampaignRepo struct {
	mu        sync.Mutex
	campaigns map[int]*model.Campaign
	nextID    int
}

func NewMemCampaignRepo(campaigns ...*model.Campaign) *MemCampaignRepo {
	r := &MemCampaignRepo{campaigns: map[int]*model.Campaign{}, nextID: 1}
	for _, c := range campaigns {
		r.campaigns[c.ID] = c
		if c.ID >= r.nextID {
			r.nextID = c.ID + 1
		}
	}
	return r
}

func (m *MemCampaignRepo) Create(_ context.Context, c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.nextID
	m.nextID++
	c.CreatedAt = time.Now()
	cp := *c
	m.campaigns[c.ID] = &cp
	return nil
}

func (m *MemCampaignRepo) GetByID(_ context.Context, id int) (*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	cp := *c
	return &cp, nil
}

func (m *MemCampaignRepo) ListCampaigns(_ context.Context, offset, limit int, status string) ([]*model.Campaign, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var filtered []*model.Campaign
	for _, c := range m.campaigns {
		if status != "" && string(c.Status) != status {
			continue
		}
		cp := *c
		filtered = append(filtered, &cp)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID > filtered[j].ID })

	total := len(filtered)
	if offset > total {
		return []*model.Campaign{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return filtered[offset:end], total, nil
}

func (m *MemCampaignRepo) UpdateStatus(_ context.Context, id int, status model.CampaignStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return appErrors.NewCampaignNotFound(id)
	}
	c.Status = status
	return nil
}

var (
	_ repository.PostRepositoryInterface     = (*MemPostRepo)(nil)
	_ repository.CampaignRepositoryInterface = (*MemCampaignRepo)(nil)
)
