package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unclebandit/postcampaign-backend/internal/model"
)

func TestBuildPostFilter_Empty(t *testing.T) {
	where, args := buildPostFilter(model.PostFilter{})
	assert.Equal(t, " WHERE 1=1", where)
	assert.Empty(t, args)
}

func TestBuildPostFilter_AllFields(t *testing.T) {
	where, args := buildPostFilter(model.PostFilter{
		CampaignID: 7,
		Status:     model.PostFailed,
		Search:     "  50%_off ",
	})

	assert.Equal(t,
		" WHERE 1=1 AND campaign_id=$1 AND status=$2 AND (content ILIKE $3 OR target_audience ILIKE $3)",
		where)
	assert.Equal(t, []interface{}{7, model.PostFailed, `%50\%\_off%`}, args)
}

func TestBuildPostFilter_SkipsBlankSearch(t *testing.T) {
	where, args := buildPostFilter(model.PostFilter{Search: "   "})
	assert.Equal(t, " WHERE 1=1", where)
	assert.Empty(t, args)
}

func TestPrepareInsert_Defaults(t *testing.T) {
	p := &model.Post{CampaignID: 1}
	prepareInsert(p)

	assert.Equal(t, model.PostDraft, p.Status)
	assert.Equal(t, model.SourceManual, p.Source)
	assert.Equal(t, 1, p.Cycle)
	assert.Equal(t, 1, p.Version)
	assert.NotNil(t, p.MediaURLs)
	assert.False(t, p.CreatedAt.IsZero())
}
