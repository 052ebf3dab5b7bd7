package service_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/unclebandit/postcampaign-backend/internal/poster"
	"github.com/unclebandit/postcampaign-backend/internal/repository/repotest"
)

var (
	NewMemPostRepo     = repotest.NewMemPostRepo
	NewMemCampaignRepo = repotest.NewMemCampaignRepo
)

// --- Mock posting client ---

type MockPoster struct {
	mock.Mock
}

func (m *MockPoster) Post(ctx context.Context, req poster.Request) (*poster.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*poster.Response)
	return resp, args.Error(1)
}

func strPtr(s string) *string { return &s }
