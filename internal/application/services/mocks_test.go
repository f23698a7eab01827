package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"aigrants.co/cli/internal/application/ports"
	"aigrants.co/cli/internal/core/cancel"
	"aigrants.co/cli/internal/core/domain"
	"aigrants.co/cli/internal/core/story"
)

type MockConfigSource struct {
	mock.Mock
}

func (m *MockConfigSource) Resolve() (domain.ConnectionConfig, error) {
	args := m.Called()
	return args.Get(0).(domain.ConnectionConfig), args.Error(1)
}

type MockSessionGateway struct {
	mock.Mock
}

func (m *MockSessionGateway) StartSession(ctx context.Context, cfg domain.ConnectionConfig, req story.SessionRequest) (domain.StreamAddress, error) {
	args := m.Called(ctx, cfg, req)
	return args.Get(0).(domain.StreamAddress), args.Error(1)
}

type MockStoryGateway struct {
	mock.Mock
}

func (m *MockStoryGateway) CreateStory(ctx context.Context, cfg domain.ConnectionConfig, id story.ID, plan story.Plan) (*story.Story, error) {
	args := m.Called(ctx, cfg, id, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*story.Story), args.Error(1)
}

func (m *MockStoryGateway) GetStory(ctx context.Context, cfg domain.ConnectionConfig, id story.ID) (*story.Story, error) {
	args := m.Called(ctx, cfg, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*story.Story), args.Error(1)
}

func (m *MockStoryGateway) UpdateStory(ctx context.Context, cfg domain.ConnectionConfig, id story.ID, content string) (*story.Story, error) {
	args := m.Called(ctx, cfg, id, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*story.Story), args.Error(1)
}

type MockStreamer struct {
	mock.Mock
}

func (m *MockStreamer) Stream(ctx context.Context, addr domain.StreamAddress, token *cancel.Token) (domain.StreamResult, error) {
	args := m.Called(ctx, addr, token)
	return args.Get(0).(domain.StreamResult), args.Error(1)
}

func (m *MockStreamer) factory() ports.StreamerFactory {
	return func(domain.ConnectionConfig) ports.Streamer { return m }
}
