package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"aigrants.co/cli/internal/core/domain"
	"aigrants.co/cli/internal/core/story"
	"aigrants.co/cli/internal/infrastructure/logging"
)

func testPlans() []NamedPlan {
	return []NamedPlan{
		{Name: "abstract", Plan: story.AbstractPlan()},
		{Name: "technical", Plan: story.TechnicalPlan()},
	}
}

func TestGenerationService_GenerateAll(t *testing.T) {
	cfg := serviceConfig()
	stories := &MockStoryGateway{}
	stories.On("CreateStory", mock.Anything, cfg, mock.Anything, story.AbstractPlan()).
		Return(&story.Story{ID: "a-1", Content: "abstract"}, nil)
	stories.On("CreateStory", mock.Anything, cfg, mock.Anything, story.TechnicalPlan()).
		Return(&story.Story{ID: "t-1", Content: "technical"}, nil)

	results := NewGenerationService(stories, logging.Nop(), 0).GenerateAll(context.Background(), cfg, testPlans())

	require.Len(t, results, 2)
	assert.Equal(t, "abstract", results[0].Name)
	assert.Equal(t, "a-1", results[0].Story.ID)
	assert.Equal(t, "technical", results[1].Name)
	assert.Equal(t, "t-1", results[1].Story.ID)
	for _, r := range results {
		assert.True(t, r.Succeeded())
	}
	stories.AssertExpectations(t)
}

func TestGenerationService_FailureDoesNotStopRemainingPlans(t *testing.T) {
	stories := &MockStoryGateway{}
	stories.On("CreateStory", mock.Anything, mock.Anything, mock.Anything, story.AbstractPlan()).
		Return(nil, &domain.SessionError{StatusCode: 502, Body: "bad gateway"})
	stories.On("CreateStory", mock.Anything, mock.Anything, mock.Anything, story.TechnicalPlan()).
		Return(&story.Story{ID: "t-1"}, nil)

	results := NewGenerationService(stories, logging.Nop(), 0).GenerateAll(context.Background(), serviceConfig(), testPlans())

	require.Len(t, results, 2)
	assert.False(t, results[0].Succeeded())
	var sessionErr *domain.SessionError
	assert.True(t, errors.As(results[0].Err, &sessionErr))
	assert.True(t, results[1].Succeeded())
	stories.AssertNumberOfCalls(t, "CreateStory", 2)
}

func TestGenerationService_UsesFreshIDs(t *testing.T) {
	var ids []story.ID
	stories := &MockStoryGateway{}
	stories.On("CreateStory", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { ids = append(ids, args.Get(2).(story.ID)) }).
		Return(&story.Story{ID: "x"}, nil)

	NewGenerationService(stories, logging.Nop(), 0).GenerateAll(context.Background(), serviceConfig(), testPlans())

	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
}

func TestGenerationService_Throttles(t *testing.T) {
	stories := &MockStoryGateway{}
	stories.On("CreateStory", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(&story.Story{ID: "x"}, nil)
	plans := append(testPlans(), NamedPlan{Name: "again", Plan: story.AbstractPlan()})

	start := time.Now()
	results := NewGenerationService(stories, logging.Nop(), 40*time.Millisecond).GenerateAll(context.Background(), serviceConfig(), plans)

	assert.Len(t, results, 3)
	assert.GreaterOrEqual(t, time.Since(start), 70*time.Millisecond)
}

func TestGenerationService_ContextCancelled(t *testing.T) {
	stories := &MockStoryGateway{}
	ctx, cancelCtx := context.WithCancel(context.Background())
	cancelCtx()

	results := NewGenerationService(stories, logging.Nop(), time.Hour).GenerateAll(ctx, serviceConfig(), testPlans())

	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
	stories.AssertNotCalled(t, "CreateStory", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
