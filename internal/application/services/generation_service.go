package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"aigrants.co/cli/internal/application/ports"
	"aigrants.co/cli/internal/core/domain"
	"aigrants.co/cli/internal/core/story"
)

// DefaultGenerationInterval is the minimum gap between story creations
const DefaultGenerationInterval = 2 * time.Second

// NamedPlan is a plan with a label for reporting
type NamedPlan struct {
	Name string
	Plan story.Plan
}

// GenerationResult is the outcome for one plan
type GenerationResult struct {
	Name  string
	Story *story.Story
	Err   error
}

// Succeeded reports whether the story was created
func (r GenerationResult) Succeeded() bool {
	return r.Err == nil && r.Story != nil
}

// GenerationService creates one story per plan, throttled
type GenerationService struct {
	stories  ports.StoryGateway
	logger   zerolog.Logger
	interval time.Duration
	newID    func() story.ID
}

// NewGenerationService creates a generation service. A non-positive interval
// disables throttling.
func NewGenerationService(stories ports.StoryGateway, logger zerolog.Logger, interval time.Duration) *GenerationService {
	return &GenerationService{
		stories:  stories,
		logger:   logger,
		interval: interval,
		newID:    story.NewID,
	}
}

// GenerateAll creates stories in order. A failed plan does not stop the rest;
// only context cancellation does, and the plans not attempted are reported
// with the context error.
func (s *GenerationService) GenerateAll(ctx context.Context, cfg domain.ConnectionConfig, plans []NamedPlan) []GenerationResult {
	limit := rate.Inf
	if s.interval > 0 {
		limit = rate.Every(s.interval)
	}
	limiter := rate.NewLimiter(limit, 1)

	results := make([]GenerationResult, 0, len(plans))
	for i, p := range plans {
		if err := limiter.Wait(ctx); err != nil {
			for _, rest := range plans[i:] {
				results = append(results, GenerationResult{Name: rest.Name, Err: err})
			}
			return results
		}

		result := GenerationResult{Name: p.Name}
		result.Story, result.Err = s.stories.CreateStory(ctx, cfg, s.newID(), p.Plan)
		if result.Err != nil {
			s.logger.Error().Err(result.Err).Str("plan", p.Name).Msg("story generation failed")
		} else {
			s.logger.Info().Str("plan", p.Name).Str("story_id", result.Story.ID).Msg("story generated")
		}
		results = append(results, result)
	}
	return results
}
