package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"aigrants.co/cli/internal/application/ports"
	"aigrants.co/cli/internal/core/cancel"
	"aigrants.co/cli/internal/core/domain"
	"aigrants.co/cli/internal/core/story"
)

// StreamRequest describes one streaming run
type StreamRequest struct {
	// StoryID is generated when empty.
	StoryID story.ID
	Plan    story.Plan
	Token   *cancel.Token
}

// StreamReport is what a finished run produced
type StreamReport struct {
	StoryID story.ID
	Address domain.StreamAddress
	Result  domain.StreamResult
}

// StreamService resolves configuration, starts a session and follows its stream
type StreamService struct {
	config   ports.ConfigSource
	sessions ports.SessionGateway
	streamer ports.StreamerFactory
	logger   zerolog.Logger
}

// NewStreamService creates a new stream service
func NewStreamService(config ports.ConfigSource, sessions ports.SessionGateway, streamer ports.StreamerFactory, logger zerolog.Logger) *StreamService {
	return &StreamService{
		config:   config,
		sessions: sessions,
		streamer: streamer,
		logger:   logger,
	}
}

// Run executes the full flow. Configuration errors are returned before any
// network I/O. A run cancelled before the session starts reports
// OutcomeCancelled without connecting.
func (s *StreamService) Run(ctx context.Context, req StreamRequest) (*StreamReport, error) {
	token := req.Token
	if token == nil {
		token = cancel.New()
	}

	cfg, err := s.config.Resolve()
	if err != nil {
		return nil, err
	}

	plan := req.Plan
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid story plan: %w", err)
	}
	if plan.UserQuery == "" {
		plan = plan.WithUserQuery(story.DefaultUserPrompt)
	}

	report := &StreamReport{StoryID: req.StoryID}
	if report.StoryID == "" {
		report.StoryID = story.NewID()
		s.logger.Debug().Str("story_id", report.StoryID.String()).Msg("generated story ID")
	}

	if token.Cancelled() {
		report.Result = domain.StreamResult{Outcome: domain.OutcomeCancelled}
		return report, nil
	}

	addr, err := s.sessions.StartSession(ctx, cfg, story.SessionRequest{StoryID: report.StoryID, Plan: plan})
	if err != nil {
		if token.Cancelled() {
			s.logger.Info().Err(err).Msg("session request abandoned after cancellation")
			report.Result = domain.StreamResult{Outcome: domain.OutcomeCancelled}
			return report, nil
		}
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	report.Address = addr

	result, err := s.streamer(cfg).Stream(ctx, addr, token)
	if err != nil {
		return nil, fmt.Errorf("failed to follow stream: %w", err)
	}
	report.Result = result

	s.logger.Info().
		Str("story_id", report.StoryID.String()).
		Str("outcome", string(result.Outcome)).
		Msg("stream run finished")
	return report, nil
}
