package httpinfra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"aigrants.co/cli/internal/core/domain"
	"aigrants.co/cli/internal/core/story"
)

// SessionInitiator obtains the stream address for an async generation session
type SessionInitiator struct {
	requester *StdHttpRequester
	logger    zerolog.Logger
}

func NewSessionInitiator(requester *StdHttpRequester, logger zerolog.Logger) *SessionInitiator {
	return &SessionInitiator{requester: requester, logger: logger}
}

type sessionResponse struct {
	SocketAddress string `json:"socketAddress"`
}

// StartSession issues exactly one request. It succeeds only on 200/201 with a
// non-empty socketAddress; everything else is a *domain.SessionError.
func (s *SessionInitiator) StartSession(ctx context.Context, cfg domain.ConnectionConfig, req story.SessionRequest) (domain.StreamAddress, error) {
	if req.StoryID == "" {
		return "", domain.ErrMissingStoryID
	}

	url := cfg.Endpoint(cfg.SessionPath)
	s.logger.Debug().Str("url", url).Str("story_id", req.StoryID.String()).Msg("starting session")

	status, body, err := s.requester.Do(ctx, cfg, http.MethodPost, url, req)
	if err != nil {
		return "", err
	}

	if !isSuccess(status) {
		s.logger.Warn().Int("status", status).Str("body", string(body)).Msg("session request rejected")
		return "", &domain.SessionError{StatusCode: status, Body: string(body)}
	}

	var resp sessionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &domain.SessionError{StatusCode: status, Body: string(body), Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	addr, err := domain.NewStreamAddress(resp.SocketAddress)
	if err != nil {
		return "", &domain.SessionError{StatusCode: status, Body: string(body), Err: err}
	}

	s.logger.Info().Int("status", status).Str("story_id", req.StoryID.String()).Msg("session started")
	return addr, nil
}
