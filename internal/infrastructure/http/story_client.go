package httpinfra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"aigrants.co/cli/internal/core/domain"
	"aigrants.co/cli/internal/core/story"
)

const storiesPath = "/api/latest/stories/story"

// StoryClient talks to the story CRUD endpoints
type StoryClient struct {
	requester *StdHttpRequester
	logger    zerolog.Logger
	now       func() time.Time
}

func NewStoryClient(requester *StdHttpRequester, logger zerolog.Logger) *StoryClient {
	return &StoryClient{requester: requester, logger: logger, now: time.Now}
}

// CreateStory creates a story for the plan and returns the created story
func (c *StoryClient) CreateStory(ctx context.Context, cfg domain.ConnectionConfig, id story.ID, plan story.Plan) (*story.Story, error) {
	if id == "" {
		return nil, domain.ErrMissingStoryID
	}
	req := story.NewCreateRequest(id, plan, c.now())

	var resp story.CreateResponse
	status, err := c.call(ctx, cfg, http.MethodPost, cfg.Endpoint(storiesPath), req, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Created.ID == "" {
		return nil, &domain.SessionError{StatusCode: status, Err: fmt.Errorf("response did not contain a created story ID")}
	}

	c.logger.Info().Str("story_id", resp.Created.ID).Msg("story created")
	return &resp.Created, nil
}

// GetStory fetches an existing story
func (c *StoryClient) GetStory(ctx context.Context, cfg domain.ConnectionConfig, id story.ID) (*story.Story, error) {
	if id == "" {
		return nil, domain.ErrMissingStoryID
	}

	var resp story.Story
	if _, err := c.call(ctx, cfg, http.MethodGet, storyURL(cfg, id), nil, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		resp.ID = id.String()
	}
	return &resp, nil
}

// UpdateStory replaces the content of an existing story
func (c *StoryClient) UpdateStory(ctx context.Context, cfg domain.ConnectionConfig, id story.ID, content string) (*story.Story, error) {
	if id == "" {
		return nil, domain.ErrMissingStoryID
	}

	var resp story.Story
	if _, err := c.call(ctx, cfg, http.MethodPut, storyURL(cfg, id), story.UpdateRequest{Content: content}, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		resp.ID = id.String()
	}
	c.logger.Info().Str("story_id", resp.ID).Msg("story updated")
	return &resp, nil
}

func (c *StoryClient) call(ctx context.Context, cfg domain.ConnectionConfig, method, endpoint string, payload, out interface{}) (int, error) {
	c.logger.Debug().Str("method", method).Str("url", endpoint).Msg("story API request")

	status, body, err := c.requester.Do(ctx, cfg.ForStories(), method, endpoint, payload)
	if err != nil {
		return status, err
	}
	if !isSuccess(status) {
		if status == http.StatusUnauthorized {
			c.logger.Error().Str("url", endpoint).Msg("authentication failed: check that the API key is valid, not revoked, and issued for this API URL")
		}
		return status, &domain.SessionError{StatusCode: status, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return status, &domain.SessionError{StatusCode: status, Body: string(body), Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return status, nil
}

func storyURL(cfg domain.ConnectionConfig, id story.ID) string {
	return cfg.Endpoint(storiesPath + "/" + url.PathEscape(id.String()))
}
