package ports

import (
	"context"

	"aigrants.co/cli/internal/core/cancel"
	"aigrants.co/cli/internal/core/domain"
	"aigrants.co/cli/internal/core/story"
)

// SessionGateway starts generation sessions on the remote API
type SessionGateway interface {
	// StartSession requests a session and returns the stream address
	StartSession(ctx context.Context, cfg domain.ConnectionConfig, req story.SessionRequest) (domain.StreamAddress, error)
}

// StoryGateway manages stories on the remote API
type StoryGateway interface {
	CreateStory(ctx context.Context, cfg domain.ConnectionConfig, id story.ID, plan story.Plan) (*story.Story, error)
	GetStory(ctx context.Context, cfg domain.ConnectionConfig, id story.ID) (*story.Story, error)
	UpdateStory(ctx context.Context, cfg domain.ConnectionConfig, id story.ID, content string) (*story.Story, error)
}

// Streamer follows a single stream to its terminal outcome
type Streamer interface {
	Stream(ctx context.Context, addr domain.StreamAddress, token *cancel.Token) (domain.StreamResult, error)
}

// StreamerFactory builds a Streamer for a resolved configuration
type StreamerFactory func(cfg domain.ConnectionConfig) Streamer

// ConfigSource resolves the connection configuration
type ConfigSource interface {
	Resolve() (domain.ConnectionConfig, error)
}
