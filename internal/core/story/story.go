package story

import (
	"time"

	"github.com/google/uuid"
)

// ID identifies a story on the remote service
type ID string

// NewID generates a fresh story ID
func NewID() ID {
	return ID(uuid.NewString())
}

func (id ID) String() string {
	return string(id)
}

// Chapter is the empty chapter envelope sent with a new story
type Chapter struct {
	ID        string        `json:"id"`
	BlockType string        `json:"block-type"`
	Sections  []interface{} `json:"sections"`
}

// CreateRequest is the body of a story creation call
type CreateRequest struct {
	ID              ID        `json:"id"`
	Version         string    `json:"version"`
	Headline        string    `json:"headline"`
	HeadlineID      ID        `json:"headline-id"`
	HeadlineEventID ID        `json:"headline-event-id"`
	Authors         []string  `json:"authors"`
	Chapters        []Chapter `json:"chapters"`
	CreatedAt       string    `json:"createdAt"`
	UpdatedAt       string    `json:"updatedAt"`
	StoryID         ID        `json:"storyId"`
	UserPrompt      string    `json:"userPrompt"`
	StoryPlanConfig Plan      `json:"storyPlanConfig"`
}

const timestampLayout = "2006-01-02T15:04:05.000000Z"

// NewCreateRequest builds a creation request for a plan
func NewCreateRequest(id ID, plan Plan, now time.Time) CreateRequest {
	ts := now.UTC().Format(timestampLayout)
	return CreateRequest{
		ID:              id,
		Version:         "1.0.0",
		Headline:        "Grant Proposal",
		HeadlineID:      id,
		HeadlineEventID: id,
		Authors:         []string{"AI Generated"},
		Chapters: []Chapter{{
			ID:        uuid.NewString(),
			BlockType: "chapter",
			Sections:  []interface{}{},
		}},
		CreatedAt:       ts,
		UpdatedAt:       ts,
		StoryID:         id,
		UserPrompt:      DefaultUserPrompt,
		StoryPlanConfig: plan,
	}
}

// Story is a story as returned by the API
type Story struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// CreateResponse is the body returned by a successful creation
type CreateResponse struct {
	Created Story `json:"created"`
}

// UpdateRequest is the body of a story update call
type UpdateRequest struct {
	Content string `json:"content"`
}

// SessionRequest is the body of an async generation session start
type SessionRequest struct {
	StoryID ID   `json:"story-id"`
	Plan    Plan `json:"user_config_params"`
}
