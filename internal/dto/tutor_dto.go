package dto

import (
	"github.com/google/uuid"
)

// ChatMessageDTO is one prior conversation turn supplied by the client.
type ChatMessageDTO struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// ReaderContextDTO is what the user currently has on screen.
type ReaderContextDTO struct {
	Selection      string `json:"selection,omitempty"`
	CurrentContent string `json:"currentContent,omitempty"`
}

// ChatRequest is the tutor invocation input. Messages are optional: if
// absent, the turn history is loaded from the server-side history store.
type ChatRequest struct {
	UserMessage  string            `json:"userMessage" validate:"required"`
	ArticleIds   []uuid.UUID       `json:"articleIds,omitempty" validate:"max=20"`
	CollectionId *uuid.UUID        `json:"collectionId,omitempty"`
	CurrentTopic string            `json:"currentTopic,omitempty"`
	MasteryLevel int               `json:"masteryLevel,omitempty" validate:"min=0,max=10"`
	Mode         string            `json:"mode,omitempty" validate:"omitempty,oneof=qa tutor copilot"`
	Context      *ReaderContextDTO `json:"context,omitempty"`
	Messages     []ChatMessageDTO  `json:"messages,omitempty" validate:"max=50,dive"`
}

// TurnCompletedMessage is the watermill payload published after each
// completed tutor turn.
type TurnCompletedMessage struct {
	UserId      uuid.UUID `json:"user_id"`
	TraceId     string    `json:"trace_id"`
	Intent      string    `json:"intent"`
	PayloadKind string    `json:"payload_kind"`
	SourceCount int       `json:"source_count"`
}
