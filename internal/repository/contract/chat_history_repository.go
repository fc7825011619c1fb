package contract

import (
	"context"

	"ai-reading-tutor-be/internal/entity"

	"github.com/google/uuid"
)

// ChatHistoryRepository persists per-user tutor conversation turns.
type ChatHistoryRepository interface {
	// Load returns up to limit most recent turns, oldest first.
	Load(ctx context.Context, userId uuid.UUID, limit int) ([]entity.ChatTurn, error)

	// Append stores the given turns and trims the history to the
	// retention window.
	Append(ctx context.Context, userId uuid.UUID, turns ...entity.ChatTurn) error

	// Clear drops the user's history.
	Clear(ctx context.Context, userId uuid.UUID) error
}
