package implementation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-reading-tutor-be/internal/entity"
	"ai-reading-tutor-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	historyKeyPrefix = "tutor:history:"
	historyMaxTurns  = 100
	historyTTL       = 7 * 24 * time.Hour
)

// chatHistoryRepository stores conversation turns in a Redis list, one
// JSON document per turn, newest at the tail.
type chatHistoryRepository struct {
	rdb *redis.Client
}

func NewChatHistoryRepository(rdb *redis.Client) contract.ChatHistoryRepository {
	return &chatHistoryRepository{rdb: rdb}
}

func historyKey(userId uuid.UUID) string {
	return historyKeyPrefix + userId.String()
}

func (r *chatHistoryRepository) Load(ctx context.Context, userId uuid.UUID, limit int) ([]entity.ChatTurn, error) {
	if limit <= 0 {
		return []entity.ChatTurn{}, nil
	}

	raw, err := r.rdb.LRange(ctx, historyKey(userId), int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}

	turns := make([]entity.ChatTurn, 0, len(raw))
	for _, item := range raw {
		var turn entity.ChatTurn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			// Skip corrupt entries rather than failing the whole load
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (r *chatHistoryRepository) Append(ctx context.Context, userId uuid.UUID, turns ...entity.ChatTurn) error {
	if len(turns) == 0 {
		return nil
	}

	key := historyKey(userId)
	values := make([]interface{}, 0, len(turns))
	for _, turn := range turns {
		if turn.CreatedAt.IsZero() {
			turn.CreatedAt = time.Now()
		}
		data, err := json.Marshal(turn)
		if err != nil {
			return fmt.Errorf("failed to marshal chat turn: %w", err)
		}
		values = append(values, data)
	}

	pipe := r.rdb.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, int64(-historyMaxTurns), -1)
	pipe.Expire(ctx, key, historyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append chat history: %w", err)
	}
	return nil
}

func (r *chatHistoryRepository) Clear(ctx context.Context, userId uuid.UUID) error {
	return r.rdb.Del(ctx, historyKey(userId)).Err()
}
