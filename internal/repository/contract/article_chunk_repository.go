package contract

import (
	"context"

	"ai-reading-tutor-be/internal/entity"

	"github.com/google/uuid"
)

// ScoredChunk pairs a chunk with its cosine similarity to a query.
type ScoredChunk struct {
	Chunk      *entity.ArticleChunk
	Title      string
	Domain     string
	Similarity float64
}

// ArticleChunkRepository backs the similarity side of the retrieval
// service.
type ArticleChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.ArticleChunk) error
	DeleteByArticleId(ctx context.Context, articleId uuid.UUID) error

	// SearchSimilarWithScore runs nearest-neighbor search restricted to
	// the user's own articles and the optional id/collection filter.
	// Results come back in descending similarity order, topK at most.
	SearchSimilarWithScore(
		ctx context.Context,
		embedding []float32,
		topK int,
		userId uuid.UUID,
		articleIds []uuid.UUID,
		collectionId *uuid.UUID,
	) ([]*ScoredChunk, error)
}
