package contract

import (
	"context"

	"ai-reading-tutor-be/internal/entity"
	"ai-reading-tutor-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ArticleRepository is the read surface the tutor workflow needs over
// the article corpus.
type ArticleRepository interface {
	Create(ctx context.Context, article *entity.Article) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Article, error)

	// FindSummaries returns the stored per-article summaries for the
	// caller's articles, narrowed by the optional id/collection filter.
	// Used by plan retrieval instead of chunk search.
	FindSummaries(ctx context.Context, userId uuid.UUID, articleIds []uuid.UUID, collectionId *uuid.UUID) ([]*entity.ArticleSummary, error)
}
