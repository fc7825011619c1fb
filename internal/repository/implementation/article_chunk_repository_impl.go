package implementation

import (
	"context"

	"ai-reading-tutor-be/internal/entity"
	"ai-reading-tutor-be/internal/mapper"
	"ai-reading-tutor-be/internal/model"
	"ai-reading-tutor-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ArticleChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ArticleChunkMapper
}

func NewArticleChunkRepository(db *gorm.DB) contract.ArticleChunkRepository {
	return &ArticleChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewArticleChunkMapper(),
	}
}

func (r *ArticleChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.ArticleChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := make([]*model.ArticleChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ToModel(c)
	}
	return r.db.WithContext(ctx).CreateInBatches(models, 100).Error
}

func (r *ArticleChunkRepositoryImpl) DeleteByArticleId(ctx context.Context, articleId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("article_id = ?", articleId).Delete(&model.ArticleChunk{}).Error
}

func (r *ArticleChunkRepositoryImpl) SearchSimilarWithScore(
	ctx context.Context,
	embedding []float32,
	topK int,
	userId uuid.UUID,
	articleIds []uuid.UUID,
	collectionId *uuid.UUID,
) ([]*contract.ScoredChunk, error) {

	if topK <= 0 {
		topK = 5
	}

	// Cosine distance: embedding <=> vector. Join articles to scope the
	// search to the caller's corpus and to pick up title/domain.
	// Soft-deleted chunks and articles are excluded explicitly.
	vec := pgvector.NewVector(embedding)
	query := r.db.WithContext(ctx).
		Table("article_chunks").
		Select(
			"article_chunks.*, articles.title AS article_title, articles.domain AS article_domain, "+
				"1 - (article_chunks.embedding <=> ?) AS similarity",
			vec,
		).
		Joins("JOIN articles ON articles.id = article_chunks.article_id").
		Where("articles.user_id = ?", userId).
		Where("article_chunks.deleted_at IS NULL").
		Where("articles.deleted_at IS NULL")

	if len(articleIds) > 0 {
		query = query.Where("articles.id IN ?", articleIds)
	}
	if collectionId != nil {
		query = query.Where("articles.collection_id = ?", *collectionId)
	}

	var rows []struct {
		model.ArticleChunk
		ArticleTitle  string
		ArticleDomain string
		Similarity    float64
	}
	err := query.
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:  "article_chunks.embedding <=> ?",
			Vars: []interface{}{vec},
		}}).
		Limit(topK).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	results := make([]*contract.ScoredChunk, len(rows))
	for i := range rows {
		results[i] = &contract.ScoredChunk{
			Chunk:      r.mapper.ToEntity(&rows[i].ArticleChunk),
			Title:      rows[i].ArticleTitle,
			Domain:     rows[i].ArticleDomain,
			Similarity: rows[i].Similarity,
		}
	}
	return results, nil
}
