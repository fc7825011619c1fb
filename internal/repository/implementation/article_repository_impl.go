package implementation

import (
	"context"

	"ai-reading-tutor-be/internal/entity"
	"ai-reading-tutor-be/internal/mapper"
	"ai-reading-tutor-be/internal/model"
	"ai-reading-tutor-be/internal/repository/contract"
	"ai-reading-tutor-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ArticleRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ArticleMapper
}

func NewArticleRepository(db *gorm.DB) contract.ArticleRepository {
	return &ArticleRepositoryImpl{
		db:     db,
		mapper: mapper.NewArticleMapper(),
	}
}

func (r *ArticleRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ArticleRepositoryImpl) Create(ctx context.Context, article *entity.Article) error {
	m := r.mapper.ToModel(article)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*article = *r.mapper.ToEntity(m)
	return nil
}

func (r *ArticleRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Article, error) {
	var models []*model.Article
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Article, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *ArticleRepositoryImpl) FindSummaries(
	ctx context.Context,
	userId uuid.UUID,
	articleIds []uuid.UUID,
	collectionId *uuid.UUID,
) ([]*entity.ArticleSummary, error) {

	query := r.db.WithContext(ctx).
		Model(&model.Article{}).
		Where("user_id = ?", userId).
		Where("summary <> ''")

	if len(articleIds) > 0 {
		query = query.Where("id IN ?", articleIds)
	}
	if collectionId != nil {
		query = query.Where("collection_id = ?", *collectionId)
	}

	var rows []struct {
		Id      uuid.UUID
		Title   string
		Summary string
		Domain  string
	}
	if err := query.Select("id", "title", "summary", "domain").
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	summaries := make([]*entity.ArticleSummary, len(rows))
	for i, row := range rows {
		summaries[i] = &entity.ArticleSummary{
			ArticleId: row.Id,
			Title:     row.Title,
			Summary:   row.Summary,
			Domain:    row.Domain,
		}
	}
	return summaries, nil
}
