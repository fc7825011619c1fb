package mapper

import (
	"encoding/json"

	"ai-reading-tutor-be/internal/entity"
	"ai-reading-tutor-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type ArticleMapper struct{}

func NewArticleMapper() *ArticleMapper {
	return &ArticleMapper{}
}

func (m *ArticleMapper) ToEntity(a *model.Article) *entity.Article {
	var metadata map[string]interface{}
	if len(a.Metadata) > 0 {
		_ = json.Unmarshal(a.Metadata, &metadata)
	}
	return &entity.Article{
		Id:           a.Id,
		UserId:       a.UserId,
		CollectionId: a.CollectionId,
		Title:        a.Title,
		Content:      a.Content,
		Summary:      a.Summary,
		Domain:       a.Domain,
		Metadata:     metadata,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func (m *ArticleMapper) ToModel(a *entity.Article) *model.Article {
	var metadata datatypes.JSON
	if a.Metadata != nil {
		raw, err := json.Marshal(a.Metadata)
		if err == nil {
			metadata = raw
		}
	}
	return &model.Article{
		Id:           a.Id,
		UserId:       a.UserId,
		CollectionId: a.CollectionId,
		Title:        a.Title,
		Content:      a.Content,
		Summary:      a.Summary,
		Domain:       a.Domain,
		Metadata:     metadata,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

type ArticleChunkMapper struct{}

func NewArticleChunkMapper() *ArticleChunkMapper {
	return &ArticleChunkMapper{}
}

func (m *ArticleChunkMapper) ToEntity(c *model.ArticleChunk) *entity.ArticleChunk {
	return &entity.ArticleChunk{
		Id:        c.Id,
		ArticleId: c.ArticleId,
		Seq:       c.Seq,
		Content:   c.Content,
		Embedding: c.Embedding.Slice(),
		CreatedAt: c.CreatedAt,
	}
}

func (m *ArticleChunkMapper) ToModel(c *entity.ArticleChunk) *model.ArticleChunk {
	return &model.ArticleChunk{
		Id:        c.Id,
		ArticleId: c.ArticleId,
		Seq:       c.Seq,
		Content:   c.Content,
		Embedding: pgvector.NewVector(c.Embedding),
		CreatedAt: c.CreatedAt,
	}
}
