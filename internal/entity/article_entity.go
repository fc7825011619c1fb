package entity

import (
	"time"

	"github.com/google/uuid"
)

// Article is one imported document in a user's corpus.
type Article struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	CollectionId *uuid.UUID
	Title        string
	Content      string
	Summary      string
	Domain       string
	Metadata     map[string]interface{}
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ArticleChunk is one embedded slice of an article, the unit of
// similarity search.
type ArticleChunk struct {
	Id        uuid.UUID
	ArticleId uuid.UUID
	Seq       int
	Content   string
	Embedding []float32
	CreatedAt time.Time
}

// ArticleSummary is the compact projection used by plan retrieval.
type ArticleSummary struct {
	ArticleId uuid.UUID
	Title     string
	Summary   string
	Domain    string
}
