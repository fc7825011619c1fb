package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Article struct {
	Id           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserId       uuid.UUID  `gorm:"type:uuid;index;not null"`
	CollectionId *uuid.UUID `gorm:"type:uuid;index"`
	Title        string     `gorm:"not null"`
	Content      string     `gorm:"type:text"`
	Summary      string     `gorm:"type:text"`
	Domain       string
	Metadata     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Article) TableName() string {
	return "articles"
}

type ArticleChunk struct {
	Id        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ArticleId uuid.UUID       `gorm:"type:uuid;index;not null"`
	Seq       int             `gorm:"not null"`
	Content   string          `gorm:"type:text"`
	Embedding pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (ArticleChunk) TableName() string {
	return "article_chunks"
}

type Collection struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId    uuid.UUID `gorm:"type:uuid;index;not null"`
	Name      string    `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Collection) TableName() string {
	return "collections"
}
