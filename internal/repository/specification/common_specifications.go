package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByIDs filters by a list of IDs
type ByIDs struct {
	IDs []uuid.UUID
}

func (s ByIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id IN ?", s.IDs)
}

// OwnedBy filters by owning user
type OwnedBy struct {
	UserID uuid.UUID
}

func (s OwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// InCollection filters articles by collection
type InCollection struct {
	CollectionID uuid.UUID
}

func (s InCollection) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("collection_id = ?", s.CollectionID)
}
