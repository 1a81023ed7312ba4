package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteOwnedByUser struct {
	UserID uuid.UUID
}

func (s NoteOwnedByUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("notes.owner_id = ?", s.UserID)
}
