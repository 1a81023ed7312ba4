package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByNoteID struct {
	NoteID uuid.UUID
}

func (s ByNoteID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("note_id = ?", s.NoteID)
}

type ByVersionNumber struct {
	Version int
}

func (s ByVersionNumber) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("version = ?", s.Version)
}
