package model

import (
	"time"

	"github.com/google/uuid"
)

type NoteVersion struct {
	Id        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NoteId    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_note_versions_note_version,priority:1"`
	Note      *Note      `gorm:"foreignKey:NoteId;constraint:OnDelete:CASCADE"`
	Version   int        `gorm:"not null;uniqueIndex:idx_note_versions_note_version,priority:2"`
	Content   string     `gorm:"type:text;not null"`
	EditorId  *uuid.UUID `gorm:"type:uuid;index"`
	Editor    *User      `gorm:"foreignKey:EditorId;constraint:OnDelete:SET NULL"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
}

func (NoteVersion) TableName() string {
	return "note_versions"
}
