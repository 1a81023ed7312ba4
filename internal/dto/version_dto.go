package dto

import (
	"time"

	"github.com/google/uuid"
)

type NoteVersionResponse struct {
	Id        uuid.UUID  `json:"id"`
	NoteId    uuid.UUID  `json:"note_id"`
	Version   int        `json:"version"`
	Content   string     `json:"content"`
	EditorId  *uuid.UUID `json:"editor_id"`
	CreatedAt time.Time  `json:"created_at"`
}
