package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateNoteRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content"`
}

// UpdateNoteRequest is a partial update: nil fields keep their stored value.
type UpdateNoteRequest struct {
	Id      uuid.UUID `json:"-"`
	Title   *string   `json:"title" validate:"omitempty,min=1,max=255"`
	Content *string   `json:"content"`
}

type NoteResponse struct {
	Id        uuid.UUID `json:"id"`
	OwnerId   uuid.UUID `json:"owner_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PublishVersionMessage struct {
	NoteId   uuid.UUID  `json:"note_id"`
	OwnerId  uuid.UUID  `json:"owner_id"`
	Version  int        `json:"version"`
	EditorId *uuid.UUID `json:"editor_id"`
	Action   string     `json:"action"` // "create" | "update" | "restore"
}
