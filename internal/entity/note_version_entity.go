package entity

import (
	"time"

	"github.com/google/uuid"
)

// NoteVersion is an immutable snapshot of a note's content.
// EditorId is nil once the editing account has been removed.
type NoteVersion struct {
	Id        uuid.UUID
	NoteId    uuid.UUID
	Version   int
	Content   string
	EditorId  *uuid.UUID
	CreatedAt time.Time
}
