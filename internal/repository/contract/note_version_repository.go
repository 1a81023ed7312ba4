package contract

import (
	"context"
	"errors"

	"notes-versioning-be/internal/entity"

	"github.com/google/uuid"
)

var (
	ErrVersionNotFound = errors.New("version not found")
	// ErrDuplicateVersion means another writer took the same (note_id, version) pair.
	ErrDuplicateVersion = errors.New("duplicate note version")
)

// NoteVersionRepository is the append-only ledger of a note's snapshots.
// Callers are responsible for ownership checks on noteId.
type NoteVersionRepository interface {
	NextVersionNumber(ctx context.Context, noteId uuid.UUID) (int, error)
	Append(ctx context.Context, noteId uuid.UUID, content string, editorId *uuid.UUID) (*entity.NoteVersion, error)
	List(ctx context.Context, noteId uuid.UUID) ([]*entity.NoteVersion, error)
	Get(ctx context.Context, noteId uuid.UUID, version int) (*entity.NoteVersion, error)
}
