package contract

import (
	"context"
	"errors"

	"notes-versioning-be/internal/entity"
	"notes-versioning-be/internal/repository/specification"

	"github.com/google/uuid"
)

var ErrNoteNotFound = errors.New("note not found")

type NoteRepository interface {
	Create(ctx context.Context, note *entity.Note) error
	Update(ctx context.Context, note *entity.Note) error
	Delete(ctx context.Context, id uuid.UUID) error
	// FindOwned returns ErrNoteNotFound both when the note is missing and when
	// it belongs to another owner.
	FindOwned(ctx context.Context, noteId, ownerId uuid.UUID) (*entity.Note, error)
	// FindOwnedForUpdate is FindOwned plus a row lock; call it inside a transaction.
	FindOwnedForUpdate(ctx context.Context, noteId, ownerId uuid.UUID) (*entity.Note, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error)
}
