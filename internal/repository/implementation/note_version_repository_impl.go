package implementation

import (
	"context"
	"errors"
	"fmt"

	"notes-versioning-be/internal/entity"
	"notes-versioning-be/internal/mapper"
	"notes-versioning-be/internal/model"
	"notes-versioning-be/internal/repository/contract"
	"notes-versioning-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteVersionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NoteVersionMapper
}

func NewNoteVersionRepository(db *gorm.DB) contract.NoteVersionRepository {
	return &NoteVersionRepositoryImpl{
		db:     db,
		mapper: mapper.NewNoteVersionMapper(),
	}
}

func (r *NoteVersionRepositoryImpl) NextVersionNumber(ctx context.Context, noteId uuid.UUID) (int, error) {
	var current int
	err := r.db.WithContext(ctx).
		Model(&model.NoteVersion{}).
		Scopes(specification.ByNoteID{NoteID: noteId}.Apply).
		Select("COALESCE(MAX(version), 0)").
		Scan(&current).Error
	if err != nil {
		return 0, err
	}
	return current + 1, nil
}

// Append is the only write the ledger supports. The (note_id, version) unique
// index turns a lost race into ErrDuplicateVersion.
func (r *NoteVersionRepositoryImpl) Append(ctx context.Context, noteId uuid.UUID, content string, editorId *uuid.UUID) (*entity.NoteVersion, error) {
	next, err := r.NextVersionNumber(ctx, noteId)
	if err != nil {
		return nil, err
	}

	m := &model.NoteVersion{
		Id:       uuid.New(),
		NoteId:   noteId,
		Version:  next,
		Content:  content,
		EditorId: editorId,
	}
	if err := r.db.WithContext(ctx).Omit("Note", "Editor").Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: note %s version %d", contract.ErrDuplicateVersion, noteId, next)
		}
		return nil, err
	}
	return r.mapper.ToEntity(m), nil
}

func (r *NoteVersionRepositoryImpl) List(ctx context.Context, noteId uuid.UUID) ([]*entity.NoteVersion, error) {
	var models []*model.NoteVersion
	err := r.db.WithContext(ctx).
		Scopes(
			specification.ByNoteID{NoteID: noteId}.Apply,
			specification.OrderBy{Field: "version"}.Apply,
		).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *NoteVersionRepositoryImpl) Get(ctx context.Context, noteId uuid.UUID, version int) (*entity.NoteVersion, error) {
	var m model.NoteVersion
	err := r.db.WithContext(ctx).
		Scopes(
			specification.ByNoteID{NoteID: noteId}.Apply,
			specification.ByVersionNumber{Version: version}.Apply,
		).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, contract.ErrVersionNotFound
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}
