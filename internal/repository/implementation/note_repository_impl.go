package implementation

import (
	"context"
	"errors"

	"notes-versioning-be/internal/entity"
	"notes-versioning-be/internal/mapper"
	"notes-versioning-be/internal/model"
	"notes-versioning-be/internal/repository/contract"
	"notes-versioning-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NoteMapper
}

func NewNoteRepository(db *gorm.DB) contract.NoteRepository {
	return &NoteRepositoryImpl{
		db:     db,
		mapper: mapper.NewNoteMapper(),
	}
}

func (r *NoteRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *NoteRepositoryImpl) Create(ctx context.Context, note *entity.Note) error {
	m := r.mapper.ToModel(note)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*note = *r.mapper.ToEntity(m)
	return nil
}

func (r *NoteRepositoryImpl) Update(ctx context.Context, note *entity.Note) error {
	m := r.mapper.ToModel(note)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*note = *r.mapper.ToEntity(m)
	return nil
}

func (r *NoteRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Note{}, "id = ?", id).Error
}

func (r *NoteRepositoryImpl) FindOwned(ctx context.Context, noteId, ownerId uuid.UUID) (*entity.Note, error) {
	return r.findOwned(ctx, noteId, ownerId)
}

func (r *NoteRepositoryImpl) FindOwnedForUpdate(ctx context.Context, noteId, ownerId uuid.UUID) (*entity.Note, error) {
	return r.findOwned(ctx, noteId, ownerId, specification.ForUpdate{})
}

func (r *NoteRepositoryImpl) findOwned(ctx context.Context, noteId, ownerId uuid.UUID, extra ...specification.Specification) (*entity.Note, error) {
	specs := append([]specification.Specification{
		specification.ByID{ID: noteId},
		specification.NoteOwnedByUser{UserID: ownerId},
	}, extra...)

	note, err := r.FindOne(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, contract.ErrNoteNotFound
	}
	return note, nil
}

func (r *NoteRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	var m model.Note
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *NoteRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	var models []*model.Note
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
