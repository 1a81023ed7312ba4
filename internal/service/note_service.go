// FILE: internal/service/note_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notes-versioning-be/internal/config"
	"notes-versioning-be/internal/dto"
	"notes-versioning-be/internal/entity"
	"notes-versioning-be/internal/mapper"
	"notes-versioning-be/internal/pkg/logger"
	"notes-versioning-be/internal/repository/contract"
	"notes-versioning-be/internal/repository/specification"
	"notes-versioning-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const (
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionRestore = "restore"
)

type INoteService interface {
	Create(ctx context.Context, ownerId uuid.UUID, req *dto.CreateNoteRequest) (*dto.NoteResponse, error)
	List(ctx context.Context, ownerId uuid.UUID) ([]*dto.NoteResponse, error)
	Show(ctx context.Context, ownerId uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error)
	Update(ctx context.Context, ownerId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error)
	Delete(ctx context.Context, ownerId uuid.UUID, id uuid.UUID) error

	ListVersions(ctx context.Context, ownerId uuid.UUID, noteId uuid.UUID) ([]*dto.NoteVersionResponse, error)
	GetVersion(ctx context.Context, ownerId uuid.UUID, noteId uuid.UUID, version int) (*dto.NoteVersionResponse, error)
	Restore(ctx context.Context, ownerId uuid.UUID, noteId uuid.UUID, version int) (*dto.NoteVersionResponse, error)
}

type noteService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	log              logger.ILogger
	noteMapper       *mapper.NoteMapper
	versionMapper    *mapper.NoteVersionMapper
	snapshotPolicy   string
	maxAttempts      int
	now              func() time.Time
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	log logger.ILogger,
	cfg config.VersioningConfig,
) INoteService {
	maxAttempts := cfg.MaxWriteAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &noteService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		log:              log,
		noteMapper:       mapper.NewNoteMapper(),
		versionMapper:    mapper.NewNoteVersionMapper(),
		snapshotPolicy:   cfg.SnapshotPolicy,
		maxAttempts:      maxAttempts,
		now:              time.Now,
	}
}

func (s *noteService) Create(ctx context.Context, ownerId uuid.UUID, req *dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	var note *entity.Note
	var version *entity.NoteVersion

	err := s.write(ctx, ActionCreate, func(uow unitofwork.UnitOfWork) error {
		now := s.now()
		n := &entity.Note{
			Id:        uuid.New(),
			Title:     req.Title,
			Content:   req.Content,
			OwnerId:   ownerId,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := uow.NoteRepository().Create(ctx, n); err != nil {
			return err
		}

		v, err := uow.NoteVersionRepository().Append(ctx, n.Id, n.Content, &ownerId)
		if err != nil {
			return err
		}
		note, version = n, v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishVersion(ctx, version, ownerId, ActionCreate)
	return s.noteMapper.ToResponse(note), nil
}

func (s *noteService) List(ctx context.Context, ownerId uuid.UUID) ([]*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.NoteOwnedByUser{UserID: ownerId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	return s.noteMapper.ToResponses(notes), nil
}

func (s *noteService) Show(ctx context.Context, ownerId uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOwned(ctx, id, ownerId)
	if err != nil {
		return nil, err
	}
	return s.noteMapper.ToResponse(note), nil
}

// Update applies the provided fields only. Whether a snapshot is appended
// depends on the configured policy: "always" records every update,
// "on_change" only updates whose content differs from the current one.
func (s *noteService) Update(ctx context.Context, ownerId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	var note *entity.Note
	var version *entity.NoteVersion

	err := s.write(ctx, ActionUpdate, func(uow unitofwork.UnitOfWork) error {
		n, err := uow.NoteRepository().FindOwnedForUpdate(ctx, req.Id, ownerId)
		if err != nil {
			return err
		}

		contentChanged := req.Content != nil && *req.Content != n.Content
		if req.Title != nil {
			n.Title = *req.Title
		}
		if req.Content != nil {
			n.Content = *req.Content
		}
		n.UpdatedAt = s.now()

		if err := uow.NoteRepository().Update(ctx, n); err != nil {
			return err
		}

		var v *entity.NoteVersion
		if s.snapshotPolicy != config.SnapshotOnChange || contentChanged {
			v, err = uow.NoteVersionRepository().Append(ctx, n.Id, n.Content, &ownerId)
			if err != nil {
				return err
			}
		}
		note, version = n, v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishVersion(ctx, version, ownerId, ActionUpdate)
	return s.noteMapper.ToResponse(note), nil
}

func (s *noteService) Delete(ctx context.Context, ownerId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if _, err := uow.NoteRepository().FindOwnedForUpdate(ctx, id, ownerId); err != nil {
		return err
	}
	// note_versions rows go with the note through ON DELETE CASCADE
	if err := uow.NoteRepository().Delete(ctx, id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.log.Info("NoteService", "note deleted", map[string]interface{}{"note_id": id, "owner_id": ownerId})
	return nil
}

func (s *noteService) ListVersions(ctx context.Context, ownerId uuid.UUID, noteId uuid.UUID) ([]*dto.NoteVersionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := uow.NoteRepository().FindOwned(ctx, noteId, ownerId); err != nil {
		return nil, err
	}

	versions, err := uow.NoteVersionRepository().List(ctx, noteId)
	if err != nil {
		return nil, err
	}
	return s.versionMapper.ToResponses(versions), nil
}

func (s *noteService) GetVersion(ctx context.Context, ownerId uuid.UUID, noteId uuid.UUID, version int) (*dto.NoteVersionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := uow.NoteRepository().FindOwned(ctx, noteId, ownerId); err != nil {
		return nil, err
	}

	v, err := uow.NoteVersionRepository().Get(ctx, noteId, version)
	if err != nil {
		return nil, err
	}
	return s.versionMapper.ToResponse(v), nil
}

// Restore never rewinds: the target's content is appended as max+1 and
// becomes the note's current content. Restoring v1 at v5 yields v6.
func (s *noteService) Restore(ctx context.Context, ownerId uuid.UUID, noteId uuid.UUID, version int) (*dto.NoteVersionResponse, error) {
	var restored *entity.NoteVersion

	err := s.write(ctx, ActionRestore, func(uow unitofwork.UnitOfWork) error {
		n, err := uow.NoteRepository().FindOwnedForUpdate(ctx, noteId, ownerId)
		if err != nil {
			return err
		}

		target, err := uow.NoteVersionRepository().Get(ctx, n.Id, version)
		if err != nil {
			return err
		}

		n.Content = target.Content
		n.UpdatedAt = s.now()
		if err := uow.NoteRepository().Update(ctx, n); err != nil {
			return err
		}

		v, err := uow.NoteVersionRepository().Append(ctx, n.Id, target.Content, &ownerId)
		if err != nil {
			return err
		}
		restored = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishVersion(ctx, restored, ownerId, ActionRestore)
	return s.versionMapper.ToResponse(restored), nil
}

// write runs fn in its own transaction. A lost race on the version number
// rolls everything back and reruns fn with a fresh unit of work, at most
// maxAttempts times.
func (s *noteService) write(ctx context.Context, action string, fn func(uow unitofwork.UnitOfWork) error) error {
	var err error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err = s.runInTransaction(ctx, fn)
		if err == nil || !errors.Is(err, contract.ErrDuplicateVersion) {
			return err
		}

		s.log.Warn("NoteService", "version number taken, retrying", map[string]interface{}{
			"action":  action,
			"attempt": attempt,
			"error":   err.Error(),
		})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return fmt.Errorf("%w: %v", ErrTransientWrite, err)
}

func (s *noteService) runInTransaction(ctx context.Context, fn func(uow unitofwork.UnitOfWork) error) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		return err
	}
	return uow.Commit()
}

// publishVersion is best effort; the version is already committed.
func (s *noteService) publishVersion(ctx context.Context, v *entity.NoteVersion, ownerId uuid.UUID, action string) {
	if v == nil {
		return
	}

	details := map[string]interface{}{
		"note_id": v.NoteId,
		"version": v.Version,
		"action":  action,
	}
	s.log.Info("NoteService", "note version appended", details)

	if s.publisherService == nil {
		return
	}
	msg := dto.PublishVersionMessage{
		NoteId:   v.NoteId,
		OwnerId:  ownerId,
		Version:  v.Version,
		EditorId: v.EditorId,
		Action:   action,
	}
	if err := s.publisherService.Publish(ctx, msg); err != nil {
		s.log.Warn("NoteService", "failed to publish version event", map[string]interface{}{
			"note_id": v.NoteId,
			"version": v.Version,
			"error":   err.Error(),
		})
	}
}
