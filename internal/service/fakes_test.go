package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"notes-versioning-be/internal/dto"
	"notes-versioning-be/internal/entity"
	"notes-versioning-be/internal/pkg/logger"
	"notes-versioning-be/internal/repository/contract"
	"notes-versioning-be/internal/repository/specification"
	"notes-versioning-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// memoryStore mimics the database: txLock plays the role of the note row
// lock, snapshots give rollback semantics.
type memoryStore struct {
	mu       sync.Mutex
	txLock   sync.Mutex
	users    map[uuid.UUID]entity.User
	notes    map[uuid.UUID]entity.Note
	versions map[uuid.UUID][]entity.NoteVersion

	// failAppends makes the next n Append calls lose the version race.
	failAppends int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:    make(map[uuid.UUID]entity.User),
		notes:    make(map[uuid.UUID]entity.Note),
		versions: make(map[uuid.UUID][]entity.NoteVersion),
	}
}

func (s *memoryStore) snapshot() (map[uuid.UUID]entity.Note, map[uuid.UUID][]entity.NoteVersion) {
	notes := make(map[uuid.UUID]entity.Note, len(s.notes))
	for k, v := range s.notes {
		notes[k] = v
	}
	versions := make(map[uuid.UUID][]entity.NoteVersion, len(s.versions))
	for k, v := range s.versions {
		versions[k] = append([]entity.NoteVersion(nil), v...)
	}
	return notes, versions
}

func (s *memoryStore) versionCount(noteId uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.versions[noteId])
}

type fakeFactory struct {
	store *memoryStore
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{store: f.store}
}

type fakeUnitOfWork struct {
	store         *memoryStore
	inTx          bool
	savedNotes    map[uuid.UUID]entity.Note
	savedVersions map[uuid.UUID][]entity.NoteVersion
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error {
	if u.inTx {
		return errors.New("transaction already started")
	}
	u.store.txLock.Lock()
	u.store.mu.Lock()
	u.savedNotes, u.savedVersions = u.store.snapshot()
	u.store.mu.Unlock()
	u.inTx = true
	return nil
}

func (u *fakeUnitOfWork) Commit() error {
	if !u.inTx {
		return errors.New("no transaction to commit")
	}
	u.inTx = false
	u.store.txLock.Unlock()
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	if !u.inTx {
		return errors.New("no transaction to rollback")
	}
	u.store.mu.Lock()
	u.store.notes, u.store.versions = u.savedNotes, u.savedVersions
	u.store.mu.Unlock()
	u.inTx = false
	u.store.txLock.Unlock()
	return nil
}

func (u *fakeUnitOfWork) UserRepository() contract.UserRepository {
	return &fakeUserRepository{store: u.store}
}

func (u *fakeUnitOfWork) NoteRepository() contract.NoteRepository {
	return &fakeNoteRepository{store: u.store}
}

func (u *fakeUnitOfWork) NoteVersionRepository() contract.NoteVersionRepository {
	return &fakeVersionRepository{store: u.store}
}

type fakeUserRepository struct {
	store *memoryStore
}

func (r *fakeUserRepository) Create(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range r.store.users {
		if u.Email == user.Email {
			return contract.ErrDuplicateEmail
		}
	}
	r.store.users[user.Id] = *user
	return nil
}

// Delete mirrors the FK rules: owned notes cascade, editor_id is nulled.
func (r *fakeUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.users, id)
	for noteId, n := range r.store.notes {
		if n.OwnerId == id {
			delete(r.store.notes, noteId)
			delete(r.store.versions, noteId)
		}
	}
	for noteId, vs := range r.store.versions {
		for i := range vs {
			if vs[i].EditorId != nil && *vs[i].EditorId == id {
				vs[i].EditorId = nil
			}
		}
		r.store.versions[noteId] = vs
	}
	return nil
}

func (r *fakeUserRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if userMatches(u, specs) {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n int64
	for _, u := range r.store.users {
		if userMatches(u, specs) {
			n++
		}
	}
	return n, nil
}

func userMatches(u entity.User, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if u.Id != sp.ID {
				return false
			}
		case specification.ByEmail:
			if u.Email != strings.ToLower(strings.TrimSpace(sp.Email)) {
				return false
			}
		}
	}
	return true
}

type fakeNoteRepository struct {
	store *memoryStore
}

func (r *fakeNoteRepository) Create(ctx context.Context, note *entity.Note) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.notes[note.Id] = *note
	return nil
}

func (r *fakeNoteRepository) Update(ctx context.Context, note *entity.Note) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.notes[note.Id] = *note
	return nil
}

func (r *fakeNoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.notes, id)
	delete(r.store.versions, id)
	return nil
}

func (r *fakeNoteRepository) FindOwned(ctx context.Context, noteId, ownerId uuid.UUID) (*entity.Note, error) {
	note, _ := r.FindOne(ctx, specification.ByID{ID: noteId}, specification.NoteOwnedByUser{UserID: ownerId})
	if note == nil {
		return nil, contract.ErrNoteNotFound
	}
	return note, nil
}

func (r *fakeNoteRepository) FindOwnedForUpdate(ctx context.Context, noteId, ownerId uuid.UUID) (*entity.Note, error) {
	return r.FindOwned(ctx, noteId, ownerId)
}

func (r *fakeNoteRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	notes, _ := r.FindAll(ctx, specs...)
	if len(notes) == 0 {
		return nil, nil
	}
	return notes[0], nil
}

func (r *fakeNoteRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*entity.Note
	for _, n := range r.store.notes {
		if noteMatches(n, specs) {
			found := n
			out = append(out, &found)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func noteMatches(n entity.Note, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if n.Id != sp.ID {
				return false
			}
		case specification.NoteOwnedByUser:
			if n.OwnerId != sp.UserID {
				return false
			}
		}
	}
	return true
}

type fakeVersionRepository struct {
	store *memoryStore
}

func (r *fakeVersionRepository) NextVersionNumber(ctx context.Context, noteId uuid.UUID) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.next(noteId), nil
}

func (r *fakeVersionRepository) next(noteId uuid.UUID) int {
	max := 0
	for _, v := range r.store.versions[noteId] {
		if v.Version > max {
			max = v.Version
		}
	}
	return max + 1
}

func (r *fakeVersionRepository) Append(ctx context.Context, noteId uuid.UUID, content string, editorId *uuid.UUID) (*entity.NoteVersion, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.failAppends > 0 {
		r.store.failAppends--
		return nil, contract.ErrDuplicateVersion
	}

	v := entity.NoteVersion{
		Id:       uuid.New(),
		NoteId:   noteId,
		Version:  r.next(noteId),
		Content:  content,
		EditorId: editorId,
	}
	for _, existing := range r.store.versions[noteId] {
		if existing.Version == v.Version {
			return nil, contract.ErrDuplicateVersion
		}
	}
	r.store.versions[noteId] = append(r.store.versions[noteId], v)
	return &v, nil
}

func (r *fakeVersionRepository) List(ctx context.Context, noteId uuid.UUID) ([]*entity.NoteVersion, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]*entity.NoteVersion, 0, len(r.store.versions[noteId]))
	for _, v := range r.store.versions[noteId] {
		found := v
		out = append(out, &found)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (r *fakeVersionRepository) Get(ctx context.Context, noteId uuid.UUID, version int) (*entity.NoteVersion, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, v := range r.store.versions[noteId] {
		if v.Version == version {
			found := v
			return &found, nil
		}
	}
	return nil, contract.ErrVersionNotFound
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []dto.PublishVersionMessage
	err      error
}

func (p *recordingPublisher) Publish(ctx context.Context, msg dto.PublishVersionMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.messages))
	for i, m := range p.messages {
		out[i] = m.Action
	}
	return out
}

func nopLogger() logger.ILogger {
	return logger.NewFromZap(zap.NewNop())
}
