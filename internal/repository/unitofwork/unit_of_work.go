package unitofwork

import (
	"context"

	"notes-versioning-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	NoteRepository() contract.NoteRepository
	NoteVersionRepository() contract.NoteVersionRepository
}

// RepositoryFactory hands out a fresh unit of work per operation.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
