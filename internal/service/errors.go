package service

import (
	"errors"

	"notes-versioning-be/internal/repository/contract"
)

var (
	// ErrNoteNotFound also covers notes owned by someone else.
	ErrNoteNotFound    = contract.ErrNoteNotFound
	ErrVersionNotFound = contract.ErrVersionNotFound

	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrUnauthenticated        = errors.New("could not validate credentials")

	// ErrTransientWrite is returned once the version-number race retries are exhausted.
	ErrTransientWrite = errors.New("note write conflicted, retry later")
)
