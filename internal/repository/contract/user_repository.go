package contract

import (
	"context"
	"errors"

	"notes-versioning-be/internal/entity"
	"notes-versioning-be/internal/repository/specification"

	"github.com/google/uuid"
)

var ErrDuplicateEmail = errors.New("email already exists")

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
