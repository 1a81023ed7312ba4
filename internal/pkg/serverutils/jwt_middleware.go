package serverutils

import (
	"context"
	"strings"

	"notes-versioning-be/internal/entity"
	"notes-versioning-be/internal/pkg/token"
	"notes-versioning-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	LocalUserID = "user_id"
	LocalClaims = "token_claims"
)

type Authenticator interface {
	Authenticate(ctx context.Context, bearer string) (*entity.User, *token.Claims, error)
}

// NewJwtMiddleware rejects requests without a valid bearer token and stores
// the caller's id and claims in ctx.Locals.
func NewJwtMiddleware(auth Authenticator) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get(fiber.HeaderAuthorization)
		if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
			return unauthorized(ctx, "Not authenticated")
		}
		tokenStr := strings.TrimSpace(authHeader[7:])

		user, claims, err := auth.Authenticate(ctx.UserContext(), tokenStr)
		if err != nil {
			return unauthorized(ctx, "Could not validate credentials")
		}

		ctx.Locals(LocalUserID, user.Id)
		ctx.Locals(LocalClaims, claims)
		return ctx.Next()
	}
}

func unauthorized(ctx *fiber.Ctx, message string) error {
	ctx.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, message))
}

func CurrentUserID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, ok := ctx.Locals(LocalUserID).(uuid.UUID)
	if !ok {
		return uuid.Nil, service.ErrUnauthenticated
	}
	return id, nil
}

func CurrentClaims(ctx *fiber.Ctx) (*token.Claims, error) {
	claims, ok := ctx.Locals(LocalClaims).(*token.Claims)
	if !ok {
		return nil, service.ErrUnauthenticated
	}
	return claims, nil
}
