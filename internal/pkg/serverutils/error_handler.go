package serverutils

import (
	"errors"

	"notes-versioning-be/internal/pkg/logger"
	"notes-versioning-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by handlers into the JSON
// error envelope. Handlers just return service errors.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return WriteError(ctx, log, err)
	}
}

func WriteError(ctx *fiber.Ctx, log logger.ILogger, err error) error {
	code, message := classify(err)

	if code == fiber.StatusUnauthorized {
		ctx.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	}
	if code >= fiber.StatusInternalServerError && log != nil {
		log.Error("HTTP", "request failed", map[string]interface{}{
			"method": ctx.Method(),
			"path":   ctx.Path(),
			"error":  err,
		})
	}

	return ctx.Status(code).JSON(ErrorResponse(code, message))
}

func classify(err error) (int, string) {
	var verr *ValidationError
	var ferr *fiber.Error

	switch {
	case errors.As(err, &verr):
		return fiber.StatusBadRequest, verr.Error()
	case errors.Is(err, service.ErrNoteNotFound):
		return fiber.StatusNotFound, "Note not found"
	case errors.Is(err, service.ErrVersionNotFound):
		return fiber.StatusNotFound, "Version not found"
	case errors.Is(err, service.ErrEmailAlreadyRegistered):
		return fiber.StatusBadRequest, "Email already registered"
	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, "Incorrect email or password"
	case errors.Is(err, service.ErrUnauthenticated):
		return fiber.StatusUnauthorized, "Could not validate credentials"
	case errors.Is(err, service.ErrTransientWrite):
		return fiber.StatusServiceUnavailable, "Note is busy, please retry"
	case errors.As(err, &ferr):
		return ferr.Code, ferr.Message
	default:
		return fiber.StatusInternalServerError, "Internal server error"
	}
}
