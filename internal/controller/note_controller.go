package controller

import (
	"notes-versioning-be/internal/dto"
	"notes-versioning-be/internal/pkg/serverutils"
	"notes-versioning-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type INoteController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	ListVersions(ctx *fiber.Ctx) error
	GetVersion(ctx *fiber.Ctx) error
	Restore(ctx *fiber.Ctx) error
}

type noteController struct {
	noteService service.INoteService
	requireAuth fiber.Handler
}

func NewNoteController(noteService service.INoteService, requireAuth fiber.Handler) INoteController {
	return &noteController{
		noteService: noteService,
		requireAuth: requireAuth,
	}
}

func (c *noteController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/notes")
	h.Use(c.requireAuth)
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
	h.Get(":id/versions", c.ListVersions)
	h.Get(":id/versions/:version", c.GetVersion)
	h.Post(":id/versions/:version/restore", c.Restore)
}

func (c *noteController) Create(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError("body", "malformed request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.Create(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(res)
}

func (c *noteController) List(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.noteService.List(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *noteController) Show(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := noteIDParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.noteService.Show(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *noteController) Update(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := noteIDParam(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError("body", "malformed request body")
	}
	req.Id = id
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.Update(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *noteController) Delete(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := noteIDParam(ctx)
	if err != nil {
		return err
	}

	if err := c.noteService.Delete(ctx.UserContext(), userId, id); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *noteController) ListVersions(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := noteIDParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.noteService.ListVersions(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *noteController) GetVersion(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := noteIDParam(ctx)
	if err != nil {
		return err
	}
	version, err := versionParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.noteService.GetVersion(ctx.UserContext(), userId, id, version)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *noteController) Restore(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	id, err := noteIDParam(ctx)
	if err != nil {
		return err
	}
	version, err := versionParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.noteService.Restore(ctx.UserContext(), userId, id, version)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func noteIDParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, serverutils.NewValidationError("id", "must be a valid UUID")
	}
	return id, nil
}

// versionParam accepts positive integers only; numbering starts at 1.
func versionParam(ctx *fiber.Ctx) (int, error) {
	version, err := ctx.ParamsInt("version")
	if err != nil || version < 1 {
		return 0, serverutils.NewValidationError("version", "must be a positive integer")
	}
	return version, nil
}
