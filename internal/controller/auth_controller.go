// FILE: internal/controller/auth_controller.go
package controller

import (
	"notes-versioning-be/internal/dto"
	"notes-versioning-be/internal/pkg/serverutils"
	"notes-versioning-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Register(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	Logout(ctx *fiber.Ctx) error
	Me(ctx *fiber.Ctx) error
}

type authController struct {
	service      service.IAuthService
	requireAuth  fiber.Handler
	loginLimiter fiber.Handler
}

// NewAuthController takes the bearer middleware and the login throttle; a nil
// loginLimiter leaves login unthrottled.
func NewAuthController(service service.IAuthService, requireAuth fiber.Handler, loginLimiter fiber.Handler) IAuthController {
	return &authController{
		service:      service,
		requireAuth:  requireAuth,
		loginLimiter: loginLimiter,
	}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Post("/register", c.Register)
	if c.loginLimiter != nil {
		h.Post("/login", c.loginLimiter, c.Login)
	} else {
		h.Post("/login", c.Login)
	}
	h.Post("/logout", c.requireAuth, c.Logout)
	h.Get("/me", c.requireAuth, c.Me)
}

func (c *authController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError("body", "malformed request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Register(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(res)
}

// Login reads an OAuth2 password form (username, password); JSON works too.
func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewValidationError("body", "malformed request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Login(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *authController) Logout(ctx *fiber.Ctx) error {
	claims, err := serverutils.CurrentClaims(ctx)
	if err != nil {
		return err
	}
	if err := c.service.Logout(ctx.UserContext(), claims); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *authController) Me(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Me(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}
