package handler

import (
	"strings"

	"notes-versioning-be/internal/pkg/logger"
	"notes-versioning-be/internal/pkg/serverutils"
	internalWS "notes-versioning-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const localFeedOwner = "feed_owner_id"

// VersionFeedHandler streams the caller's new note versions over a websocket.
type VersionFeedHandler struct {
	auth   serverutils.Authenticator
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewVersionFeedHandler(auth serverutils.Authenticator, hub *internalWS.Hub, log logger.ILogger) *VersionFeedHandler {
	return &VersionFeedHandler{
		auth:   auth,
		hub:    hub,
		logger: log,
	}
}

func (h *VersionFeedHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/feed/versions", h.Authorize, websocket.New(h.serve))
}

// Authorize checks the handshake. Browsers cannot set headers on a websocket
// handshake, so the token may also arrive as ?token=.
func (h *VersionFeedHandler) Authorize(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}

	tokenStr := ctx.Query("token")
	if tokenStr == "" {
		authHeader := ctx.Get(fiber.HeaderAuthorization)
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			tokenStr = strings.TrimSpace(authHeader[7:])
		}
	}
	if tokenStr == "" {
		ctx.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		return ctx.Status(fiber.StatusUnauthorized).
			JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Missing token (query 'token' or Authorization header)"))
	}

	user, _, err := h.auth.Authenticate(ctx.UserContext(), tokenStr)
	if err != nil {
		h.logger.Warn("VersionFeedHandler", "rejected feed handshake", map[string]interface{}{"error": err.Error()})
		ctx.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		return ctx.Status(fiber.StatusUnauthorized).
			JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Could not validate credentials"))
	}

	ctx.Locals(localFeedOwner, user.Id)
	return ctx.Next()
}

func (h *VersionFeedHandler) serve(conn *websocket.Conn) {
	ownerId, ok := conn.Locals(localFeedOwner).(uuid.UUID)
	if !ok {
		conn.Close()
		return
	}

	h.logger.Info("VersionFeedHandler", "feed session started", map[string]interface{}{"owner_id": ownerId})
	internalWS.ServeWs(h.hub, conn, ownerId)
	h.logger.Info("VersionFeedHandler", "feed session ended", map[string]interface{}{"owner_id": ownerId})
}
