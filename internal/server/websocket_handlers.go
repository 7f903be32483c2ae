package server

import (
	"log/slog"

	"socialhub/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler upgrades GET /api/ws to a push channel for the caller's realtime events.
// AuthRequired runs first and leaves the caller in Locals, which survive the upgrade.
func (s *Server) WebsocketHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals("userID").(uint)
		if !ok || userID == 0 {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}

		slog.Debug("websocket connected", slog.Uint64("user_id", uint64(userID)))
		if err := s.hub.Serve(conn, userID); err != nil {
			slog.Warn("websocket rejected",
				slog.Uint64("user_id", uint64(userID)),
				slog.Any("error", err))
		}
	})

	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return models.RespondWithError(c, fiber.StatusUpgradeRequired,
				models.NewValidationError("WebSocket upgrade required"))
		}
		return upgrade(c)
	}
}
