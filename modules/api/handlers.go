package api

import (
	domain "github.com/example/meeting-relay/domain/relay"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 1000
)

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	// Health check
	app.Get("/health", m.healthHandler)

	// WebSocket endpoint
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(m.handleWebSocket))

	// REST API v1, read-only diagnostics
	api := app.Group("/api/v1")
	api.Get("/rooms", m.listRooms)
	api.Get("/rooms/history", m.getHistory)
	api.Get("/stats", m.getStats)
	api.Get("/activity", m.getActivity)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module":            "api",
			"connected_clients": m.hub.ClientCount(),
		},
	})
}

// listRooms handles GET /api/v1/rooms.
func (m *APIModule) listRooms(c *fiber.Ctx) error {
	rooms, err := m.relay.ListRooms(c.UserContext())
	if err != nil {
		m.logger.Error("Failed to list rooms", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list rooms",
		})
	}

	response := RoomListResponse{
		Rooms: lo.Map(rooms, func(room domain.RoomSummary, _ int) RoomResponse {
			return RoomResponse{
				Key: string(room.Key),
				Members: lo.Map(room.Members, func(id domain.ConnID, _ int) string {
					return string(id)
				}),
				MemberCount: len(room.Members),
				History:     room.History,
			}
		}),
		Total: len(rooms),
	}
	return c.JSON(response)
}

// getHistory handles GET /api/v1/rooms/history?room=<key>. Room keys are
// arbitrary strings such as page URLs, so they travel in the query.
func (m *APIModule) getHistory(c *fiber.Ctx) error {
	room := c.Query("room")
	if room == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "Query parameter 'room' is required",
		})
	}

	messages, err := m.relay.GetHistory(c.UserContext(), room)
	if err != nil {
		m.logger.Error("Failed to get history", "room", room, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "history_failed",
			Message: "Failed to get history",
		})
	}

	return c.JSON(HistoryResponse{
		Room: room,
		Messages: lo.Map(messages, func(msg domain.ChatMessage, _ int) MessageResponse {
			return MessageResponse{
				Data:     msg.Content,
				Sender:   msg.SenderDisplayName,
				SenderID: string(msg.SenderConn),
				SentAt:   msg.SentAt,
			}
		}),
		Total: len(messages),
	})
}

// getStats handles GET /api/v1/stats.
func (m *APIModule) getStats(c *fiber.Ctx) error {
	stats, err := m.relay.GetStats(c.UserContext())
	if err != nil {
		m.logger.Error("Failed to get stats", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "stats_failed",
			Message: "Failed to get stats",
		})
	}

	return c.JSON(StatsResponse{
		Connections:     stats.Connections,
		Rooms:           stats.Rooms,
		InRoom:          stats.InRoom,
		HistoryRooms:    stats.HistoryRooms,
		PresenceRecords: stats.PresenceRecords,
		AttachedClients: m.hub.ClientCount(),
		DroppedFrames:   m.hub.Dropped(),
	})
}

// getActivity handles GET /api/v1/activity?limit=<n>.
func (m *APIModule) getActivity(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultActivityLimit)
	if limit <= 0 || limit > maxActivityLimit {
		limit = defaultActivityLimit
	}

	summary, err := m.activity.Summary(c.UserContext(), limit)
	if err != nil {
		m.logger.Error("Failed to get activity", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "activity_failed",
			Message: "Failed to get activity",
		})
	}
	return c.JSON(summary)
}
