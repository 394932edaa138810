package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pawhub/backend/internal/middleware"
	"github.com/pawhub/backend/internal/notify"
	"github.com/pawhub/backend/internal/registry"
	"github.com/pawhub/backend/internal/repositories"
	"github.com/pawhub/backend/internal/ws"
	"gorm.io/gorm"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin policy is delegated to the CORS layer in front.
		return true
	},
}

// WebSocketHandler serves the live channel endpoints: per-target like
// counters and per-user notification streams. Both endpoints are read-only
// from the client's point of view.
type WebSocketHandler struct {
	db       *gorm.DB
	hub      *ws.Hub
	registry *registry.Registry
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(db *gorm.DB, hub *ws.Hub, reg *registry.Registry) *WebSocketHandler {
	return &WebSocketHandler{db: db, hub: hub, registry: reg}
}

// RegisterWebSocketRoutes registers the live channel endpoints. They carry
// their own authentication (none for counters, token query param for
// notifications), so they sit outside the JWT middleware group.
func (h *WebSocketHandler) RegisterWebSocketRoutes(e *echo.Echo) {
	e.GET("/ws/reactable/:reactable_type/:reactable_id", h.LikeCounter)
	e.GET("/ws/notifications", h.Notifications)
}

// LikeCounter subscribes the connection to the like-counter group for one
// target and pushes the current count immediately.
func (h *WebSocketHandler) LikeCounter(c echo.Context) error {
	kind, err := resolveKind(h.registry, "reactable_type", c.Param("reactable_type"))
	if err != nil {
		return apiError(err)
	}
	objectID, err := strconv.ParseUint(c.Param("reactable_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid reactable_id")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := ws.NewClient(h.hub, conn)
	h.hub.Register(client, notify.LikeCounterGroup(kind.ID, uint(objectID)))

	// Push current state so the client does not wait for the next mutation.
	repo := repositories.NewPostgresReactionRepository(h.db)
	if total, err := repo.CountLikes(kind.ID, uint(objectID)); err == nil {
		if data, err := json.Marshal(notify.LikeCounterPayload(kind, uint(objectID), total)); err == nil {
			client.Send(data)
		}
	}
	return nil
}

// Notifications subscribes the connection to the authenticated user's
// notification group. The token travels as a query parameter because
// browsers cannot set headers on websocket upgrades.
func (h *WebSocketHandler) Notifications(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
	}
	claims, err := middleware.ParseToken(token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := ws.NewClient(h.hub, conn)
	h.hub.Register(client, notify.UserGroup(claims.UserID))

	repo := repositories.NewPostgresNotificationRepository(h.db)
	if count, err := repo.GetUnreadCount(claims.UserID); err == nil {
		if data, err := json.Marshal(map[string]any{"unread_count": count}); err == nil {
			client.Send(data)
		}
	}
	return nil
}
