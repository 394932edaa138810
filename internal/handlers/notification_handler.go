package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pawhub/backend/internal/models"
	"github.com/pawhub/backend/internal/notify"
	"github.com/pawhub/backend/internal/repositories"
	"gorm.io/gorm"
)

// NotificationHandler handles HTTP requests related to notifications. List
// responses carry the same serialized payload shape the live channel pushes.
type NotificationHandler struct {
	db               *gorm.DB
	notificationRepo repositories.NotificationRepository
	dispatcher       *notify.Dispatcher
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(db *gorm.DB, notificationRepo repositories.NotificationRepository, dispatcher *notify.Dispatcher) *NotificationHandler {
	return &NotificationHandler{db: db, notificationRepo: notificationRepo, dispatcher: dispatcher}
}

// RegisterNotificationRoutes registers notification-related routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.ListNotifications)
	g.GET("/notifications/unread-count", h.UnreadCount)
	g.PATCH("/notifications/:id", h.UpdateNotification)
	g.POST("/notifications/read-all", h.MarkAllRead)
}

// ListNotifications lists the authenticated user's notifications, newest
// first, paginated
func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	userID := getUserIDFromContext(c)

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	notifications, total, err := h.notificationRepo.GetByRecipientID(userID, page, limit)
	if err != nil {
		return apiError(err)
	}

	results := make([]map[string]any, 0, len(notifications))
	for i := range notifications {
		results = append(results, h.dispatcher.BuildPayload(h.db, &notifications[i]))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"results": results,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// UnreadCount returns the number of unread notifications for the user
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	userID := getUserIDFromContext(c)

	count, err := h.notificationRepo.GetUnreadCount(userID)
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"unread_count": count})
}

// UpdateNotification toggles is_read; only the recipient may do so
func (h *NotificationHandler) UpdateNotification(c echo.Context) error {
	userID := getUserIDFromContext(c)
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateNotificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	notification, err := h.notificationRepo.GetByID(id)
	if err != nil {
		return apiError(err)
	}
	if notification.RecipientID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not the recipient of this notification")
	}

	if err := h.notificationRepo.MarkAsRead(id, req.IsRead); err != nil {
		return apiError(err)
	}
	notification.IsRead = req.IsRead
	return c.JSON(http.StatusOK, notification)
}

// MarkAllRead marks every unread notification of the user as read
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID := getUserIDFromContext(c)

	if err := h.notificationRepo.MarkAllAsRead(userID); err != nil {
		return apiError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
