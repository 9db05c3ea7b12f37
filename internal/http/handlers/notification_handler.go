// README: Notification inbox handlers.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lani/internal/http/middleware"
	"lani/internal/modules/notification"
	"lani/internal/types"
)

type NotificationHandler struct {
	notifications *notification.Service
}

func NewNotificationHandler(svc *notification.Service) *NotificationHandler {
	return &NotificationHandler{notifications: svc}
}

type notificationView struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Path      string    `json:"path,omitempty"`
	Activity  string    `json:"activity,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *NotificationHandler) List(c *gin.Context) {
	items, err := h.notifications.ListByUser(c.Request.Context(), types.ID(middleware.UID(c)))
	if err != nil {
		writeNotificationError(c, err)
		return
	}
	views := make([]notificationView, 0, len(items))
	for _, n := range items {
		views = append(views, notificationView{
			ID:        string(n.ID),
			Category:  string(n.Category),
			Title:     n.Title,
			Body:      n.Body,
			Path:      n.Path,
			Activity:  n.Activity,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"notifications": views})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	n, err := h.notifications.UnreadCount(c.Request.Context(), types.ID(middleware.UID(c)))
	if err != nil {
		writeNotificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": n})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	err := h.notifications.MarkRead(c.Request.Context(), types.ID(c.Param("id")), types.ID(middleware.UID(c)))
	if err != nil {
		writeNotificationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.notifications.MarkAllRead(c.Request.Context(), types.ID(middleware.UID(c)))
	if err != nil {
		writeNotificationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": n})
}
