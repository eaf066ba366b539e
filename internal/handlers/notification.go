package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/conectahub/intranet-api/internal/dto"
	"github.com/conectahub/intranet-api/internal/logger"
	"github.com/conectahub/intranet-api/internal/middleware"
	"github.com/conectahub/intranet-api/internal/services"
)

type NotificationHandler struct {
	notifications *services.NotificationService
	log           *logger.Logger
}

func NewNotificationHandler(notifications *services.NotificationService, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		log:           log,
	}
}

// ListNotifications returns the caller's stored list, newest first.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	list, err := h.notifications.ListNotifications(c.Request.Context(), middleware.Session(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"notifications": list})
}

// UnreadCount reports the unread entries of the session snapshot.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notifications.GetUnreadCount(middleware.Session(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"count": count})
}

// MarkAsRead flags one notification of the caller.
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	if err := h.notifications.MarkNotificationAsRead(c.Request.Context(), middleware.Session(c), c.Param("id")); err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, nil)
}

// MarkAllAsRead flags every notification of the caller.
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	if err := h.notifications.MarkAllNotificationsAsRead(c.Request.Context(), middleware.Session(c)); err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, nil)
}

// NotifyDepartment broadcasts a notification to a department.
func (h *NotificationHandler) NotifyDepartment(c *gin.Context) {
	var req dto.NotifyDepartmentRequest
	if !bindJSON(c, &req) {
		return
	}

	delivered, err := h.notifications.NotifyDepartment(c.Request.Context(), req.DepartmentValue, services.NotificationInput{
		Type:        req.Type,
		TaskID:      req.TaskID,
		Title:       req.Title,
		Description: req.Description,
		Icon:        req.Icon,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"delivered": delivered})
}
