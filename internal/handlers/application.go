package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skillbridge/skillbridge-chat/internal/database"
	"github.com/skillbridge/skillbridge-chat/internal/middleware"
	"github.com/skillbridge/skillbridge-chat/internal/models"
	"github.com/skillbridge/skillbridge-chat/internal/notifications"
)

// ApplicationHandler — смена статуса отклика рекрутером с уведомлением
// студента. Остальной CRUD откликов живет в основном API, не здесь.
type ApplicationHandler struct {
	db     *database.Database
	bridge *notifications.Bridge
}

func NewApplicationHandler(db *database.Database, bridge *notifications.Bridge) *ApplicationHandler {
	return &ApplicationHandler{db: db, bridge: bridge}
}

// UpdateStatus меняет статус отклика и шлет уведомление студенту
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid application id"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required,oneof=pending reviewed interview offer_sent offer_accepted rejected"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.db.GetApplication(uint(id))
	if err != nil {
		if errors.Is(err, database.ErrApplicationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get application"})
		return
	}

	if app.RecruiterID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the recruiter can update application status"})
		return
	}

	if err := h.db.UpdateApplicationStatus(app.ID, req.Status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update status"})
		return
	}

	notifType := models.NotificationStatusUpdate
	if req.Status == "offer_accepted" {
		notifType = models.NotificationOfferAccepted
	}

	text := fmt.Sprintf("Your application for %q is now %s", app.JobTitle, req.Status)
	targetID := strconv.FormatUint(uint64(app.ID), 10)
	if _, err := h.bridge.Notify(app.StudentID, notifType, targetID, text); err != nil {
		// Статус уже обновлен, уведомление догонит polling
		c.JSON(http.StatusOK, gin.H{"status": req.Status})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}
