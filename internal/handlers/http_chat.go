package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skillbridge/skillbridge-chat/internal/database"
	"github.com/skillbridge/skillbridge-chat/internal/handlers/dto"
	"github.com/skillbridge/skillbridge-chat/internal/middleware"
)

// HTTPChatHandler — HTTP-срез чата: комнаты, история, отметка прочитанного.
// Realtime-канал отдельно, история здесь — источник правды для догона.
type HTTPChatHandler struct {
	db *database.Database
}

func NewHTTPChatHandler(db *database.Database) *HTTPChatHandler {
	return &HTTPChatHandler{db: db}
}

// ResolveRoom создает или возвращает комнату диалога по отклику
func (h *HTTPChatHandler) ResolveRoom(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uint)

	var req dto.ResolveRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if userID != req.StudentID && userID != req.RecruiterID {
		c.JSON(http.StatusForbidden, gin.H{"error": "you are not a participant of this conversation"})
		return
	}

	room, err := h.db.ResolveRoom(req.ApplicationID, req.StudentID, req.RecruiterID)
	if err != nil {
		if errors.Is(err, database.ErrApplicationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve room"})
		return
	}

	c.JSON(http.StatusOK, room)
}

// GetMyRooms возвращает комнаты пользователя со счетчиками непрочитанного
func (h *HTTPChatHandler) GetMyRooms(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uint)

	rooms, err := h.db.ListRoomsForUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get rooms"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// GetRoomMessages отдает историю комнаты по возрастанию времени
func (h *HTTPChatHandler) GetRoomMessages(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uint)
	roomID := c.Param("id")

	room, err := h.db.GetRoom(roomID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	if !h.db.IsParticipant(room, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "you are not a participant of this room"})
		return
	}

	limit := 0
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	messages, err := h.db.GetRoomMessages(roomID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// MarkRoomRead помечает входящие сообщения комнаты прочитанными
func (h *HTTPChatHandler) MarkRoomRead(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uint)
	roomID := c.Param("id")

	room, err := h.db.GetRoom(roomID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	if !h.db.IsParticipant(room, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "you are not a participant of this room"})
		return
	}

	if err := h.db.MarkRoomRead(roomID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark room read"})
		return
	}

	c.Status(http.StatusOK)
}
