package handlers

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/skillbridge/skillbridge-chat/internal/database"
	"github.com/skillbridge/skillbridge-chat/internal/handlers/dto"
	"github.com/skillbridge/skillbridge-chat/internal/models"
	"github.com/skillbridge/skillbridge-chat/internal/notifications"
	"github.com/skillbridge/skillbridge-chat/internal/websocket"
)

const defaultHistoryLimit = 50

// ChatHandler — логика одной сессии чата поверх realtime-канала:
// подключение к комнате, отправка, отдача истории.
type ChatHandler struct {
	db     *database.Database
	hub    *websocket.Hub
	bridge *notifications.Bridge

	// Замок на комнату: запись и рассылка идут под одним замком,
	// иначе два отправителя могут разослать кадры не в порядке записи
	sendLocks sync.Map
}

func (h *ChatHandler) sendLock(roomID string) *sync.Mutex {
	v, _ := h.sendLocks.LoadOrStore(roomID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func NewChatHandler(db *database.Database, hub *websocket.Hub, bridge *notifications.Bridge) *ChatHandler {
	return &ChatHandler{
		db:     db,
		hub:    hub,
		bridge: bridge,
	}
}

func (h *ChatHandler) HandleMessage(client *websocket.Client, msg *websocket.Message) error {
	switch msg.Type {
	case websocket.TypeRoomJoin:
		return h.handleJoin(client, msg)

	case websocket.TypeMessage:
		return h.handleSend(client, msg)

	default:
		log.Printf("Unknown message type: %s", msg.Type)
		return nil
	}
}

// handleJoin подписывает соединение на комнату и сразу отдает историю,
// чтобы клиент отрисовался без второго запроса
func (h *ChatHandler) handleJoin(client *websocket.Client, msg *websocket.Message) error {
	if msg.RoomID == "" {
		return websocket.ErrInvalidMessage
	}

	room, err := h.db.GetRoom(msg.RoomID)
	if err != nil {
		return err
	}

	if !h.db.IsParticipant(room, client.UserID) {
		return websocket.ErrNotSubscribed
	}

	limit := defaultHistoryLimit
	if len(msg.Data) > 0 {
		var payload dto.JoinRoomPayload
		if err := json.Unmarshal(msg.Data, &payload); err == nil && payload.HistoryLimit > 0 {
			limit = payload.HistoryLimit
		}
	}

	h.hub.Subscribe(client, msg.RoomID)

	history, err := h.loadHistory(room, limit)
	if err != nil {
		return err
	}

	return client.SendFrame(websocket.TypeHistory, msg.RoomID, history)
}

// handleSend: сохранить -> обновить кэш комнаты -> разослать -> уведомить.
// Рассылка только после успешной записи; ошибка записи уходит одному
// отправителю и ничего не ломает остальным.
func (h *ChatHandler) handleSend(client *websocket.Client, msg *websocket.Message) error {
	if msg.RoomID == "" {
		return websocket.ErrInvalidMessage
	}

	if !client.IsInRoom(msg.RoomID) {
		return websocket.ErrNotSubscribed
	}

	var payload dto.SendMessagePayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		return err
	}

	message, err := h.persistAndPublish(client, msg.RoomID, payload)
	if err != nil {
		return err
	}

	if _, err := h.bridge.Notify(payload.ReceiverID, models.NotificationMessage, msg.RoomID, message.Body); err != nil {
		// Уведомление не часть контракта отправки
		log.Printf("Failed to create message notification: %v", err)
	}

	if err := h.db.UpdateLastSeen(client.UserID); err != nil {
		log.Printf("Failed to update last seen for user %d: %v", client.UserID, err)
	}

	return nil
}

// persistAndPublish держит замок комнаты от записи до рассылки: кадры
// уходят подписчикам строго в порядке присвоенных id
func (h *ChatHandler) persistAndPublish(client *websocket.Client, roomID string, payload dto.SendMessagePayload) (*models.Message, error) {
	lock := h.sendLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	message, err := h.db.AppendMessage(roomID, client.UserID, payload.ReceiverID, payload.Message)
	if err != nil {
		return nil, err
	}

	if err := h.db.TouchRoom(roomID, message.Body, message.CreatedAt); err != nil {
		// Сообщение уже сохранено, но кадр не рассылаем: история догонит
		return nil, err
	}

	frame, err := websocket.EncodeFrame(websocket.TypeMessage, roomID, h.toResponse(message))
	if err != nil {
		return nil, err
	}

	h.hub.Publish(roomID, frame)

	return message, nil
}

func (h *ChatHandler) loadHistory(room *models.Room, limit int) ([]dto.MessageResponse, error) {
	messages, err := h.db.GetRoomMessages(room.RoomID, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.MessageResponse, len(messages))
	for i := range messages {
		responses[i] = h.toResponse(&messages[i])
	}

	return responses, nil
}

func (h *ChatHandler) toResponse(message *models.Message) dto.MessageResponse {
	author := ""
	if user, err := h.db.GetUser(message.SenderID); err == nil {
		author = user.Username
	}

	return dto.MessageResponse{
		ID:         message.ID,
		RoomID:     message.RoomID,
		SenderID:   message.SenderID,
		ReceiverID: message.ReceiverID,
		Message:    message.Body,
		Author:     author,
		IsRead:     message.IsRead,
		CreatedAt:  message.CreatedAt,
	}
}
