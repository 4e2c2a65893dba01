package dto

import (
	"time"
)

// SendMessagePayload — входящий кадр отправки сообщения
type SendMessagePayload struct {
	ReceiverID uint   `json:"receiver_id"`
	Message    string `json:"message"`
}

// JoinRoomPayload — входящий кадр подключения к комнате
type JoinRoomPayload struct {
	HistoryLimit int `json:"history_limit,omitempty"`
}

// MessageResponse — сообщение, как его видят клиенты (push и история)
type MessageResponse struct {
	ID         uint      `json:"id"`
	RoomID     string    `json:"room_id"`
	SenderID   uint      `json:"sender_id"`
	ReceiverID uint      `json:"receiver_id"`
	Message    string    `json:"message"`
	Author     string    `json:"author,omitempty"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

// ResolveRoomRequest — создание/поиск комнаты для отклика
type ResolveRoomRequest struct {
	ApplicationID uint `json:"application_id" binding:"required"`
	StudentID     uint `json:"student_id" binding:"required"`
	RecruiterID   uint `json:"recruiter_id" binding:"required"`
}
