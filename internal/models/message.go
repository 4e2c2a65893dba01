package models

import (
	"time"
)

type Message struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID     string    `gorm:"size:64;not null;index" json:"room_id"`
	SenderID   uint      `gorm:"not null" json:"sender_id"`
	ReceiverID uint      `gorm:"not null;index:idx_messages_unread" json:"receiver_id"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	IsRead     bool      `gorm:"not null;default:false;index:idx_messages_unread" json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}
