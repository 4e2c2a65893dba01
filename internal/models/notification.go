package models

import (
	"time"
)

// Типы уведомлений
const (
	NotificationMessage       = "message"
	NotificationJobMatch      = "job_match"
	NotificationApplication   = "application"
	NotificationStatusUpdate  = "status_update"
	NotificationOfferAccepted = "offer_accepted"
	NotificationSystem        = "system"
)

type Notification struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Type      string    `gorm:"size:32;not null" json:"type"`
	TargetID  string    `gorm:"size:64" json:"target_id,omitempty"` // комната, вакансия и т.п., без FK
	Message   string    `gorm:"type:text;not null" json:"message"`
	IsRead    bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
