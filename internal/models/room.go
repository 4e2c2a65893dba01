package models

import (
	"time"
)

// Room — диалог студент-рекрутер, привязанный 1:1 к отклику (application)
type Room struct {
	RoomID        string `gorm:"size:64;primaryKey" json:"room_id"`
	ApplicationID uint   `gorm:"not null;uniqueIndex" json:"application_id"`
	StudentID     uint   `gorm:"not null;index" json:"student_id"`
	RecruiterID   uint   `gorm:"not null;index" json:"recruiter_id"`

	// Денормализованный кэш для списков, источник правды — messages
	JobTitle      string     `gorm:"size:255" json:"job_title"`
	StudentName   string     `gorm:"size:255" json:"student_name"`
	RecruiterName string     `gorm:"size:255" json:"recruiter_name"`
	LastMessage   string     `gorm:"type:text" json:"last_message"`
	LastMessageAt *time.Time `json:"last_message_at"`

	CreatedAt time.Time `json:"created_at"`
}
