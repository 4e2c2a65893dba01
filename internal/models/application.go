package models

import (
	"time"
)

// Application — отклик студента на вакансию, контекст диалога
type Application struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	JobTitle      string    `gorm:"size:255;not null" json:"job_title"`
	StudentID     uint      `gorm:"not null;index" json:"student_id"`
	RecruiterID   uint      `gorm:"not null;index" json:"recruiter_id"`
	StudentName   string    `gorm:"size:255" json:"student_name"`
	RecruiterName string    `gorm:"size:255" json:"recruiter_name"`
	Status        string    `gorm:"size:32;default:'pending'" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
