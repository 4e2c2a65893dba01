package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/skillbridge/skillbridge-chat/internal/models"
)

// RoomID детерминированно выводит идентификатор комнаты из отклика.
// Комната 1:1 с application, поэтому id отклика достаточно.
func RoomID(applicationID uint) string {
	return fmt.Sprintf("app-%d", applicationID)
}

// RoomWithUnread — комната со счетчиком непрочитанного для списков
type RoomWithUnread struct {
	models.Room
	UnreadCount int64 `json:"unread_count"`
}

// ResolveRoom находит или создает комнату для отклика. Повторный вызов с тем
// же application_id всегда возвращает ту же комнату; отображаемые поля
// (название вакансии, имена) освежаются из отклика.
func (d *Database) ResolveRoom(applicationID, studentID, recruiterID uint) (*models.Room, error) {
	app, err := d.GetApplication(applicationID)
	if err != nil {
		return nil, err
	}

	roomID := RoomID(applicationID)

	var room models.Room
	err = d.db.First(&room, "room_id = ?", roomID).Error
	if err == nil {
		if room.JobTitle != app.JobTitle || room.StudentName != app.StudentName || room.RecruiterName != app.RecruiterName {
			updates := map[string]interface{}{
				"job_title":      app.JobTitle,
				"student_name":   app.StudentName,
				"recruiter_name": app.RecruiterName,
			}
			if err := d.db.Model(&room).Updates(updates).Error; err != nil {
				return nil, err
			}
			room.JobTitle = app.JobTitle
			room.StudentName = app.StudentName
			room.RecruiterName = app.RecruiterName
		}
		return &room, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	room = models.Room{
		RoomID:        roomID,
		ApplicationID: applicationID,
		StudentID:     studentID,
		RecruiterID:   recruiterID,
		JobTitle:      app.JobTitle,
		StudentName:   app.StudentName,
		RecruiterName: app.RecruiterName,
		CreatedAt:     time.Now(),
	}

	if err := d.db.Create(&room).Error; err != nil {
		// Гонка create-create: комнату уже успел создать другой запрос
		var existing models.Room
		if ferr := d.db.First(&existing, "room_id = ?", roomID).Error; ferr == nil {
			return &existing, nil
		}
		return nil, err
	}

	return &room, nil
}

// GetRoom возвращает комнату по id
func (d *Database) GetRoom(roomID string) (*models.Room, error) {
	var room models.Room
	if err := d.db.First(&room, "room_id = ?", roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

// TouchRoom обновляет денормализованные поля последнего сообщения одним
// атомарным апдейтом. Last-writer-wins: это кэш для списков, не источник правды.
func (d *Database) TouchRoom(roomID string, lastMessage string, at time.Time) error {
	return d.db.Model(&models.Room{}).
		Where("room_id = ?", roomID).
		Updates(map[string]interface{}{
			"last_message":    lastMessage,
			"last_message_at": at,
		}).Error
}

// ListRoomsForUser возвращает комнаты пользователя со счетчиками
// непрочитанного, свежие сверху, комнаты без сообщений в конце.
func (d *Database) ListRoomsForUser(userID uint) ([]RoomWithUnread, error) {
	var rooms []models.Room

	err := d.db.
		Where("student_id = ? OR recruiter_id = ?", userID, userID).
		Order("last_message_at IS NULL, last_message_at DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}

	result := make([]RoomWithUnread, len(rooms))
	for i, room := range rooms {
		unread, err := d.CountUnread(room.RoomID, userID)
		if err != nil {
			return nil, err
		}
		result[i] = RoomWithUnread{Room: room, UnreadCount: unread}
	}

	return result, nil
}

// IsParticipant проверяет, что пользователь — участник комнаты
func (d *Database) IsParticipant(room *models.Room, userID uint) bool {
	return room.StudentID == userID || room.RecruiterID == userID
}
