package database

import (
	"strings"
	"time"

	"github.com/skillbridge/skillbridge-chat/internal/models"
)

// AppendMessage сохраняет сообщение. Тело обрезается по пробелам, пустое
// отклоняется. created_at ставит сервер, часы клиента не участвуют.
func (d *Database) AppendMessage(roomID string, senderID, receiverID uint, body string) (*models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}

	lock := d.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	message := &models.Message{
		RoomID:     roomID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		CreatedAt:  time.Now(),
	}

	if err := d.db.Create(message).Error; err != nil {
		return nil, err
	}

	return message, nil
}

// GetRoomMessages возвращает историю комнаты по возрастанию (created_at, id).
// При limit > 0 отдаются последние limit сообщений, не первые: клиент
// догоняет хвост разговора. limit <= 0 — без ограничения. Пустая комната —
// пустой срез, не ошибка.
func (d *Database) GetRoomMessages(roomID string, limit int) ([]models.Message, error) {
	var messages []models.Message

	if limit <= 0 {
		err := d.db.
			Where("room_id = ?", roomID).
			Order("created_at ASC, id ASC").
			Find(&messages).Error
		if err != nil {
			return nil, err
		}
		return messages, nil
	}

	err := d.db.
		Where("room_id = ?", roomID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Разворачиваем порядок, чтобы старые сообщения шли первыми
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// MarkRoomRead помечает прочитанными все чужие сообщения комнаты. Идемпотентно.
func (d *Database) MarkRoomRead(roomID string, readerID uint) error {
	return d.db.Model(&models.Message{}).
		Where("room_id = ? AND sender_id != ? AND is_read = ?", roomID, readerID, false).
		Update("is_read", true).Error
}

// CountUnread считает непрочитанные сообщения, адресованные пользователю
func (d *Database) CountUnread(roomID string, userID uint) (int64, error) {
	var count int64
	err := d.db.Model(&models.Message{}).
		Where("room_id = ? AND receiver_id = ? AND is_read = ?", roomID, userID, false).
		Count(&count).Error
	return count, err
}
