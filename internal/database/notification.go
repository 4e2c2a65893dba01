package database

import (
	"github.com/skillbridge/skillbridge-chat/internal/models"
)

func (d *Database) SaveNotification(n *models.Notification) error {
	return d.db.Create(n).Error
}

// GetNotifications возвращает страницу уведомлений пользователя, свежие сверху
func (d *Database) GetNotifications(userID uint, offset, limit int) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	if err := d.db.Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := d.db.
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

func (d *Database) GetUnreadNotificationCount(userID uint) (int64, error) {
	var count int64
	err := d.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkNotificationRead помечает уведомление прочитанным, только свое
func (d *Database) MarkNotificationRead(userID uint, id uint) error {
	return d.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true).Error
}

func (d *Database) MarkAllNotificationsRead(userID uint) error {
	return d.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}
