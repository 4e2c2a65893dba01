package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/skillbridge/skillbridge-chat/internal/models"
)

func (d *Database) GetApplication(id uint) (*models.Application, error) {
	var app models.Application
	if err := d.db.First(&app, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (d *Database) SaveApplication(app *models.Application) error {
	return d.db.Create(app).Error
}

func (d *Database) UpdateApplicationStatus(id uint, status string) error {
	res := d.db.Model(&models.Application{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}
