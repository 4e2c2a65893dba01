package database

import (
	"sync"

	"gorm.io/gorm"
)

type Database struct {
	db *gorm.DB

	// Мьютексы на комнату: append внутри одной комнаты сериализуется,
	// чтобы порядок (created_at, id) совпадал с порядком записи
	roomLocks sync.Map
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) roomLock(roomID string) *sync.Mutex {
	v, _ := d.roomLocks.LoadOrStore(roomID, &sync.Mutex{})
	return v.(*sync.Mutex)
}
