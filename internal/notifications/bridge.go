package notifications

import (
	"log"
	"time"

	"github.com/skillbridge/skillbridge-chat/internal/database"
	"github.com/skillbridge/skillbridge-chat/internal/models"
	ws "github.com/skillbridge/skillbridge-chat/internal/websocket"
)

// Bridge записывает уведомления о доменных событиях (сообщение, статус
// отклика, оффер) и best-effort пушит их на живые соединения получателя.
// Контракт доставки — polling-лента, push только ускоряет.
type Bridge struct {
	db  *database.Database
	hub *ws.Hub
}

func NewBridge(db *database.Database, hub *ws.Hub) *Bridge {
	return &Bridge{db: db, hub: hub}
}

// Notify создает уведомление. Ошибка записи возвращается вызывающему,
// неудачный push — нет.
func (b *Bridge) Notify(userID uint, notifType, targetID, text string) (*models.Notification, error) {
	n := &models.Notification{
		UserID:    userID,
		Type:      notifType,
		TargetID:  targetID,
		Message:   text,
		CreatedAt: time.Now(),
	}

	if err := b.db.SaveNotification(n); err != nil {
		return nil, err
	}

	b.push(userID, n)

	return n, nil
}

func (b *Bridge) push(userID uint, n *models.Notification) {
	if b.hub == nil {
		return
	}

	payload, err := ws.EncodeFrame(ws.TypeNotification, "", n)
	if err != nil {
		log.Printf("Failed to encode notification push: %v", err)
		return
	}

	b.hub.SendToUser(userID, payload)
}
