package handlers

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/skillbridge/skillbridge-chat/internal/database"
	"github.com/skillbridge/skillbridge-chat/internal/handlers/dto"
	"github.com/skillbridge/skillbridge-chat/internal/models"
	"github.com/skillbridge/skillbridge-chat/internal/notifications"
	ws "github.com/skillbridge/skillbridge-chat/internal/websocket"
)

type chatFixture struct {
	db      *database.Database
	hub     *ws.Hub
	bridge  *notifications.Bridge
	handler *ChatHandler

	student   *ws.Client // user 10
	recruiter *ws.Client // user 20
}

// newChatFixture поднимает диалог студент 10 <-> рекрутер 20 по отклику 5
func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()

	// _busy_timeout: запись уведомления идет параллельно со следующим
	// сообщением, sqlite не должен отвечать SQLITE_BUSY
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")+"?_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&models.User{},
		&models.Application{},
		&models.Room{},
		&models.Message{},
		&models.Notification{},
	))

	db := database.NewDatabase(gdb)

	users := []models.User{
		{ID: 10, Username: "student", Email: "student@example.com", PasswordHash: "x", Role: "student"},
		{ID: 20, Username: "recruiter", Email: "recruiter@example.com", PasswordHash: "x", Role: "recruiter"},
	}
	for i := range users {
		require.NoError(t, db.SaveUser(&users[i]))
	}

	require.NoError(t, db.SaveApplication(&models.Application{
		ID:          5,
		JobTitle:    "Backend Intern",
		StudentID:   10,
		RecruiterID: 20,
		StudentName: "Sam", RecruiterName: "Rita",
	}))

	_, err = db.ResolveRoom(5, 10, 20)
	require.NoError(t, err)

	hub := ws.NewHub()
	bridge := notifications.NewBridge(db, hub)

	return &chatFixture{
		db:        db,
		hub:       hub,
		bridge:    bridge,
		handler:   NewChatHandler(db, hub, bridge),
		student:   ws.NewClient(hub, nil, 10),
		recruiter: ws.NewClient(hub, nil, 20),
	}
}

func recvFrame(t *testing.T, c *ws.Client) *ws.Message {
	t.Helper()
	select {
	case payload := <-c.Send:
		var frame ws.Message
		require.NoError(t, json.Unmarshal(payload, &frame))
		return &frame
	case <-time.After(time.Second):
		t.Fatal("expected a frame in the client queue")
		return nil
	}
}

func requireNoFrame(t *testing.T, c *ws.Client) {
	t.Helper()
	select {
	case payload := <-c.Send:
		t.Fatalf("unexpected frame: %s", payload)
	default:
	}
}

func sendFrame(roomID string, receiverID uint, body string) *ws.Message {
	data, _ := json.Marshal(dto.SendMessagePayload{ReceiverID: receiverID, Message: body})
	return &ws.Message{Type: ws.TypeMessage, RoomID: roomID, Data: data}
}

func TestHandleSend_PersistsThenBroadcasts(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)

	f.hub.Subscribe(f.student, "app-5")
	f.hub.Subscribe(f.recruiter, "app-5")

	req.NoError(f.handler.HandleMessage(f.student, sendFrame("app-5", 20, "Hello")))

	// Сообщение сохранено
	history, err := f.db.GetRoomMessages("app-5", 0)
	req.NoError(err)
	req.Len(history, 1)
	req.Equal("Hello", history[0].Body)

	// Кэш комнаты обновлен
	room, err := f.db.GetRoom("app-5")
	req.NoError(err)
	req.Equal("Hello", room.LastMessage)
	req.NotNil(room.LastMessageAt)

	// Кадр дошел обоим, включая отправителя
	for _, c := range []*ws.Client{f.student, f.recruiter} {
		frame := recvFrame(t, c)
		req.Equal(ws.TypeMessage, frame.Type)
		req.Equal("app-5", frame.RoomID)

		var msg dto.MessageResponse
		req.NoError(json.Unmarshal(frame.Data, &msg))
		req.Equal("Hello", msg.Message)
		req.Equal(uint(10), msg.SenderID)
		req.Equal(uint(20), msg.ReceiverID)
		req.Equal("student", msg.Author)
		req.Equal(history[0].ID, msg.ID)
	}

	// Уведомление получателю записано
	items, total, err := f.db.GetNotifications(20, 0, 10)
	req.NoError(err)
	req.EqualValues(1, total)
	req.Equal(models.NotificationMessage, items[0].Type)
	req.Equal("app-5", items[0].TargetID)
	req.Equal("Hello", items[0].Message)

	// last_seen отправителя обновлен до возврата из обработчика
	sender, err := f.db.GetUser(10)
	req.NoError(err)
	req.WithinDuration(time.Now(), sender.LastSeenAt, time.Minute)
}

// Два отправителя шлют вперемешку: подписчик должен увидеть кадры строго
// в порядке присвоенных id, без перестановок между записью и рассылкой
func TestHandleSend_ConcurrentSendersKeepOrder(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)

	observer := ws.NewClient(f.hub, nil, 20)
	f.hub.Subscribe(observer, "app-5")
	f.hub.Subscribe(f.student, "app-5")
	f.hub.Subscribe(f.recruiter, "app-5")

	const perSender = 60

	var wg sync.WaitGroup
	for _, c := range []*ws.Client{f.student, f.recruiter} {
		wg.Add(1)
		go func(c *ws.Client) {
			defer wg.Done()
			receiver := uint(20)
			if c.UserID == 20 {
				receiver = 10
			}
			for i := 0; i < perSender; i++ {
				err := f.handler.HandleMessage(c, sendFrame("app-5", receiver, "ping"))
				require.NoError(t, err)
			}
		}(c)
	}
	wg.Wait()

	var ids []uint
	for len(observer.Send) > 0 {
		frame := recvFrame(t, observer)
		req.Equal(ws.TypeMessage, frame.Type)

		var msg dto.MessageResponse
		req.NoError(json.Unmarshal(frame.Data, &msg))
		ids = append(ids, msg.ID)
	}

	req.Len(ids, 2*perSender)
	for i := 1; i < len(ids); i++ {
		req.Greater(ids[i], ids[i-1], "кадр с id %d пришел после %d", ids[i], ids[i-1])
	}
}

// История при лимите отдает хвост разговора, а не его начало
func TestHandleJoin_LongHistoryKeepsLatest(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)

	const total = 60
	for i := 0; i < total; i++ {
		_, err := f.db.AppendMessage("app-5", 10, 20, fmt.Sprintf("message %d", i))
		req.NoError(err)
	}

	join := &ws.Message{Type: ws.TypeRoomJoin, RoomID: "app-5"}
	req.NoError(f.handler.HandleMessage(f.recruiter, join))

	frame := recvFrame(t, f.recruiter)
	req.Equal(ws.TypeHistory, frame.Type)

	var history []dto.MessageResponse
	req.NoError(json.Unmarshal(frame.Data, &history))
	req.Len(history, 50)
	req.Equal("message 10", history[0].Message)
	req.Equal("message 59", history[len(history)-1].Message)
}

func TestHandleSend_EmptyBodyNoSideEffects(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)

	f.hub.Subscribe(f.student, "app-5")
	f.hub.Subscribe(f.recruiter, "app-5")

	for _, body := range []string{"", "   "} {
		err := f.handler.HandleMessage(f.student, sendFrame("app-5", 20, body))
		req.ErrorIs(err, database.ErrEmptyMessage)
	}

	history, err := f.db.GetRoomMessages("app-5", 0)
	req.NoError(err)
	req.Empty(history)

	requireNoFrame(t, f.student)
	requireNoFrame(t, f.recruiter)

	_, total, err := f.db.GetNotifications(20, 0, 10)
	req.NoError(err)
	req.Zero(total)
}

func TestHandleSend_RequiresSubscription(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)

	err := f.handler.HandleMessage(f.student, sendFrame("app-5", 20, "Hello"))
	req.ErrorIs(err, ws.ErrNotSubscribed)

	history, err := f.db.GetRoomMessages("app-5", 0)
	req.NoError(err)
	req.Empty(history)
}

func TestHandleJoin_SubscribesAndSendsHistory(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)

	_, err := f.db.AppendMessage("app-5", 10, 20, "first")
	req.NoError(err)
	_, err = f.db.AppendMessage("app-5", 20, 10, "second")
	req.NoError(err)

	join := &ws.Message{Type: ws.TypeRoomJoin, RoomID: "app-5"}
	req.NoError(f.handler.HandleMessage(f.recruiter, join))

	req.True(f.recruiter.IsInRoom("app-5"))

	frame := recvFrame(t, f.recruiter)
	req.Equal(ws.TypeHistory, frame.Type)
	req.Equal("app-5", frame.RoomID)

	var history []dto.MessageResponse
	req.NoError(json.Unmarshal(frame.Data, &history))
	req.Len(history, 2)
	req.Equal("first", history[0].Message)
	req.Equal("second", history[1].Message)
}

func TestHandleJoin_UnknownRoom(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)

	join := &ws.Message{Type: ws.TypeRoomJoin, RoomID: "app-404"}
	err := f.handler.HandleMessage(f.student, join)
	req.ErrorIs(err, database.ErrRoomNotFound)
	req.False(f.student.IsInRoom("app-404"))
}

func TestHandleJoin_NonParticipantRejected(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)

	stranger := ws.NewClient(f.hub, nil, 30)

	join := &ws.Message{Type: ws.TypeRoomJoin, RoomID: "app-5"}
	err := f.handler.HandleMessage(stranger, join)
	req.Error(err)
	req.False(stranger.IsInRoom("app-5"))
}

func TestHandleMessage_UnknownTypeIgnored(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t)

	req.NoError(f.handler.HandleMessage(f.student, &ws.Message{Type: "typing"}))
}
