package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func recvPayload(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case payload := <-c.Send:
		return payload
	default:
		t.Fatal("expected a payload in the client queue")
		return nil
	}
}

func requireEmpty(t *testing.T, c *Client) {
	t.Helper()
	select {
	case payload := <-c.Send:
		t.Fatalf("unexpected payload in queue: %s", payload)
	default:
	}
}

func TestPublish_FanOutIncludesSender(t *testing.T) {
	req := require.New(t)
	hub := NewHub()

	c1 := NewClient(hub, nil, 10)
	c2 := NewClient(hub, nil, 20)

	hub.Subscribe(c1, "app-5")
	hub.Subscribe(c2, "app-5")

	hub.Publish("app-5", []byte("hello"))

	req.Equal([]byte("hello"), recvPayload(t, c1))
	req.Equal([]byte("hello"), recvPayload(t, c2))
}

func TestPublish_RoomIsolation(t *testing.T) {
	req := require.New(t)
	hub := NewHub()

	c1 := NewClient(hub, nil, 10)
	c2 := NewClient(hub, nil, 20)
	other := NewClient(hub, nil, 30)

	hub.Subscribe(c1, "app-5")
	hub.Subscribe(c2, "app-5")
	hub.Subscribe(other, "app-6")

	hub.Publish("app-5", []byte("m"))

	req.Equal([]byte("m"), recvPayload(t, c1))
	req.Equal([]byte("m"), recvPayload(t, c2))
	requireEmpty(t, other)
}

func TestPublish_NoSubscribers(t *testing.T) {
	hub := NewHub()

	// Не должно паниковать и ничего не должно застрять
	hub.Publish("app-404", []byte("m"))
}

func TestSubscribe_Resubscribe(t *testing.T) {
	req := require.New(t)
	hub := NewHub()

	c := NewClient(hub, nil, 10)
	hub.Subscribe(c, "app-5")
	hub.Subscribe(c, "app-5")

	req.True(c.IsInRoom("app-5"))

	hub.Publish("app-5", []byte("once"))

	req.Equal([]byte("once"), recvPayload(t, c))
	requireEmpty(t, c)
}

func TestSubscribe_MultipleRooms(t *testing.T) {
	req := require.New(t)
	hub := NewHub()

	c := NewClient(hub, nil, 10)
	hub.Subscribe(c, "app-5")
	hub.Subscribe(c, "app-6")

	hub.Publish("app-5", []byte("five"))
	hub.Publish("app-6", []byte("six"))

	req.Equal([]byte("five"), recvPayload(t, c))
	req.Equal([]byte("six"), recvPayload(t, c))
}

func TestUnsubscribe_RemovesAllRooms(t *testing.T) {
	req := require.New(t)
	hub := NewHub()

	c := NewClient(hub, nil, 10)
	stay := NewClient(hub, nil, 20)

	hub.Subscribe(c, "app-5")
	hub.Subscribe(c, "app-6")
	hub.Subscribe(stay, "app-5")

	hub.Unsubscribe(c)

	req.False(c.IsInRoom("app-5"))
	req.False(c.IsInRoom("app-6"))

	hub.Publish("app-5", []byte("m"))
	hub.Publish("app-6", []byte("m"))

	requireEmpty(t, c)
	req.Equal([]byte("m"), recvPayload(t, stay))
}

func TestPublish_SlowSubscriberDoesNotBlockOthers(t *testing.T) {
	req := require.New(t)
	hub := NewHub()

	slow := NewClient(hub, nil, 10)
	fast := NewClient(hub, nil, 20)

	hub.Subscribe(slow, "app-5")
	hub.Subscribe(fast, "app-5")

	// Забиваем очередь медленного до отказа
	for i := 0; i < cap(slow.Send); i++ {
		slow.Send <- []byte("backlog")
	}

	hub.Publish("app-5", []byte("m"))

	// Быстрый получил, переполненная очередь медленного не подвесила рассылку
	found := false
	for {
		select {
		case payload := <-fast.Send:
			if string(payload) == "m" {
				found = true
			}
		default:
			req.True(found)
			return
		}
	}
}

func TestSendToUser_AllConnections(t *testing.T) {
	req := require.New(t)
	hub := NewHub()

	first := NewClient(hub, nil, 10)
	second := NewClient(hub, nil, 10)
	other := NewClient(hub, nil, 20)

	hub.registerClient(first)
	hub.registerClient(second)
	hub.registerClient(other)

	hub.SendToUser(10, []byte("n"))

	req.Equal([]byte("n"), recvPayload(t, first))
	req.Equal([]byte("n"), recvPayload(t, second))
	requireEmpty(t, other)
}

func TestUnregister_CleansUpSubscriptions(t *testing.T) {
	req := require.New(t)
	hub := NewHub()

	c := NewClient(hub, nil, 10)
	hub.registerClient(c)
	hub.Subscribe(c, "app-5")

	hub.unregisterClient(c)

	hub.Publish("app-5", []byte("m"))

	// Канал закрыт, очередь пуста
	_, ok := <-c.Send
	req.False(ok)

	// Повторный unregister — no-op
	hub.unregisterClient(c)
}

// После Stop цикл Run мертв: Register и Unregister обязаны вернуться
// сразу, иначе завершающийся ReadPump повиснет навсегда
func TestRegisterUnregister_AfterStopDoNotBlock(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := NewClient(hub, nil, 10)
	hub.Register(c)
	hub.Stop()

	done := make(chan struct{})
	go func() {
		hub.Unregister(c)
		hub.Register(NewClient(hub, nil, 20))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Register/Unregister blocked after hub stop")
	}
}

func TestRoomSubscribers(t *testing.T) {
	req := require.New(t)
	hub := NewHub()

	c1 := NewClient(hub, nil, 10)
	c2 := NewClient(hub, nil, 10)
	c3 := NewClient(hub, nil, 20)

	hub.Subscribe(c1, "app-5")
	hub.Subscribe(c2, "app-5")
	hub.Subscribe(c3, "app-5")

	subscribers := hub.RoomSubscribers("app-5")
	req.ElementsMatch([]uint{10, 20}, subscribers)

	req.Empty(hub.RoomSubscribers("app-404"))
}

func TestEncodeFrame(t *testing.T) {
	req := require.New(t)

	payload, err := EncodeFrame(TypeMessage, "app-5", map[string]string{"message": "Hello"})
	req.NoError(err)

	var frame Message
	req.NoError(json.Unmarshal(payload, &frame))
	req.Equal(TypeMessage, frame.Type)
	req.Equal("app-5", frame.RoomID)
	req.False(frame.Timestamp.IsZero())

	var data map[string]string
	req.NoError(json.Unmarshal(frame.Data, &data))
	req.Equal("Hello", data["message"])
}
