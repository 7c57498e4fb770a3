package brackets

import (
	"encoding/json"
	"testing"
	"time"
)

func waitForClients(t *testing.T, h *Hub, room string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for h.ClientCount(room) != want {
		if time.Now().After(deadline) {
			t.Fatalf("room %s has %d clients, want %d", room, h.ClientCount(room), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_BroadcastToRoom(t *testing.T) {
	h := NewHub(nil)
	go h.Run()
	defer h.Stop()

	room := SportRoom(7)
	inRoom := &Client{Hub: h, Send: make(chan []byte, 1), Room: room}
	otherRoom := &Client{Hub: h, Send: make(chan []byte, 1), Room: SportRoom(8)}
	h.Register <- inRoom
	h.Register <- otherRoom
	waitForClients(t, h, room, 1)

	h.BroadcastToRoom(room, WebSocketMessage{Type: MessageDrawGenerated, RoomID: room})

	select {
	case raw := <-inRoom.Send:
		var msg WebSocketMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("invalid message: %v", err)
		}
		if msg.Type != MessageDrawGenerated {
			t.Errorf("got type %q", msg.Type)
		}
	default:
		t.Fatal("client in room did not receive message")
	}

	select {
	case <-otherRoom.Send:
		t.Fatal("client in another room received message")
	default:
	}

	h.Unregister <- inRoom
	waitForClients(t, h, room, 0)
	if _, ok := <-inRoom.Send; ok {
		t.Error("send channel should be closed after unregister")
	}
}

func TestHub_AddRemoveAfterStop(t *testing.T) {
	// Run не запущен: после Stop принимать клиентов некому.
	h := NewHub(nil)
	h.Stop()

	c := &Client{Hub: h, Send: make(chan []byte, 1), Room: SportRoom(1)}
	done := make(chan bool)
	go func() {
		added := h.Add(c)
		h.Remove(c)
		done <- added
	}()

	select {
	case added := <-done:
		if added {
			t.Error("Add should fail on a stopped hub")
		}
	case <-time.After(time.Second):
		t.Fatal("Add/Remove blocked after Stop")
	}
}

func TestHub_AddRemove(t *testing.T) {
	h := NewHub(nil)
	go h.Run()
	defer h.Stop()

	room := SportRoom(3)
	c := &Client{Hub: h, Send: make(chan []byte, 1), Room: room}
	if !h.Add(c) {
		t.Fatal("Add on a running hub should succeed")
	}
	waitForClients(t, h, room, 1)
	h.Remove(c)
	waitForClients(t, h, room, 0)
}
