package realtime

import (
	"sync"
	"testing"
)

type fakeConn struct {
	id string

	mu     sync.Mutex
	events []string
	panics bool
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Emit(event string, _ ...interface{}) {
	if c.panics {
		panic("connection closed")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

type eventCounter map[string]int

func (e eventCounter) RelayEvent(event string) { e[event]++ }

func TestPublishReachesEveryConnectionOfUser(t *testing.T) {
	hub := NewHub(nil)
	counter := eventCounter{}
	hub.AttachMetrics(counter)

	phone := &fakeConn{id: "a"}
	laptop := &fakeConn{id: "b"}
	other := &fakeConn{id: "c"}
	hub.Join(phone, 1)
	hub.Join(laptop, 1)
	hub.Join(other, 2)

	if got := hub.Publish(1, EventReceiveMessage, map[string]string{"message": "hi"}); got != 2 {
		t.Fatalf("unexpected deliveries: got %d want %d", got, 2)
	}
	if phone.count() != 1 || laptop.count() != 1 || other.count() != 0 {
		t.Fatalf("unexpected per-connection events: %d %d %d", phone.count(), laptop.count(), other.count())
	}
	if counter[EventReceiveMessage] != 1 {
		t.Fatalf("expected one recorded delivery, got %v", counter)
	}
}

func TestPublishDropsForOfflineUser(t *testing.T) {
	hub := NewHub(nil)
	counter := eventCounter{}
	hub.AttachMetrics(counter)

	if got := hub.Publish(7, EventReceiveMessage, nil); got != 0 {
		t.Fatalf("expected no deliveries, got %d", got)
	}
	if counter[droppedLabel] != 1 {
		t.Fatalf("expected dropped event to be recorded, got %v", counter)
	}
}

func TestLeaveAndRejoinMoveBinding(t *testing.T) {
	hub := NewHub(nil)
	conn := &fakeConn{id: "x"}

	hub.Join(conn, 1)
	hub.Join(conn, 2)
	if hub.Online(1) {
		t.Fatalf("rejoining as another user must unbind the first")
	}
	if userID, ok := hub.UserOf("x"); !ok || userID != 2 {
		t.Fatalf("unexpected binding: %d %v", userID, ok)
	}

	hub.Leave(conn)
	if hub.Online(2) {
		t.Fatalf("leave must unbind the connection")
	}
	if _, ok := hub.UserOf("x"); ok {
		t.Fatalf("leave must forget the connection")
	}
}

func TestPublishSurvivesBrokenConnection(t *testing.T) {
	hub := NewHub(nil)
	broken := &fakeConn{id: "broken", panics: true}
	healthy := &fakeConn{id: "ok"}
	hub.Join(broken, 1)
	hub.Join(healthy, 1)

	if got := hub.Publish(1, EventUserTyping, nil); got != 1 {
		t.Fatalf("unexpected deliveries: got %d want %d", got, 1)
	}
}

func TestConcurrentJoinPublishLeave(t *testing.T) {
	hub := NewHub(nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conn := &fakeConn{id: string(rune('a' + i))}
			hub.Join(conn, int64(i%3+1))
			hub.Publish(int64(i%3+1), EventReceiveMessage, i)
			hub.Leave(conn)
		}(i)
	}
	wg.Wait()

	for userID := int64(1); userID <= 3; userID++ {
		if hub.Online(userID) {
			t.Fatalf("user %d still online after all connections left", userID)
		}
	}
}
