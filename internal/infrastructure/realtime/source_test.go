package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/taskflow/client/domain"
)

// pushServer is a minimal websocket endpoint that records the handshake and
// lets the test push raw frames to the connected client.
type pushServer struct {
	*httptest.Server
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns []*websocket.Conn
	auth  string
}

func newPushServer(t *testing.T) *pushServer {
	t.Helper()
	ps := &pushServer{}
	ps.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ps.mu.Lock()
		ps.auth = r.Header.Get("Authorization")
		ps.mu.Unlock()

		conn, err := ps.upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		ps.mu.Lock()
		ps.conns = append(ps.conns, conn)
		ps.mu.Unlock()
	}))
	t.Cleanup(ps.Close)
	return ps
}

func (ps *pushServer) wsURL() string {
	return "ws" + strings.TrimPrefix(ps.URL, "http")
}

func (ps *pushServer) push(t *testing.T, payload string) {
	t.Helper()
	ps.mu.Lock()
	conn := ps.conns[len(ps.conns)-1]
	ps.mu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		t.Fatalf("push: %v", err)
	}
}

func (ps *pushServer) dropAll() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	for _, c := range ps.conns {
		c.Close()
	}
	ps.conns = nil
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestConnectSendsBearerToken(t *testing.T) {
	srv := newPushServer(t)
	source := New(Config{URL: srv.wsURL()}, nil)
	defer source.Disconnect()

	if err := source.Connect(context.Background(), "tok123"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	waitFor(t, time.Second, func() bool {
		srv.mu.Lock()
		defer srv.mu.Unlock()
		return srv.auth == "Bearer tok123"
	})
	if !source.IsConnected() {
		t.Fatal("source must report connected")
	}

	// a second Connect on a live source is a no-op
	if err := source.Connect(context.Background(), "other"); err != nil {
		t.Fatalf("repeat connect: %v", err)
	}
}

func TestEventsReachHandlers(t *testing.T) {
	srv := newPushServer(t)
	source := New(Config{URL: srv.wsURL()}, nil)
	defer source.Disconnect()

	var mu sync.Mutex
	var got []domain.TaskEvent
	source.OnEvent(func(ev domain.TaskEvent) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	})

	if err := source.Connect(context.Background(), "tok"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	srv.push(t, `{"event":"task_deleted","data":5}`)

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	})
	mu.Lock()
	defer mu.Unlock()
	if got[0].Kind != domain.EventTaskDeleted || got[0].TaskID != 5 {
		t.Fatalf("unexpected event: %+v", got[0])
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	srv := newPushServer(t)
	source := New(Config{URL: srv.wsURL()}, nil)
	defer source.Disconnect()

	var mu sync.Mutex
	count := 0
	unsubscribe := source.OnEvent(func(domain.TaskEvent) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	if err := source.Connect(context.Background(), "tok"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	srv.push(t, `{"event":"task_deleted","data":1}`)
	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == 1
	})

	unsubscribe()
	srv.push(t, `{"event":"task_deleted","data":2}`)
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 1 {
		t.Fatalf("handler called after unsubscribe, count=%d", count)
	}
}

func TestReconnectAfterDrop(t *testing.T) {
	srv := newPushServer(t)
	source := New(Config{URL: srv.wsURL(), MaxRetries: 3, RetryBackoff: 10 * time.Millisecond}, nil)
	defer source.Disconnect()

	var mu sync.Mutex
	var got []domain.TaskEvent
	source.OnEvent(func(ev domain.TaskEvent) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	})

	if err := source.Connect(context.Background(), "tok"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	srv.dropAll()

	// a new server-side connection appears once the client retries
	waitFor(t, 2*time.Second, func() bool {
		srv.mu.Lock()
		defer srv.mu.Unlock()
		return len(srv.conns) == 1
	})
	waitFor(t, time.Second, func() bool { return source.IsConnected() })
	if source.Exhausted() {
		t.Fatal("successful reconnect must not mark the source exhausted")
	}

	srv.push(t, `{"event":"task_deleted","data":9}`)
	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	})
}

func TestReconnectBudgetExhaustion(t *testing.T) {
	srv := newPushServer(t)
	source := New(Config{URL: srv.wsURL(), MaxRetries: 2, RetryBackoff: 10 * time.Millisecond}, nil)
	defer source.Disconnect()

	if err := source.Connect(context.Background(), "tok"); err != nil {
		t.Fatalf("connect: %v", err)
	}

	// kill the endpoint entirely so every retry fails
	srv.dropAll()
	srv.CloseClientConnections()
	srv.Close()

	waitFor(t, 2*time.Second, func() bool { return source.Exhausted() })
	if source.IsConnected() {
		t.Fatal("exhausted source must not report connected")
	}
}

func TestDisconnectDiscardsHandlers(t *testing.T) {
	srv := newPushServer(t)
	source := New(Config{URL: srv.wsURL()}, nil)

	var called atomic.Bool
	source.OnEvent(func(domain.TaskEvent) { called.Store(true) })

	if err := source.Connect(context.Background(), "tok"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	source.Disconnect()

	if source.IsConnected() {
		t.Fatal("disconnected source must not report connected")
	}

	// reconnect with a fresh session; the old handler must be gone
	if err := source.Connect(context.Background(), "tok2"); err != nil {
		t.Fatalf("second connect: %v", err)
	}
	defer source.Disconnect()

	waitFor(t, time.Second, func() bool {
		srv.mu.Lock()
		defer srv.mu.Unlock()
		return len(srv.conns) == 2
	})
	srv.push(t, `{"event":"task_deleted","data":1}`)
	time.Sleep(50 * time.Millisecond)
	if called.Load() {
		t.Fatal("handler survived Disconnect")
	}
}
