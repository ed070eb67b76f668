package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"community_chat_service/internal/chat/domain"
	"community_chat_service/pkg/logger"
	"community_chat_service/pkg/metrics"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingDialer counts dials, failing them all when fail is set
type countingDialer struct {
	dials atomic.Int32
	fail  bool
}

func (d *countingDialer) DialContext(ctx context.Context, urlStr string, h http.Header) (*websocket.Conn, *http.Response, error) {
	d.dials.Add(1)
	if d.fail {
		return nil, nil, errors.New("connection refused")
	}
	return websocket.DefaultDialer.DialContext(ctx, urlStr, h)
}

// chatServer answers the auth frame then runs script on the nth connection (1-based)
func chatServer(t *testing.T, script func(n int, conn *websocket.Conn)) string {
	t.Helper()
	var count atomic.Int32
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var frame domain.ClientFrame
		if err := conn.ReadJSON(&frame); err != nil || frame.Event != domain.EventAuth || frame.StringArg(0) != "tok" {
			return
		}
		_ = conn.WriteJSON(domain.Envelope{Event: domain.EventAuthenticated, Data: domain.Authenticated{UserID: "alice", Username: "alice"}})
		script(int(count.Add(1)), conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitDone(t *testing.T, m *Manager) {
	t.Helper()
	select {
	case <-m.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("manager did not stop")
	}
}

func TestReconnect_BoundedOnDialFailures(t *testing.T) {
	logger.SetNewNop()
	mt := metrics.NewUnregistered()
	dialer := &countingDialer{fail: true}
	m := NewManager("ws://127.0.0.1:1/ws", "tok", Handlers{},
		WithDialer(dialer), WithReconnect(5, time.Millisecond), WithMetrics(mt))

	err := m.Connect(context.Background())
	require.Error(t, err)
	waitDone(t, m)

	assert.Equal(t, int32(6), dialer.dials.Load())
	assert.Equal(t, 5.0, testutil.ToFloat64(mt.ReconnectAttempts))
	assert.Equal(t, StateClosed, m.State())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(6), dialer.dials.Load())
}

func TestReconnect_BoundedWhenServerDropsBeforeAuth(t *testing.T) {
	logger.SetNewNop()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		// 接受後立刻斷線, 從不回 authenticated
		_ = conn.UnderlyingConn().Close()
	}))
	t.Cleanup(srv.Close)

	mt := metrics.NewUnregistered()
	dialer := &countingDialer{}
	m := NewManager("ws"+strings.TrimPrefix(srv.URL, "http"), "tok", Handlers{},
		WithDialer(dialer), WithReconnect(5, time.Millisecond), WithMetrics(mt))

	require.NoError(t, m.Connect(context.Background()))
	waitDone(t, m)

	assert.Equal(t, int32(6), dialer.dials.Load())
	assert.Equal(t, 5.0, testutil.ToFloat64(mt.ReconnectAttempts))
	assert.Equal(t, StateClosed, m.State())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(6), dialer.dials.Load())
}

func TestCleanServerClose_NoReconnect(t *testing.T) {
	logger.SetNewNop()
	url := chatServer(t, func(_ int, conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		_, _, _ = conn.ReadMessage()
	})

	var mu sync.Mutex
	var changes []bool
	dialer := &countingDialer{}
	m := NewManager(url, "tok", Handlers{OnConnectionChange: func(up bool) {
		mu.Lock()
		changes = append(changes, up)
		mu.Unlock()
	}}, WithDialer(dialer), WithReconnect(5, time.Millisecond))

	require.NoError(t, m.Connect(context.Background()))
	waitDone(t, m)

	assert.Equal(t, int32(1), dialer.dials.Load())
	assert.Equal(t, 0, m.Attempts())
	mu.Lock()
	assert.Equal(t, []bool{true, false}, changes)
	mu.Unlock()
}

func TestAbnormalClose_ReconnectsAndDispatches(t *testing.T) {
	logger.SetNewNop()
	url := chatServer(t, func(n int, conn *websocket.Conn) {
		if n == 1 {
			// 直接斷線 1006
			conn.UnderlyingConn().Close()
			return
		}
		_ = conn.WriteJSON(domain.Envelope{Event: domain.EventNewMessage, Data: domain.NewMessagePayload{
			ThreadID: "g",
			Message:  domain.MessageView{Message: domain.Message{ID: "m-1", Content: "hi"}},
		}})
		_, _, _ = conn.ReadMessage()
	})

	got := make(chan string, 1)
	dialer := &countingDialer{}
	m := NewManager(url, "tok", Handlers{OnMessage: func(threadID string, msg domain.MessageView) {
		got <- threadID + "/" + msg.Content
	}}, WithDialer(dialer), WithReconnect(5, time.Millisecond))

	require.NoError(t, m.Connect(context.Background()))

	select {
	case v := <-got:
		assert.Equal(t, "g/hi", v)
	case <-time.After(5 * time.Second):
		t.Fatal("message not delivered after reconnect")
	}
	assert.Equal(t, int32(2), dialer.dials.Load())
	assert.Equal(t, 0, m.Attempts())
	assert.Equal(t, StateOpen, m.State())

	m.Disconnect()
	waitDone(t, m)
	assert.Equal(t, StateClosed, m.State())
}

func TestConnect_IdempotentWhileOpen(t *testing.T) {
	logger.SetNewNop()
	url := chatServer(t, func(_ int, conn *websocket.Conn) {
		_, _, _ = conn.ReadMessage()
	})
	dialer := &countingDialer{}
	m := NewManager(url, "tok", Handlers{}, WithDialer(dialer))

	require.NoError(t, m.Connect(context.Background()))
	require.NoError(t, m.Connect(context.Background()))

	assert.Equal(t, int32(1), dialer.dials.Load())
	m.Disconnect()
	waitDone(t, m)
}

func TestDispatch(t *testing.T) {
	logger.SetNewNop()
	var updates []domain.ThreadUpdate
	var messages []string
	var connected []bool
	m := NewManager("", "", Handlers{
		OnMessage:          func(threadID string, msg domain.MessageView) { messages = append(messages, msg.ID) },
		OnThreadUpdate:     func(u domain.ThreadUpdate) { updates = append(updates, u) },
		OnConnectionChange: func(up bool) { connected = append(connected, up) },
	})

	m.dispatch([]byte(`{"event":"authenticated","data":{"userId":"alice","username":"alice"}}`))
	m.dispatch([]byte(`{"event":"new_message","data":{"threadId":"g","message":{"id":"m-1","content":"hi"}}}`))
	m.dispatch([]byte(`{"event":"thread_update","data":{"threadId":"g","updateType":"participant_joined","userId":"bob"}}`))
	m.dispatch([]byte(`{"event":"error","data":"Invalid token"}`))
	m.dispatch([]byte(`{"event":"typing","data":{}}`))
	m.dispatch([]byte(`not json`))

	assert.Equal(t, []bool{true}, connected)
	assert.Equal(t, []string{"m-1"}, messages)
	require.Len(t, updates, 1)
	assert.Equal(t, domain.ParticipantJoined, updates[0].UpdateType)
	assert.Equal(t, "bob", updates[0].UserID)
}
