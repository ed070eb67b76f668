// Package client keeps one logical chat socket open for a caller and hides
// reconnect churn behind callbacks.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"community_chat_service/internal/chat/domain"
	"community_chat_service/pkg/logger"
	"community_chat_service/pkg/metrics"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// State of the managed connection
type State int32

const (
	// StateIdle Connect not called yet
	StateIdle State = iota
	// StateConnecting dialing or waiting for a reconnect
	StateConnecting
	// StateOpen socket open, auth sent
	StateOpen
	// StateClosed stopped, no further automatic attempts
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	default:
		return "closed"
	}
}

const (
	// DefaultMaxAttempts reconnect budget after an abnormal close
	DefaultMaxAttempts = 5
	// DefaultDelay wait before each reconnect
	DefaultDelay = 3 * time.Second
)

// Dialer opens the socket, *websocket.Dialer satisfies it
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, requestHeader http.Header) (*websocket.Conn, *http.Response, error)
}

// Handlers callbacks, any may be nil
type Handlers struct {
	OnMessage          func(threadID string, msg domain.MessageView)
	OnThreadUpdate     func(update domain.ThreadUpdate)
	OnConnectionChange func(connected bool)
}

// Option configure a Manager
type Option func(*Manager)

// WithDialer replace websocket.DefaultDialer
func WithDialer(d Dialer) Option {
	return func(m *Manager) { m.dialer = d }
}

// WithReconnect set the attempt budget and fixed delay
func WithReconnect(maxAttempts int, delay time.Duration) Option {
	return func(m *Manager) {
		m.maxAttempts = maxAttempts
		m.delay = delay
	}
}

// WithMetrics count scheduled reconnects
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// Manager single logical chat connection
type Manager struct {
	url      string
	token    string
	handlers Handlers

	dialer      Dialer
	maxAttempts int
	delay       time.Duration
	metrics     *metrics.Metrics

	mu       sync.Mutex
	ctx      context.Context
	state    State
	conn     *websocket.Conn
	attempts int
	timer    *time.Timer
	done     chan struct{}
	stopped  bool

	writeMu sync.Mutex
}

// NewManager create a manager for url authenticating with token
func NewManager(url, token string, handlers Handlers, opts ...Option) *Manager {
	m := &Manager{
		url:         url,
		token:       token,
		handlers:    handlers,
		dialer:      websocket.DefaultDialer,
		maxAttempts: DefaultMaxAttempts,
		delay:       DefaultDelay,
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State current state
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Attempts reconnects scheduled since the server last confirmed auth
func (m *Manager) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

// Done closed once the manager stops for good
func (m *Manager) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done
}

// Connect open the socket. A no-op while a connection is open or being
// established. ctx bounds the dial and every later reconnect. A failed first
// dial is returned and also consumes the reconnect budget.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case StateOpen, StateConnecting:
		m.mu.Unlock()
		return nil
	case StateClosed:
		// 重新開始: 新的 done channel 與 attempt 預算
		m.done = make(chan struct{})
		m.stopped = false
		m.attempts = 0
	}
	m.ctx = ctx
	m.state = StateConnecting
	m.mu.Unlock()

	return m.dial()
}

// Disconnect clean close (1000), never followed by a reconnect
func (m *Manager) Disconnect() {
	m.mu.Lock()
	conn := m.conn
	m.conn = nil
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	wasOpen := m.state == StateOpen
	m.state = StateClosed
	m.mu.Unlock()

	if conn != nil {
		m.writeMu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		m.writeMu.Unlock()
		_ = conn.Close()
	}
	if wasOpen {
		m.notifyConnection(false)
	}
	m.stop()
}

func (m *Manager) dial() error {
	m.mu.Lock()
	ctx := m.ctx
	m.mu.Unlock()

	conn, resp, err := m.dialer.DialContext(ctx, m.url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		logger.Log.Warn("chat socket dial failed", zap.String("url", m.url), zap.Error(err))
		m.abnormal()
		return err
	}

	m.mu.Lock()
	if m.state != StateConnecting {
		// Disconnect 在 dial 期間被呼叫
		m.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	m.conn = conn
	m.state = StateOpen
	m.mu.Unlock()

	logger.Log.Info("chat socket connected", zap.String("url", m.url))
	if err := m.send(conn, domain.ClientFrame{Event: domain.EventAuth, Args: []json.RawMessage{mustJSON(m.token)}}); err != nil {
		logger.Log.Warn("send auth failed", zap.Error(err))
	}
	go m.readLoop(conn)
	return nil
}

func (m *Manager) send(conn *websocket.Conn, frame domain.ClientFrame) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(frame)
}

func (m *Manager) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.closed(conn, err)
			return
		}
		m.dispatch(data)
	}
}

func (m *Manager) dispatch(data []byte) {
	var env domain.RawEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		logger.Log.Warn("chat socket: invalid envelope", zap.Error(err))
		return
	}

	switch env.Event {
	case domain.EventAuthenticated:
		logger.Log.Info("chat socket authenticated")
		// 只有認證成功才重置重連預算, 開了就斷的 server 不會無限重連
		m.mu.Lock()
		m.attempts = 0
		m.mu.Unlock()
		m.notifyConnection(true)
	case domain.EventNewMessage:
		var payload domain.NewMessagePayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			logger.Log.Warn("chat socket: invalid new_message", zap.Error(err))
			return
		}
		if m.handlers.OnMessage != nil {
			m.handlers.OnMessage(payload.ThreadID, payload.Message)
		}
	case domain.EventThreadUpdate:
		var update domain.ThreadUpdate
		if err := json.Unmarshal(env.Data, &update); err != nil {
			logger.Log.Warn("chat socket: invalid thread_update", zap.Error(err))
			return
		}
		if m.handlers.OnThreadUpdate != nil {
			m.handlers.OnThreadUpdate(update)
		}
	case domain.EventError:
		logger.Log.Error("chat socket error", zap.String("data", string(env.Data)))
	default:
		logger.Log.Info("unknown chat socket event", zap.String("event", string(env.Event)))
	}
}

// closed handle the end of conn's read loop
func (m *Manager) closed(conn *websocket.Conn, err error) {
	m.mu.Lock()
	if m.conn != conn {
		// Disconnect 已處理
		m.mu.Unlock()
		return
	}
	m.conn = nil
	m.mu.Unlock()
	_ = conn.Close()
	m.notifyConnection(false)

	var ce *websocket.CloseError
	if errors.As(err, &ce) && ce.Code == websocket.CloseNormalClosure {
		logger.Log.Info("chat socket closed normally")
		m.mu.Lock()
		m.state = StateClosed
		m.mu.Unlock()
		m.stop()
		return
	}
	logger.Log.Warn("chat socket closed abnormally", zap.Error(err))
	m.abnormal()
}

// abnormal schedule a reconnect while budget remains
func (m *Manager) abnormal() {
	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return
	}
	if m.attempts >= m.maxAttempts || (m.ctx != nil && m.ctx.Err() != nil) {
		m.state = StateClosed
		m.mu.Unlock()
		logger.Log.Warn("chat socket: giving up reconnecting", zap.Int("attempts", m.maxAttempts))
		m.stop()
		return
	}
	m.attempts++
	attempt := m.attempts
	m.state = StateConnecting
	m.timer = time.AfterFunc(m.delay, func() {
		m.mu.Lock()
		if m.state != StateConnecting {
			m.mu.Unlock()
			return
		}
		m.timer = nil
		m.mu.Unlock()
		_ = m.dial()
	})
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.ReconnectAttempts.Inc()
	}
	logger.Log.Info("chat socket reconnecting", zap.Int("attempt", attempt), zap.Int("max", m.maxAttempts))
}

func (m *Manager) stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.stopped {
		m.stopped = true
		close(m.done)
	}
}

func (m *Manager) notifyConnection(connected bool) {
	if m.handlers.OnConnectionChange != nil {
		m.handlers.OnConnectionChange(connected)
	}
}

func mustJSON(v string) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
