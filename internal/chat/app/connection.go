package app

import (
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"community_chat_service/internal/chat/domain"
	"community_chat_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConnState lifecycle of one socket
type ConnState int32

const (
	// StateConnecting socket accepted, nothing read yet
	StateConnecting ConnState = iota
	// StateAuthenticating waiting for a valid auth frame
	StateAuthenticating
	// StateAuthenticated identity verified, present in the registry
	StateAuthenticated
	// StateClosed terminal
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "closed"
	}
}

// textMessage websocket text frame opcode (RFC 6455)
const textMessage = 1

// DefaultSendBuffer outbound frames queued per connection
const DefaultSendBuffer = 64

var (
	// ErrConnectionClosed write on a closed connection
	ErrConnectionClosed = errors.New("connection closed")
	// ErrSendBufferFull the peer is not draining its socket, the connection gets closed
	ErrSendBufferFull = errors.New("send buffer full")
)

// Socket the subset of a websocket conn the chat needs
type Socket interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Connection one live socket and, once authenticated, its identity
type Connection struct {
	ID string

	socket       Socket
	writeTimeout time.Duration
	send         chan []byte
	done         chan struct{}
	pumpDone     chan struct{}
	state        atomic.Int32

	identityMu sync.RWMutex
	userID     string
	username   string
}

// NewConnection wrap an accepted socket and start its write pump
func NewConnection(socket Socket, writeTimeout time.Duration) *Connection {
	return newConnection(socket, writeTimeout, DefaultSendBuffer)
}

func newConnection(socket Socket, writeTimeout time.Duration, buffer int) *Connection {
	c := &Connection{
		ID:           uuid.New().String(),
		socket:       socket,
		writeTimeout: writeTimeout,
		send:         make(chan []byte, buffer),
		done:         make(chan struct{}),
		pumpDone:     make(chan struct{}),
	}
	go c.writePump()
	return c
}

// State current lifecycle state
func (c *Connection) State() ConnState {
	return ConnState(c.state.Load())
}

// advance move to next unless the connection is already closed
func (c *Connection) advance(next ConnState) bool {
	for {
		cur := c.state.Load()
		if ConnState(cur) == StateClosed {
			return false
		}
		if c.state.CompareAndSwap(cur, int32(next)) {
			return true
		}
	}
}

// UserID authenticated member id, "" before auth
func (c *Connection) UserID() string {
	c.identityMu.RLock()
	defer c.identityMu.RUnlock()
	return c.userID
}

// Username authenticated username
func (c *Connection) Username() string {
	c.identityMu.RLock()
	defer c.identityMu.RUnlock()
	return c.username
}

func (c *Connection) setIdentity(userID, username string) {
	c.identityMu.Lock()
	c.userID, c.username = userID, username
	c.identityMu.Unlock()
}

// Send marshal and write one envelope
func (c *Connection) Send(event domain.Event, data interface{}) error {
	payload, err := json.Marshal(domain.Envelope{Event: event, Data: data})
	if err != nil {
		return err
	}
	return c.write(payload)
}

// SendError write an error event
func (c *Connection) SendError(msg string) error {
	return c.Send(domain.EventError, msg)
}

// write queue payload for the pump without blocking
func (c *Connection) write(payload []byte) error {
	if c.State() == StateClosed {
		return ErrConnectionClosed
	}
	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}
	select {
	case c.send <- payload:
		return nil
	case <-c.done:
		return ErrConnectionClosed
	default:
		// 對方讀太慢, 直接斷線讓 client 走重連
		c.Close()
		return ErrSendBufferFull
	}
}

// writePump sole writer of the socket, a failed write closes the connection
func (c *Connection) writePump() {
	defer close(c.pumpDone)
	for {
		select {
		case payload := <-c.send:
			if c.writeTimeout > 0 {
				_ = c.socket.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			}
			if err := c.socket.WriteMessage(textMessage, payload); err != nil {
				logger.Log.Debug("websocket write failed", zap.String("connID", c.ID), zap.Error(err))
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// Close mark closed and close the socket, reports whether this call closed it
func (c *Connection) Close() bool {
	if ConnState(c.state.Swap(int32(StateClosed))) == StateClosed {
		return false
	}
	close(c.done)
	_ = c.socket.Close()
	return true
}
