package app

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"time"

	"community_chat_service/internal/chat/domain"
	errprocess "community_chat_service/pkg/err"
	"community_chat_service/pkg/logger"
	"community_chat_service/pkg/metrics"
	"community_chat_service/pkg/token"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// WSConn server side websocket, satisfied by gofiber and gorilla conns
type WSConn interface {
	Socket
	ReadMessage() (messageType int, p []byte, err error)
	SetReadDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
	WriteControl(messageType int, data []byte, deadline time.Time) error
	RemoteAddr() net.Addr
}

// WebsocketSettings keepalive and limits of server sockets
type WebsocketSettings struct {
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	MaxMessageSize int64
}

// ChatWebsocketHandler authenticates sockets and keeps the registry in sync
type ChatWebsocketHandler struct {
	registry *Registry
	tokens   token.Parser
	members  MemberResolver
	metrics  *metrics.Metrics
	settings WebsocketSettings
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(
	registry *Registry,
	tokens token.Parser,
	members MemberResolver,
	m *metrics.Metrics,
	settings WebsocketSettings,
) *ChatWebsocketHandler {
	if settings.PingInterval <= 0 {
		settings.PingInterval = 30 * time.Second
	}
	return &ChatWebsocketHandler{
		registry: registry,
		tokens:   tokens,
		members:  members,
		metrics:  m,
		settings: settings,
	}
}

// HandleConnection 是 WebSocket 連線的進入點, returns when the socket closes
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn WSConn) {
	c := NewConnection(conn, h.settings.WriteTimeout)
	if h.metrics != nil {
		h.metrics.ConnectionsTotal.Inc()
	}
	c.advance(StateAuthenticating)
	logger.Log.Info("websocket connected", zap.String("connID", c.ID), zap.String("remote", remoteAddr(conn)))

	ctxClose, cancel := context.WithCancel(ctx)
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("websocket handler panic", zap.String("connID", c.ID), zap.Any("panic", r))
		}
		cancel()
		h.registry.Remove(c)
		c.Close()
		// conn 在 handler 返回後會被回收, 等 write pump 結束
		<-c.pumpDone
		logger.Log.Info("websocket closed",
			zap.String("connID", c.ID),
			zap.String("userID", c.UserID()),
			zap.Int("clients", h.registry.Len()))
	}()

	if h.settings.MaxMessageSize > 0 {
		conn.SetReadLimit(h.settings.MaxMessageSize)
	}
	readWait := h.settings.PingInterval * 2
	_ = conn.SetReadDeadline(time.Now().Add(readWait))

	//server發出ping之後client連線正常會回pong
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readWait))
	})

	// 定期發送 Ping
	go func() {
		ticker := time.NewTicker(h.settings.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)); err != nil {
					logger.Log.Debug("ping failed", zap.String("connID", c.ID), zap.Error(err))
					return
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Debug("connection closed", zap.String("connID", c.ID), zap.Error(err))
			} else {
				//直接斷線 1006
				logger.Log.Warn("websocket read error", zap.String("connID", c.ID), zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readWait))

		if mt != websocket.TextMessage {
			_ = c.SendError("unsupported message type")
			continue
		}
		h.handleFrame(ctxClose, c, message)
	}
}

func (h *ChatWebsocketHandler) handleFrame(ctx context.Context, c *Connection, message []byte) {
	var frame domain.ClientFrame
	if err := json.Unmarshal(message, &frame); err != nil {
		logger.Log.Debug("invalid frame", zap.String("connID", c.ID), zap.Error(err))
		_ = c.SendError("Invalid message format")
		return
	}

	switch frame.Event {
	case domain.EventAuth:
		h.authenticate(ctx, c, frame.StringArg(0))
	default:
		if c.State() != StateAuthenticated {
			_ = c.SendError(domain.ErrNotAuthenticated)
			return
		}
		logger.Log.Debug("ignored client event", zap.String("connID", c.ID), zap.String("event", string(frame.Event)))
	}
}

// authenticate verify the credential, on failure the socket stays open and unregistered
func (h *ChatWebsocketHandler) authenticate(ctx context.Context, c *Connection, tokenStr string) {
	fail := func(reason string, err error) {
		h.recordAuth("failure")
		logger.Log.Info("websocket auth failed", zap.String("connID", c.ID), zap.String("reason", reason), zap.Error(err))
		_ = c.SendError(reason)
	}

	if tokenStr == "" {
		fail(domain.ErrNoToken, nil)
		return
	}
	claims, err := h.tokens.ParseJWT(tokenStr)
	if err != nil {
		fail(domain.ErrInvalidToken, err)
		return
	}
	member, err := h.members.Resolve(ctx, claims.MemberID)
	if err != nil {
		if errprocess.Is(err, errprocess.KindNotFound) {
			fail(domain.ErrUserNotFound, err)
		} else {
			fail(domain.ErrInvalidToken, err)
		}
		return
	}

	c.setIdentity(member.MemberID, member.Username)
	if !c.advance(StateAuthenticated) {
		return
	}
	h.registry.Insert(c)
	h.recordAuth("success")
	logger.Log.Info("websocket authenticated",
		zap.String("connID", c.ID),
		zap.String("userID", member.MemberID),
		zap.Int("clients", h.registry.Len()))

	if err := c.Send(domain.EventAuthenticated, domain.Authenticated{UserID: member.MemberID, Username: member.Username}); err != nil && !errors.Is(err, ErrConnectionClosed) {
		logger.Log.Warn("send authenticated failed", zap.String("connID", c.ID), zap.Error(err))
	}
}

func (h *ChatWebsocketHandler) recordAuth(result string) {
	if h.metrics != nil {
		h.metrics.AuthAttempts.WithLabelValues(result).Inc()
	}
}

func remoteAddr(conn WSConn) string {
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
