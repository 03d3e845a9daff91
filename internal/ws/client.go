package ws

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pliu/chatty-social/internal/logger"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	sendBufferSize = 256
)

// Kind selects how inbound frames on a session are handled.
type Kind int

const (
	// KindDirect echoes frames back to the sender and carries notifications.
	KindDirect Kind = iota
	// KindConversation appends frames to a conversation and fans them out.
	KindConversation
)

func (k Kind) String() string {
	if k == KindConversation {
		return "conversation"
	}
	return "direct"
}

// State is the lifecycle stage of a session.
type State int32

const (
	StatePending State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateOpen:
		return "open"
	default:
		return "closed"
	}
}

// Client is one WebSocket session bound to a user and, for conversation
// channels, to one conversation.
type Client struct {
	hub            *Hub
	conn           *websocket.Conn
	addr           string
	kind           Kind
	userID         string
	conversationID string
	participants   []string
	registry       *Registry

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	endOnce   sync.Once
	state     atomic.Int32

	limiter *rateLimiter
}

func newClient(hub *Hub, conn *websocket.Conn, addr string, kind Kind, userID string) *Client {
	if conn != nil {
		conn.SetReadLimit(hub.maxMessageSize)
	}
	return &Client{
		hub:     hub,
		conn:    conn,
		addr:    addr,
		kind:    kind,
		userID:  userID,
		send:    make(chan []byte, sendBufferSize),
		done:    make(chan struct{}),
		limiter: newRateLimiter(hub.rateLimit.Burst, hub.rateLimit.RefillInterval),
	}
}

func (c *Client) UserID() string {
	return c.userID
}

func (c *Client) State() State {
	return State(c.state.Load())
}

// enqueue hands payload to the write pump without blocking. It reports false
// when the client is closed or its buffer is full.
func (c *Client) enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- payload:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// close signals both pumps to stop. The send channel is never closed, so
// concurrent enqueue calls stay safe.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// run drives the session from Open to Closed. It blocks until the connection
// is gone.
func (c *Client) run() {
	superseded, err := c.hub.admit(c)
	if err != nil {
		logger.Log.Info("rejecting session", zap.String("user", c.userID), zap.Error(err))
		c.state.Store(int32(StateClosed))
		c.closeConn()
		return
	}
	defer c.hub.wg.Done()

	if superseded != nil {
		logger.Log.Info("replacing existing session",
			zap.String("user", c.userID),
			zap.String("kind", c.kind.String()),
			zap.String("old_addr", superseded.addr))
		superseded.close()
	}
	logger.Log.Info("client connected",
		zap.String("user", c.userID),
		zap.String("kind", c.kind.String()),
		zap.String("conversation", c.conversationID),
		zap.String("addr", c.addr))

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writePump()
	}()

	c.readPump()
	<-writerDone
}

// end performs the Open -> Closed transition exactly once.
func (c *Client) end() {
	c.endOnce.Do(func() {
		c.state.Store(int32(StateClosed))
		if c.registry != nil {
			c.registry.Deregister(c.userID, c)
		}
		c.close()
		logger.Log.Info("client disconnected",
			zap.String("user", c.userID),
			zap.String("kind", c.kind.String()),
			zap.String("addr", c.addr))
	})
}

func (c *Client) setupReadConnection() {
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logger.Log.Debug("error setting initial read deadline", zap.String("addr", c.addr), zap.Error(err))
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
}

func (c *Client) readPump() {
	defer func() {
		c.end()
		c.closeConn()
	}()

	c.setupReadConnection()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadError(err)
			return
		}

		if !c.limiter.allow() {
			logger.Log.Debug("rate limit exceeded, discarding frame",
				zap.String("user", c.userID),
				zap.Int("burst", c.hub.rateLimit.Burst))
			continue
		}

		c.handleFrame(string(raw))
	}
}

func (c *Client) handleFrame(text string) {
	switch c.kind {
	case KindDirect:
		c.hub.SendTo(c.userID, []byte(fmt.Sprintf("Message from %s: %s", c.userID, text)))

	case KindConversation:
		if _, err := c.hub.store.AppendMessage(c.hub.ctx, c.conversationID, c.userID, text); err != nil {
			// Rejected frames are dropped without telling the sender.
			logger.Log.Debug("dropping conversation frame",
				zap.String("user", c.userID),
				zap.String("conversation", c.conversationID),
				zap.Error(err))
			return
		}
		payload := []byte(fmt.Sprintf("%s: %s", c.userID, text))
		c.hub.BroadcastToConversation(c.conversationID, c.participants, c.userID, payload)
	}
}

func (c *Client) logReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		logger.Log.Info("frame exceeded maximum size",
			zap.String("addr", c.addr),
			zap.Int64("max", c.hub.maxMessageSize))
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived):
		logger.Log.Debug("client closed connection", zap.String("addr", c.addr), zap.Error(err))
	case errors.Is(err, io.EOF) || isExpectedCloseError(err):
		logger.Log.Debug("connection closed", zap.String("addr", c.addr), zap.Error(err))
	default:
		logger.Log.Warn("websocket read error", zap.String("addr", c.addr), zap.Error(err))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConn()
	}()

	for {
		select {
		case msg := <-c.send:
			if !c.write(websocket.TextMessage, msg) {
				return
			}
		case <-ticker.C:
			if !c.write(websocket.PingMessage, nil) {
				return
			}
		case <-c.done:
			c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Client) write(messageType int, data []byte) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		logger.Log.Debug("error setting write deadline", zap.String("addr", c.addr), zap.Error(err))
		return false
	}
	if err := c.conn.WriteMessage(messageType, data); err != nil {
		if !isExpectedCloseError(err) {
			logger.Log.Info("websocket write error", zap.String("addr", c.addr), zap.Error(err))
		}
		return false
	}
	return true
}

func (c *Client) closeConn() {
	if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
		logger.Log.Debug("error closing connection", zap.String("addr", c.addr), zap.Error(err))
	}
}
