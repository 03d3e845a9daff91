package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pliu/chatty-social/internal/config"
	"github.com/pliu/chatty-social/internal/logger"
	"github.com/pliu/chatty-social/internal/store"
	"go.uber.org/zap"
)

// ErrShuttingDown is returned for sessions that arrive after Shutdown began.
var ErrShuttingDown = errors.New("hub is shutting down")

// Hub routes messages to live clients. Direct channels share one registry;
// each conversation gets its own registry the first time someone joins it.
type Hub struct {
	store    store.Store
	upgrader websocket.Upgrader

	maxMessageSize int64
	rateLimit      config.RateLimitConfig

	direct *Registry

	// mu guards conversations and closed, and orders session admission
	// against Shutdown.
	mu            sync.Mutex
	conversations map[string]*Registry
	closed        bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewHub(s store.Store, cfg config.Config) *Hub {
	cfg = config.Sanitize(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	origins := newOriginPolicy(cfg.AllowedOrigins)

	return &Hub{
		store: s,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     origins.check,
		},
		maxMessageSize: cfg.MaxMessageSize,
		rateLimit:      cfg.RateLimit,
		direct:         NewRegistry(),
		conversations:  make(map[string]*Registry),
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Presence returns the registry of direct channels.
func (h *Hub) Presence() *Registry {
	return h.direct
}

// Conversation returns the registry for conversationID, creating it if needed.
func (h *Hub) Conversation(conversationID string) *Registry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conversationLocked(conversationID)
}

func (h *Hub) conversationLocked(conversationID string) *Registry {
	reg, ok := h.conversations[conversationID]
	if !ok {
		reg = NewRegistry()
		h.conversations[conversationID] = reg
	}
	return reg
}

// SendTo pushes payload to userID's direct channel. Users without a live
// connection are skipped silently.
func (h *Hub) SendTo(userID string, payload []byte) {
	h.deliver(h.direct, userID, payload)
}

// Notify sends a plain-text notification over userID's direct channel.
func (h *Hub) Notify(userID, text string) {
	h.SendTo(userID, []byte(text))
}

// BroadcastToConversation pushes payload to every participant except sender
// that is connected to the conversation's channel.
func (h *Hub) BroadcastToConversation(conversationID string, participants []string, senderID string, payload []byte) {
	reg := h.Conversation(conversationID)
	for _, userID := range participants {
		if userID == senderID {
			continue
		}
		h.deliver(reg, userID, payload)
	}
}

// BroadcastAll pushes payload to every direct channel registered at the
// moment of the call.
func (h *Hub) BroadcastAll(payload []byte) {
	clients := h.direct.Snapshot()
	logger.Log.Debug("broadcasting to all clients", zap.Int("targets", len(clients)))

	for _, c := range clients {
		if !c.enqueue(payload) {
			h.evict(h.direct, c)
		}
	}
}

func (h *Hub) deliver(reg *Registry, userID string, payload []byte) {
	c, ok := reg.Lookup(userID)
	if !ok {
		logger.Log.Debug("recipient offline, dropping message", zap.String("user", userID))
		return
	}
	if !c.enqueue(payload) {
		h.evict(reg, c)
	}
}

// evict drops a client whose send buffer is full or closed. Its own pumps
// notice the close and finish the teardown.
func (h *Hub) evict(reg *Registry, c *Client) {
	if reg.Deregister(c.userID, c) {
		logger.Log.Info("client removed after failed delivery",
			zap.String("user", c.userID),
			zap.String("addr", c.addr))
	}
	c.close()
}

// admit registers c in its registry and starts tracking its goroutines. It
// returns the client c replaced, if any.
func (h *Hub) admit(c *Client) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrShuttingDown
	}
	if c.kind == KindConversation {
		c.registry = h.conversationLocked(c.conversationID)
	} else {
		c.registry = h.direct
	}
	h.wg.Add(1)
	c.state.Store(int32(StateOpen))
	return c.registry.Register(c.userID, c), nil
}

// Shutdown closes every live client and waits for their goroutines to finish,
// up to timeout.
func (h *Hub) Shutdown(timeout time.Duration) error {
	logger.Log.Info("initiating hub shutdown", zap.Strings("online", h.direct.Users()))

	h.mu.Lock()
	h.closed = true
	registries := make([]*Registry, 0, len(h.conversations)+1)
	registries = append(registries, h.direct)
	for _, reg := range h.conversations {
		registries = append(registries, reg)
	}
	h.mu.Unlock()
	h.cancel()

	closed := 0
	for _, reg := range registries {
		for _, c := range reg.Snapshot() {
			c.close()
			closed++
		}
	}
	logger.Log.Info("closed client connections", zap.Int("count", closed))

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Log.Info("hub shutdown completed")
		return nil
	case <-time.After(timeout):
		logger.Log.Warn("hub shutdown timeout reached, some sessions may still be running")
		return context.DeadlineExceeded
	}
}
