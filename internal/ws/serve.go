package ws

import (
	"errors"
	"net/http"

	"github.com/pliu/chatty-social/internal/logger"
	"github.com/pliu/chatty-social/internal/store"
	"go.uber.org/zap"
)

// ServeDirect upgrades r into userID's direct channel and blocks until the
// session ends.
func ServeDirect(hub *Hub, w http.ResponseWriter, r *http.Request, userID string) {
	if !hub.userKnown(w, r, userID) {
		return
	}

	conn, err := hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Info("websocket upgrade failed", zap.String("user", userID), zap.Error(err))
		return
	}

	newClient(hub, conn, r.RemoteAddr, KindDirect, userID).run()
}

// ServeConversation upgrades r into userID's channel for conversationID and
// blocks until the session ends. Users outside the conversation may connect,
// but everything they send is dropped.
func ServeConversation(hub *Hub, w http.ResponseWriter, r *http.Request, conversationID, userID string) {
	if !hub.userKnown(w, r, userID) {
		return
	}

	conv, err := hub.store.GetConversation(r.Context(), conversationID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Conversation not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Log.Error("loading conversation", zap.String("conversation", conversationID), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	conn, err := hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Info("websocket upgrade failed", zap.String("user", userID), zap.Error(err))
		return
	}

	if !conv.IsParticipant(userID) {
		logger.Log.Debug("non-participant opened conversation channel",
			zap.String("user", userID),
			zap.String("conversation", conv.ID))
	}

	c := newClient(hub, conn, r.RemoteAddr, KindConversation, userID)
	c.conversationID = conv.ID
	c.participants = conv.Participants
	c.run()
}

func (h *Hub) userKnown(w http.ResponseWriter, r *http.Request, userID string) bool {
	ok, err := h.store.UserExists(r.Context(), userID)
	if err != nil {
		logger.Log.Error("checking user", zap.String("user", userID), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return false
	}
	if !ok {
		http.Error(w, "User not found", http.StatusNotFound)
		return false
	}
	return true
}
