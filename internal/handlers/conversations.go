package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pliu/chatty-social/internal/models"
	"github.com/pliu/chatty-social/internal/store"
)

type ConversationHandler struct {
	Store store.Store
}

type CreateConversationRequest struct {
	ID           string   `json:"id"`
	Participants []string `json:"participants"`
}

type PostMessageRequest struct {
	SenderID string `json:"sender_id"`
	Content  string `json:"content"`
}

func (h *ConversationHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	var req CreateConversationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	conv := &models.Conversation{ID: req.ID, Participants: req.Participants}
	if err := h.Store.CreateConversation(r.Context(), conv); err != nil {
		writeStoreError(w, r, err, "User not found")
		return
	}

	writeJSON(w, http.StatusCreated, conv)
}

func (h *ConversationHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := h.Store.GetConversation(r.Context(), mux.Vars(r)["conversation_id"])
	if err != nil {
		writeStoreError(w, r, err, "Conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// PostMessage appends a message without pushing it to live sessions; clients
// that want fan-out use the conversation channel.
func (h *ConversationHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req PostMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.Store.AppendMessage(r.Context(), mux.Vars(r)["conversation_id"], req.SenderID, req.Content)
	if err != nil {
		writeStoreError(w, r, err, "Conversation not found")
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *ConversationHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.Store.ListMessages(r.Context(), mux.Vars(r)["conversation_id"])
	if err != nil {
		writeStoreError(w, r, err, "Conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, messages)
}
