package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pliu/chatty-social/internal/logger"
	"github.com/pliu/chatty-social/internal/store"
	"go.uber.org/zap"
)

// Notifier pushes a text notification to a user's direct channel. Offline
// users are skipped.
type Notifier interface {
	Notify(userID, text string)
}

type FriendHandler struct {
	Store    store.Store
	Notifier Notifier
}

type SendFriendRequestRequest struct {
	To string `json:"to"`
}

// SendFriendRequest records a request from the path user to req.To and tells
// the recipient about it.
func (h *FriendHandler) SendFriendRequest(w http.ResponseWriter, r *http.Request) {
	from := mux.Vars(r)["user_id"]

	var req SendFriendRequestRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fr, err := h.Store.CreateFriendRequest(r.Context(), from, req.To)
	if err != nil {
		writeStoreError(w, r, err, "User not found")
		return
	}

	logger.Log.Info("friend request sent",
		zap.String("id", fr.ID),
		zap.String("from", fr.From),
		zap.String("to", fr.To))
	h.Notifier.Notify(fr.To, fmt.Sprintf("Friend request from %s", fr.From))

	writeJSON(w, http.StatusCreated, fr)
}

func (h *FriendHandler) ListFriendRequests(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	ok, err := h.Store.UserExists(r.Context(), userID)
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	if !ok {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	requests, err := h.Store.ListFriendRequests(r.Context(), userID)
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

// AcceptFriendRequest lets the recipient in the path accept a pending request.
// Both users become friends and the sender is notified.
func (h *FriendHandler) AcceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID := vars["user_id"]

	fr, err := h.Store.AcceptFriendRequest(r.Context(), userID, vars["request_id"])
	if err != nil {
		writeStoreError(w, r, err, "Friend request not found")
		return
	}

	logger.Log.Info("friend request accepted",
		zap.String("id", fr.ID),
		zap.String("from", fr.From),
		zap.String("to", fr.To))
	h.Notifier.Notify(fr.From, fmt.Sprintf("Friend request accepted by %s", userID))

	writeJSON(w, http.StatusOK, fr)
}
