package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pliu/chatty-social/internal/models"
	"github.com/pliu/chatty-social/internal/store"
)

type UserHandler struct {
	Store store.Store
}

type CreateUserRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user := &models.User{ID: req.ID, Name: req.Name}
	if err := h.Store.CreateUser(r.Context(), user); err != nil {
		writeStoreError(w, r, err, "")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.Store.GetUser(r.Context(), mux.Vars(r)["user_id"])
	if err != nil {
		writeStoreError(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// GetFriends returns the ids of every friend of the user in the path.
func (h *UserHandler) GetFriends(w http.ResponseWriter, r *http.Request) {
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

	friends, err := h.Store.FriendsOf(r.Context(), userID)
	if err != nil {
		writeStoreError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, friends)
}
