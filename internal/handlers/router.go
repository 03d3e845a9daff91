package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pliu/chatty-social/internal/middleware"
	"github.com/pliu/chatty-social/internal/store"
	"github.com/pliu/chatty-social/internal/ws"
)

func NewRouter(s store.Store, hub *ws.Hub) *mux.Router {
	userHandler := &UserHandler{Store: s}
	friendHandler := &FriendHandler{Store: s, Notifier: hub}
	conversationHandler := &ConversationHandler{Store: s}

	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware)

	r.HandleFunc("/health", Health).Methods("GET")

	// API Endpoints
	r.HandleFunc("/users", userHandler.CreateUser).Methods("POST")
	r.HandleFunc("/users", userHandler.ListUsers).Methods("GET")
	r.HandleFunc("/users/{user_id}", userHandler.GetUser).Methods("GET")
	r.HandleFunc("/users/{user_id}/friends", userHandler.GetFriends).Methods("GET")
	r.HandleFunc("/users/{user_id}/friend-requests", friendHandler.SendFriendRequest).Methods("POST")
	r.HandleFunc("/users/{user_id}/friend-requests", friendHandler.ListFriendRequests).Methods("GET")
	r.HandleFunc("/users/{user_id}/friend-requests/{request_id}/accept", friendHandler.AcceptFriendRequest).Methods("POST")
	r.HandleFunc("/conversations", conversationHandler.CreateConversation).Methods("POST")
	r.HandleFunc("/conversations/{conversation_id}", conversationHandler.GetConversation).Methods("GET")
	r.HandleFunc("/conversations/{conversation_id}/messages", conversationHandler.PostMessage).Methods("POST")
	r.HandleFunc("/conversations/{conversation_id}/messages", conversationHandler.GetMessages).Methods("GET")

	// WebSocket Endpoints
	r.HandleFunc("/ws/conversations/{conversation_id}/{user_id}", func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		ws.ServeConversation(hub, w, r, vars["conversation_id"], vars["user_id"])
	}).Methods("GET")
	r.HandleFunc("/ws/{user_id}", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeDirect(hub, w, r, mux.Vars(r)["user_id"])
	}).Methods("GET")

	return r
}

func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
