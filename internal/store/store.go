package store

import (
	"context"

	"github.com/pliu/chatty-social/internal/models"
)

//go:generate mockgen -destination=mock/store.go -package=mock github.com/pliu/chatty-social/internal/store Store

type Store interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	UserExists(ctx context.Context, id string) (bool, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	// Social graph operations
	FriendsOf(ctx context.Context, userID string) ([]string, error)
	AddFriendEdge(ctx context.Context, userID, friendID string) error

	// Friend request operations
	CreateFriendRequest(ctx context.Context, from, to string) (*models.FriendRequest, error)
	GetFriendRequest(ctx context.Context, id string) (*models.FriendRequest, error)
	DeleteFriendRequest(ctx context.Context, id string) error
	ListFriendRequests(ctx context.Context, to string) ([]models.FriendRequest, error)
	// AcceptFriendRequest adds both friend edges and consumes the request as
	// one unit. Only the request's recipient may accept it.
	AcceptFriendRequest(ctx context.Context, userID, requestID string) (*models.FriendRequest, error)

	// Conversation operations
	CreateConversation(ctx context.Context, conv *models.Conversation) error
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	// AppendMessage checks membership and appends in the same critical section.
	AppendMessage(ctx context.Context, conversationID, senderID, content string) (*models.Message, error)
	ListMessages(ctx context.Context, conversationID string) ([]models.Message, error)

	Close() error
}
