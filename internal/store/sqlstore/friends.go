package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pliu/chatty-social/internal/models"
	"github.com/pliu/chatty-social/internal/store"
)

const insertFriendEdge = "INSERT INTO friends (user_id, friend_id) VALUES (?, ?) ON CONFLICT DO NOTHING"

func (s *SQLStore) FriendsOf(ctx context.Context, userID string) ([]string, error) {
	query := s.rebind("SELECT friend_id FROM friends WHERE user_id = ? ORDER BY created_at, friend_id")
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	friends := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		friends = append(friends, id)
	}
	return friends, rows.Err()
}

func (s *SQLStore) AddFriendEdge(ctx context.Context, userID, friendID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, s.rebind(insertFriendEdge), userID, friendID)
	return err
}

func (s *SQLStore) CreateFriendRequest(ctx context.Context, from, to string) (*models.FriendRequest, error) {
	req := &models.FriendRequest{
		ID:        uuid.NewString(),
		From:      from,
		To:        to,
		CreatedAt: time.Now().UTC(),
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, id := range []string{from, to} {
			found, err := s.exists(ctx, tx, "SELECT 1 FROM users WHERE id = ?", id)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("user %q: %w", id, store.ErrNotFound)
			}
		}
		query := s.rebind("INSERT INTO friend_requests (id, from_user, to_user, created_at) VALUES (?, ?, ?, ?)")
		_, err := tx.ExecContext(ctx, query, req.ID, req.From, req.To, req.CreatedAt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (s *SQLStore) GetFriendRequest(ctx context.Context, id string) (*models.FriendRequest, error) {
	return s.getFriendRequest(ctx, s.db, id)
}

func (s *SQLStore) getFriendRequest(ctx context.Context, q queryRower, id string) (*models.FriendRequest, error) {
	var req models.FriendRequest
	query := s.rebind("SELECT id, from_user, to_user, created_at FROM friend_requests WHERE id = ?")
	err := q.QueryRowContext(ctx, query, id).Scan(&req.ID, &req.From, &req.To, &req.CreatedAt)
	if err != nil {
		return nil, notFound(err, "friend request", id)
	}
	return &req, nil
}

func (s *SQLStore) DeleteFriendRequest(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM friend_requests WHERE id = ?"), id)
	return err
}

func (s *SQLStore) ListFriendRequests(ctx context.Context, to string) ([]models.FriendRequest, error) {
	query := s.rebind("SELECT id, from_user, to_user, created_at FROM friend_requests WHERE to_user = ? ORDER BY created_at, id")
	rows, err := s.db.QueryContext(ctx, query, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []models.FriendRequest{}
	for rows.Next() {
		var req models.FriendRequest
		if err := rows.Scan(&req.ID, &req.From, &req.To, &req.CreatedAt); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (s *SQLStore) AcceptFriendRequest(ctx context.Context, userID, requestID string) (*models.FriendRequest, error) {
	var accepted *models.FriendRequest
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		req, err := s.getFriendRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if req.To != userID {
			return fmt.Errorf("friend request %q is addressed to %q: %w", requestID, req.To, store.ErrForbidden)
		}

		edge := s.rebind(insertFriendEdge)
		if _, err := tx.ExecContext(ctx, edge, req.From, req.To); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, edge, req.To, req.From); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, s.rebind("DELETE FROM friend_requests WHERE id = ?"), req.ID); err != nil {
			return err
		}
		accepted = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accepted, nil
}
