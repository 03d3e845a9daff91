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

// CreateConversation stores conv with its participant list frozen. Duplicate
// participants are collapsed; at least two distinct users are required.
func (s *SQLStore) CreateConversation(ctx context.Context, conv *models.Conversation) error {
	participants := uniqueIDs(conv.Participants)
	if len(participants) < 2 {
		return fmt.Errorf("conversation needs at least 2 participants, got %d: %w", len(participants), store.ErrInvalid)
	}
	convID := conv.ID
	if convID == "" {
		convID = uuid.NewString()
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		taken, err := s.exists(ctx, tx, "SELECT 1 FROM conversations WHERE id = ?", convID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("conversation %q: %w", convID, store.ErrConflict)
		}

		for _, id := range participants {
			found, err := s.exists(ctx, tx, "SELECT 1 FROM users WHERE id = ?", id)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("participant %q: %w", id, store.ErrNotFound)
			}
		}

		if _, err := tx.ExecContext(ctx, s.rebind("INSERT INTO conversations (id) VALUES (?)"), convID); err != nil {
			return err
		}
		insert := s.rebind("INSERT INTO participants (conversation_id, user_id, position) VALUES (?, ?, ?)")
		for i, id := range participants {
			if _, err := tx.ExecContext(ctx, insert, convID, id, i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	conv.ID = convID
	conv.Participants = participants
	if conv.Messages == nil {
		conv.Messages = []models.Message{}
	}
	return nil
}

func (s *SQLStore) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	participants, err := s.participants(ctx, id)
	if err != nil {
		return nil, err
	}
	messages, err := s.ListMessages(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.Conversation{ID: id, Participants: participants, Messages: messages}, nil
}

func (s *SQLStore) participants(ctx context.Context, id string) ([]string, error) {
	found, err := s.exists(ctx, s.db, "SELECT 1 FROM conversations WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("conversation %q: %w", id, store.ErrNotFound)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind("SELECT user_id FROM participants WHERE conversation_id = ? ORDER BY position"), id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		participants = append(participants, userID)
	}
	return participants, rows.Err()
}

func (s *SQLStore) AppendMessage(ctx context.Context, conversationID, senderID, content string) (*models.Message, error) {
	msg := &models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		found, err := s.exists(ctx, tx, "SELECT 1 FROM conversations WHERE id = ?", conversationID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("conversation %q: %w", conversationID, store.ErrNotFound)
		}

		member, err := s.exists(ctx, tx, "SELECT 1 FROM participants WHERE conversation_id = ? AND user_id = ?", conversationID, senderID)
		if err != nil {
			return err
		}
		if !member {
			return fmt.Errorf("user %q in conversation %q: %w", senderID, conversationID, store.ErrNotParticipant)
		}

		query := s.rebind("INSERT INTO messages (conversation_id, sender_id, content, created_at) VALUES (?, ?, ?, ?)")
		_, err = tx.ExecContext(ctx, query, msg.ConversationID, msg.SenderID, msg.Content, msg.CreatedAt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *SQLStore) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	found, err := s.exists(ctx, s.db, "SELECT 1 FROM conversations WHERE id = ?", conversationID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("conversation %q: %w", conversationID, store.ErrNotFound)
	}

	query := s.rebind(`
		SELECT conversation_id, sender_id, content, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY id ASC
	`)
	rows, err := s.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ConversationID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
