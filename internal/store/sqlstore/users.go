package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pliu/chatty-social/internal/models"
	"github.com/pliu/chatty-social/internal/store"
)

func (s *SQLStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return fmt.Errorf("user id is required: %w", store.ErrInvalid)
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		taken, err := s.exists(ctx, tx, "SELECT 1 FROM users WHERE id = ?", user.ID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("user %q: %w", user.ID, store.ErrConflict)
		}
		_, err = tx.ExecContext(ctx, s.rebind("INSERT INTO users (id, name) VALUES (?, ?)"), user.ID, user.Name)
		return err
	})
}

func (s *SQLStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx, s.rebind("SELECT id, name FROM users WHERE id = ?"), id).Scan(&user.ID, &user.Name)
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return &user, nil
}

func (s *SQLStore) UserExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, s.db, "SELECT 1 FROM users WHERE id = ?", id)
}

func (s *SQLStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Name); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
