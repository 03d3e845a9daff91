package sqlstore

import (
	"context"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pliu/chatty-social/internal/models"
	"github.com/stretchr/testify/require"
)

var testStore *SQLStore

func SetupTestDB(t *testing.T) {
	var err error
	testStore, err = New("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
}

func TeardownTestDB() {
	testStore.db.Close()
}

func createUsers(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, testStore.CreateUser(context.Background(), &models.User{ID: id, Name: "User " + id}))
	}
}

func TestRebind(t *testing.T) {
	sqlite := &SQLStore{driverName: "sqlite3"}
	pg := &SQLStore{driverName: "postgres"}

	query := "SELECT 1 FROM participants WHERE conversation_id = ? AND user_id = ?"
	require.Equal(t, query, sqlite.rebind(query))
	require.Equal(t, "SELECT 1 FROM participants WHERE conversation_id = $1 AND user_id = $2", pg.rebind(query))
}
