package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLiteCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "plano.db")

	db, err := NewSQLite(path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)")
	require.NoError(t, err)
	_, err = db.Exec(db.Rebind("INSERT INTO notes (id, body) VALUES (?, ?)"), 1, "x")
	require.NoError(t, err)

	var body string
	require.NoError(t, db.Get(&body, db.Rebind("SELECT body FROM notes WHERE id = ?"), 1))
	assert.Equal(t, "x", body)
	assert.FileExists(t, path)
}
