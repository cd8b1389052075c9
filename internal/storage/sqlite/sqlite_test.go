package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpen_AppliesSchema(t *testing.T) {
	req := require.New(t)

	path := filepath.Join(t.TempDir(), "nested", "dir", "box.db")

	db, err := Open(path)
	req.NoError(err)
	defer db.Close()

	var tables []string
	req.NoError(db.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`))
	req.Contains(tables, "messages")
	req.Contains(tables, "files")
	req.Contains(tables, "announcements")
}

func TestOpen_Reopen(t *testing.T) {
	req := require.New(t)

	path := filepath.Join(t.TempDir(), "box.db")

	db, err := Open(path)
	req.NoError(err)

	_, err = db.Exec(`INSERT INTO messages (body) VALUES ('survives reopen')`)
	req.NoError(err)
	req.NoError(db.Close())

	// migrations are a no-op on an up-to-date store
	db, err = Open(path)
	req.NoError(err)
	defer db.Close()

	var count int
	req.NoError(db.Get(&count, `SELECT COUNT(*) FROM messages`))
	req.Equal(1, count)
}
