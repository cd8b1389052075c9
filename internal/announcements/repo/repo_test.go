package repo

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/emergencybox/emergencybox/internal/announcements"
	"github.com/emergencybox/emergencybox/internal/storage/sqlite"
)

func testDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestRepo_SetActive_SupersedesPrevious(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := testDB(t)
	r := New(db)

	id1, err := r.SetActive(ctx, "Shelter A open")
	req.NoError(err)

	id2, err := r.SetActive(ctx, "Shelter B closed")
	req.NoError(err)
	req.Greater(id2, id1)

	got, err := r.GetActive(ctx)
	req.NoError(err)
	req.NotNil(got)
	req.Equal(id2, got.ID)
	req.Equal("Shelter B closed", got.Message)

	// exactly one active row, superseded history kept
	var active, total int
	req.NoError(db.Get(&active, `SELECT COUNT(*) FROM announcements WHERE active = 1`))
	req.NoError(db.Get(&total, `SELECT COUNT(*) FROM announcements`))
	req.Equal(1, active)
	req.Equal(2, total)
}

func TestRepo_SetActive_Validation(t *testing.T) {
	ctx := context.Background()
	r := New(testDB(t))

	_, err := r.SetActive(ctx, "   ")
	require.ErrorIs(t, err, announcements.ErrEmptyMessage)

	_, err = r.SetActive(ctx, strings.Repeat("a", 501))
	require.ErrorIs(t, err, announcements.ErrMessageTooLong)

	_, err = r.SetActive(ctx, strings.Repeat("a", 500))
	require.NoError(t, err)
}

func TestRepo_GetActive_None(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	r := New(testDB(t))

	got, err := r.GetActive(ctx)
	req.NoError(err)
	req.Nil(got)
}

func TestRepo_Clear(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := testDB(t)
	r := New(db)

	_, err := r.SetActive(ctx, "road closed")
	req.NoError(err)

	req.NoError(r.Clear(ctx))

	got, err := r.GetActive(ctx)
	req.NoError(err)
	req.Nil(got)

	// clearing with nothing active is fine
	req.NoError(r.Clear(ctx))

	// rows are deactivated, never deleted
	var total int
	req.NoError(db.Get(&total, `SELECT COUNT(*) FROM announcements`))
	req.Equal(1, total)
}
