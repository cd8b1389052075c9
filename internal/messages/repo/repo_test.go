package repo

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/emergencybox/emergencybox/internal/messages"
	"github.com/emergencybox/emergencybox/internal/storage/sqlite"
)

func testDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestRepo_InsertAndList(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	r := New(testDB(t))

	id1, err := r.Insert(ctx, messages.CreateMessageRequest{
		Username: "ops",
		Body:     "evacuate now",
		Priority: true,
	})
	req.NoError(err)
	req.Positive(id1)

	id2, err := r.Insert(ctx, messages.CreateMessageRequest{
		Body: "roads are clear again",
	})
	req.NoError(err)
	req.Greater(id2, id1)

	got, err := r.List(ctx, 100)
	req.NoError(err)
	req.Len(got, 2)

	// chronological: oldest first
	req.Equal(id1, got[0].ID)
	req.Equal("evacuate now", got[0].Body)
	req.True(got[0].Priority)
	req.NotNil(got[0].Username)
	req.Equal("ops", *got[0].Username)

	req.Equal(id2, got[1].ID)
	req.False(got[1].Priority)
	req.Nil(got[1].Username)
	req.Nil(got[1].FileID)
}

func TestRepo_Insert_Validation(t *testing.T) {
	ctx := context.Background()
	r := New(testDB(t))

	tests := []struct {
		name    string
		req     messages.CreateMessageRequest
		wantErr error
	}{
		{
			name:    "empty body",
			req:     messages.CreateMessageRequest{Body: ""},
			wantErr: messages.ErrEmptyBody,
		},
		{
			name:    "whitespace body",
			req:     messages.CreateMessageRequest{Body: "   \t "},
			wantErr: messages.ErrEmptyBody,
		},
		{
			name:    "body too long",
			req:     messages.CreateMessageRequest{Body: strings.Repeat("a", 1001)},
			wantErr: messages.ErrBodyTooLong,
		},
		{
			name:    "username too long",
			req:     messages.CreateMessageRequest{Username: strings.Repeat("u", 51), Body: "ok"},
			wantErr: messages.ErrUsernameTooLong,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Insert(ctx, tt.req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	// bounds are inclusive
	_, err := r.Insert(ctx, messages.CreateMessageRequest{Body: strings.Repeat("a", 1000)})
	require.NoError(t, err)
}

func TestRepo_List_JoinsFile(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := testDB(t)
	r := New(db)

	res, err := db.Exec(
		`INSERT INTO files (display_name, storage_path, category, size_bytes) VALUES (?, ?, ?, ?)`,
		"map.png", "general/map.png", "general", int64(1200),
	)
	req.NoError(err)
	fileID, err := res.LastInsertId()
	req.NoError(err)

	_, err = r.Insert(ctx, messages.CreateMessageRequest{Body: "see attached map", FileID: &fileID})
	req.NoError(err)

	got, err := r.List(ctx, 100)
	req.NoError(err)
	req.Len(got, 1)
	req.NotNil(got[0].FileID)
	req.Equal(fileID, *got[0].FileID)
	req.Equal("map.png", *got[0].FileName)
	req.Equal("general/map.png", *got[0].FilePath)
	req.Equal(int64(1200), *got[0].FileSize)
}

func TestRepo_List_ToleratesDeletedFile(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := testDB(t)
	r := New(db)

	missing := int64(9999)
	id, err := r.Insert(ctx, messages.CreateMessageRequest{Body: "attachment gone", FileID: &missing})
	req.NoError(err)

	got, err := r.List(ctx, 100)
	req.NoError(err)
	req.Len(got, 1)
	req.Equal(id, got[0].ID)
	req.Nil(got[0].FileID)
	req.Nil(got[0].FileName)
}

func TestRepo_List_Limit(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	r := New(testDB(t))

	var ids []int64
	for i := 0; i < 5; i++ {
		id, err := r.Insert(ctx, messages.CreateMessageRequest{Body: "msg"})
		req.NoError(err)
		ids = append(ids, id)
	}

	got, err := r.List(ctx, 3)
	req.NoError(err)
	req.Len(got, 3)

	// the most recent three, oldest of them first
	req.Equal(ids[2], got[0].ID)
	req.Equal(ids[4], got[2].ID)
}

func TestRepo_Delete_Idempotent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	r := New(testDB(t))

	id, err := r.Insert(ctx, messages.CreateMessageRequest{Body: "to be deleted"})
	req.NoError(err)

	req.NoError(r.Delete(ctx, id))
	req.NoError(r.Delete(ctx, id))
	req.NoError(r.Delete(ctx, 424242))

	got, err := r.List(ctx, 100)
	req.NoError(err)
	req.Empty(got)
}

func TestRepo_DeleteAll(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	r := New(testDB(t))

	for i := 0; i < 3; i++ {
		_, err := r.Insert(ctx, messages.CreateMessageRequest{Body: "msg"})
		req.NoError(err)
	}

	req.NoError(r.DeleteAll(ctx))
	req.NoError(r.DeleteAll(ctx))

	got, err := r.List(ctx, 100)
	req.NoError(err)
	req.Empty(got)
}
