package messages

import (
	"context"
	"database/sql"
	"time"
)

const (
	MaxBodyLen     = 1000
	MaxUsernameLen = 50
)

type Repo interface {
	Insert(ctx context.Context, req CreateMessageRequest) (int64, error)
	List(ctx context.Context, limit int) ([]Message, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
}

// Message is the client-facing view of a chat message. File fields come
// from the left join against the files table and stay nil when the message
// has no attachment or the attached file was deleted after the fact.
type Message struct {
	ID        int64     `json:"id"`
	Username  *string   `json:"username"`
	Body      string    `json:"message"`
	Priority  bool      `json:"priority"`
	CreatedAt time.Time `json:"timestamp"`

	FileID   *int64  `json:"file_id"`
	FileName *string `json:"file_name"`
	FilePath *string `json:"file_path"`
	FileSize *int64  `json:"file_size"`
}

type CreateMessageRequest struct {
	Username string `json:"username"`
	Body     string `json:"message"`
	Priority bool   `json:"priority"`
	FileID   *int64 `json:"file_id"`
}

type CreateMessageResponse struct {
	Success   bool  `json:"success"`
	MessageID int64 `json:"message_id"`
}

type ListMessagesResponse struct {
	Success  bool      `json:"success"`
	Messages []Message `json:"messages"`
}

type MessageRow struct {
	ID        int64           `db:"id"`
	Username  sql.NullString  `db:"username"`
	Body      string          `db:"body"`
	Priority  bool            `db:"priority"`
	CreatedAt time.Time       `db:"created_at"`
	File      FileRowNullable `db:"file"`
}

// FileRowNullable carries the joined file columns; every field is null when
// the message either has no file_id or references a deleted file.
type FileRowNullable struct {
	ID          sql.NullInt64  `db:"id"`
	DisplayName sql.NullString `db:"display_name"`
	StoragePath sql.NullString `db:"storage_path"`
	SizeBytes   sql.NullInt64  `db:"size_bytes"`
}

func NewMessageFromRow(row MessageRow) Message {
	m := Message{
		ID:        row.ID,
		Body:      row.Body,
		Priority:  row.Priority,
		CreatedAt: row.CreatedAt,
	}

	if row.Username.Valid {
		m.Username = &row.Username.String
	}

	if row.File.ID.Valid {
		m.FileID = &row.File.ID.Int64
		m.FileName = &row.File.DisplayName.String
		m.FilePath = &row.File.StoragePath.String
		m.FileSize = &row.File.SizeBytes.Int64
	}

	return m
}
