package repo

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"

	"github.com/emergencybox/emergencybox/internal/messages"
)

type Repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repo {
	return &Repo{db: db}
}

// Insert validates the request and stores a new message. Messages are
// append-only: nothing ever updates a row after this.
func (r *Repo) Insert(ctx context.Context, req messages.CreateMessageRequest) (int64, error) {
	const op = "messages.repo.Insert"

	body := strings.TrimSpace(req.Body)
	if body == "" {
		return 0, messages.ErrEmptyBody
	}
	if utf8.RuneCountInString(body) > messages.MaxBodyLen {
		return 0, messages.ErrBodyTooLong
	}

	var username *string
	if name := strings.TrimSpace(req.Username); name != "" {
		if utf8.RuneCountInString(name) > messages.MaxUsernameLen {
			return 0, messages.ErrUsernameTooLong
		}
		username = &name
	}

	res, err := r.db.ExecContext(
		ctx,
		`INSERT INTO messages (username, body, priority, file_id) VALUES (?, ?, ?, ?)`,
		username,
		body,
		req.Priority,
		req.FileID,
	)
	if err != nil {
		return 0, fmt.Errorf("%s: insert message: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: get last insert id: %w", op, err)
	}

	return id, nil
}

// List returns up to limit most recent messages in chronological order.
// The query picks the newest rows first, then the result is reversed so
// polling clients can render it top to bottom without sorting.
func (r *Repo) List(ctx context.Context, limit int) ([]messages.Message, error) {
	const op = "messages.repo.List"

	rows, err := r.db.QueryxContext(
		ctx,
		`
		SELECT
			m.id,
			m.username,
			m.body,
			m.priority,
			m.created_at,

			f.id           AS "file.id",
			f.display_name AS "file.display_name",
			f.storage_path AS "file.storage_path",
			f.size_bytes   AS "file.size_bytes"

		FROM messages m
		LEFT JOIN files f ON f.id = m.file_id

		ORDER BY m.created_at DESC, m.id DESC
		LIMIT ?
		`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	msgs := []messages.Message{}

	for rows.Next() {
		var row messages.MessageRow
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		msgs = append(msgs, messages.NewMessageFromRow(row))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	slices.Reverse(msgs)

	return msgs, nil
}

// Delete removes one message. Deleting an id that does not exist is not an
// error. The referenced file, if any, is left alone.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	const op = "messages.repo.Delete"

	if _, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%s: delete message: %w", op, err)
	}

	return nil
}

func (r *Repo) DeleteAll(ctx context.Context) error {
	const op = "messages.repo.DeleteAll"

	if _, err := r.db.ExecContext(ctx, `DELETE FROM messages`); err != nil {
		return fmt.Errorf("%s: clear messages: %w", op, err)
	}

	return nil
}
