package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"

	"github.com/emergencybox/emergencybox/internal/announcements"
)

type Repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repo {
	return &Repo{db: db}
}

// SetActive deactivates whatever is currently active and inserts the new
// announcement in the same transaction, so readers see either the old row
// or the new one but never zero active rows in between.
func (r *Repo) SetActive(ctx context.Context, message string) (int64, error) {
	const op = "announcements.repo.SetActive"

	message = strings.TrimSpace(message)
	if message == "" {
		return 0, announcements.ErrEmptyMessage
	}
	if utf8.RuneCountInString(message) > announcements.MaxMessageLen {
		return 0, announcements.ErrMessageTooLong
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE announcements SET active = 0 WHERE active = 1`); err != nil {
		return 0, fmt.Errorf("%s: deactivate previous: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO announcements (message, active) VALUES (?, 1)`, message)
	if err != nil {
		return 0, fmt.Errorf("%s: insert announcement: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: get last insert id: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit: %w", op, err)
	}

	return id, nil
}

// GetActive returns the active announcement or nil when none is set. The
// ordering is a tie-break in case the singleton invariant is ever broken
// by hand-edited data; the read path does not rely on it holding.
func (r *Repo) GetActive(ctx context.Context) (*announcements.Announcement, error) {
	const op = "announcements.repo.GetActive"

	var a announcements.Announcement

	err := r.db.GetContext(
		ctx,
		&a,
		`
		SELECT id, message, active, created_at
		FROM announcements
		WHERE active = 1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
		`,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}

	return &a, nil
}

func (r *Repo) Clear(ctx context.Context) error {
	const op = "announcements.repo.Clear"

	if _, err := r.db.ExecContext(ctx, `UPDATE announcements SET active = 0 WHERE active = 1`); err != nil {
		return fmt.Errorf("%s: clear announcements: %w", op, err)
	}

	return nil
}
