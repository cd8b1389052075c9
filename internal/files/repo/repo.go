package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/emergencybox/emergencybox/internal/files"
)

type Repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Insert(ctx context.Context, displayName, storagePath, category string, sizeBytes int64) (int64, error) {
	const op = "files.repo.Insert"

	res, err := r.db.ExecContext(
		ctx,
		`INSERT INTO files (display_name, storage_path, category, size_bytes) VALUES (?, ?, ?, ?)`,
		displayName,
		storagePath,
		category,
		sizeBytes,
	)
	if err != nil {
		return 0, fmt.Errorf("%s: insert file: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: get last insert id: %w", op, err)
	}

	return id, nil
}

func (r *Repo) List(ctx context.Context) ([]files.File, error) {
	const op = "files.repo.List"

	list := []files.File{}

	err := r.db.SelectContext(
		ctx,
		&list,
		`
		SELECT id, display_name, storage_path, category, size_bytes, uploaded_at
		FROM files
		ORDER BY uploaded_at DESC, id DESC
		`,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}

	return list, nil
}

// Delete removes the metadata row and returns the storage path it held so
// the caller can remove the bytes. The row goes first: a short-lived orphan
// file is acceptable, a row pointing at missing bytes is not.
func (r *Repo) Delete(ctx context.Context, id int64) (string, error) {
	const op = "files.repo.Delete"

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer tx.Rollback()

	var storagePath string
	err = tx.GetContext(ctx, &storagePath, `SELECT storage_path FROM files WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", files.ErrFileNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%s: select path: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id); err != nil {
		return "", fmt.Errorf("%s: delete file row: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%s: commit: %w", op, err)
	}

	return storagePath, nil
}
