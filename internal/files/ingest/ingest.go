// Package ingest coordinates the two resources behind a file upload: the
// byte stream on disk and the metadata row in the store. Bytes always land
// before the row is written, and a failed row write removes the bytes again,
// so a files row never points at a path that does not exist.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/emergencybox/emergencybox/internal/files"
	"github.com/emergencybox/emergencybox/internal/lib/logger/sl"
	"github.com/emergencybox/emergencybox/internal/metrics"
)

const (
	DefaultCategory = "general"

	// CategoryCustom is the sentinel a client sends to file the upload under
	// its own folder name instead of one of the fixed categories.
	CategoryCustom = "custom"

	stagingDir      = ".staging"
	maxNameAttempts = 10000
)

type Repo interface {
	Insert(ctx context.Context, displayName, storagePath, category string, sizeBytes int64) (int64, error)
	Delete(ctx context.Context, id int64) (string, error)
}

type Service struct {
	root    string
	maxSize int64
	repo    Repo
	log     *slog.Logger
}

type Request struct {
	OriginalName string
	Size         int64
	Category     string
	CustomFolder string
}

type Result struct {
	FileID     int64
	StoredName string
	Path       string
	Size       int64
}

// Staged is an upload whose bytes are on disk under the staging area but
// which has no category, final name, or metadata row yet.
type Staged struct {
	ID   string
	path string
	size int64
}

func New(root string, maxSize int64, repo Repo, log *slog.Logger) (*Service, error) {
	const op = "files.ingest.New"

	staging := filepath.Join(root, stagingDir)
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return nil, fmt.Errorf("%s: create staging dir: %w", op, err)
	}

	// sweep staged bytes left behind by a previous crash
	if entries, err := os.ReadDir(staging); err == nil {
		for _, e := range entries {
			os.Remove(filepath.Join(staging, e.Name()))
		}
	}

	return &Service{root: root, maxSize: maxSize, repo: repo, log: log}, nil
}

// Ingest runs Stage and Commit as one call for callers that know the
// category up front.
func (s *Service) Ingest(ctx context.Context, src io.Reader, req Request) (Result, error) {
	if req.Size > s.maxSize {
		return Result{}, files.ErrPayloadTooLarge
	}

	st, err := s.Stage(ctx, src)
	if err != nil {
		return Result{}, err
	}
	defer s.Discard(st)

	return s.Commit(ctx, st, req)
}

// Stage streams src into the staging area. The stream is never buffered in
// memory; anything past the configured maximum aborts the write.
func (s *Service) Stage(ctx context.Context, src io.Reader) (*Staged, error) {
	const op = "files.ingest.Stage"

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	stagePath := filepath.Join(s.root, stagingDir, id)

	f, err := os.OpenFile(stagePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%s: create staging file: %w: %w", op, files.ErrIO, err)
	}

	written, err := io.Copy(f, io.LimitReader(src, s.maxSize+1))
	if err != nil {
		f.Close()
		os.Remove(stagePath)
		return nil, fmt.Errorf("%s: write stream: %w: %w", op, files.ErrIO, err)
	}

	if err := f.Close(); err != nil {
		os.Remove(stagePath)
		return nil, fmt.Errorf("%s: close staging file: %w: %w", op, files.ErrIO, err)
	}

	if written > s.maxSize {
		os.Remove(stagePath)
		return nil, files.ErrPayloadTooLarge
	}

	return &Staged{ID: id, path: stagePath, size: written}, nil
}

// Commit resolves the final on-disk location for staged bytes and writes
// the metadata row. When the row write fails the already-linked bytes are
// removed again; that compensation is the only rollback in the system.
func (s *Service) Commit(ctx context.Context, st *Staged, req Request) (Result, error) {
	const op = "files.ingest.Commit"

	log := s.log.With(
		slog.String("op", op),
		slog.String("ingest_id", st.ID),
	)

	category, err := ResolveCategory(req.Category, req.CustomFolder)
	if err != nil {
		return Result{}, err
	}

	safeName := SanitizeFileName(req.OriginalName)

	dir := filepath.Join(s.root, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("%s: create category dir: %w: %w", op, files.ErrIO, err)
	}

	storedName, target, err := linkFree(st.path, dir, safeName)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := os.Remove(st.path); err != nil {
		log.Warn("staging cleanup failed", sl.Err(err))
	}

	rel := path.Join(category, storedName)

	id, err := s.repo.Insert(ctx, req.OriginalName, rel, category, st.size)
	if err != nil {
		if rmErr := os.Remove(target); rmErr != nil {
			log.Error("orphan file left after store failure",
				sl.Err(rmErr),
				slog.String("path", target),
			)
		}
		return Result{}, fmt.Errorf("%s: insert file row: %w", op, err)
	}

	metrics.FilesIngested.Inc()
	metrics.StoredBytes.Add(float64(st.size))

	log.Info("file ingested",
		slog.Int64("file_id", id),
		slog.String("path", rel),
		slog.Int64("size", st.size),
	)

	return Result{FileID: id, StoredName: storedName, Path: rel, Size: st.size}, nil
}

// Discard drops staged bytes. Safe to call after a successful Commit.
func (s *Service) Discard(st *Staged) {
	if st == nil {
		return
	}
	if err := os.Remove(st.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("failed to discard staged upload",
			slog.String("ingest_id", st.ID),
			sl.Err(err),
		)
	}
}

// Delete removes the metadata row and then the bytes. A failed byte removal
// is logged, not surfaced: the row is already gone and the polling clients
// no longer see the file.
func (s *Service) Delete(ctx context.Context, id int64) error {
	const op = "files.ingest.Delete"

	rel, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	abs, err := s.Resolve(rel)
	if err != nil {
		s.log.Warn("stored path did not resolve", slog.String("path", rel), sl.Err(err))
		return nil
	}

	if err := os.Remove(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("could not remove file bytes",
			slog.Int64("file_id", id),
			slog.String("path", rel),
			sl.Err(err),
		)
	}

	return nil
}

// Resolve turns a stored relative path into an absolute one under the
// upload root. Paths that would escape the root resolve inside it instead.
func (s *Service) Resolve(rel string) (string, error) {
	clean := strings.TrimPrefix(path.Clean("/"+rel), "/")
	if clean == "" || clean == "." || strings.HasPrefix(clean, stagingDir) {
		return "", files.ErrFileNotFound
	}

	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// linkFree links staged bytes to the first free name derived from name,
// inserting _1, _2, ... before the extension. The link syscall fails with
// EEXIST when two uploads race for the same candidate, which sends the
// loser on to the next suffix.
func linkFree(staged, dir, name string) (string, string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; i <= maxNameAttempts; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}

		target := filepath.Join(dir, candidate)

		err := os.Link(staged, target)
		if err == nil {
			return candidate, target, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", "", fmt.Errorf("%w: %w", files.ErrIO, err)
		}
	}

	return "", "", files.ErrNamespaceExhausted
}
