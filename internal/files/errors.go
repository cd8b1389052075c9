package files

import (
	"errors"
)

var (
	ErrNoFile             = errors.New("no file uploaded")
	ErrPayloadTooLarge    = errors.New("file size exceeds the configured limit")
	ErrInvalidCategory    = errors.New("invalid category folder name")
	ErrFileNotFound       = errors.New("file not found")
	ErrNamespaceExhausted = errors.New("no free file name left for this upload")

	// ErrIO marks disk failures during ingestion. Safe for the caller to
	// retry: no metadata row exists when it is returned.
	ErrIO = errors.New("file write failed")
)
