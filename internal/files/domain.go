package files

import (
	"context"
	"time"
)

type Repo interface {
	Insert(ctx context.Context, displayName, storagePath, category string, sizeBytes int64) (int64, error)
	List(ctx context.Context) ([]File, error)
	Delete(ctx context.Context, id int64) (string, error)
}

// File is a stored upload. StoragePath is relative to the upload root so
// served URLs survive moving the deployment directory.
type File struct {
	ID          int64     `db:"id" json:"id"`
	DisplayName string    `db:"display_name" json:"name"`
	StoragePath string    `db:"storage_path" json:"path"`
	Category    string    `db:"category" json:"category"`
	SizeBytes   int64     `db:"size_bytes" json:"size"`
	UploadedAt  time.Time `db:"uploaded_at" json:"uploaded"`
}

type UploadFileResponse struct {
	Success  bool   `json:"success"`
	FileID   int64  `json:"file_id"`
	FileName string `json:"file_name"`
	FilePath string `json:"file_path"`
	FileSize int64  `json:"file_size"`
}

type ListFilesResponse struct {
	Success bool   `json:"success"`
	Files   []File `json:"files"`
}
