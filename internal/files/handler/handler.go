package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/emergencybox/emergencybox/internal/files"
	"github.com/emergencybox/emergencybox/internal/files/ingest"
	response "github.com/emergencybox/emergencybox/internal/lib"
	"github.com/emergencybox/emergencybox/internal/lib/logger/sl"
	"github.com/emergencybox/emergencybox/internal/transport/httpapi"
)

// multipart framing allowance on top of the payload size limit
const formOverhead = 10 << 20

type Handler struct {
	repo    files.Repo
	svc     *ingest.Service
	maxSize int64
	log     *slog.Logger
}

func New(repo files.Repo, svc *ingest.Service, maxSize int64, log *slog.Logger) *Handler {
	return &Handler{repo: repo, svc: svc, maxSize: maxSize, log: log}
}

// Upload streams a multipart upload into the ingestion pipeline. The file
// part is staged as soon as it appears so the request body is never held in
// memory, and the category fields may arrive before or after it.
func (h *Handler) Upload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.files.Upload"

		log := h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+formOverhead)

		mr, err := r.MultipartReader()
		if err != nil {
			log.Error("not a multipart request", sl.Err(err))
			httpapi.WriteError(w, r, httpapi.ErrInvalidRequest)
			return
		}

		var (
			staged       *ingest.Staged
			originalName string
			category     string
			customFolder string
		)

		defer func() {
			h.svc.Discard(staged)
		}()

		for {
			part, err := mr.NextPart()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				log.Error("reading multipart body failed", sl.Err(err))
				httpapi.WriteError(w, r, httpapi.ErrInvalidRequest)
				return
			}

			switch part.FormName() {
			case "file":
				if staged != nil {
					part.Close()
					continue
				}
				originalName = part.FileName()
				staged, err = h.svc.Stage(r.Context(), part)
				part.Close()
				if err != nil {
					log.Error("failed to stage upload", sl.Err(err))
					httpapi.WriteError(w, r, err)
					return
				}
			case "category":
				category = readField(part)
			case "custom_folder":
				customFolder = readField(part)
			default:
				part.Close()
			}
		}

		if staged == nil {
			httpapi.WriteError(w, r, files.ErrNoFile)
			return
		}

		res, err := h.svc.Commit(r.Context(), staged, ingest.Request{
			OriginalName: originalName,
			Category:     category,
			CustomFolder: customFolder,
		})
		if err != nil {
			log.Error("failed to commit upload", sl.Err(err))
			httpapi.WriteError(w, r, err)
			return
		}

		render.JSON(w, r, files.UploadFileResponse{
			Success:  true,
			FileID:   res.FileID,
			FileName: originalName,
			FilePath: res.Path,
			FileSize: res.Size,
		})
	}
}

func (h *Handler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.files.List"

		log := h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		list, err := h.repo.List(r.Context())
		if err != nil {
			log.Error("failed to list files", sl.Err(err))
			httpapi.WriteError(w, r, err)
			return
		}

		render.JSON(w, r, files.ListFilesResponse{
			Success: true,
			Files:   list,
		})
	}
}

func (h *Handler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.files.Delete"

		log := h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		idStr := chi.URLParam(r, "id")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil || id <= 0 {
			log.Error("invalid file id", slog.String("id", idStr))
			httpapi.WriteError(w, r, httpapi.ErrInvalidRequest)
			return
		}

		if err := h.svc.Delete(r.Context(), id); err != nil {
			log.Error("failed to delete file", sl.Err(err))
			httpapi.WriteError(w, r, err)
			return
		}

		render.JSON(w, r, response.Ok())
	}
}

// Serve streams stored bytes back with a sniffed Content-Type. Range
// requests work through ServeContent, which matters for large files.
func (h *Handler) Serve() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.files.Serve"

		log := h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		rel := chi.URLParam(r, "*")

		abs, err := h.svc.Resolve(rel)
		if err != nil {
			httpapi.WriteError(w, r, files.ErrFileNotFound)
			return
		}

		f, err := os.Open(abs)
		if err != nil {
			httpapi.WriteError(w, r, files.ErrFileNotFound)
			return
		}
		defer f.Close()

		fi, err := f.Stat()
		if err != nil || fi.IsDir() {
			httpapi.WriteError(w, r, files.ErrFileNotFound)
			return
		}

		if mtype, err := mimetype.DetectReader(f); err == nil {
			w.Header().Set("Content-Type", mtype.String())
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			log.Error("seek failed", sl.Err(err))
			httpapi.WriteError(w, r, files.ErrIO)
			return
		}

		http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
	}
}

func readField(part io.ReadCloser) string {
	defer part.Close()

	b, err := io.ReadAll(io.LimitReader(part, 1024))
	if err != nil {
		return ""
	}

	return string(b)
}
