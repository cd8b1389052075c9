package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/emergencybox/emergencybox/internal/files"
	"github.com/emergencybox/emergencybox/internal/files/ingest"
	filesrepo "github.com/emergencybox/emergencybox/internal/files/repo"
	"github.com/emergencybox/emergencybox/internal/storage/sqlite"
)

func testHandler(t *testing.T) *Handler {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := filesrepo.New(db)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc, err := ingest.New(t.TempDir(), 1<<20, repo, log)
	require.NoError(t, err)

	return New(repo, svc, 1<<20, log)
}

// multipartUpload mirrors the real client: file part first, fields after.
func multipartUpload(t *testing.T, name string, payload []byte, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(payload)
	require.NoError(t, err)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

func doUpload(t *testing.T, h *Handler, req *http.Request) files.UploadFileResponse {
	t.Helper()

	rr := httptest.NewRecorder()
	h.Upload()(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp files.UploadFileResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))

	return resp
}

func TestHandler_Upload(t *testing.T) {
	req := require.New(t)
	h := testHandler(t)

	payload := bytes.Repeat([]byte("a"), 1200)

	resp := doUpload(t, h, multipartUpload(t, "map.png", payload, map[string]string{
		"category": "general",
	}))
	req.True(resp.Success)
	req.Positive(resp.FileID)
	req.Equal("map.png", resp.FileName)
	req.Equal("general/map.png", resp.FilePath)
	req.Equal(int64(1200), resp.FileSize)

	// same name again: suffixed, never overwritten
	resp2 := doUpload(t, h, multipartUpload(t, "map.png", payload, map[string]string{
		"category": "general",
	}))
	req.Equal("general/map_1.png", resp2.FilePath)
	req.NotEqual(resp.FileID, resp2.FileID)

	rr := httptest.NewRecorder()
	h.List()(rr, httptest.NewRequest(http.MethodGet, "/api/files", nil))
	req.Equal(http.StatusOK, rr.Code)

	var listResp files.ListFilesResponse
	req.NoError(json.NewDecoder(rr.Body).Decode(&listResp))
	req.Len(listResp.Files, 2)

	// newest first
	req.Equal("general/map_1.png", listResp.Files[0].StoragePath)
}

func TestHandler_Upload_CustomFolder(t *testing.T) {
	req := require.New(t)
	h := testHandler(t)

	resp := doUpload(t, h, multipartUpload(t, "plan.pdf", []byte("pdf"), map[string]string{
		"category":      "custom",
		"custom_folder": "Team Maps",
	}))
	req.Equal("TeamMaps/plan.pdf", resp.FilePath)
}

func TestHandler_Upload_NoFile(t *testing.T) {
	req := require.New(t)
	h := testHandler(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("category", "general"))
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/files", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	rr := httptest.NewRecorder()
	h.Upload()(rr, r)
	req.Equal(http.StatusBadRequest, rr.Code)
}

func TestHandler_Serve(t *testing.T) {
	req := require.New(t)
	h := testHandler(t)

	resp := doUpload(t, h, multipartUpload(t, "notes.txt", []byte("hello shelter"), map[string]string{
		"category": "docs",
	}))

	router := chi.NewRouter()
	router.Get("/uploads/*", h.Serve())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/uploads/"+resp.FilePath, nil))

	req.Equal(http.StatusOK, rr.Code)
	req.Equal("hello shelter", rr.Body.String())
	req.Contains(rr.Header().Get("Content-Type"), "text/plain")
}

func TestHandler_Serve_NotFound(t *testing.T) {
	h := testHandler(t)

	router := chi.NewRouter()
	router.Get("/uploads/*", h.Serve())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/uploads/general/missing.png", nil))

	require.Equal(t, http.StatusNotFound, rr.Code)
}
