package http

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"

	"carrental-backend/internal/logger"
	"carrental-backend/internal/storage"
)

var allowedEvidenceTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// EvidenceHandler serves the presigned upload and download URLs issued by
// the local evidence store.
type EvidenceHandler struct {
	files   storage.LocalFiles
	maxSize int64
}

func NewEvidenceHandler(files storage.LocalFiles, maxSize int64) *EvidenceHandler {
	return &EvidenceHandler{files: files, maxSize: maxSize}
}

// HandleUpload handles PUT requests to presigned upload URLs
func (h *EvidenceHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "Missing key parameter", http.StatusBadRequest)
		return
	}

	if !allowedEvidenceTypes[r.Header.Get("Content-Type")] {
		http.Error(w, "Invalid content type", http.StatusUnsupportedMediaType)
		return
	}
	if h.maxSize > 0 && r.ContentLength > h.maxSize {
		http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}

	body := io.Reader(r.Body)
	if h.maxSize > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxSize)
	}
	if err := h.files.SaveFile(key, body); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
		case errors.Is(err, storage.ErrInvalidKey):
			http.Error(w, "Invalid key", http.StatusBadRequest)
		default:
			logger.Error("Failed to save evidence", "key", key, "error", err)
			http.Error(w, "Failed to save file", http.StatusInternalServerError)
		}
		return
	}

	logger.Debug("Evidence uploaded", "key", key, "token", mux.Vars(r)["token"])
	w.Header().Set("ETag", `"evidence-upload-ok"`)
	w.WriteHeader(http.StatusOK)
}

// HandleDownload streams a stored evidence picture
func (h *EvidenceHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "Missing key parameter", http.StatusBadRequest)
		return
	}

	file, err := h.files.ReadFile(key)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	contentType := "application/octet-stream"
	switch filepath.Ext(key) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".gif":
		contentType = "image/gif"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := io.Copy(w, file); err != nil {
		logger.Warn("Evidence download interrupted", "key", key, "error", err)
	}
}
