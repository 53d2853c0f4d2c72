package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"urbanisme/internal/domain/rag"
	applog "urbanisme/internal/platform/log"
)

// DocumentHandler serves corpus management: uploads, session deletion,
// chunk counts.
type DocumentHandler struct {
	documents DocumentService
	maxFileMB int
}

func NewDocumentHandler(documents DocumentService, maxFileMB int) *DocumentHandler {
	return &DocumentHandler{documents: documents, maxFileMB: maxFileMB}
}

func (h *DocumentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/documents/upload", h.Upload)
	r.Get("/documents/count", h.Count)
	r.Delete("/sessions/{sessionID}/documents", h.DeleteSession)
}

func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(h.maxFileMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form or file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	session := r.FormValue("session_id")

	result, err := h.documents.Ingest(r.Context(), header.Filename, data, session)
	if err != nil {
		switch {
		case errors.Is(err, rag.ErrUnsupportedFormat), errors.Is(err, rag.ErrEmptyDocument):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			applog.Error("document ingestion failed", "file", header.Filename, "error", err)
			writeError(w, http.StatusInternalServerError, "ingestion failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *DocumentHandler) Count(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"count": h.documents.Count()})
}

func (h *DocumentHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	session := chi.URLParam(r, "sessionID")
	if session == "" {
		writeError(w, http.StatusBadRequest, "session id is required")
		return
	}

	deleted := h.documents.DeleteSession(session)
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}
