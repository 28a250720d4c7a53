package handlers

import (
	"SmartMusic/internal/media"
	"bytes"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BlobHandler отдаёт содержимое выданных локаторов внешним плеерам.
type BlobHandler struct {
	Registry *media.Registry
	Logger   *zap.SugaredLogger
}

func NewBlobHandler(reg *media.Registry, logger *zap.SugaredLogger) *BlobHandler {
	return &BlobHandler{Registry: reg, Logger: logger}
}

// Serve отдаёт блоб с поддержкой Range-запросов.
func (h *BlobHandler) Serve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, ok := h.Registry.Lookup(id)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	serveBytes(w, r, data)
}

func serveBytes(w http.ResponseWriter, r *http.Request, data []byte) {
	w.Header().Set("Content-Type", http.DetectContentType(data))
	http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(data))
}
