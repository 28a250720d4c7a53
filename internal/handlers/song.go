package handlers

import (
	"SmartMusic/internal/config"
	"SmartMusic/internal/media"
	"SmartMusic/internal/middleware"
	"SmartMusic/internal/model"
	"SmartMusic/internal/service"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SongHandler - список песен, загрузка и выдача медиа.
type SongHandler struct {
	Library  *service.Library
	Resolver *media.Resolver
	Logger   *zap.SugaredLogger
	Config   *config.Config
}

func NewSongHandler(library *service.Library, resolver *media.Resolver, logger *zap.SugaredLogger, cfg *config.Config) *SongHandler {
	return &SongHandler{Library: library, Resolver: resolver, Logger: logger, Config: cfg}
}

// SongDTO - песня с адресами медиа на этом сервере.
type SongDTO struct {
	model.Song
	AudioURL string `json:"audioUrl"`
	ArtURL   string `json:"artUrl,omitempty"`
	Likes    int    `json:"likes"`
}

// List возвращает песни; ?q= фильтрует по названию и исполнителю.
func (h *SongHandler) List(w http.ResponseWriter, r *http.Request) {
	songs, err := h.Library.SearchSongs(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.Logger.Errorw("List: service error", "error", err)
		writeError(w, err)
		return
	}
	out := make([]SongDTO, 0, len(songs))
	for _, s := range songs {
		likes, err := h.Library.LikeCount(r.Context(), s.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		dto := SongDTO{Song: s, AudioURL: fmt.Sprintf("/api/songs/%d/audio", s.ID), Likes: likes}
		if s.Art != "" {
			dto.ArtURL = fmt.Sprintf("/api/songs/%d/art", s.ID)
		}
		out = append(out, dto)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *SongHandler) Audio(w http.ResponseWriter, r *http.Request) {
	h.serveRef(w, r, func(s model.Song) string { return s.File })
}

func (h *SongHandler) Art(w http.ResponseWriter, r *http.Request) {
	h.serveRef(w, r, func(s model.Song) string { return s.Art })
}

// serveRef отдаёт локальный блоб напрямую, внешний адрес - редиректом.
func (h *SongHandler) serveRef(w http.ResponseWriter, r *http.Request, pick func(model.Song) string) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid song id", http.StatusBadRequest)
		return
	}
	song, err := h.Library.GetSong(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	ref := pick(song)
	if _, local := model.BlobKey(ref); !local {
		if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
			http.Redirect(w, r, ref, http.StatusFound)
			return
		}
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	loc, err := h.Resolver.Resolve(r.Context(), ref)
	if err != nil {
		h.Logger.Warnw("serveRef: resolve failed", "song_id", id, "error", err)
		writeError(w, err)
		return
	}
	defer h.Resolver.Release(loc)

	data, ok := h.Resolver.Registry().Lookup(loc)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	serveBytes(w, r, data)
}

// Upload принимает multipart-форму: title, artist, audio (файл), art (файл, опционально).
// Доступно только администратору.
func (h *SongHandler) Upload(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.GetUserIDFromContext(r.Context())
	if err := h.Library.RequireAdmin(r.Context(), uid); err != nil {
		writeError(w, err)
		return
	}

	maxBody := int64(h.Config.BlobMaxSizeMB)*1024*1024 + 1*1024*1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		h.Logger.Warnw("Upload: invalid multipart form", "error", err)
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	audio, err := readFormFile(r, "audio")
	if err != nil || len(audio) == 0 {
		h.Logger.Warnw("Upload: missing audio file", "error", err)
		http.Error(w, "missing audio file", http.StatusBadRequest)
		return
	}
	art, err := readFormFile(r, "art")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		http.Error(w, "failed to read art", http.StatusBadRequest)
		return
	}

	artist := r.FormValue("artist")
	if artist == "" {
		artist = "Unknown"
	}
	song := model.Song{ID: model.NewSongID, Title: r.FormValue("title"), Artist: artist}
	saved, err := h.Library.SaveSong(r.Context(), song, uid, audio, art)
	if err != nil {
		h.Logger.Errorw("Upload: service error", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func readFormFile(r *http.Request, field string) ([]byte, error) {
	f, _, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
