package handlers

import (
	"SmartMusic/internal/config"
	"SmartMusic/internal/media"
	"SmartMusic/internal/middleware"
	"SmartMusic/internal/service"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров локального медиасервера
func NewHandler(
	library *service.Library,
	resolver *media.Resolver,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()
	r.Use(middleware.WithLogging)

	blobHandler := NewBlobHandler(resolver.Registry(), logger)
	userHandler := NewUserHandler(library, logger, config)
	songHandler := NewSongHandler(library, resolver, logger, config)

	// Выданные локаторы: URL сам по себе является допуском
	r.Get("/blob/{id}", blobHandler.Serve)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.WithAuth(config.AuthSecret))

		r.With(middleware.WithGzip).Post("/user/login", userHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			// медиа отдаётся без сжатия, с поддержкой Range
			r.Get("/songs/{id}/audio", songHandler.Audio)
			r.Get("/songs/{id}/art", songHandler.Art)

			r.Group(func(r chi.Router) {
				r.Use(middleware.WithGzip)
				r.Get("/user/me", userHandler.Me)
				r.Get("/songs", songHandler.List)
				r.Post("/songs", songHandler.Upload)
			})
		})
	})

	return &Handler{Router: r}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor сопоставляет ошибку фасада HTTP-статусу.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrDuplicate), errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrBlocked), errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound), errors.Is(err, media.ErrMediaFault):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := http.StatusText(status)
	if status < http.StatusInternalServerError {
		msg = err.Error()
	}
	http.Error(w, msg, status)
}
