package handlers

import (
	"SmartMusic/internal/config"
	"SmartMusic/internal/middleware"
	"SmartMusic/internal/service"
	"SmartMusic/internal/session"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type UserHandler struct {
	Library *service.Library
	Logger  *zap.SugaredLogger
	Config  *config.Config
}

func NewUserHandler(library *service.Library, logger *zap.SugaredLogger, cfg *config.Config) *UserHandler {
	return &UserHandler{Library: library, Logger: logger, Config: cfg}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login проверяет учётные данные, ставит cookie и возвращает токен в теле.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("Login: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.Library.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.Logger.Infow("Login: rejected", "email", req.Email, "error", err)
		writeError(w, err)
		return
	}

	token, err := session.IssueToken(user.ID, user.Username, h.Config.AuthSecret, session.DefaultTokenTTL)
	if err != nil {
		h.Logger.Errorw("Login: issue token", "user_id", user.ID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := middleware.SetLoginCookie(w, user.ID, h.Config.AuthSecret); err != nil {
		h.Logger.Errorw("Login: set cookie", "user_id", user.ID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user, "token": token})
}

// Me возвращает текущего пользователя.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.GetUserIDFromContext(r.Context())
	user, err := h.Library.GetUser(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
