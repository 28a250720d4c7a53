package middleware

import (
	"SmartMusic/internal/session"
	"context"
	"net/http"
	"strings"
	"time"
)

type ctxKey string

const userIDKey ctxKey = "user_id"

// CookieName - имя cookie с токеном сессии.
const CookieName = "smartmusic_token"

// SetLoginCookie выписывает токен сессии и кладёт его в cookie.
func SetLoginCookie(w http.ResponseWriter, userID, secret string) error {
	token, err := session.IssueToken(userID, "", secret, session.DefaultTokenTTL)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Now().Add(session.DefaultTokenTTL),
	})
	return nil
}

// WithAuth кладёт user_id в контекст, если запрос несёт валидный токен
// (заголовок Authorization: Bearer или cookie). Без токена запрос проходит анонимно.
func WithAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if c, err := r.Cookie(CookieName); err == nil {
					token = c.Value
				}
			}
			if token != "" {
				if uid, err := session.ParseToken(token, secret); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), userIDKey, uid))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth отвечает 401, если в контексте нет пользователя.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUserIDFromContext(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserIDFromContext достаёт user_id, положенный WithAuth.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(userIDKey).(string)
	return uid, ok && uid != ""
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
