package service

import (
	"SmartMusic/internal/model"
	"context"
	"errors"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"
)

// ProfileUpdate - изменяемые поля профиля. nil означает «не трогать».
type ProfileUpdate struct {
	Username *string
	Email    *string
	Avatar   *string
	Bio      *string
}

// Signup регистрирует пользователя с ролью user.
func (l *Library) Signup(ctx context.Context, username, email, password string) (model.PublicUser, error) {
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)
	if email == "" || password == "" {
		return model.PublicUser{}, validation("email and password are required")
	}
	if username == "" {
		username, _, _ = strings.Cut(email, "@")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.PublicUser{}, err
	}

	var created model.User
	err = l.update(ctx, func(t *txn) error {
		if _, ok := findUserByEmail(t.doc, email); ok {
			return ErrDuplicate
		}
		created = model.User{
			ID:           newID(),
			Username:     username,
			Email:        email,
			PasswordHash: string(hash),
			Role:         model.RoleUser,
			Bio:          "Music lover",
		}
		t.doc.Users = append(t.doc.Users, created)
		return nil
	})
	if err != nil {
		return model.PublicUser{}, err
	}
	l.logger.Infow("user signed up", "user_id", created.ID)
	return created.Public(), nil
}

// Login проверяет учётные данные. Блокировка сообщается только при верном пароле.
func (l *Library) Login(ctx context.Context, email, password string) (model.PublicUser, error) {
	doc, err := l.view(ctx)
	if err != nil {
		return model.PublicUser{}, err
	}
	u, ok := findUserByEmail(doc, normalizeEmail(email))
	if !ok {
		return model.PublicUser{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return model.PublicUser{}, ErrInvalidCredentials
	}
	if u.IsBlocked {
		return model.PublicUser{}, ErrBlocked
	}
	return u.Public(), nil
}

// UpdateProfile применяет частичное обновление профиля.
func (l *Library) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (model.PublicUser, error) {
	var updated model.User
	err := l.update(ctx, func(t *txn) error {
		i := userIndex(t.doc, userID)
		if i < 0 {
			return notFound("user", userID)
		}
		u := &t.doc.Users[i]
		if upd.Email != nil {
			email := normalizeEmail(*upd.Email)
			if email == "" {
				return validation("email must not be empty")
			}
			if other, ok := findUserByEmail(t.doc, email); ok && other.ID != u.ID {
				return ErrDuplicate
			}
			u.Email = email
		}
		if upd.Username != nil {
			name := strings.TrimSpace(*upd.Username)
			if name == "" {
				return validation("username must not be empty")
			}
			u.Username = name
		}
		if upd.Avatar != nil {
			u.Avatar = *upd.Avatar
		}
		if upd.Bio != nil {
			u.Bio = *upd.Bio
		}
		updated = *u
		return nil
	})
	if err != nil {
		return model.PublicUser{}, err
	}
	return updated.Public(), nil
}

// GetUser возвращает пользователя по ID.
func (l *Library) GetUser(ctx context.Context, id string) (model.PublicUser, error) {
	doc, err := l.view(ctx)
	if err != nil {
		return model.PublicUser{}, err
	}
	i := userIndex(doc, id)
	if i < 0 {
		return model.PublicUser{}, notFound("user", id)
	}
	return doc.Users[i].Public(), nil
}

func (l *Library) ListUsers(ctx context.Context) ([]model.PublicUser, error) {
	doc, err := l.view(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(doc.Users, func(u model.User, _ int) model.PublicUser { return u.Public() }), nil
}

// RequireAdmin возвращает ErrForbidden, если пользователь не администратор.
func (l *Library) RequireAdmin(ctx context.Context, userID string) error {
	u, err := l.GetUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return ErrForbidden
	}
	if err != nil {
		return err
	}
	if u.Role != model.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

// ToggleUserBlock переключает блокировку. Администраторов блокировать нельзя.
func (l *Library) ToggleUserBlock(ctx context.Context, userID string) (bool, error) {
	var blocked bool
	err := l.update(ctx, func(t *txn) error {
		i := userIndex(t.doc, userID)
		if i < 0 {
			return notFound("user", userID)
		}
		u := &t.doc.Users[i]
		if u.ID == model.AdminID || u.Role == model.RoleAdmin {
			return ErrForbidden
		}
		u.IsBlocked = !u.IsBlocked
		blocked = u.IsBlocked
		return nil
	})
	if err != nil {
		return false, err
	}
	l.logger.Infow("user block toggled", "user_id", userID, "blocked", blocked)
	return blocked, nil
}

// UpdateUserRole меняет роль. Роль основного администратора не меняется.
func (l *Library) UpdateUserRole(ctx context.Context, userID string, role model.Role) error {
	if !role.Valid() {
		return validation("unknown role %q", role)
	}
	return l.update(ctx, func(t *txn) error {
		i := userIndex(t.doc, userID)
		if i < 0 {
			return notFound("user", userID)
		}
		if userID == model.AdminID {
			return ErrForbidden
		}
		if t.doc.Users[i].Role == role {
			return errUnchanged
		}
		t.doc.Users[i].Role = role
		return nil
	})
}

// ResetPassword задаёт пользователю новый пароль.
func (l *Library) ResetPassword(ctx context.Context, userID, password string) error {
	if password == "" {
		return validation("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return l.update(ctx, func(t *txn) error {
		i := userIndex(t.doc, userID)
		if i < 0 {
			return notFound("user", userID)
		}
		t.doc.Users[i].PasswordHash = string(hash)
		return nil
	})
}

func userIndex(doc *model.Document, id string) int {
	_, i, _ := lo.FindIndexOf(doc.Users, func(u model.User) bool { return u.ID == id })
	return i
}

func findUserByEmail(doc *model.Document, email string) (model.User, bool) {
	return lo.Find(doc.Users, func(u model.User) bool { return strings.EqualFold(u.Email, email) })
}
