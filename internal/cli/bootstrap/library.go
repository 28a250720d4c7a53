package bootstrap

import (
	fsrepo "SmartMusic/internal/cli/repo/fs"
	"SmartMusic/internal/config"
	"SmartMusic/internal/media"
	"SmartMusic/internal/model"
	"SmartMusic/internal/repo"
	"SmartMusic/internal/service"
	"SmartMusic/internal/session"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrNotLoggedIn - нет сохранённой сессии или она недействительна.
var ErrNotLoggedIn = errors.New("not logged in: run login or signup first")

// Env - собранное окружение клиента: фасад библиотеки и резолвер медиа.
type Env struct {
	Library  *service.Library
	Resolver *media.Resolver
	Sessions fsrepo.SessionFSStore
	Logger   *zap.SugaredLogger
}

// OpenLibrary открывает хранилище по cfg.DatabaseDSN, выполняет миграции
// и связывает резолвер с фасадом. Возвращает (env, cleanup, error);
// cleanup закрывает соединение с БД, повторный вызов безопасен.
func OpenLibrary(cfg *config.Config, logger *zap.SugaredLogger) (*Env, func() error, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	db, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open library db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("open library db: %w", err)
	}

	store := repo.NewStorage(db, cfg.DocKey, service.SeedDocument(cfg.AdminEmail, cfg.AdminPassword))
	resolver := media.NewResolver(store.Blobs(), logger)
	env := &Env{
		Library:  service.NewLibrary(store, resolver, logger),
		Resolver: resolver,
		Sessions: fsrepo.SessionFSStore{Path: cfg.SessionFile},
		Logger:   logger,
	}

	closed := false
	cleanup := func() error {
		if closed {
			return nil
		}
		closed = true
		return sqlDB.Close()
	}
	return env, cleanup, nil
}

// CurrentUser восстанавливает пользователя из сохранённого токена.
// Просроченный токен, удалённый или заблокированный пользователь - ErrNotLoggedIn.
func (e *Env) CurrentUser(ctx context.Context, secret string) (model.PublicUser, error) {
	token, err := e.Sessions.Load()
	if err != nil {
		return model.PublicUser{}, ErrNotLoggedIn
	}
	userID, err := session.ParseToken(token, secret)
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("%w (%v)", ErrNotLoggedIn, err)
	}
	user, err := e.Library.GetUser(ctx, userID)
	if errors.Is(err, service.ErrNotFound) {
		return model.PublicUser{}, ErrNotLoggedIn
	}
	if err != nil {
		return model.PublicUser{}, err
	}
	if user.IsBlocked {
		return model.PublicUser{}, fmt.Errorf("%w: %w", ErrNotLoggedIn, service.ErrBlocked)
	}
	return user, nil
}

// StartSession выпускает токен для пользователя и сохраняет его вместе с email.
func (e *Env) StartSession(user model.PublicUser, secret string) error {
	token, err := session.IssueToken(user.ID, user.Username, secret, session.DefaultTokenTTL)
	if err != nil {
		return err
	}
	if err := e.Sessions.Save(token); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	if err := e.Sessions.SaveLogin(user.Email); err != nil {
		e.Logger.Warnw("failed to remember login", "error", err)
	}
	return nil
}
