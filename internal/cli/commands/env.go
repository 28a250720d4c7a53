package commands

import (
	"SmartMusic/internal/cli/bootstrap"
	"SmartMusic/internal/config"
	"SmartMusic/internal/model"
	"context"
	"fmt"
	"strconv"
)

// withEnv открывает библиотеку на время выполнения fn.
func withEnv(cfg *config.Config, fn func(env *bootstrap.Env) error) error {
	env, done, err := bootstrap.OpenLibrary(cfg, logger)
	if err != nil {
		return err
	}
	defer done()
	return fn(env)
}

// withUser как withEnv, но дополнительно требует активную сессию.
func withUser(ctx context.Context, cfg *config.Config, fn func(env *bootstrap.Env, me model.PublicUser) error) error {
	return withEnv(cfg, func(env *bootstrap.Env) error {
		me, err := env.CurrentUser(ctx, cfg.AuthSecret)
		if err != nil {
			return err
		}
		return fn(env, me)
	})
}

// withAdmin требует, чтобы пользователь активной сессии был администратором.
func withAdmin(ctx context.Context, cfg *config.Config, fn func(env *bootstrap.Env, me model.PublicUser) error) error {
	return withUser(ctx, cfg, func(env *bootstrap.Env, me model.PublicUser) error {
		if err := env.Library.RequireAdmin(ctx, me.ID); err != nil {
			return err
		}
		return fn(env, me)
	})
}

func parseSongID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid song id %q", s)
	}
	return id, nil
}
