package commands

import (
	"SmartMusic/internal/cli/bootstrap"
	"SmartMusic/internal/config"
	"SmartMusic/internal/handlers"
	"context"
	"fmt"
)

type serveMediaCmd struct{}

func (serveMediaCmd) Name() string        { return "serve-media" }
func (serveMediaCmd) Description() string { return "Serve the library and local media over HTTP" }
func (serveMediaCmd) Usage() string       { return "serve-media" }

func (serveMediaCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return withEnv(cfg, func(env *bootstrap.Env) error {
		h := handlers.NewHandler(env.Library, env.Resolver, logger, cfg)
		fmt.Fprintf(Out, "Serving media on http://%s (Ctrl+C to stop)\n", cfg.MediaAddr)
		return handlers.Serve(ctx, cfg.MediaAddr, h, logger)
	})
}

func init() { RegisterCmd(serveMediaCmd{}) }
