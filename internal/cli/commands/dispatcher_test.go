package commands

import (
	"SmartMusic/internal/config"
	"context"
	"fmt"
	"strings"
	"testing"
)

// fakeCmd позволяет управлять возвратом ошибок из Run
type fakeCmd struct {
	name, usage, desc string
	run               func(ctx context.Context, cfg *config.Config, args []string) error
}

func (f fakeCmd) Name() string        { return f.name }
func (f fakeCmd) Description() string { return f.desc }
func (f fakeCmd) Usage() string       { return f.usage }
func (f fakeCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	return f.run(ctx, cfg, args)
}

func TestDispatcher_HelpAndUnknown(t *testing.T) {
	out := withStdoutCapture(t, func() { _ = Dispatch(context.Background(), &config.Config{}, []string{}) })
	if !strings.Contains(out, "SmartMusic CLI") {
		t.Fatalf("global help expected")
	}
	for _, name := range []string{"login", "songs", "play", "serve-media"} {
		if !strings.Contains(out, name) {
			t.Fatalf("global help must list %s", name)
		}
	}

	out = withStdoutCapture(t, func() { _ = Dispatch(context.Background(), &config.Config{}, []string{"help"}) })
	if !strings.Contains(out, "Usage:") {
		t.Fatalf("usage expected")
	}

	var code int
	out = withStdoutCapture(t, func() { code = Dispatch(context.Background(), &config.Config{}, []string{"help", "login"}) })
	if code != 0 || !strings.Contains(out, "login [email] <password>") {
		t.Fatalf("expected login usage with 0, got %d: %s", code, out)
	}

	out = withStdoutCapture(t, func() { _ = Dispatch(context.Background(), &config.Config{}, []string{"help", "nope"}) })
	if !strings.Contains(out, "Unknown command") {
		t.Fatalf("unknown command message expected")
	}

	withStdoutCapture(t, func() { code = Dispatch(context.Background(), &config.Config{}, []string{"no-such"}) })
	if code != 2 {
		t.Fatalf("expected 2 for unknown command, got %d", code)
	}
}

func TestDispatcher_RunPaths(t *testing.T) {
	cmdOK := fakeCmd{name: "x", usage: "x", run: func(_ context.Context, _ *config.Config, _ []string) error { return nil }}
	RegisterCmd(cmdOK)
	if code := Dispatch(context.Background(), &config.Config{}, []string{"X"}); code != 0 {
		t.Fatalf("expected exit 0 (names are case-insensitive), got %d", code)
	}

	cmdUsage := fakeCmd{name: "u", usage: "u <arg>", run: func(_ context.Context, _ *config.Config, _ []string) error {
		return fmt.Errorf("wrapped: %w", ErrUsage)
	}}
	RegisterCmd(cmdUsage)
	var code int
	out := withStdoutCapture(t, func() { code = Dispatch(context.Background(), &config.Config{}, []string{"u"}) })
	if code != 2 || !strings.Contains(out, "Usage: u <arg>") {
		t.Fatalf("usage text with exit 2 expected, got %d: %s", code, out)
	}

	cmdErr := fakeCmd{name: "e", usage: "e", run: func(_ context.Context, _ *config.Config, _ []string) error { return fmt.Errorf("boom") }}
	RegisterCmd(cmdErr)
	out = withStdoutCapture(t, func() { code = Dispatch(context.Background(), &config.Config{}, []string{"e"}) })
	if code != 1 || !strings.Contains(out, "e error: boom") {
		t.Fatalf("error line expected, got %d: %s", code, out)
	}
}

func TestDispatcher_CommandHelpAndSuggestions(t *testing.T) {
	var code int
	out := withStdoutCapture(t, func() { code = Dispatch(context.Background(), &config.Config{}, []string{"song", "-h"}) })
	if code != 0 || !strings.Contains(out, "Usage: song <song-id>") || !strings.Contains(out, "likers") {
		t.Fatalf("per-command help expected, got %d: %s", code, out)
	}

	out = withStdoutCapture(t, func() { code = Dispatch(context.Background(), &config.Config{}, []string{"playlist"}) })
	if code != 2 || !strings.Contains(out, "Did you mean: playlist-add, playlist-new, playlists?") {
		t.Fatalf("suggestions expected, got %d: %s", code, out)
	}

	out = withStdoutCapture(t, func() { _ = Dispatch(context.Background(), &config.Config{}, []string{}) })
	for _, section := range []string{"Account:", "Library:", "Playlists:", "Messages:", "Playback:", "Administration:"} {
		if !strings.Contains(out, section) {
			t.Fatalf("global help must have section %s", section)
		}
	}
	if strings.Index(out, "Account:") > strings.Index(out, "Administration:") {
		t.Fatalf("sections must keep their order")
	}
}
