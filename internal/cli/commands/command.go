package commands

import (
	"SmartMusic/internal/config"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ErrUsage is returned by a command when arguments are invalid and usage should be shown.
var ErrUsage = errors.New("usage")

// Command represents a CLI subcommand.
type Command interface {
	// Name returns the command name as typed by the user, e.g. "login".
	Name() string
	// Description is a short human-readable description shown in help.
	Description() string
	// Usage returns the exact usage string, e.g. "login <email> <password>".
	Usage() string
	// Run executes the command with provided args (without the command name).
	Run(ctx context.Context, cfg *config.Config, args []string) error
}

// registry holds available commands by name.
var registry = map[string]Command{}

// Out - общий writer для вывода CLI. По умолчанию os.Stdout, но в тестах может переназначаться.
var Out io.Writer = os.Stdout

// In - источник интерактивного ввода (команда play).
var In io.Reader = os.Stdin

var logger = zap.NewNop().Sugar()

// SetLogger задаёт логгер для команд.
func SetLogger(l *zap.SugaredLogger) {
	if l != nil {
		logger = l
	}
}

// RegisterCmd adds a command to the registry. Should be called from init() of each command.
func RegisterCmd(cmd Command) {
	registry[cmd.Name()] = cmd
}

// Get returns a command by name.
func Get(name string) (Command, bool) {
	c, ok := registry[name]
	return c, ok
}

// List returns all registered commands sorted by name.
func List() []Command {
	list := make([]Command, 0, len(registry))
	for _, c := range registry {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

type section struct {
	title string
	names []string
}

// sections задаёт порядок разделов справки; команда без раздела попадает в "Other".
var sections = []section{
	{"Account", []string{"signup", "login", "logout", "whoami", "profile"}},
	{"Library", []string{"songs", "song", "song-add", "song-edit", "song-rm", "like", "liked"}},
	{"Playlists", []string{"playlist-new", "playlist-add", "playlists"}},
	{"Messages", []string{"send", "chat", "inbox", "watch"}},
	{"Playback", []string{"play", "serve-media"}},
	{"Administration", []string{"admin", "reconcile"}},
}

func sectionOf(name string) string {
	for _, s := range sections {
		if lo.Contains(s.names, name) {
			return s.title
		}
	}
	return "Other"
}

// FormatGlobalUsage builds a help text for all commands, grouped by section.
func FormatGlobalUsage() string {
	lines := []string{
		config.AppName + " CLI",
		"",
		"Usage:",
		"  smartmusic [-d <dsn>] [-session-file <path>] <command> [args]",
		"  smartmusic help <command>",
	}
	groups := lo.GroupBy(List(), func(c Command) string { return sectionOf(c.Name()) })
	titles := append(lo.Map(sections, func(s section, _ int) string { return s.title }), "Other")
	for _, title := range titles {
		cmds, ok := groups[title]
		if !ok {
			continue
		}
		lines = append(lines, "", title+":")
		for _, c := range cmds {
			lines = append(lines, fmt.Sprintf("  %-40s %s", c.Usage(), c.Description()))
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

// FormatCommandUsage builds a help text for a single command.
func FormatCommandUsage(c Command) string {
	return fmt.Sprintf("Usage: %s\n  %s\n", c.Usage(), c.Description())
}

// suggest returns registered command names that look like the mistyped one.
func suggest(name string) []string {
	return lo.FilterMap(List(), func(c Command, _ int) (string, bool) {
		return c.Name(), strings.Contains(c.Name(), name)
	})
}
