package commands

import (
	"SmartMusic/internal/config"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"
)

func isHelpFlag(a string) bool { return a == "--help" || a == "-h" }

// Dispatch is the single entry point to execute CLI commands.
// It prints help and usage messages and returns a process exit code:
// 0 on success, 1 when the command failed, 2 on usage errors.
func Dispatch(ctx context.Context, cfg *config.Config, args []string) int {
	if !flag.Parsed() {
		flag.Parse()
	}

	// global --help before the command name
	if len(args) == 0 && slices.ContainsFunc(os.Args[1:], isHelpFlag) {
		fmt.Fprint(Out, FormatGlobalUsage())
		return 0
	}
	if len(args) == 0 {
		fmt.Fprint(Out, FormatGlobalUsage())
		return 2
	}

	name := strings.ToLower(args[0])
	if name == "help" { // smartmusic help [command]
		if len(args) == 1 {
			fmt.Fprint(Out, FormatGlobalUsage())
			return 0
		}
		return helpFor(strings.ToLower(args[1]))
	}

	c, ok := Get(name)
	if !ok {
		unknown(name)
		return 2
	}
	// smartmusic <command> -h
	if len(args) > 1 && isHelpFlag(args[1]) {
		fmt.Fprint(Out, FormatCommandUsage(c))
		return 0
	}

	err := c.Run(ctx, cfg, args[1:])
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrUsage):
		fmt.Fprintf(Out, "Usage: %s\n", c.Usage())
		return 2
	default:
		logger.Debugw("command failed", "command", name, "error", err)
		fmt.Fprintf(Out, "%s error: %v\n", name, err)
		return 1
	}
}

func helpFor(name string) int {
	c, ok := Get(name)
	if !ok {
		unknown(name)
		return 2
	}
	fmt.Fprint(Out, FormatCommandUsage(c))
	return 0
}

func unknown(name string) {
	fmt.Fprintf(Out, "Unknown command: %s\n", name)
	if hints := suggest(name); len(hints) > 0 {
		fmt.Fprintf(Out, "Did you mean: %s?\n", strings.Join(hints, ", "))
		return
	}
	fmt.Fprintln(Out)
	fmt.Fprint(Out, FormatGlobalUsage())
}
