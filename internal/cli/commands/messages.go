package commands

import (
	"SmartMusic/internal/cli/bootstrap"
	"SmartMusic/internal/config"
	"SmartMusic/internal/model"
	"SmartMusic/internal/session"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// notifier используется фоновым опросом сессии; в тестах подменяется.
var notifier session.Notifier = desktopNotifier{}

type sendCmd struct{}

func (sendCmd) Name() string        { return "send" }
func (sendCmd) Description() string { return "Send a direct message" }
func (sendCmd) Usage() string       { return "send <user-id> <text...>" }

func (sendCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	return withUser(ctx, cfg, func(env *bootstrap.Env, me model.PublicUser) error {
		m, err := env.Library.SendMessage(ctx, me.ID, args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(Out, "Sent %s\n", m.ID)
		return nil
	})
}

type chatCmd struct{}

func (chatCmd) Name() string        { return "chat" }
func (chatCmd) Description() string { return "Show the conversation with a user and mark it read" }
func (chatCmd) Usage() string       { return "chat <user-id>" }

func (chatCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	return withUser(ctx, cfg, func(env *bootstrap.Env, me model.PublicUser) error {
		other, err := env.Library.GetUser(ctx, args[0])
		if err != nil {
			return err
		}
		history, err := env.Library.ChatHistory(ctx, me.ID, other.ID)
		if err != nil {
			return err
		}
		if len(history) == 0 {
			fmt.Fprintln(Out, "Нет сообщений")
		}
		for _, m := range history {
			from := other.Username
			if m.FromID == me.ID {
				from = "you"
			}
			fmt.Fprintf(Out, "[%s] %s: %s\n", humanize.Time(time.UnixMilli(m.Timestamp)), from, m.Content)
		}
		if _, err := env.Library.MarkMessagesAsRead(ctx, me.ID, other.ID); err != nil {
			return err
		}
		return nil
	})
}

type inboxCmd struct{}

func (inboxCmd) Name() string        { return "inbox" }
func (inboxCmd) Description() string { return "List conversations and unread count" }
func (inboxCmd) Usage() string       { return "inbox" }

func (inboxCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return withUser(ctx, cfg, func(env *bootstrap.Env, me model.PublicUser) error {
		unread, err := env.Library.UnreadCount(ctx, me.ID)
		if err != nil {
			return err
		}
		partners, err := env.Library.Conversations(ctx, me.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(Out, "Unread: %d\n", unread)
		for _, u := range partners {
			fmt.Fprintf(Out, "- %s  %s\n", u.ID, u.Username)
		}
		return nil
	})
}

type watchCmd struct{}

func (watchCmd) Name() string        { return "watch" }
func (watchCmd) Description() string { return "Stay online and notify about new messages" }
func (watchCmd) Usage() string       { return "watch" }

func (watchCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return withUser(ctx, cfg, func(env *bootstrap.Env, me model.PublicUser) error {
		mgr := session.NewManager(env.Library, notifier, cfg.PollInterval, logger)
		if err := mgr.Start(ctx, me); err != nil {
			return err
		}
		defer mgr.End()
		fmt.Fprintf(Out, "Watching messages for %s (unread: %d). Ctrl+C to stop.\n", me.Username, mgr.Unread())
		<-ctx.Done()
		return nil
	})
}

func init() {
	RegisterCmd(sendCmd{})
	RegisterCmd(chatCmd{})
	RegisterCmd(inboxCmd{})
	RegisterCmd(watchCmd{})
}
