package commands

import (
	"SmartMusic/internal/cli/bootstrap"
	"SmartMusic/internal/config"
	"SmartMusic/internal/model"
	"context"
	"fmt"
	"strconv"
)

type adminCmd struct{}

func (adminCmd) Name() string        { return "admin" }
func (adminCmd) Description() string { return "Administrative actions (admin only)" }
func (adminCmd) Usage() string {
	return "admin users | block <user-id> | role <user-id> <user|premium|admin> | reset-password <user-id> <password> | fake-likes <song-id> <n>"
}

func (adminCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	sub, rest := args[0], args[1:]
	return withAdmin(ctx, cfg, func(env *bootstrap.Env, _ model.PublicUser) error {
		switch {
		case sub == "users" && len(rest) == 0:
			users, err := env.Library.ListUsers(ctx)
			if err != nil {
				return err
			}
			for _, u := range users {
				blocked := ""
				if u.IsBlocked {
					blocked = " (blocked)"
				}
				fmt.Fprintf(Out, "- %s  %s  <%s>  %s%s\n", u.ID, u.Username, u.Email, u.Role, blocked)
			}
			return nil

		case sub == "block" && len(rest) == 1:
			blocked, err := env.Library.ToggleUserBlock(ctx, rest[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(Out, "User %s blocked=%t\n", rest[0], blocked)
			return nil

		case sub == "role" && len(rest) == 2:
			if err := env.Library.UpdateUserRole(ctx, rest[0], model.Role(rest[1])); err != nil {
				return err
			}
			fmt.Fprintf(Out, "User %s role=%s\n", rest[0], rest[1])
			return nil

		case sub == "reset-password" && len(rest) == 2:
			if err := env.Library.ResetPassword(ctx, rest[0], rest[1]); err != nil {
				return err
			}
			fmt.Fprintf(Out, "Password reset for %s\n", rest[0])
			return nil

		case sub == "fake-likes" && len(rest) == 2:
			songID, err := parseSongID(rest[0])
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(rest[1])
			if err != nil {
				return ErrUsage
			}
			if err := env.Library.AddFakeLikes(ctx, songID, n); err != nil {
				return err
			}
			total, err := env.Library.LikeCount(ctx, songID)
			if err != nil {
				return err
			}
			fmt.Fprintf(Out, "Song %d now has %d likes\n", songID, total)
			return nil
		}
		return ErrUsage
	})
}

type reconcileCmd struct{}

func (reconcileCmd) Name() string        { return "reconcile" }
func (reconcileCmd) Description() string { return "Remove blobs no song references (admin)" }
func (reconcileCmd) Usage() string       { return "reconcile" }

func (reconcileCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return withAdmin(ctx, cfg, func(env *bootstrap.Env, _ model.PublicUser) error {
		removed, err := env.Library.ReconcileBlobs(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(Out, "Removed %d orphaned blob(s)\n", len(removed))
		for _, k := range removed {
			fmt.Fprintf(Out, "  - %s\n", k)
		}
		return nil
	})
}

func init() {
	RegisterCmd(adminCmd{})
	RegisterCmd(reconcileCmd{})
}
