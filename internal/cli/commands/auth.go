package commands

import (
	"SmartMusic/internal/cli/bootstrap"
	"SmartMusic/internal/config"
	"SmartMusic/internal/model"
	"SmartMusic/internal/service"
	"context"
	"fmt"
)

type signupCmd struct{}

func (signupCmd) Name() string        { return "signup" }
func (signupCmd) Description() string { return "Create an account and start a session" }
func (signupCmd) Usage() string       { return "signup <email> <password> [username]" }

func (signupCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return ErrUsage
	}
	username := ""
	if len(args) == 3 {
		username = args[2]
	}
	return withEnv(cfg, func(env *bootstrap.Env) error {
		u, err := env.Library.Signup(ctx, username, args[0], args[1])
		if err != nil {
			return err
		}
		if err := env.StartSession(u, cfg.AuthSecret); err != nil {
			return err
		}
		fmt.Fprintf(Out, "Signed up as %s (%s)\n", u.Username, u.ID)
		return nil
	})
}

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Login and store the session token" }
func (loginCmd) Usage() string       { return "login [email] <password>" }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	return withEnv(cfg, func(env *bootstrap.Env) error {
		email, password := "", args[0]
		if len(args) == 2 {
			email, password = args[0], args[1]
		} else {
			last, err := env.Sessions.LoadLogin()
			if err != nil {
				return ErrUsage
			}
			email = last
		}
		u, err := env.Library.Login(ctx, email, password)
		if err != nil {
			return err
		}
		if err := env.StartSession(u, cfg.AuthSecret); err != nil {
			return err
		}
		fmt.Fprintln(Out, "Logged in successfully")
		return nil
	})
}

type logoutCmd struct{}

func (logoutCmd) Name() string        { return "logout" }
func (logoutCmd) Description() string { return "Forget the stored session" }
func (logoutCmd) Usage() string       { return "logout" }

func (logoutCmd) Run(_ context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return withEnv(cfg, func(env *bootstrap.Env) error {
		if err := env.Sessions.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(Out, "Logged out")
		return nil
	})
}

type whoamiCmd struct{}

func (whoamiCmd) Name() string        { return "whoami" }
func (whoamiCmd) Description() string { return "Show the current user and unread messages" }
func (whoamiCmd) Usage() string       { return "whoami" }

func (whoamiCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return withUser(ctx, cfg, func(env *bootstrap.Env, me model.PublicUser) error {
		unread, err := env.Library.UnreadCount(ctx, me.ID)
		if err != nil {
			return err
		}
		printUser(me)
		fmt.Fprintf(Out, "  unread:   %d\n", unread)
		return nil
	})
}

type profileCmd struct{}

func (profileCmd) Name() string        { return "profile" }
func (profileCmd) Description() string { return "Update a profile field" }
func (profileCmd) Usage() string       { return "profile <username|email|avatar|bio> <value>" }

func (profileCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	value := args[1]
	var upd service.ProfileUpdate
	switch args[0] {
	case "username":
		upd.Username = &value
	case "email":
		upd.Email = &value
	case "avatar":
		upd.Avatar = &value
	case "bio":
		upd.Bio = &value
	default:
		return ErrUsage
	}
	return withUser(ctx, cfg, func(env *bootstrap.Env, me model.PublicUser) error {
		u, err := env.Library.UpdateProfile(ctx, me.ID, upd)
		if err != nil {
			return err
		}
		printUser(u)
		return nil
	})
}

func printUser(u model.PublicUser) {
	fmt.Fprintf(Out, "- %s\n", u.ID)
	fmt.Fprintf(Out, "  username: %s\n", u.Username)
	fmt.Fprintf(Out, "  email:    %s\n", u.Email)
	fmt.Fprintf(Out, "  role:     %s\n", u.Role)
	if u.IsBlocked {
		fmt.Fprintln(Out, "  blocked:  yes")
	}
	if u.Bio != "" {
		fmt.Fprintf(Out, "  bio:      %s\n", u.Bio)
	}
}

func init() {
	RegisterCmd(signupCmd{})
	RegisterCmd(loginCmd{})
	RegisterCmd(logoutCmd{})
	RegisterCmd(whoamiCmd{})
	RegisterCmd(profileCmd{})
}
