package commands

import (
	"SmartMusic/internal/cli/bootstrap"
	"SmartMusic/internal/config"
	"SmartMusic/internal/model"
	"context"
	"fmt"
)

type playlistNewCmd struct{}

func (playlistNewCmd) Name() string        { return "playlist-new" }
func (playlistNewCmd) Description() string { return "Create a playlist" }
func (playlistNewCmd) Usage() string       { return "playlist-new <name>" }

func (playlistNewCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	return withUser(ctx, cfg, func(env *bootstrap.Env, me model.PublicUser) error {
		p, err := env.Library.CreatePlaylist(ctx, me.ID, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(Out, "Created playlist %q: %s\n", p.Name, p.ID)
		return nil
	})
}

type playlistAddCmd struct{}

func (playlistAddCmd) Name() string        { return "playlist-add" }
func (playlistAddCmd) Description() string { return "Add a song to one of your playlists" }
func (playlistAddCmd) Usage() string       { return "playlist-add <playlist-id> <song-id>" }

func (playlistAddCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	songID, err := parseSongID(args[1])
	if err != nil {
		return err
	}
	return withUser(ctx, cfg, func(env *bootstrap.Env, me model.PublicUser) error {
		if err := ownPlaylist(ctx, env, me.ID, args[0]); err != nil {
			return err
		}
		if _, err := env.Library.GetSong(ctx, songID); err != nil {
			return err
		}
		if err := env.Library.AddToPlaylist(ctx, args[0], songID); err != nil {
			return err
		}
		fmt.Fprintf(Out, "Added song %d to %s\n", songID, args[0])
		return nil
	})
}

type playlistsCmd struct{}

func (playlistsCmd) Name() string        { return "playlists" }
func (playlistsCmd) Description() string { return "List your playlists, or the songs of one" }
func (playlistsCmd) Usage() string       { return "playlists [playlist-id]" }

func (playlistsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 1 {
		return ErrUsage
	}
	return withUser(ctx, cfg, func(env *bootstrap.Env, me model.PublicUser) error {
		if len(args) == 1 {
			songs, err := env.Library.PlaylistSongs(ctx, args[0])
			if err != nil {
				return err
			}
			return printSongs(ctx, env, songs)
		}
		list, err := env.Library.PlaylistsByOwner(ctx, me.ID)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(Out, "Нет плейлистов")
			return nil
		}
		for _, p := range list {
			fmt.Fprintf(Out, "- %s  %s  songs=%d\n", p.ID, p.Name, len(p.Songs))
		}
		return nil
	})
}

// ownPlaylist проверяет, что плейлист существует и принадлежит пользователю.
func ownPlaylist(ctx context.Context, env *bootstrap.Env, userID, playlistID string) error {
	list, err := env.Library.PlaylistsByOwner(ctx, userID)
	if err != nil {
		return err
	}
	for _, p := range list {
		if p.ID == playlistID {
			return nil
		}
	}
	return fmt.Errorf("playlist %s not found among your playlists", playlistID)
}

func init() {
	RegisterCmd(playlistNewCmd{})
	RegisterCmd(playlistAddCmd{})
	RegisterCmd(playlistsCmd{})
}
