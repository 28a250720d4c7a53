package commands

import (
	"SmartMusic/internal/cli/bootstrap"
	"SmartMusic/internal/config"
	"SmartMusic/internal/media"
	"SmartMusic/internal/model"
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

type songsCmd struct{}

func (songsCmd) Name() string        { return "songs" }
func (songsCmd) Description() string { return "List songs, optionally filtered by title or artist" }
func (songsCmd) Usage() string       { return "songs [query]" }

func (songsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 1 {
		return ErrUsage
	}
	return withEnv(cfg, func(env *bootstrap.Env) error {
		var (
			list []model.Song
			err  error
		)
		if len(args) == 1 {
			list, err = env.Library.SearchSongs(ctx, args[0])
		} else {
			list, err = env.Library.ListSongs(ctx)
		}
		if err != nil {
			return err
		}
		return printSongs(ctx, env, list)
	})
}

type songCmd struct{}

func (songCmd) Name() string        { return "song" }
func (songCmd) Description() string { return "Show a song with its likers" }
func (songCmd) Usage() string       { return "song <song-id>" }

func (songCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	id, err := parseSongID(args[0])
	if err != nil {
		return err
	}
	return withEnv(cfg, func(env *bootstrap.Env) error {
		s, err := env.Library.GetSong(ctx, id)
		if err != nil {
			return err
		}
		likes, err := env.Library.LikeCount(ctx, id)
		if err != nil {
			return err
		}
		likers, err := env.Library.SongLikers(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(Out, "- %d\n", s.ID)
		fmt.Fprintf(Out, "  title:  %s\n", s.Title)
		fmt.Fprintf(Out, "  artist: %s\n", s.Artist)
		fmt.Fprintf(Out, "  file:   %s\n", s.File)
		if s.Art != "" {
			fmt.Fprintf(Out, "  art:    %s\n", s.Art)
		}
		fmt.Fprintf(Out, "  likes:  %d\n", likes)
		for _, u := range likers {
			fmt.Fprintf(Out, "    ♥ %s\n", u.Username)
		}
		return nil
	})
}

type songAddCmd struct{}

func (songAddCmd) Name() string        { return "song-add" }
func (songAddCmd) Description() string { return "Add a song from a local audio file or URL (admin)" }
func (songAddCmd) Usage() string {
	return "song-add [-title t] [-artist a] [-art file|url] <file|url>"
}

func (songAddCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("song-add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	title := fs.String("title", "", "song title")
	artist := fs.String("artist", "", "song artist")
	artSrc := fs.String("art", "", "cover art file or URL")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return ErrUsage
	}
	src := fs.Arg(0)

	song := model.Song{ID: model.NewSongID, Title: *title, Artist: *artist}
	var audio, art []byte
	if isURL(src) {
		song.File = src
		if song.Title == "" {
			song.Title = strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
		}
	} else {
		data, err := readLimited(src, cfg.BlobMaxSizeMB)
		if err != nil {
			return err
		}
		audio = data
		tags := media.ReadTags(bytes.NewReader(data), filepath.Base(src))
		if song.Title == "" {
			song.Title = tags.Title
		}
		if song.Artist == "" {
			song.Artist = tags.Artist
		}
		art = tags.Art
	}
	switch {
	case isURL(*artSrc):
		song.Art, art = *artSrc, nil
	case *artSrc != "":
		data, err := readLimited(*artSrc, cfg.BlobMaxSizeMB)
		if err != nil {
			return err
		}
		art = data
	}
	if song.Artist == "" {
		song.Artist = "Unknown"
	}

	return withAdmin(ctx, cfg, func(env *bootstrap.Env, me model.PublicUser) error {
		saved, err := env.Library.SaveSong(ctx, song, me.ID, audio, art)
		if err != nil {
			return err
		}
		fmt.Fprintln(Out, "Created:")
		fmt.Fprintf(Out, "  id:     %d\n", saved.ID)
		fmt.Fprintf(Out, "  title:  %s\n", saved.Title)
		fmt.Fprintf(Out, "  artist: %s\n", saved.Artist)
		if len(audio) > 0 {
			fmt.Fprintf(Out, "  audio:  %s stored locally\n", humanize.Bytes(uint64(len(audio))))
		}
		if len(art) > 0 {
			fmt.Fprintf(Out, "  art:    %s stored locally\n", humanize.Bytes(uint64(len(art))))
		}
		return nil
	})
}

type songEditCmd struct{}

func (songEditCmd) Name() string        { return "song-edit" }
func (songEditCmd) Description() string { return "Change a song's title, artist or art URL (admin)" }
func (songEditCmd) Usage() string       { return "song-edit <song-id> <title|artist|art> <value>" }

func (songEditCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 3 {
		return ErrUsage
	}
	id, err := parseSongID(args[0])
	if err != nil {
		return err
	}
	return withAdmin(ctx, cfg, func(env *bootstrap.Env, _ model.PublicUser) error {
		s, err := env.Library.GetSong(ctx, id)
		if err != nil {
			return err
		}
		switch args[1] {
		case "title":
			s.Title = args[2]
		case "artist":
			s.Artist = args[2]
		case "art":
			s.Art = args[2]
		default:
			return ErrUsage
		}
		if _, err := env.Library.SaveSong(ctx, s, "", nil, nil); err != nil {
			return err
		}
		fmt.Fprintf(Out, "Updated song %d\n", id)
		return nil
	})
}

type songRmCmd struct{}

func (songRmCmd) Name() string        { return "song-rm" }
func (songRmCmd) Description() string { return "Delete a song with its media (admin)" }
func (songRmCmd) Usage() string       { return "song-rm <song-id>" }

func (songRmCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	id, err := parseSongID(args[0])
	if err != nil {
		return err
	}
	return withAdmin(ctx, cfg, func(env *bootstrap.Env, _ model.PublicUser) error {
		if err := env.Library.DeleteSong(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(Out, "Deleted song %d\n", id)
		return nil
	})
}

type likeCmd struct{}

func (likeCmd) Name() string        { return "like" }
func (likeCmd) Description() string { return "Like or unlike a song" }
func (likeCmd) Usage() string       { return "like <song-id>" }

func (likeCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	id, err := parseSongID(args[0])
	if err != nil {
		return err
	}
	return withUser(ctx, cfg, func(env *bootstrap.Env, me model.PublicUser) error {
		liked, err := env.Library.ToggleLike(ctx, me.ID, id)
		if err != nil {
			return err
		}
		if liked {
			fmt.Fprintf(Out, "♥ liked song %d\n", id)
		} else {
			fmt.Fprintf(Out, "unliked song %d\n", id)
		}
		return nil
	})
}

type likedCmd struct{}

func (likedCmd) Name() string        { return "liked" }
func (likedCmd) Description() string { return "List songs you liked" }
func (likedCmd) Usage() string       { return "liked" }

func (likedCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return withUser(ctx, cfg, func(env *bootstrap.Env, me model.PublicUser) error {
		list, err := env.Library.LikedSongs(ctx, me.ID)
		if err != nil {
			return err
		}
		return printSongs(ctx, env, list)
	})
}

func printSongs(ctx context.Context, env *bootstrap.Env, list []model.Song) error {
	if len(list) == 0 {
		fmt.Fprintln(Out, "Нет песен")
		return nil
	}
	for _, s := range list {
		likes, err := env.Library.LikeCount(ctx, s.ID)
		if err != nil {
			return err
		}
		where := "remote"
		if _, ok := model.BlobKey(s.File); ok {
			where = "local"
		}
		fmt.Fprintf(Out, "- %d  %s - %s  likes=%d  (%s)\n", s.ID, s.Title, s.Artist, likes, where)
	}
	return nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// readLimited читает файл целиком, отказываясь от файлов больше maxMB мегабайт.
func readLimited(path string, maxMB int) ([]byte, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if maxMB > 0 && st.Size() > int64(maxMB)*1024*1024 {
		return nil, fmt.Errorf("%s is %s, limit is %d MB", path, humanize.Bytes(uint64(st.Size())), maxMB)
	}
	return os.ReadFile(path)
}

func init() {
	RegisterCmd(songsCmd{})
	RegisterCmd(songCmd{})
	RegisterCmd(songAddCmd{})
	RegisterCmd(songEditCmd{})
	RegisterCmd(songRmCmd{})
	RegisterCmd(likeCmd{})
	RegisterCmd(likedCmd{})
}
