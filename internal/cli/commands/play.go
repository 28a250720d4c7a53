package commands

import (
	"SmartMusic/internal/cli/bootstrap"
	"SmartMusic/internal/config"
	"SmartMusic/internal/model"
	"SmartMusic/internal/player"
	"SmartMusic/internal/session"
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

// newDevice создаёт звуковой выход; в тестах подменяется.
var newDevice = player.NewDevice

const playHelp = "n next | b prev | p pause/resume | s <sec> seek | m mode | v <0-100> volume | mute | i info | q quit"

type playCmd struct{}

func (playCmd) Name() string { return "play" }
func (playCmd) Description() string {
	return "Interactive player over songs, a playlist or liked songs"
}
func (playCmd) Usage() string {
	return "play [-mode normal|shuffle|loop|loop-one] [-playlist id | -liked] [song-id]"
}

func (playCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	modeName := fs.String("mode", player.Normal.String(), "playback mode")
	playlistID := fs.String("playlist", "", "play a playlist")
	liked := fs.Bool("liked", false, "play liked songs")
	if err := fs.Parse(args); err != nil || fs.NArg() > 1 || (*liked && *playlistID != "") {
		return ErrUsage
	}
	mode, ok := player.ParseMode(*modeName)
	if !ok {
		return ErrUsage
	}
	startID := int64(0)
	if fs.NArg() == 1 {
		id, err := parseSongID(fs.Arg(0))
		if err != nil {
			return err
		}
		startID = id
	}

	return withEnv(cfg, func(env *bootstrap.Env) error {
		me, meErr := env.CurrentUser(ctx, cfg.AuthSecret)

		var (
			queue []model.Song
			err   error
		)
		switch {
		case *liked:
			if meErr != nil {
				return meErr
			}
			queue, err = env.Library.LikedSongs(ctx, me.ID)
		case *playlistID != "":
			if meErr != nil {
				return meErr
			}
			queue, err = env.Library.PlaylistSongs(ctx, *playlistID)
		default:
			queue, err = env.Library.ListSongs(ctx)
		}
		if err != nil {
			return err
		}
		if len(queue) == 0 {
			return errors.New("nothing to play")
		}
		start := 0
		if startID != 0 {
			_, idx, found := lo.FindIndexOf(queue, func(s model.Song) bool { return s.ID == startID })
			if !found {
				return fmt.Errorf("song %d is not in the queue", startID)
			}
			start = idx
		}

		// фоновый опрос сообщений, пока пользователь слушает музыку
		if meErr == nil {
			mgr := session.NewManager(env.Library, notifier, cfg.PollInterval, logger)
			if err := mgr.Start(ctx, me); err != nil {
				logger.Warnw("session poll not started", "error", err)
			} else {
				defer mgr.End()
			}
		}

		engine := player.NewEngine(newDevice(), env.Resolver, logger)
		defer engine.Close()
		engine.SetMode(mode)
		engine.SetVolume(cfg.DefaultVolume)
		engine.OnChange(statusPrinter())

		if !player.AudioAvailable {
			fmt.Fprintln(Out, "(built without audio output: playback is silent)")
		}
		fmt.Fprintln(Out, playHelp)
		reportPlayErr(engine.LoadAndPlay(ctx, start, queue))
		return interact(ctx, engine)
	})
}

// statusPrinter печатает строку при смене трека или состояния.
func statusPrinter() func(player.Status) {
	var (
		mu   sync.Mutex
		last string
	)
	return func(st player.Status) {
		if st.Song == nil || st.State == player.Loading {
			return
		}
		line := fmt.Sprintf("[%s] %d/%d %s - %s", st.State, st.Index+1, st.Queue, st.Song.Title, st.Song.Artist)
		if st.Err != nil {
			line += fmt.Sprintf(" (error: %v)", st.Err)
		}
		mu.Lock()
		defer mu.Unlock()
		if line == last {
			return
		}
		last = line
		fmt.Fprintln(Out, line)
	}
}

func reportPlayErr(err error) {
	if err != nil && !errors.Is(err, player.ErrSuperseded) {
		fmt.Fprintf(Out, "! %v\n", err)
	}
}

// interact читает команды управления из In до q, EOF или отмены ctx.
func interact(ctx context.Context, engine *player.Engine) error {
	lines := make(chan string)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(In)
		for sc.Scan() {
			select {
			case lines <- strings.TrimSpace(sc.Text()):
			case <-stop:
				return
			}
		}
	}()

	for {
		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = l
		}
		if quit := handlePlayInput(ctx, engine, line); quit {
			return nil
		}
	}
}

func handlePlayInput(ctx context.Context, engine *player.Engine, line string) (quit bool) {
	cmd, arg, _ := strings.Cut(line, " ")
	switch cmd {
	case "":
	case "q", "quit":
		return true
	case "n", "next":
		reportPlayErr(engine.PlayNext(ctx))
	case "b", "prev":
		reportPlayErr(engine.PlayPrev(ctx))
	case "p", "pause":
		reportPlayErr(engine.TogglePlayPause(ctx))
	case "s", "seek":
		sec, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			fmt.Fprintln(Out, "! seek expects seconds")
			return false
		}
		reportPlayErr(engine.Seek(time.Duration(sec * float64(time.Second))))
	case "m", "mode":
		fmt.Fprintf(Out, "mode: %s\n", engine.ToggleMode())
	case "v", "volume":
		pct, err := strconv.Atoi(arg)
		if err != nil {
			fmt.Fprintln(Out, "! volume expects 0-100")
			return false
		}
		engine.SetVolume(float64(pct) / 100)
		fmt.Fprintf(Out, "volume: %.0f%%\n", engine.Status().Volume*100)
	case "mute":
		fmt.Fprintf(Out, "muted: %t\n", engine.ToggleMute())
	case "i", "info":
		st := engine.Status()
		title := "-"
		if st.Song != nil {
			title = st.Song.Title
		}
		fmt.Fprintf(Out, "%s %q %s/%s mode=%s volume=%.0f%% muted=%t\n",
			st.State, title, st.Position.Truncate(time.Second), st.Duration.Truncate(time.Second),
			st.Mode, st.Volume*100, st.Muted)
	default:
		fmt.Fprintln(Out, playHelp)
	}
	return false
}

func init() { RegisterCmd(playCmd{}) }
