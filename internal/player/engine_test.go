package player

import (
	"SmartMusic/internal/model"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDevice struct {
	mu       sync.Mutex
	playing  bool
	loaded   bool
	plays    int
	onEnd    func()
	playErr  error
	seekedTo time.Duration
	volume   float64
	muted    bool
	closed   bool
	pauses   int

	// seekGate, если задан, задерживает Seek, пока движок держит devMu.
	seekGate    chan struct{}
	seekEntered chan struct{}
}

func (d *fakeDevice) Play(src io.ReadCloser, onEnd func()) error {
	defer src.Close()
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.playErr != nil {
		return d.playErr
	}
	d.plays++
	d.loaded, d.playing, d.onEnd = true, true, onEnd
	return nil
}

func (d *fakeDevice) Pause() {
	d.mu.Lock()
	d.playing = false
	d.pauses++
	d.mu.Unlock()
}

func (d *fakeDevice) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.loaded {
		return ErrNoSource
	}
	d.playing = true
	return nil
}

func (d *fakeDevice) Seek(pos time.Duration) error {
	d.mu.Lock()
	gate, entered := d.seekGate, d.seekEntered
	d.mu.Unlock()
	if gate != nil {
		close(entered)
		<-gate
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.loaded {
		return ErrNoSource
	}
	d.seekedTo = pos
	return nil
}

func (d *fakeDevice) Position() time.Duration { return 0 }
func (d *fakeDevice) Duration() time.Duration { return time.Minute }

func (d *fakeDevice) SetVolume(v float64, muted bool) {
	d.mu.Lock()
	d.volume, d.muted = v, muted
	d.mu.Unlock()
}

func (d *fakeDevice) Stop() {
	d.mu.Lock()
	d.loaded, d.playing, d.onEnd = false, false, nil
	d.mu.Unlock()
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}

// finish имитирует окончание трека, как это делает устройство.
func (d *fakeDevice) finish() {
	d.mu.Lock()
	fn := d.onEnd
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}

type fakeResolver struct {
	mu       sync.Mutex
	gates    map[string]chan struct{}
	failing  map[string]bool
	minted   int
	released []string
	entered  chan string

	ignoreCtx bool
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{gates: map[string]chan struct{}{}, failing: map[string]bool{}, entered: make(chan string, 16)}
}

// hold заставляет Resolve(ref) ждать, пока не будет вызван release-канал или отменён ctx.
func (r *fakeResolver) hold(ref string) chan struct{} {
	ch := make(chan struct{})
	r.mu.Lock()
	r.gates[ref] = ch
	r.mu.Unlock()
	return ch
}

func (r *fakeResolver) Resolve(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	r.mu.Lock()
	gate := r.gates[ref]
	fail := r.failing[ref]
	r.mu.Unlock()
	if gate != nil {
		r.entered <- ref
		if r.ignoreCtx {
			<-gate
		} else {
			select {
			case <-gate:
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	if fail {
		return "", fmt.Errorf("%w: %s unavailable", ErrMediaFault, ref)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.minted++
	return fmt.Sprintf("blob:test/%d/%s", r.minted, ref), nil
}

func (r *fakeResolver) Release(loc string) {
	if loc == "" {
		return
	}
	r.mu.Lock()
	r.released = append(r.released, loc)
	r.mu.Unlock()
}

func (r *fakeResolver) Open(ctx context.Context, loc string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(loc)), nil
}

func (r *fakeResolver) releasedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.released)
}

func songs(n int) []model.Song {
	out := make([]model.Song, n)
	for i := range out {
		out[i] = model.Song{ID: int64(i + 1), Title: fmt.Sprintf("t%d", i), File: fmt.Sprintf("local:audio_%d", i+1)}
	}
	return out
}

func newTestEngine(t *testing.T) (*Engine, *fakeDevice, *fakeResolver) {
	t.Helper()
	dev := &fakeDevice{}
	res := newFakeResolver()
	e := NewEngine(dev, res, zap.NewNop().Sugar())
	t.Cleanup(func() { _ = e.Close() })
	return e, dev, res
}

func TestEngine_LoadAndPlay(t *testing.T) {
	ctx := context.Background()
	e, dev, res := newTestEngine(t)
	assert.Equal(t, Idle, e.Status().State)

	q := songs(3)
	q[1].Art = "local:art_2"
	require.NoError(t, e.LoadAndPlay(ctx, 1, q))

	st := e.Status()
	assert.Equal(t, Playing, st.State)
	assert.True(t, st.Playing)
	assert.Equal(t, 1, st.Index)
	require.NotNil(t, st.Song)
	assert.Equal(t, int64(2), st.Song.ID)
	assert.Contains(t, st.AudioLocator, "audio_2")
	assert.Contains(t, st.ArtLocator, "art_2")
	assert.Equal(t, time.Minute, st.Duration)
	assert.Equal(t, 1, dev.plays)

	t.Run("previous locators released on next load", func(t *testing.T) {
		require.NoError(t, e.LoadAndPlay(ctx, 0, nil))
		assert.Equal(t, 2, res.releasedCount())
		assert.Equal(t, ArtPlaceholder, e.Status().ArtLocator)
	})

	t.Run("out of range leaves state untouched", func(t *testing.T) {
		before := e.Status()
		err := e.LoadAndPlay(ctx, 3, nil)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		err = e.LoadAndPlay(ctx, -1, nil)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		err = e.LoadAndPlay(ctx, 2, []model.Song{})
		assert.ErrorIs(t, err, ErrIndexOutOfRange)

		after := e.Status()
		assert.Equal(t, before.State, after.State)
		assert.Equal(t, before.Index, after.Index)
		assert.Equal(t, 3, after.Queue)
	})
}

func TestEngine_LoadFailurePauses(t *testing.T) {
	ctx := context.Background()
	e, dev, res := newTestEngine(t)
	q := songs(2)
	res.failing[q[0].File] = true

	err := e.LoadAndPlay(ctx, 0, q)
	require.ErrorIs(t, err, ErrMediaFault)
	st := e.Status()
	assert.Equal(t, Paused, st.State)
	assert.False(t, st.Playing)
	assert.Equal(t, 0, st.Index)
	assert.ErrorIs(t, st.Err, ErrMediaFault)

	// источника нет - resume не запускает воспроизведение
	assert.ErrorIs(t, e.Resume(ctx), ErrMediaFault)
	assert.Equal(t, Paused, e.Status().State)

	t.Run("song without audio", func(t *testing.T) {
		err := e.LoadAndPlay(ctx, 0, []model.Song{{ID: 9, Title: "empty"}})
		assert.ErrorIs(t, err, ErrMediaFault)
		assert.Equal(t, Paused, e.Status().State)
	})

	t.Run("device failure", func(t *testing.T) {
		dev.playErr = errors.New("no speaker")
		err := e.LoadAndPlay(ctx, 1, q)
		assert.ErrorIs(t, err, ErrMediaFault)
		assert.Equal(t, Paused, e.Status().State)
		dev.playErr = nil
	})
}

func TestEngine_PlayNextAtQueueEnd(t *testing.T) {
	ctx := context.Background()
	q := songs(4)

	t.Run("normal stays put", func(t *testing.T) {
		e, dev, _ := newTestEngine(t)
		require.NoError(t, e.LoadAndPlay(ctx, 3, q))
		dev.finish()

		st := e.Status()
		assert.Equal(t, 3, st.Index)
		assert.Equal(t, Paused, st.State)
		assert.Equal(t, 1, dev.plays)
	})

	t.Run("normal next while playing keeps playing", func(t *testing.T) {
		e, _, _ := newTestEngine(t)
		require.NoError(t, e.LoadAndPlay(ctx, 3, q))
		require.NoError(t, e.PlayNext(ctx))
		st := e.Status()
		assert.Equal(t, 3, st.Index)
		assert.Equal(t, Playing, st.State)
	})

	t.Run("loop wraps to zero through loading", func(t *testing.T) {
		e, _, res := newTestEngine(t)
		require.NoError(t, e.LoadAndPlay(ctx, 3, q))
		e.SetMode(Loop)

		gate := res.hold(q[0].File)
		done := make(chan error, 1)
		go func() { done <- e.PlayNext(ctx) }()
		<-res.entered

		st := e.Status()
		assert.Equal(t, 0, st.Index)
		assert.Equal(t, Loading, st.State)

		close(gate)
		require.NoError(t, <-done)
		assert.Equal(t, Playing, e.Status().State)
	})

	t.Run("shuffle picks within range", func(t *testing.T) {
		e, _, _ := newTestEngine(t)
		require.NoError(t, e.LoadAndPlay(ctx, 3, q))
		e.SetMode(Shuffle)
		for i := 0; i < 50; i++ {
			require.NoError(t, e.PlayNext(ctx))
			idx := e.Status().Index
			assert.GreaterOrEqual(t, idx, 0)
			assert.Less(t, idx, 4)
		}
	})

	t.Run("shuffle uses random source", func(t *testing.T) {
		e, _, _ := newTestEngine(t)
		e.intn = func(n int) int { return n - 2 }
		require.NoError(t, e.LoadAndPlay(ctx, 0, q))
		e.SetMode(Shuffle)
		require.NoError(t, e.PlayNext(ctx))
		assert.Equal(t, 2, e.Status().Index)
	})
}

func TestEngine_PlayPrevWraps(t *testing.T) {
	ctx := context.Background()
	for _, mode := range []Mode{Normal, Shuffle, Loop, LoopOne} {
		t.Run(mode.String(), func(t *testing.T) {
			e, _, _ := newTestEngine(t)
			require.NoError(t, e.LoadAndPlay(ctx, 0, songs(4)))
			e.SetMode(mode)
			require.NoError(t, e.PlayPrev(ctx))
			assert.Equal(t, 3, e.Status().Index)
			require.NoError(t, e.PlayPrev(ctx))
			assert.Equal(t, 2, e.Status().Index)
		})
	}
}

func TestEngine_TrackEnd(t *testing.T) {
	ctx := context.Background()

	t.Run("normal advances", func(t *testing.T) {
		e, dev, _ := newTestEngine(t)
		require.NoError(t, e.LoadAndPlay(ctx, 0, songs(3)))
		dev.finish()
		assert.Equal(t, 1, e.Status().Index)
		assert.Equal(t, Playing, e.Status().State)
	})

	t.Run("loop one replays same index", func(t *testing.T) {
		e, dev, _ := newTestEngine(t)
		require.NoError(t, e.LoadAndPlay(ctx, 1, songs(3)))
		e.SetMode(LoopOne)
		dev.finish()
		assert.Equal(t, 1, e.Status().Index)
		assert.Equal(t, Playing, e.Status().State)
		assert.Equal(t, 2, dev.plays)
	})

	t.Run("stale end signal ignored", func(t *testing.T) {
		e, dev, _ := newTestEngine(t)
		require.NoError(t, e.LoadAndPlay(ctx, 0, songs(3)))
		dev.mu.Lock()
		staleEnd := dev.onEnd
		dev.mu.Unlock()

		require.NoError(t, e.LoadAndPlay(ctx, 2, nil))
		staleEnd()
		assert.Equal(t, 2, e.Status().Index)
		assert.Equal(t, Playing, e.Status().State)
	})

	t.Run("end while paused ignored", func(t *testing.T) {
		e, dev, _ := newTestEngine(t)
		require.NoError(t, e.LoadAndPlay(ctx, 0, songs(3)))
		require.NoError(t, e.Pause())
		dev.finish()
		assert.Equal(t, 0, e.Status().Index)
		assert.Equal(t, Paused, e.Status().State)
	})
}

func TestEngine_Supersede(t *testing.T) {
	ctx := context.Background()
	e, dev, res := newTestEngine(t)
	q := songs(3)

	res.hold(q[0].File) // никогда не отпускаем: первая загрузка отменяется контекстом
	first := make(chan error, 1)
	go func() { first <- e.LoadAndPlay(ctx, 0, q) }()
	<-res.entered

	require.NoError(t, e.LoadAndPlay(ctx, 2, nil))
	assert.ErrorIs(t, <-first, ErrSuperseded)

	st := e.Status()
	assert.Equal(t, 2, st.Index)
	assert.Equal(t, Playing, st.State)
	assert.Contains(t, st.AudioLocator, "audio_3")
	assert.Equal(t, 1, dev.plays)
}

func TestEngine_SupersededResultReleased(t *testing.T) {
	ctx := context.Background()
	e, _, res := newTestEngine(t)
	res.ignoreCtx = true
	q := songs(2)

	// первая загрузка не реагирует на отмену и получает локатор уже устаревшей
	gate := res.hold(q[0].File)
	first := make(chan error, 1)
	go func() { first <- e.LoadAndPlay(ctx, 0, q) }()
	<-res.entered

	require.NoError(t, e.LoadAndPlay(ctx, 1, nil))
	close(gate)

	assert.ErrorIs(t, <-first, ErrSuperseded)
	assert.Equal(t, 1, e.Status().Index)
	assert.Equal(t, Playing, e.Status().State)

	res.mu.Lock()
	defer res.mu.Unlock()
	assert.Condition(t, func() bool {
		for _, loc := range res.released {
			if strings.HasSuffix(loc, q[0].File) {
				return true
			}
		}
		return false
	}, "stale locator must be released")
}

func TestEngine_PauseResumeSeek(t *testing.T) {
	ctx := context.Background()
	e, dev, _ := newTestEngine(t)

	assert.ErrorIs(t, e.Pause(), ErrInvalidState)
	assert.ErrorIs(t, e.Resume(ctx), ErrInvalidState)
	assert.ErrorIs(t, e.Seek(time.Second), ErrInvalidState)
	assert.ErrorIs(t, e.TogglePlayPause(ctx), ErrInvalidState)

	require.NoError(t, e.LoadAndPlay(ctx, 0, songs(2)))
	require.NoError(t, e.TogglePlayPause(ctx))
	assert.Equal(t, Paused, e.Status().State)
	assert.False(t, dev.playing)
	require.NoError(t, e.Pause())

	require.NoError(t, e.Seek(90*time.Second))
	assert.Equal(t, 90*time.Second, dev.seekedTo)

	require.NoError(t, e.TogglePlayPause(ctx))
	assert.Equal(t, Playing, e.Status().State)
	assert.True(t, dev.playing)
	require.NoError(t, e.Seek(-time.Second))
	assert.Equal(t, -time.Second, dev.seekedTo)

	t.Run("resume from ended restarts track", func(t *testing.T) {
		e, dev, _ := newTestEngine(t)
		require.NoError(t, e.LoadAndPlay(ctx, 0, songs(1)))
		e.mu.Lock()
		e.state = Ended
		e.mu.Unlock()
		assert.ErrorIs(t, e.Seek(0), ErrInvalidState)
		require.NoError(t, e.Resume(ctx))
		assert.Equal(t, Playing, e.Status().State)
		assert.Equal(t, 2, dev.plays)
	})
}

func TestEngine_PauseDoesNotStopNewerTrack(t *testing.T) {
	ctx := context.Background()
	e, dev, _ := newTestEngine(t)
	require.NoError(t, e.LoadAndPlay(ctx, 0, songs(2)))

	stateIs := func(want State) func() bool {
		return func() bool {
			e.mu.Lock()
			defer e.mu.Unlock()
			return e.state == want
		}
	}

	// Seek занимает устройство, пока не открыт gate.
	gate, entered := make(chan struct{}), make(chan struct{})
	dev.mu.Lock()
	dev.seekGate, dev.seekEntered = gate, entered
	dev.mu.Unlock()
	seeked := make(chan error, 1)
	go func() { seeked <- e.Seek(time.Second) }()
	<-entered

	paused := make(chan error, 1)
	go func() { paused <- e.Pause() }()
	require.Eventually(t, stateIs(Paused), time.Second, time.Millisecond)

	loaded := make(chan error, 1)
	go func() { loaded <- e.LoadAndPlay(ctx, 1, nil) }()
	require.Eventually(t, stateIs(Loading), time.Second, time.Millisecond)

	close(gate)
	require.NoError(t, <-seeked)
	assert.ErrorIs(t, <-paused, ErrSuperseded)
	require.NoError(t, <-loaded)

	st := e.Status()
	assert.Equal(t, Playing, st.State)
	assert.Equal(t, 1, st.Index)
	dev.mu.Lock()
	defer dev.mu.Unlock()
	assert.Zero(t, dev.pauses)
	assert.True(t, dev.playing)
}

func TestEngine_ModesAndVolume(t *testing.T) {
	e, dev, _ := newTestEngine(t)

	assert.Equal(t, Shuffle, e.ToggleMode())
	assert.Equal(t, Loop, e.ToggleMode())
	assert.Equal(t, Normal, e.ToggleMode())
	e.SetMode(LoopOne)
	assert.Equal(t, Normal, e.ToggleMode())

	e.SetVolume(0.4)
	assert.Equal(t, 0.4, e.Status().Volume)
	assert.Equal(t, 0.4, dev.volume)
	e.SetVolume(7)
	assert.Equal(t, 1.0, e.Status().Volume)
	e.SetVolume(-1)
	assert.Equal(t, 0.0, e.Status().Volume)

	assert.True(t, e.ToggleMute())
	assert.True(t, dev.muted)
	assert.False(t, e.ToggleMute())
	e.SetMuted(true)
	assert.True(t, e.Status().Muted)
}

func TestEngine_OnChangeAndClose(t *testing.T) {
	ctx := context.Background()
	e, dev, res := newTestEngine(t)

	var mu sync.Mutex
	var states []State
	e.OnChange(func(s Status) {
		mu.Lock()
		states = append(states, s.State)
		mu.Unlock()
	})
	require.NoError(t, e.LoadAndPlay(ctx, 0, songs(1)))
	mu.Lock()
	assert.Equal(t, []State{Loading, Playing}, states)
	mu.Unlock()

	require.NoError(t, e.Close())
	assert.True(t, dev.closed)
	assert.Equal(t, 1, res.releasedCount())
	assert.ErrorIs(t, e.LoadAndPlay(ctx, 0, nil), ErrClosed)
	assert.NoError(t, e.Close())
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{Normal, Shuffle, Loop, LoopOne} {
		got, ok := ParseMode(m.String())
		assert.True(t, ok)
		assert.Equal(t, m, got)
	}
	_, ok := ParseMode("repeat")
	assert.False(t, ok)
}
