package player

import (
	"SmartMusic/internal/media"
	"SmartMusic/internal/model"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrIndexOutOfRange - индекс вне очереди; состояние движка не меняется.
	ErrIndexOutOfRange = errors.New("queue index out of range")
	// ErrSuperseded - загрузку перебила более поздняя; её результат отброшен.
	ErrSuperseded = errors.New("load superseded by a newer one")
	// ErrInvalidState - операция недопустима в текущем состоянии.
	ErrInvalidState = errors.New("operation not allowed in current state")
	// ErrClosed - движок закрыт.
	ErrClosed = errors.New("engine closed")
	// ErrMediaFault - тот же вид ошибки, что у резолвера.
	ErrMediaFault = media.ErrMediaFault
)

// ArtPlaceholder подставляется, когда у трека нет обложки или её не удалось получить.
const ArtPlaceholder = "https://via.placeholder.com/150"

// Resolver - то, что движку нужно от media.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
	Release(locator string)
	Open(ctx context.Context, locator string) (io.ReadCloser, error)
}

// Engine - очередь, текущий индекс, режим и состояние воспроизведения.
// Долгие шаги загрузки (резолв и старт устройства) идут без блокировки движка;
// счётчик seq отличает актуальную загрузку от перебитых.
type Engine struct {
	mu       sync.Mutex
	devMu    sync.Mutex
	device   Device
	resolver Resolver
	logger   *zap.SugaredLogger
	intn     func(n int) int

	queue   []model.Song
	index   int
	state   State
	mode    Mode
	volume  float64
	muted   bool
	audio   string
	art     string
	lastErr error

	seq    uint64
	cancel context.CancelFunc
	base   context.Context
	stop   context.CancelFunc
	closed bool

	onChange func(Status)
}

// NewEngine создаёт движок в состоянии Idle.
func NewEngine(device Device, resolver Resolver, logger *zap.SugaredLogger) *Engine {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	base, stop := context.WithCancel(context.Background())
	return &Engine{
		device:   device,
		resolver: resolver,
		logger:   logger,
		intn:     rand.Intn,
		index:    -1,
		volume:   1,
		base:     base,
		stop:     stop,
	}
}

// OnChange регистрирует наблюдателя; он вызывается после каждой смены состояния вне блокировок.
func (e *Engine) OnChange(fn func(Status)) {
	e.mu.Lock()
	e.onChange = fn
	e.mu.Unlock()
}

// LoadAndPlay загружает трек index из queue (или из текущей очереди, если queue == nil) и запускает его.
func (e *Engine) LoadAndPlay(ctx context.Context, index int, queue []model.Song) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	target := e.queue
	if queue != nil {
		target = queue
	}
	if index < 0 || index >= len(target) {
		e.mu.Unlock()
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(target))
	}
	if queue != nil {
		e.queue = slices.Clone(queue)
	}
	song := e.queue[index]

	e.seq++
	seq := e.seq
	if e.cancel != nil {
		e.cancel()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.index = index
	e.state = Loading
	e.lastErr = nil
	oldAudio, oldArt := e.audio, e.art
	e.audio, e.art = "", ""
	e.mu.Unlock()
	e.notify()

	e.resolver.Release(oldAudio)
	e.resolver.Release(oldArt)
	e.devMu.Lock()
	e.device.Stop()
	e.devMu.Unlock()

	audio, err := e.resolver.Resolve(loadCtx, song.File)
	if err == nil && audio == "" {
		err = fmt.Errorf("%w: song %d has no audio", ErrMediaFault, song.ID)
	}
	art, artErr := e.resolver.Resolve(loadCtx, song.Art)
	if artErr != nil {
		e.logger.Warnw("cover art unavailable", "song_id", song.ID, "error", artErr)
	}
	if !e.current(seq) {
		e.release(audio, art)
		return ErrSuperseded
	}
	if err != nil {
		e.release(audio, art)
		return e.fail(seq, song, err)
	}

	src, err := e.resolver.Open(loadCtx, audio)
	if err != nil {
		e.release(audio, art)
		if !e.current(seq) {
			return ErrSuperseded
		}
		return e.fail(seq, song, err)
	}

	e.devMu.Lock()
	if !e.current(seq) {
		e.devMu.Unlock()
		src.Close()
		e.release(audio, art)
		return ErrSuperseded
	}
	err = e.device.Play(src, func() { e.trackEnded(seq) })
	e.devMu.Unlock()
	if err != nil {
		e.release(audio, art)
		return e.fail(seq, song, fmt.Errorf("%w: %w", ErrMediaFault, err))
	}

	e.mu.Lock()
	if e.seq != seq {
		e.mu.Unlock()
		e.release(audio, art)
		return ErrSuperseded
	}
	e.state = Playing
	e.audio = audio
	e.art = art
	e.mu.Unlock()
	e.logger.Debugw("track started", "song_id", song.ID, "index", index)
	e.notify()
	return nil
}

func (e *Engine) current(seq uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seq == seq && !e.closed
}

func (e *Engine) release(locators ...string) {
	for _, l := range locators {
		e.resolver.Release(l)
	}
}

// fail переводит актуальную загрузку в Paused и возвращает ошибку.
func (e *Engine) fail(seq uint64, song model.Song, err error) error {
	e.mu.Lock()
	if e.seq != seq {
		e.mu.Unlock()
		return ErrSuperseded
	}
	e.state = Paused
	e.lastErr = err
	e.mu.Unlock()
	e.logger.Warnw("track load failed", "song_id", song.ID, "error", err)
	e.notify()
	return err
}

// trackEnded вызывается устройством по окончании трека. Устаревшие сигналы игнорируются.
func (e *Engine) trackEnded(seq uint64) {
	e.mu.Lock()
	if e.seq != seq || e.state != Playing || e.closed {
		e.mu.Unlock()
		return
	}
	e.state = Ended
	mode, index, ctx := e.mode, e.index, e.base
	e.mu.Unlock()
	e.notify()

	var err error
	if mode == LoopOne {
		err = e.LoadAndPlay(ctx, index, nil)
	} else {
		err = e.PlayNext(ctx)
	}
	if err != nil && !errors.Is(err, ErrSuperseded) && !errors.Is(err, ErrClosed) {
		e.logger.Warnw("auto advance failed", "error", err)
	}
}

// PlayNext переходит к следующему треку по правилам режима.
// В конце очереди без Loop индекс не меняется, а Ended переходит в Paused.
func (e *Engine) PlayNext(ctx context.Context) error {
	e.mu.Lock()
	n := len(e.queue)
	if n == 0 {
		e.mu.Unlock()
		return nil
	}
	var next int
	if e.mode == Shuffle {
		next = e.intn(n)
	} else {
		next = e.index + 1
		if next >= n {
			if e.mode != Loop {
				changed := e.state == Ended
				if changed {
					e.state = Paused
				}
				e.mu.Unlock()
				if changed {
					e.notify()
				}
				return nil
			}
			next = 0
		}
	}
	e.mu.Unlock()
	return e.LoadAndPlay(ctx, next, nil)
}

// PlayPrev переходит к предыдущему треку; с нулевого - к последнему, в любом режиме.
func (e *Engine) PlayPrev(ctx context.Context) error {
	e.mu.Lock()
	n := len(e.queue)
	if n == 0 {
		e.mu.Unlock()
		return nil
	}
	prev := e.index - 1
	if prev < 0 {
		prev = n - 1
	}
	e.mu.Unlock()
	return e.LoadAndPlay(ctx, prev, nil)
}

// Pause ставит на паузу. В Paused ничего не делает.
func (e *Engine) Pause() error {
	e.mu.Lock()
	switch e.state {
	case Paused:
		e.mu.Unlock()
		return nil
	case Playing:
	default:
		st := e.state
		e.mu.Unlock()
		return fmt.Errorf("%w: pause in %s", ErrInvalidState, st)
	}
	e.state = Paused
	seq := e.seq
	e.mu.Unlock()

	// Между отпусканием mu и захватом devMu могла стартовать новая загрузка
	// или Resume: такое устройство ставить на паузу нельзя.
	e.devMu.Lock()
	e.mu.Lock()
	stale := e.seq != seq || e.state != Paused || e.closed
	e.mu.Unlock()
	if stale {
		e.devMu.Unlock()
		return ErrSuperseded
	}
	e.device.Pause()
	e.devMu.Unlock()
	e.notify()
	return nil
}

// Resume продолжает воспроизведение из Paused; из Ended перезапускает текущий трек.
func (e *Engine) Resume(ctx context.Context) error {
	e.mu.Lock()
	switch e.state {
	case Playing:
		e.mu.Unlock()
		return nil
	case Ended:
		index := e.index
		e.mu.Unlock()
		return e.LoadAndPlay(ctx, index, nil)
	case Paused:
	default:
		st := e.state
		e.mu.Unlock()
		return fmt.Errorf("%w: resume in %s", ErrInvalidState, st)
	}
	seq := e.seq
	e.mu.Unlock()

	e.devMu.Lock()
	err := e.device.Resume()
	e.devMu.Unlock()
	if err != nil {
		e.mu.Lock()
		if e.seq == seq {
			e.lastErr = err
		}
		e.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrMediaFault, err)
	}

	e.mu.Lock()
	if e.seq != seq || e.state != Paused {
		e.mu.Unlock()
		return ErrSuperseded
	}
	e.state = Playing
	e.mu.Unlock()
	e.notify()
	return nil
}

// TogglePlayPause: Playing → Paused, иначе Resume.
func (e *Engine) TogglePlayPause(ctx context.Context) error {
	e.mu.Lock()
	playing := e.state == Playing
	e.mu.Unlock()
	if playing {
		return e.Pause()
	}
	return e.Resume(ctx)
}

// Seek перематывает текущий трек. Допустимо только в Playing и Paused; позиция не ограничивается.
func (e *Engine) Seek(pos time.Duration) error {
	e.mu.Lock()
	st := e.state
	e.mu.Unlock()
	if st != Playing && st != Paused {
		return fmt.Errorf("%w: seek in %s", ErrInvalidState, st)
	}
	e.devMu.Lock()
	defer e.devMu.Unlock()
	if err := e.device.Seek(pos); err != nil {
		return fmt.Errorf("%w: %w", ErrMediaFault, err)
	}
	return nil
}

// ToggleMode переключает Normal → Shuffle → Loop → Normal и возвращает новый режим.
func (e *Engine) ToggleMode() Mode {
	e.mu.Lock()
	e.mode = e.mode.next()
	m := e.mode
	e.mu.Unlock()
	e.notify()
	return m
}

func (e *Engine) SetMode(m Mode) {
	e.mu.Lock()
	e.mode = m
	e.mu.Unlock()
	e.notify()
}

// SetVolume задаёт громкость, ограничивая её диапазоном 0..1.
func (e *Engine) SetVolume(v float64) {
	v = min(max(v, 0), 1)
	e.mu.Lock()
	e.volume = v
	muted := e.muted
	e.mu.Unlock()
	e.applyVolume(v, muted)
}

func (e *Engine) SetMuted(muted bool) {
	e.mu.Lock()
	e.muted = muted
	v := e.volume
	e.mu.Unlock()
	e.applyVolume(v, muted)
}

// ToggleMute возвращает новое значение флага.
func (e *Engine) ToggleMute() bool {
	e.mu.Lock()
	e.muted = !e.muted
	v, muted := e.volume, e.muted
	e.mu.Unlock()
	e.applyVolume(v, muted)
	return muted
}

func (e *Engine) applyVolume(v float64, muted bool) {
	e.devMu.Lock()
	e.device.SetVolume(v, muted)
	e.devMu.Unlock()
	e.notify()
}

// Status возвращает снимок состояния.
func (e *Engine) Status() Status {
	e.mu.Lock()
	st := Status{
		State:        e.state,
		Index:        e.index,
		Queue:        len(e.queue),
		Mode:         e.mode,
		Playing:      e.state == Playing,
		Volume:       e.volume,
		Muted:        e.muted,
		AudioLocator: e.audio,
		ArtLocator:   e.art,
		Err:          e.lastErr,
	}
	if e.index >= 0 && e.index < len(e.queue) {
		song := e.queue[e.index]
		st.Song = &song
	}
	e.mu.Unlock()

	if st.ArtLocator == "" && st.Song != nil {
		st.ArtLocator = ArtPlaceholder
	}
	if st.State == Playing || st.State == Paused {
		e.devMu.Lock()
		st.Position = e.device.Position()
		st.Duration = e.device.Duration()
		e.devMu.Unlock()
	}
	return st
}

// Queue возвращает копию текущей очереди.
func (e *Engine) Queue() []model.Song {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.queue)
}

// Close останавливает воспроизведение, отменяет загрузку и освобождает локаторы.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.seq++
	if e.cancel != nil {
		e.cancel()
	}
	e.stop()
	audio, art := e.audio, e.art
	e.audio, e.art = "", ""
	e.mu.Unlock()

	e.release(audio, art)
	e.devMu.Lock()
	defer e.devMu.Unlock()
	e.device.Stop()
	return e.device.Close()
}

func (e *Engine) notify() {
	e.mu.Lock()
	fn := e.onChange
	e.mu.Unlock()
	if fn != nil {
		fn(e.Status())
	}
}
