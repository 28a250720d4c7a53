package player

import (
	"errors"
	"io"
	"time"
)

// ErrNoSource - в устройство ничего не загружено.
var ErrNoSource = errors.New("no source loaded")

// Device - звуковой выход. Методы вызываются движком последовательно.
type Device interface {
	// Play декодирует src и начинает воспроизведение, останавливая предыдущий трек.
	// onEnd вызывается в отдельной горутине, когда трек доиграл до конца.
	Play(src io.ReadCloser, onEnd func()) error
	Pause()
	// Resume продолжает воспроизведение; ErrNoSource, если ничего не загружено.
	Resume() error
	Seek(pos time.Duration) error
	Position() time.Duration
	Duration() time.Duration
	// SetVolume задаёт громкость 0..1 для текущего и последующих треков.
	SetVolume(volume float64, muted bool)
	Stop()
	Close() error
}
