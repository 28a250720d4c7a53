//go:build !((linux && cgo) || windows || darwin)

package player

import (
	"io"
	"time"
)

// AudioAvailable сообщает, есть ли в сборке настоящий звук.
// Без cgo системного звука нет: треки «играют» беззвучно и не заканчиваются сами.
const AudioAvailable = false

type silentDevice struct {
	loaded bool
}

// NewDevice создаёт беззвучное устройство.
func NewDevice() Device {
	return &silentDevice{}
}

func (d *silentDevice) Play(src io.ReadCloser, onEnd func()) error {
	_, err := io.Copy(io.Discard, src)
	src.Close()
	if err != nil {
		return err
	}
	d.loaded = true
	return nil
}

func (d *silentDevice) Pause() {}

func (d *silentDevice) Resume() error {
	if !d.loaded {
		return ErrNoSource
	}
	return nil
}

func (d *silentDevice) Seek(time.Duration) error {
	if !d.loaded {
		return ErrNoSource
	}
	return nil
}

func (d *silentDevice) Position() time.Duration { return 0 }

func (d *silentDevice) Duration() time.Duration { return 0 }

func (d *silentDevice) SetVolume(float64, bool) {}

func (d *silentDevice) Stop() { d.loaded = false }

func (d *silentDevice) Close() error { return nil }
