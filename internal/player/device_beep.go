//go:build (linux && cgo) || windows || darwin

package player

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

// AudioAvailable сообщает, есть ли в сборке настоящий звук.
const AudioAvailable = true

const speakerRate = beep.SampleRate(44100)

// beepDevice играет MP3/WAV через системный звук.
type beepDevice struct {
	mu sync.Mutex

	initialized bool
	streamer    beep.StreamSeekCloser
	format      beep.Format
	ctrl        *beep.Ctrl
	volume      *effects.Volume

	level float64
	muted bool
}

// NewDevice создаёт устройство вывода звука.
func NewDevice() Device {
	return &beepDevice{level: 1}
}

func (d *beepDevice) Play(src io.ReadCloser, onEnd func()) error {
	data, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		return err
	}
	streamer, format, err := decode(data)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	if !d.initialized {
		if err := speaker.Init(speakerRate, speakerRate.N(time.Second/10)); err != nil {
			streamer.Close()
			return err
		}
		d.initialized = true
	}

	d.streamer = streamer
	d.format = format
	d.ctrl = &beep.Ctrl{Streamer: beep.Resample(4, format.SampleRate, speakerRate, streamer)}
	d.volume = &effects.Volume{Streamer: d.ctrl, Base: 2}
	d.applyVolumeLocked()

	speaker.Play(beep.Seq(d.volume, beep.Callback(func() {
		if onEnd != nil {
			// отдельная горутина: обработчик конца трека сам запускает следующий
			go onEnd()
		}
	})))
	return nil
}

func decode(data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	r := nopCloser{bytes.NewReader(data)}
	if bytes.HasPrefix(data, []byte("RIFF")) {
		return wav.Decode(r)
	}
	s, f, err := mp3.Decode(r)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("unsupported audio format: %w", err)
	}
	return s, f, nil
}

func (d *beepDevice) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctrl != nil {
		speaker.Lock()
		d.ctrl.Paused = true
		speaker.Unlock()
	}
}

func (d *beepDevice) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctrl == nil {
		return ErrNoSource
	}
	speaker.Lock()
	d.ctrl.Paused = false
	speaker.Unlock()
	return nil
}

func (d *beepDevice) Seek(pos time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.streamer == nil {
		return ErrNoSource
	}
	speaker.Lock()
	defer speaker.Unlock()
	n := d.format.SampleRate.N(pos)
	if n < 0 {
		n = 0
	}
	if l := d.streamer.Len(); l > 0 && n >= l {
		n = l - 1
	}
	return d.streamer.Seek(n)
}

func (d *beepDevice) Position() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := d.streamer.Position()
	speaker.Unlock()
	return d.format.SampleRate.D(pos)
}

func (d *beepDevice) Duration() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.streamer == nil {
		return 0
	}
	return d.format.SampleRate.D(d.streamer.Len())
}

func (d *beepDevice) SetVolume(volume float64, muted bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.level, d.muted = volume, muted
	if d.volume != nil {
		speaker.Lock()
		d.applyVolumeLocked()
		speaker.Unlock()
	}
}

// applyVolumeLocked переводит линейную громкость 0..1 в степень двойки для effects.Volume.
func (d *beepDevice) applyVolumeLocked() {
	if d.volume == nil {
		return
	}
	d.volume.Silent = d.muted || d.level <= 0
	if d.level > 0 {
		d.volume.Volume = math.Log2(d.level)
	}
}

func (d *beepDevice) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

func (d *beepDevice) stopLocked() {
	if d.initialized {
		speaker.Clear()
	}
	if d.streamer != nil {
		d.streamer.Close()
	}
	d.streamer = nil
	d.ctrl = nil
	d.volume = nil
}

func (d *beepDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	if d.initialized {
		speaker.Close()
		d.initialized = false
	}
	return nil
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
