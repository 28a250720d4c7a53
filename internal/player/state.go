package player

import (
	"SmartMusic/internal/model"
	"time"
)

// State - состояние воспроизведения.
type State int

const (
	Idle State = iota
	Loading
	Playing
	Paused
	Ended
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Ended:
		return "ended"
	}
	return "unknown"
}

// Mode - режим перехода к следующему треку.
type Mode int

const (
	Normal Mode = iota
	Shuffle
	Loop
	LoopOne
)

func (m Mode) String() string {
	switch m {
	case Normal:
		return "normal"
	case Shuffle:
		return "shuffle"
	case Loop:
		return "loop"
	case LoopOne:
		return "loop-one"
	}
	return "unknown"
}

// ParseMode разбирает имя режима, как его печатает String.
func ParseMode(s string) (Mode, bool) {
	for _, m := range []Mode{Normal, Shuffle, Loop, LoopOne} {
		if m.String() == s {
			return m, true
		}
	}
	return Normal, false
}

// next возвращает режим, следующий за m при переключении: Normal → Shuffle → Loop → Normal.
func (m Mode) next() Mode {
	switch m {
	case Normal:
		return Shuffle
	case Shuffle:
		return Loop
	}
	return Normal
}

// Status - снимок состояния движка.
type Status struct {
	State    State
	Index    int
	Song     *model.Song
	Queue    int
	Mode     Mode
	Playing  bool
	Position time.Duration
	Duration time.Duration
	Volume   float64
	Muted    bool
	// AudioLocator и ArtLocator - локаторы текущего трека; ArtLocator при отсутствии обложки равен ArtPlaceholder.
	AudioLocator string
	ArtLocator   string
	Err          error
}
