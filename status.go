package vfd

import (
	"sync"
)

// Status flags, in the second byte of the status word.
type Status uint8

const (
	StatusRecord  Status = 1 << 1 // red REC
	StatusClock   Status = 1 << 2 // red clock, also the busy indicator
	StatusWeather Status = 1 << 3 // red "3D"
	StatusWifi    Status = 1 << 4 // red "wifi"
)

func (s Status) String() string {
	switch s {
	case StatusRecord:
		return "record"
	case StatusClock:
		return "clock"
	case StatusWeather:
		return "weather"
	case StatusWifi:
		return "wifi"
	default:
		return "status"
	}
}

// Icon codes of the 9-bit annunciator glyph.
const (
	IconNone        uint16 = 0x000
	IconPlay        uint16 = 0x0b5 // > triangle
	IconEject       uint16 = 0x1e0
	IconEject2      uint16 = 0x01e // inverted black triangle
	IconPlay2       uint16 = 0x090 // small right triangle
	IconStop        uint16 = 0x1fe // box
	IconPerspective uint16 = 0x103 // runway in perspective
)

const iconHighBit = 0x01

// StatusWriter accepts direct writes of the status word.
type StatusWriter interface {
	DirectWrite(addr int, data []byte) error
}

// StatusOverlay keeps the annunciator status word and writes all of it on every change.
type StatusOverlay struct {
	mu   sync.Mutex
	w    StatusWriter
	addr int
	word [3]byte
}

// NewStatusOverlay writes the status word at addr of w.
func NewStatusOverlay(w StatusWriter, addr int) *StatusOverlay {
	return &StatusOverlay{w: w, addr: addr}
}

// Word returns the current status word.
func (s *StatusOverlay) Word() [3]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.word
}

// Is reports if flag is set.
func (s *StatusOverlay) Is(flag Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.word[1]&byte(flag) != 0
}

func (s *StatusOverlay) update(fn func(*[3]byte)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.word)
	word := s.word
	return s.w.DirectWrite(s.addr, word[:])
}

// Set toggles flag.
func (s *StatusOverlay) Set(flag Status, on bool) error {
	return s.update(func(w *[3]byte) {
		if on {
			w[1] |= byte(flag)
		} else {
			w[1] &^= byte(flag)
		}
	})
}

func (s *StatusOverlay) SetWifi(on bool) error    { return s.Set(StatusWifi, on) }
func (s *StatusOverlay) SetWeather(on bool) error { return s.Set(StatusWeather, on) }
func (s *StatusOverlay) SetClock(on bool) error   { return s.Set(StatusClock, on) }
func (s *StatusOverlay) SetRecord(on bool) error  { return s.Set(StatusRecord, on) }

// SetIcon sets the annunciator glyph, use [IconNone] to clear it.
func (s *StatusOverlay) SetIcon(code uint16) error {
	return s.update(func(w *[3]byte) {
		w[0] = byte(code)
		w[1] = (w[1] &^ iconHighBit) | byte(code>>8)&iconHighBit
	})
}

// Icon returns the current annunciator glyph.
func (s *StatusOverlay) Icon() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint16(s.word[0]) | uint16(s.word[1]&iconHighBit)<<8
}

// Indicator is a status flag held for the duration of an operation.
type Indicator struct {
	overlay *StatusOverlay
	flag    Status
	once    sync.Once
}

// Acquire sets flag; the returned Indicator clears it on Release.
func (s *StatusOverlay) Acquire(flag Status) (*Indicator, error) {
	ind := &Indicator{overlay: s, flag: flag}
	return ind, s.Set(flag, true)
}

// Release clears the flag. Only the first call has effect.
func (ind *Indicator) Release() (err error) {
	ind.once.Do(func() {
		err = ind.overlay.Set(ind.flag, false)
	})
	return
}

// Scoped runs fn with flag set, and clears flag on every exit path of fn, including panics.
func (s *StatusOverlay) Scoped(flag Status, fn func() error) (err error) {
	ind, serr := s.Acquire(flag)
	defer func() {
		if rerr := ind.Release(); rerr != nil && err == nil {
			err = rerr
		}
	}()
	if err = fn(); err != nil {
		return
	}
	return serr
}
