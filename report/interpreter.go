package report

import (
	"errors"
	"time"

	"github.com/BeatGlow/vfd"
)

// Control codes.
const (
	PaceToggle = '\x01'
	IconMarker = '\x02'
	FlushLong  = '~'
	FlushShort = '#'
)

// Delays.
const (
	LongPause         = time.Second
	ShortPause        = 100 * time.Millisecond
	DefaultScrollPace = 100 * time.Millisecond
)

// Icon selectors following the [IconMarker].
const (
	IconPlay  = 'A'
	IconEject = 'B'
	IconStop  = 'C'
)

type state int

const (
	stateNormal state = iota
	stateIconPending
)

// IconSetter sets the annunciator icon, implemented by [vfd.StatusOverlay].
type IconSetter interface {
	SetIcon(code uint16) error
}

// Interpreter replays reports onto a display.
type Interpreter struct {
	display vfd.Display
	icons   IconSetter

	// Sleep suspends the interpreter; a report is never cancelled half way.
	Sleep func(time.Duration)

	// ScrollPace is the delay per character while pacing is toggled on.
	ScrollPace time.Duration
}

// NewInterpreter returns an interpreter writing to display and setting icons on icons.
func NewInterpreter(display vfd.Display, icons IconSetter) *Interpreter {
	return &Interpreter{
		display:    display,
		icons:      icons,
		Sleep:      time.Sleep,
		ScrollPace: DefaultScrollPace,
	}
}

// Run drains one report, and flushes the display at the end. Transport failures do not stop
// the report; they are all returned.
func (in *Interpreter) Run(report string) error {
	var (
		errs  []error
		st    = stateNormal
		pace  time.Duration
		check = func(err error) {
			if err != nil {
				errs = append(errs, err)
			}
		}
	)

	for _, c := range report {
		if st == stateIconPending {
			check(in.icons.SetIcon(iconCode(c)))
			st = stateNormal
			continue
		}

		switch c {
		case FlushLong:
			check(in.display.Flush())
			in.Sleep(LongPause)
		case FlushShort:
			check(in.display.Flush())
			in.Sleep(ShortPause)
		case PaceToggle:
			if pace == 0 {
				pace = in.ScrollPace
			} else {
				pace = 0
			}
		case IconMarker:
			st = stateIconPending
		default:
			in.display.PutChar(c)
			if pace > 0 || c < ' ' {
				check(in.display.Flush())
			}
			if pace > 0 {
				in.Sleep(pace)
			}
		}
	}

	check(in.display.Flush())
	return errors.Join(errs...)
}

func iconCode(c rune) uint16 {
	switch c {
	case IconPlay:
		return vfd.IconPlay
	case IconEject:
		return vfd.IconEject
	case IconStop:
		return vfd.IconStop
	default:
		return vfd.IconNone
	}
}
