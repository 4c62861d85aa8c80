package report

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/BeatGlow/vfd"
)

// DefaultIdle is the clock refresh interval while no report is pending.
const DefaultIdle = 50 * time.Millisecond

// Brightness levels of the clock face.
const (
	NightBrightness = 1
	DayBrightness   = 2
	DayStartHour    = 9
)

// Network reports the connection state.
type Network interface {
	IsConnected() bool
}

// Activity reports if a background job is running.
type Activity interface {
	IsRunning() bool
}

// TimeSource is the wall clock.
type TimeSource interface {
	Now() time.Time
	Synced() bool
}

// Renderer is the render task; it is the only writer of the display buffer.
type Renderer struct {
	Display     vfd.Display
	Overlay     *vfd.StatusOverlay
	Queue       *Queue
	Interpreter *Interpreter
	Network     Network
	Weather     Activity
	Time        TimeSource

	// Idle is the wait between clock refreshes.
	Idle time.Duration

	lastSep rune
}

// NewRenderer returns a render task for display.
func NewRenderer(display vfd.Display, overlay *vfd.StatusOverlay, queue *Queue, network Network, weather Activity, clock TimeSource) *Renderer {
	return &Renderer{
		Display:     display,
		Overlay:     overlay,
		Queue:       queue,
		Interpreter: NewInterpreter(display, overlay),
		Network:     network,
		Weather:     weather,
		Time:        clock,
		Idle:        DefaultIdle,
		lastSep:     '-',
	}
}

// Run renders until ctx is done. Shutdown is honored between reports.
func (r *Renderer) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		shown, err := r.Step()
		if err != nil {
			log.Printf("render: %v", err)
		}
		if shown {
			continue
		}

		timer.Reset(r.Idle)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Step refreshes the status bits, then either replays one pending report or updates the clock.
// It reports if a report was shown.
func (r *Renderer) Step() (bool, error) {
	var errs []error
	if r.Network != nil && r.Network.IsConnected() {
		if err := r.Overlay.SetWifi(true); err != nil {
			errs = append(errs, err)
		}
	}
	if r.Weather != nil {
		if err := r.Overlay.SetWeather(r.Weather.IsRunning()); err != nil {
			errs = append(errs, err)
		}
	}

	if report, ok := r.Queue.TryGet(); ok {
		if err := r.Interpreter.Run(report); err != nil {
			errs = append(errs, err)
		}
		return true, errors.Join(errs...)
	}

	if err := r.clock(); err != nil {
		errs = append(errs, err)
	}
	return false, errors.Join(errs...)
}

func (r *Renderer) clock() error {
	now := r.Time.Now()
	sep := ' '
	if now.Nanosecond() < int(500*time.Millisecond) {
		sep = ':'
	}
	if sep == r.lastSep {
		return nil
	}
	r.lastSep = sep

	if err := r.Display.Puts(Clock(now.Hour(), now.Minute(), sep, r.Time.Synced()), true); err != nil {
		return err
	}

	level := uint8(DayBrightness)
	if now.Hour() < DayStartHour {
		level = NightBrightness
	}
	return r.Display.SetBrightness(level)
}
