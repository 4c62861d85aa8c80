package report

import (
	"context"
	"testing"
	"time"

	"github.com/BeatGlow/vfd"
)

type fakeTime struct {
	now    time.Time
	synced bool
}

func (f *fakeTime) Now() time.Time { return f.now }
func (f *fakeTime) Synced() bool   { return f.synced }

type fakeFlag bool

func (f fakeFlag) IsConnected() bool { return bool(f) }
func (f fakeFlag) IsRunning() bool   { return bool(f) }

type fakeStatusWriter struct {
	words [][]byte
}

func (w *fakeStatusWriter) DirectWrite(_ int, data []byte) error {
	w.words = append(w.words, append([]byte(nil), data...))
	return nil
}

func newTestRenderer(connected, running bool) (*Renderer, *fakeDisplay, *events, *fakeTime, *vfd.StatusOverlay) {
	log := new(events)
	display := &fakeDisplay{log: log}
	overlay := vfd.NewStatusOverlay(new(fakeStatusWriter), vfd.PT6315StatusAddr)
	clock := &fakeTime{now: time.Date(2026, 10, 18, 12, 34, 56, 100_000_000, time.UTC), synced: true}
	r := NewRenderer(display, overlay, NewQueue(4), fakeFlag(connected), fakeFlag(running), clock)
	r.Interpreter.Sleep = func(time.Duration) {}
	return r, display, log, clock, overlay
}

func TestRendererClock(t *testing.T) {
	r, display, log, clock, _ := newTestRenderer(true, false)

	shown, err := r.Step()
	if err != nil {
		t.Fatal(err)
	}
	if shown {
		t.Fatal("expected no report")
	}
	expectEvents(t, log, `puts "\f12:34" true`, "brightness 2")

	// Same separator, nothing to draw.
	*log = nil
	if _, err = r.Step(); err != nil {
		t.Fatal(err)
	}
	expectEvents(t, log)

	clock.now = clock.now.Add(500 * time.Millisecond)
	if _, err = r.Step(); err != nil {
		t.Fatal(err)
	}
	expectEvents(t, log, `puts "\f12 34" true`, "brightness 2")

	if display.level != DayBrightness {
		t.Fatalf("expected day brightness, got %d", display.level)
	}
}

func TestRendererClockNight(t *testing.T) {
	r, display, log, clock, _ := newTestRenderer(true, false)
	clock.now = time.Date(2026, 10, 18, 7, 5, 0, 0, time.UTC)
	if _, err := r.Step(); err != nil {
		t.Fatal(err)
	}
	expectEvents(t, log, `puts "\f07:05" true`, "brightness 1")
	if display.level != NightBrightness {
		t.Fatalf("expected night brightness, got %d", display.level)
	}
}

func TestRendererClockUnsynced(t *testing.T) {
	r, _, log, clock, _ := newTestRenderer(false, false)
	clock.synced = false
	if _, err := r.Step(); err != nil {
		t.Fatal(err)
	}
	expectEvents(t, log, `puts "\f--:--" true`, "brightness 2")
}

func TestRendererReport(t *testing.T) {
	r, _, log, _, overlay := newTestRenderer(true, true)
	if err := r.Queue.PutAll(context.Background(), "\x02B", "AB"); err != nil {
		t.Fatal(err)
	}

	shown, err := r.Step()
	if err != nil {
		t.Fatal(err)
	}
	if !shown {
		t.Fatal("expected report")
	}
	if v := overlay.Icon(); v != vfd.IconEject {
		t.Fatalf("expected eject icon, got %#x", v)
	}
	if !overlay.Is(vfd.StatusWifi) || !overlay.Is(vfd.StatusWeather) {
		t.Fatal("expected wifi and weather flags")
	}

	*log = nil
	if shown, _ = r.Step(); !shown {
		t.Fatal("expected second report")
	}
	expectEvents(t, log, "put 'A'", "put 'B'", "flush")

	if shown, _ = r.Step(); shown {
		t.Fatal("expected queue drained")
	}
}

func TestRendererWeatherFlagFollowsActivity(t *testing.T) {
	r, _, _, _, overlay := newTestRenderer(false, true)
	if _, err := r.Step(); err != nil {
		t.Fatal(err)
	}
	if !overlay.Is(vfd.StatusWeather) {
		t.Fatal("expected weather flag")
	}
	if overlay.Is(vfd.StatusWifi) {
		t.Fatal("expected no wifi flag while disconnected")
	}
	r.Weather = fakeFlag(false)
	if _, err := r.Step(); err != nil {
		t.Fatal(err)
	}
	if overlay.Is(vfd.StatusWeather) {
		t.Fatal("expected weather flag cleared")
	}
}

func TestRendererRunStops(t *testing.T) {
	r, _, _, _, _ := newTestRenderer(true, false)
	r.Idle = time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := r.Run(ctx); err != context.DeadlineExceeded {
		t.Fatalf("expected %v, got %v", context.DeadlineExceeded, err)
	}
}
