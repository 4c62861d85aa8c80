package weather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BeatGlow/vfd/report"
)

type fakeSource struct {
	weather map[string]string
	moon    string
}

func (s fakeSource) Get(field string) (string, bool) {
	v, ok := s.weather[field]
	return v, ok
}

func (s fakeSource) MoonPhase() (string, bool) {
	return s.moon, s.moon != ""
}

func TestReporterReports(t *testing.T) {
	src := fakeSource{
		weather: map[string]string{
			Condition:     "Sunny",
			FeelsLike:     "+10°C",
			Wind:          "↓11km/h",
			Precipitation: "0.0mm",
			Humidity:      "81%",
			UV:            "3",
		},
		moon: "FULL",
	}
	r := Reporter{Source: src, Location: "batumi", Width: 6}
	want := []string{
		report.Blink("BATUMI", 4),
		"\rBATUMI~",
		"\x02A",
		"\x01  Sunny \x01~~",
		"\x01  +10°C \x01~~~~",
		"\x01  WIND  \x01####\x01↓11km/h\x01~~",
		"\x01  HUM81%\x01~~",
		"\x01  UVI  3\x01~",
		"\x02a",
		"\f####",
		"\x02C\x01FULL\x01~~\x02c\f####",
	}
	got := r.Reports()
	if len(got) != len(want) {
		t.Fatalf("expected %d reports, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("report %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestReporterRainAndHighUV(t *testing.T) {
	src := fakeSource{weather: map[string]string{
		Condition:     "Rain",
		Precipitation: "2.1mm",
		UV:            "8",
	}}
	got := Reporter{Source: src, Location: "x", Width: 6}.Reports()

	var rain, blink bool
	for _, s := range got {
		if s == "\x01  RAIN  \x01####\x012.1mm \x01~~" {
			rain = true
		}
		if s == "\rUVI "+report.NumberBlink("8", 2, 4)+"~" {
			blink = true
		}
	}
	if !rain {
		t.Errorf("expected rain report in %q", got)
	}
	if !blink {
		t.Errorf("expected blinking UV index in %q", got)
	}
}

func TestReporterNoWeather(t *testing.T) {
	if v := (Reporter{Source: fakeSource{}, Width: 6}).Reports(); v != nil {
		t.Fatalf("expected no reports, got %q", v)
	}
}

func TestReporterRun(t *testing.T) {
	src := fakeSource{weather: map[string]string{Condition: "Sunny"}}
	r := Reporter{Source: src, Location: "x", Width: 6}
	q := report.NewQueue(64)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := r.Run(ctx, q, ReporterConfig{Period: time.Hour})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}
	if v, want := q.Len(), len(r.Reports()); v != want {
		t.Fatalf("expected %d queued reports, got %d", want, v)
	}
}
