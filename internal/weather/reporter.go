package weather

import (
	"context"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/BeatGlow/vfd/report"
)

// Source is the weather collaborator of the reporter.
type Source interface {
	Get(field string) (string, bool)
	MoonPhase() (string, bool)
}

// Reporter formats the weather as a sequence of reports.
type Reporter struct {
	Source   Source
	Location string

	// Width is the number of display cells.
	Width int
}

// Reports returns the reports for the current weather, or nil if there is none.
func (r Reporter) Reports() []string {
	condition, ok := r.Source.Get(Condition)
	if !ok {
		return nil
	}
	var (
		w      = r.Width
		get    = func(field string) string { v, _ := r.Source.Get(field); return v }
		paced  = func(s string) string { return report.Paced("  " + s) }
		out    []string
		name   = report.Pad(strings.ToUpper(r.Location), w)
		wind   = get(Wind)
		rain   = get(Precipitation)
		uv     = get(UV)
		uvi, _ = strconv.Atoi(uv)
	)

	out = append(out,
		report.Blink(name, 4),
		"\r"+name+"~",
		report.Icon(report.IconPlay),
		paced(report.Pad(condition, w))+"~~",
		paced(report.Pad(get(FeelsLike), w))+"~~~~",
		paced(report.Pad("WIND", w))+"####"+report.Paced(wind)+"~~",
	)
	if rain != "" && rain != "0.0mm" {
		out = append(out, paced(report.Pad("RAIN", w))+"####"+report.Paced(report.Pad(rain, w))+"~~")
	}
	out = append(out, paced("HUM"+report.Pad(get(Humidity), w-3))+"~~")

	if uvi > 1 {
		if uvi < 6 {
			out = append(out, paced("UVI"+report.PadLeft(uv, 3))+"~")
		} else {
			out = append(out,
				paced("UVI"+report.PadLeft(uv, 3)),
				"\rUVI "+report.NumberBlink(uv, 2, 4)+"~",
			)
		}
	}
	out = append(out, report.Icon('a'), "\f####")

	if moon, ok := r.Source.MoonPhase(); ok {
		out = append(out, report.Icon(report.IconStop)+report.Paced(moon)+"~~"+report.Icon('c')+"\f####")
	}
	return out
}

// ReporterConfig is the cadence of [Reporter.Run].
type ReporterConfig struct {
	Period time.Duration
	Jitter time.Duration
	Delay  time.Duration
}

// DefaultReporterConfig reports about once a minute.
var DefaultReporterConfig = ReporterConfig{
	Period: time.Minute,
	Jitter: 10 * time.Second,
	Delay:  5 * time.Second,
}

// Run enqueues the weather reports periodically until ctx is done.
func (r Reporter) Run(ctx context.Context, queue *report.Queue, config ReporterConfig) error {
	if !sleep(ctx, config.Delay+jitter(config.Delay)) {
		return ctx.Err()
	}
	for {
		if reports := r.Reports(); len(reports) > 0 {
			if err := queue.PutAll(ctx, reports...); err != nil {
				return err
			}
		}
		if !sleep(ctx, config.Period+jitter(config.Jitter)-config.Jitter/2) {
			return ctx.Err()
		}
	}
}

// Network reports the connection state.
type Network interface {
	IsConnected() bool
}

// RequesterConfig is the cadence of [Client.Run].
type RequesterConfig struct {
	Period  time.Duration
	Retry   time.Duration
	Offline time.Duration
}

// DefaultRequesterConfig fetches every 20 minutes, and retries after a minute on failure.
var DefaultRequesterConfig = RequesterConfig{
	Period:  20 * time.Minute,
	Retry:   time.Minute,
	Offline: time.Second,
}

// Run fetches the weather periodically while the network is connected, until ctx is done.
// The busy indicator is shown during each fetch.
func (c *Client) Run(ctx context.Context, network Network, busy func(func() error) error, config RequesterConfig) error {
	if busy == nil {
		busy = func(fn func() error) error { return fn() }
	}
	for {
		wait := config.Offline
		if network.IsConnected() && c.begin() {
			err := busy(func() error { return c.Fetch(ctx) })
			c.done()
			if err != nil {
				log.Printf("weather: %v", err)
				wait = config.Retry
			} else {
				wait = config.Period
			}
		}
		if !sleep(ctx, wait) {
			return ctx.Err()
		}
	}
}

func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(d)))
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
