// Package ping measures the round trip time to a list of hosts and formats the results as
// ticker reports.
//
// The round trip is the time to open a TCP connection, which needs no raw socket privileges.
package ping

import (
	"context"
	"log"
	"math/rand"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/BeatGlow/vfd/report"
)

// DefaultPort is dialed for hosts without a port.
const DefaultPort = 80

// Host to ping.
type Host struct {
	// Addr is the host name or address.
	Addr string

	// Label is shown on the display.
	Label string

	// Port to connect to.
	Port int
}

func (h Host) address() string {
	port := h.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(h.Addr, strconv.Itoa(port))
}

// Result of the last ping of a host.
type Result struct {
	RTT time.Duration
	Err error
}

// Known reports if the host was pinged at all.
func (r Result) Known() bool {
	return r.RTT != 0 || r.Err != nil
}

// Dialer opens connections.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Pinger pings hosts round robin.
type Pinger struct {
	Hosts   []Host
	Timeout time.Duration
	Dialer  Dialer

	mu      sync.Mutex
	results []Result
	now     func() time.Time
}

// New returns a pinger for hosts.
func New(hosts []Host) *Pinger {
	return &Pinger{
		Hosts:   hosts,
		Timeout: 5 * time.Second,
		Dialer:  new(net.Dialer),
		results: make([]Result, len(hosts)),
		now:     time.Now,
	}
}

// Ping measures the round trip to host i and stores the result.
func (p *Pinger) Ping(ctx context.Context, i int) Result {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	var (
		start     = p.now()
		conn, err = p.Dialer.DialContext(ctx, "tcp", p.Hosts[i].address())
		result    Result
	)
	if err != nil {
		result.Err = err
	} else {
		result.RTT = max(p.now().Sub(start), time.Microsecond)
		_ = conn.Close()
	}

	p.mu.Lock()
	p.results[i] = result
	p.mu.Unlock()
	return result
}

// Result returns the last result for host i.
func (p *Pinger) Result(i int) Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.results[i]
}

// Network reports the connection state.
type Network interface {
	IsConnected() bool
}

// Config is the cadence of [Pinger.Run] and [Reporter.Run].
type Config struct {
	Period time.Duration
	Jitter time.Duration
	Step   time.Duration
	Delay  time.Duration
}

// DefaultConfig pings all hosts every 5 minutes.
var DefaultConfig = Config{
	Period: 5 * time.Minute,
	Jitter: time.Minute,
	Step:   time.Second,
	Delay:  5 * time.Second,
}

// Run pings the hosts one at a time while the network is connected, until ctx is done.
// The busy indicator is shown during each ping.
func (p *Pinger) Run(ctx context.Context, network Network, busy func(func() error) error, config Config) error {
	if busy == nil {
		busy = func(fn func() error) error { return fn() }
	}
	if !sleep(ctx, config.Delay+jitter(config.Delay)) {
		return ctx.Err()
	}
	var i int
	for {
		wait := config.Step
		if network.IsConnected() && len(p.Hosts) > 0 {
			_ = busy(func() error {
				if r := p.Ping(ctx, i); r.Err != nil {
					log.Printf("ping: %s: %v", p.Hosts[i].Addr, r.Err)
				}
				return nil
			})
			i = (i + 1) % len(p.Hosts)
			if i == 0 {
				wait = config.Period + jitter(config.Jitter) - config.Jitter/2
			}
		}
		if !sleep(ctx, wait) {
			return ctx.Err()
		}
	}
}

// Reporter formats ping results as reports.
type Reporter struct {
	Pinger *Pinger

	// Width is the number of display cells.
	Width int
}

// Reports returns the reports for host i, or nil if it was never pinged.
func (r Reporter) Reports(i int) []string {
	result := r.Pinger.Result(i)
	if !result.Known() {
		return nil
	}
	w := r.Width
	out := []string{
		report.Icon(report.IconEject),
		report.Paced(report.Pad(" ", w)+report.Pad(r.Pinger.Hosts[i].Label, w)) + "####",
	}
	if result.Err != nil {
		out = append(out, report.Paced("  "+report.Pad("ERROR", w))+report.Blink("ERROR", 3)+"~")
	} else {
		ms := strconv.FormatInt(result.RTT.Milliseconds(), 10)
		out = append(out, report.Paced(report.PadLeft(ms, 4)+"ms")+"~")
	}
	return out
}

// Round returns the reports for all hosts, closed by a clear and the icon reset, or nil if
// no host was pinged yet.
func (r Reporter) Round() []string {
	var out []string
	for i := range r.Pinger.Hosts {
		out = append(out, r.Reports(i)...)
	}
	if len(out) == 0 {
		return nil
	}
	return append(out, "\f####", report.Icon('x'))
}

// Run enqueues a round of ping reports periodically until ctx is done.
func (r Reporter) Run(ctx context.Context, queue *report.Queue, config Config) error {
	if !sleep(ctx, config.Delay+jitter(config.Delay)) {
		return ctx.Err()
	}
	for {
		if reports := r.Round(); len(reports) > 0 {
			if err := queue.PutAll(ctx, reports...); err != nil {
				return err
			}
		}
		if !sleep(ctx, config.Period+jitter(config.Jitter)-config.Jitter/2) {
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
