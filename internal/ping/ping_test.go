package ping

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/BeatGlow/vfd/report"
)

type fakeDialer struct {
	addrs []string
	fail  error
}

func (d *fakeDialer) DialContext(_ context.Context, _, address string) (net.Conn, error) {
	d.addrs = append(d.addrs, address)
	if d.fail != nil {
		return nil, d.fail
	}
	client, server := net.Pipe()
	_ = server.Close()
	return client, nil
}

func newTestPinger(hosts ...Host) (*Pinger, *fakeDialer) {
	p := New(hosts)
	d := new(fakeDialer)
	p.Dialer = d
	var tick time.Time
	p.now = func() time.Time {
		tick = tick.Add(42 * time.Millisecond)
		return tick
	}
	return p, d
}

func TestPing(t *testing.T) {
	p, d := newTestPinger(Host{Addr: "sensi.org", Label: "sensi"}, Host{Addr: "10.0.0.1", Port: 22})
	if r := p.Ping(context.Background(), 0); r.Err != nil || r.RTT != 42*time.Millisecond {
		t.Fatalf("unexpected result %+v", r)
	}
	d.fail = errors.New("unreachable")
	if r := p.Ping(context.Background(), 1); !errors.Is(r.Err, d.fail) {
		t.Fatalf("expected failure, got %+v", r)
	}
	want := []string{"sensi.org:80", "10.0.0.1:22"}
	for i, addr := range want {
		if d.addrs[i] != addr {
			t.Errorf("expected dial to %s, got %s", addr, d.addrs[i])
		}
	}
	if !p.Result(0).Known() || !p.Result(1).Known() {
		t.Fatal("expected known results")
	}
}

func TestReporter(t *testing.T) {
	p, d := newTestPinger(Host{Addr: "a", Label: "krtek"}, Host{Addr: "b", Label: "had.io"}, Host{Addr: "c", Label: "never"})
	r := Reporter{Pinger: p, Width: 6}
	if v := r.Round(); v != nil {
		t.Fatalf("expected no reports before pinging, got %q", v)
	}

	p.Ping(context.Background(), 0)
	d.fail = errors.New("timeout")
	p.Ping(context.Background(), 1)

	want := []string{
		"\x02B",
		"\x01      krtek \x01####",
		"\x01  42ms\x01~",
		"\x02B",
		"\x01      had.io\x01####",
		"\x01  ERROR \x01" + report.Blink("ERROR", 3) + "~",
		"\f####",
		"\x02x",
	}
	got := r.Round()
	if len(got) != len(want) {
		t.Fatalf("expected %d reports, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("report %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

type connected bool

func (c connected) IsConnected() bool { return bool(c) }

func TestPingerRun(t *testing.T) {
	p, d := newTestPinger(Host{Addr: "a"}, Host{Addr: "b"})
	var busy int
	indicator := func(fn func() error) error { busy++; return fn() }

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := p.Run(ctx, connected(true), indicator, Config{Period: time.Hour, Step: time.Millisecond})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}
	if len(d.addrs) != 2 || busy != 2 {
		t.Fatalf("expected one round of 2 pings, got %d pings and %d indications", len(d.addrs), busy)
	}
}
