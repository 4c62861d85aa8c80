package vfd

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// testPort records every transaction on the bus.
type testPort struct {
	events []string
	frames [][]byte
	fail   error
}

func (p *testPort) String() string {
	return "test port"
}

func (p *testPort) Tx(w, _ []byte) error {
	if p.fail != nil {
		p.events = append(p.events, "tx failed")
		return p.fail
	}
	p.events = append(p.events, fmt.Sprintf("tx % x", w))
	p.frames = append(p.frames, append([]byte(nil), w...))
	return nil
}

// testPin records the chip select level changes in the port event log.
type testPin struct {
	gpiotest.Pin
	port *testPort
}

func (p *testPin) Out(l gpio.Level) error {
	if l == gpio.Low {
		p.port.events = append(p.port.events, "select")
	} else {
		p.port.events = append(p.port.events, "release")
	}
	return p.Pin.Out(l)
}

func newTestBus(t *testing.T) (*Bus, *testPort) {
	t.Helper()
	port := new(testPort)
	bus, err := NewBus(port, nil)
	if err != nil {
		t.Fatal(err)
	}
	return bus, port
}

func newTestBusWithCS(t *testing.T) (*Bus, *testPort, *testPin) {
	t.Helper()
	port := new(testPort)
	pin := &testPin{Pin: gpiotest.Pin{N: "CS"}, port: port}
	bus, err := NewBus(port, &BusConfig{CS: pin})
	if err != nil {
		t.Fatal(err)
	}
	port.events = nil
	return bus, port, pin
}

func TestBusFrame(t *testing.T) {
	bus, port, pin := newTestBusWithCS(t)
	if err := bus.Frame([]byte{0xc0, 0x01, 0x02}); err != nil {
		t.Fatal(err)
	}
	want := []string{"select", "tx c0 01 02", "release"}
	if fmt.Sprint(port.events) != fmt.Sprint(want) {
		t.Fatalf("expected events %q, got %q", want, port.events)
	}
	if pin.L != gpio.High {
		t.Fatal("expected select line to be released")
	}
}

func TestBusFrameFailure(t *testing.T) {
	bus, port, pin := newTestBusWithCS(t)
	failure := errors.New("bus timeout")
	port.fail = failure

	err := bus.Command(0x80)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !errors.Is(err, failure) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	var terr *TransportError
	if !errors.As(err, &terr) || terr.Op != "write" {
		t.Fatalf("expected write transport error, got %#v", err)
	}
	want := []string{"select", "tx failed", "release"}
	if fmt.Sprint(port.events) != fmt.Sprint(want) {
		t.Fatalf("expected events %q, got %q", want, port.events)
	}
	if pin.L != gpio.High {
		t.Fatal("expected select line to be released after failure")
	}

	// Next transaction is not affected.
	port.fail = nil
	if err = bus.Command(0x80); err != nil {
		t.Fatal(err)
	}
}

func TestBusLSBFirst(t *testing.T) {
	port := new(testPort)
	bus, err := NewBus(port, &BusConfig{LSBFirst: true})
	if err != nil {
		t.Fatal(err)
	}
	data := []byte{0x01, 0xc0, 0x0f}
	if err = bus.Frame(data); err != nil {
		t.Fatal(err)
	}
	if v := port.frames[0]; !bytes.Equal(v, []byte{0x80, 0x03, 0xf0}) {
		t.Fatalf("expected bit reversed bytes, got % x", v)
	}
	if !bytes.Equal(data, []byte{0x01, 0xc0, 0x0f}) {
		t.Fatal("caller's buffer was modified")
	}
}

func TestBusChunked(t *testing.T) {
	port := new(testPort)
	bus, err := NewBus(port, &BusConfig{BatchSize: 2})
	if err != nil {
		t.Fatal(err)
	}
	if err = bus.Frame([]byte{1, 2, 3, 4, 5}); err != nil {
		t.Fatal(err)
	}
	if len(port.frames) != 3 {
		t.Fatalf("expected 3 writes, got %d", len(port.frames))
	}
}

func TestBusInvalidCS(t *testing.T) {
	if _, err := NewBus(new(testPort), &BusConfig{CS: gpio.INVALID}); !errors.Is(err, ErrCSPin) {
		t.Fatalf("expected %v, got %v", ErrCSPin, err)
	}
}

// selectCounter counts the asserted select lines on a shared port, and flags a write while
// more than one device is selected.
type selectCounter struct {
	selected int
	overlaps int
	writes   int
}

func (c *selectCounter) String() string { return "shared port" }

func (c *selectCounter) Tx(_, _ []byte) error {
	c.writes++
	if c.selected != 1 {
		c.overlaps++
	}
	return nil
}

type countingPin struct {
	gpiotest.Pin
	port *selectCounter
}

func (p *countingPin) Out(l gpio.Level) error {
	if l == gpio.Low && p.Pin.L != gpio.Low {
		p.port.selected++
	} else if l == gpio.High && p.Pin.L == gpio.Low {
		p.port.selected--
	}
	return p.Pin.Out(l)
}

func TestBusSharedPort(t *testing.T) {
	port := new(selectCounter)
	a, err := NewBus(port, &BusConfig{CS: &countingPin{Pin: gpiotest.Pin{N: "GPIO5", L: gpio.High}, port: port}})
	if err != nil {
		t.Fatal(err)
	}
	b, err := a.Device(&countingPin{Pin: gpiotest.Pin{N: "GPIO6", L: gpio.High}, port: port})
	if err != nil {
		t.Fatal(err)
	}

	devA, err := PT6315(a, nil)
	if err != nil {
		t.Fatal(err)
	}
	devB, err := PT6315(b, nil)
	if err != nil {
		t.Fatal(err)
	}
	var (
		termA   = NewTerminal(devA)
		termB   = NewTerminal(devB)
		overlay = NewStatusOverlay(NewBroadcast(termA, termB), PT6315StatusAddr)
		done    = make(chan struct{})
	)

	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_ = overlay.SetWifi(i%2 == 0)
		}
	}()
	for i := 0; i < 100; i++ {
		if err := termB.Puts("HELLO", true); err != nil {
			t.Error(err)
		}
	}
	<-done

	if port.writes != 300 {
		t.Fatalf("expected 300 writes, got %d", port.writes)
	}
	if port.overlaps != 0 {
		t.Fatalf("%d writes with more than one device selected", port.overlaps)
	}
	if port.selected != 0 {
		t.Fatalf("expected all select lines released, %d still asserted", port.selected)
	}
}

func TestBusDeviceInvalidCS(t *testing.T) {
	bus, _ := newTestBus(t)
	if _, err := bus.Device(gpio.INVALID); !errors.Is(err, ErrCSPin) {
		t.Fatalf("expected %v, got %v", ErrCSPin, err)
	}
}
