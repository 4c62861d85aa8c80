package vfd

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"periph.io/x/conn/v3/gpio"
)

// Conn errors.
var (
	ErrTransport = errors.New("vfd: transport failure")
	ErrCSPin     = errors.New("vfd: chip select (CS) GPIO pin is invalid")
)

// TransportError is a bus write failure. The frame was aborted and the select line released.
type TransportError struct {
	Op  string
	Err error
}

func (err *TransportError) Error() string {
	return fmt.Sprintf("vfd: %s failed: %v", err.Op, err.Err)
}

func (err *TransportError) Unwrap() error {
	return err.Err
}

func (err *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// Port is the raw serial transport, such as a periph.io spi.Conn or a spidev [conn.SPI].
type Port interface {
	String() string

	// Tx writes w and optionally reads into r.
	Tx(w, r []byte) error
}

// BusConfig describes the shared serial bus.
type BusConfig struct {
	// CS is the chip select line; if nil the port drives select itself.
	CS gpio.PinOut

	// LSBFirst swaps the bit order of every byte in software, for ports that only do MSB first.
	LSBFirst bool

	// BatchSize limits the size of a single port write.
	BatchSize uint
}

// DefaultBusConfig are the default bus configuration values.
var DefaultBusConfig = BusConfig{
	BatchSize: 4096,
}

// Bus serializes framed transactions on a shared serial bus.
//
// A frame runs from select-assert to select-release and is never interleaved with another frame.
// The select line is released on every exit path, including failures. Displays sharing one port
// each get their own select line through [Bus.Device]; all of them share the frame lock.
type Bus struct {
	mu        *sync.Mutex
	port      Port
	cs        gpio.PinOut
	lsbFirst  bool
	batchSize uint
	debug     bool
}

// NewBus wraps port; the select line (if any) is set to idle.
func NewBus(port Port, config *BusConfig) (*Bus, error) {
	if config == nil {
		config = new(BusConfig)
		*config = DefaultBusConfig
	}
	if config.CS == gpio.INVALID {
		return nil, ErrCSPin
	}
	if config.BatchSize == 0 {
		config.BatchSize = DefaultBusConfig.BatchSize
	}

	b := &Bus{
		mu:        new(sync.Mutex),
		port:      port,
		cs:        config.CS,
		lsbFirst:  config.LSBFirst,
		batchSize: config.BatchSize,
		debug:     debug,
	}
	if err := b.updateCS(gpio.High); err != nil {
		return nil, &TransportError{Op: "release select", Err: err}
	}
	return b, nil
}

// Device returns a bus for another device on the same port, selected by cs. Frames on the
// returned bus and on b never overlap.
func (b *Bus) Device(cs gpio.PinOut) (*Bus, error) {
	if cs == gpio.INVALID {
		return nil, ErrCSPin
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	d := &Bus{
		mu:        b.mu,
		port:      b.port,
		cs:        cs,
		lsbFirst:  b.lsbFirst,
		batchSize: b.batchSize,
		debug:     b.debug,
	}
	if err := d.updateCS(gpio.High); err != nil {
		return nil, &TransportError{Op: "release select", Err: err}
	}
	return d, nil
}

func (b *Bus) String() string {
	return fmt.Sprintf("bus %s", b.port)
}

func (b *Bus) updateCS(level gpio.Level) error {
	if b.cs == nil {
		return nil
	}
	return b.cs.Out(level)
}

// Command sends a command byte with optional arguments as a single frame.
func (b *Bus) Command(cmnd byte, args ...byte) error {
	return b.Frame(append([]byte{cmnd}, args...))
}

// Frame sends data as one transaction.
func (b *Bus) Frame(data []byte) (err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.debug {
		log.Printf("vfd: frame % x", data)
	}

	if err = b.updateCS(gpio.Low); err != nil {
		_ = b.updateCS(gpio.High)
		return &TransportError{Op: "assert select", Err: err}
	}
	defer func() {
		if rerr := b.updateCS(gpio.High); rerr != nil && err == nil {
			err = &TransportError{Op: "release select", Err: rerr}
		}
	}()

	if b.lsbFirst {
		swapped := make([]byte, len(data))
		for i, v := range data {
			swapped[i] = rev8tab[v]
		}
		data = swapped
	}

	if err = b.writeChunked(data); err != nil {
		return &TransportError{Op: "write", Err: err}
	}
	return nil
}

func (b *Bus) writeChunked(data []byte) error {
	for len(data) > int(b.batchSize) {
		if err := b.port.Tx(data[:b.batchSize], nil); err != nil {
			return err
		}
		data = data[b.batchSize:]
	}
	if len(data) == 0 {
		return nil
	}
	return b.port.Tx(data, nil)
}

// rev8tab from math/bits/bits_tables.go
const rev8tab = "" +
	"\x00\x80\x40\xc0\x20\xa0\x60\xe0\x10\x90\x50\xd0\x30\xb0\x70\xf0" +
	"\x08\x88\x48\xc8\x28\xa8\x68\xe8\x18\x98\x58\xd8\x38\xb8\x78\xf8" +
	"\x04\x84\x44\xc4\x24\xa4\x64\xe4\x14\x94\x54\xd4\x34\xb4\x74\xf4" +
	"\x0c\x8c\x4c\xcc\x2c\xac\x6c\xec\x1c\x9c\x5c\xdc\x3c\xbc\x7c\xfc" +
	"\x02\x82\x42\xc2\x22\xa2\x62\xe2\x12\x92\x52\xd2\x32\xb2\x72\xf2" +
	"\x0a\x8a\x4a\xca\x2a\xaa\x6a\xea\x1a\x9a\x5a\xda\x3a\xba\x7a\xfa" +
	"\x06\x86\x46\xc6\x26\xa6\x66\xe6\x16\x96\x56\xd6\x36\xb6\x76\xf6" +
	"\x0e\x8e\x4e\xce\x2e\xae\x6e\xee\x1e\x9e\x5e\xde\x3e\xbe\x7e\xfe" +
	"\x01\x81\x41\xc1\x21\xa1\x61\xe1\x11\x91\x51\xd1\x31\xb1\x71\xf1" +
	"\x09\x89\x49\xc9\x29\xa9\x69\xe9\x19\x99\x59\xd9\x39\xb9\x79\xf9" +
	"\x05\x85\x45\xc5\x25\xa5\x65\xe5\x15\x95\x55\xd5\x35\xb5\x75\xf5" +
	"\x0d\x8d\x4d\xcd\x2d\xad\x6d\xed\x1d\x9d\x5d\xdd\x3d\xbd\x7d\xfd" +
	"\x03\x83\x43\xc3\x23\xa3\x63\xe3\x13\x93\x53\xd3\x33\xb3\x73\xf3" +
	"\x0b\x8b\x4b\xcb\x2b\xab\x6b\xeb\x1b\x9b\x5b\xdb\x3b\xbb\x7b\xfb" +
	"\x07\x87\x47\xc7\x27\xa7\x67\xe7\x17\x97\x57\xd7\x37\xb7\x77\xf7" +
	"\x0f\x8f\x4f\xcf\x2f\xaf\x6f\xef\x1f\x9f\x5f\xdf\x3f\xbf\x7f\xff"
