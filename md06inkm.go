package vfd

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/BeatGlow/vfd/glyph"
)

const (
	md06DefaultCells = 8
	md06MaxCells     = 16
	md06Space        = 0x20
	md06Degree       = 0xEF
	md06DimmingScale = 36
)

const (
	md06DCRAMWrite     = 0x20
	md06DisplayTiming  = 0xE0
	md06Dimming        = 0xE4
	md06Show           = 0xE8
	md06WakeUp         = 0xEC
	md06Standby        = 0xED
	md06ResetPulseTime = time.Millisecond
)

type md06inkm struct {
	bus    *Bus
	cells  int
	reset  gpio.PinOut
	bright uint8
}

// MD06INKM is a driver for Futaba 8-MD06INKM shift register VFD modules.
//
// Cells hold character generator codes instead of segment bitmaps. The module has no
// annunciators, so [Device.WriteAt] does nothing.
func MD06INKM(bus *Bus, config *Config) (Device, error) {
	if config == nil {
		config = new(Config)
	}
	if config.Cells == 0 {
		config.Cells = md06DefaultCells
	}
	if config.Cells < 0 || config.Cells > md06MaxCells {
		return nil, fmt.Errorf("%w: 8-MD06INKM drives up to %d cells, got %d", ErrCells, md06MaxCells, config.Cells)
	}

	return &md06inkm{
		bus:    bus,
		cells:  config.Cells,
		reset:  config.Reset,
		bright: clampLevel(config.Brightness),
	}, nil
}

func (d *md06inkm) String() string {
	return fmt.Sprintf("8-MD06INKM VFD %d cells on %s", d.cells, d.bus)
}

func (d *md06inkm) Cells() int {
	return d.cells
}

func (d *md06inkm) Encode(r rune) glyph.Glyph {
	switch {
	case r == glyph.DegreeSign:
		return md06Degree
	case r < md06Space, r > 0xff:
		return md06Space
	default:
		return glyph.Glyph(r)
	}
}

func (d *md06inkm) duty() byte {
	return d.bright * md06DimmingScale
}

func (d *md06inkm) Begin() error {
	for _, cmd := range [][]byte{
		{md06DisplayTiming, byte(d.cells - 1)},
		{md06Dimming, d.duty()},
		{md06Show},
	} {
		if err := d.bus.Command(cmd[0], cmd[1:]...); err != nil {
			return err
		}
	}
	return nil
}

func (d *md06inkm) End() error {
	return nil
}

func (d *md06inkm) Reset() error {
	if d.reset == nil || d.reset == gpio.INVALID {
		return nil
	}
	if err := d.reset.Out(gpio.Low); err != nil {
		return fmt.Errorf("8-MD06INKM: error asserting reset: %w", err)
	}
	time.Sleep(md06ResetPulseTime)
	if err := d.reset.Out(gpio.High); err != nil {
		return fmt.Errorf("8-MD06INKM: error releasing reset: %w", err)
	}
	time.Sleep(md06ResetPulseTime)
	return nil
}

func (d *md06inkm) SetBrightness(level uint8) error {
	d.bright = clampLevel(level)
	return d.bus.Command(md06Dimming, d.duty())
}

func (d *md06inkm) SetPower(on bool) error {
	if !on {
		return d.bus.Command(md06Standby)
	}
	if err := d.bus.Command(md06WakeUp); err != nil {
		return err
	}
	return d.bus.Command(md06Show)
}

func (d *md06inkm) WriteAt(_ int, _ []byte) error {
	return nil
}

func (d *md06inkm) Flush(cells []glyph.Glyph) error {
	if len(cells) > d.cells {
		cells = cells[:d.cells]
	}
	for i, code := range cells {
		if err := d.bus.Command(md06DCRAMWrite|byte(i), byte(code)); err != nil {
			return err
		}
	}
	return nil
}

func (d *md06inkm) Clear() error {
	frame := make([]byte, 1+d.cells)
	frame[0] = md06DCRAMWrite
	for i := 1; i < len(frame); i++ {
		frame[i] = md06Space
	}
	return d.bus.Frame(frame)
}

func clampLevel(level uint8) uint8 {
	if level > MaxBrightness {
		return MaxBrightness
	}
	return level
}
