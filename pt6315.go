package vfd

import (
	"fmt"

	"github.com/BeatGlow/vfd/glyph"
)

const (
	pt6315DefaultCells = 6
	pt6315MaxGrids     = 12
	pt6315BytesPerGrid = 3
	pt6315MemorySize   = pt6315MaxGrids * pt6315BytesPerGrid
)

// PT6315 command classes, in the top two bits of every command byte.
const (
	pt6315CommandMask    = 0xC0
	pt6315ModeSet        = 0x00
	pt6315DataSet        = 0x40
	pt6315DisplayControl = 0x80
	pt6315AddressSet     = 0xC0
)

// PT6315 grid/segment modes.
const (
	PT6315Grid4Seg24 uint8 = iota
	PT6315Grid5Seg23
	PT6315Grid6Seg22
	PT6315Grid7Seg21
	PT6315Grid8Seg20
	PT6315Grid9Seg19
	PT6315Grid10Seg18
	PT6315Grid11Seg17
	PT6315Grid12Seg16
)

const (
	pt6315DataWrite     = 0x00
	pt6315AddrIncrement = 0x00
	pt6315ModeNormal    = 0x00
	pt6315BrightMask    = 0x07
	pt6315DisplayOff    = 0x00
	pt6315DisplayOn     = 0x08
	pt6315AddressMask   = 0x3F
)

// PT6315StatusAddr is the grid holding the annunciators on the 6 character tube.
const PT6315StatusAddr = 6

type pt6315 struct {
	bus     *Bus
	cells   int
	mode    byte
	display byte
	bright  byte
}

// PT6315 is a driver for PT6315 grid-addressed VFD controllers.
func PT6315(bus *Bus, config *Config) (Device, error) {
	if config == nil {
		config = &Config{Mode: PT6315Grid7Seg21}
	}
	if config.Cells == 0 {
		config.Cells = pt6315DefaultCells
	}
	if config.Cells < 0 || config.Cells > pt6315MaxGrids {
		return nil, fmt.Errorf("%w: PT6315 drives up to %d grids, got %d", ErrCells, pt6315MaxGrids, config.Cells)
	}
	if config.Mode > PT6315Grid12Seg16 {
		return nil, fmt.Errorf("vfd: invalid PT6315 mode %#02x", config.Mode)
	}

	return &pt6315{
		bus:     bus,
		cells:   config.Cells,
		mode:    config.Mode,
		display: pt6315DisplayOff,
		bright:  config.Brightness & pt6315BrightMask,
	}, nil
}

func (d *pt6315) String() string {
	return fmt.Sprintf("PT6315 VFD %d cells on %s", d.cells, d.bus)
}

func (d *pt6315) Cells() int {
	return d.cells
}

func (d *pt6315) Encode(r rune) glyph.Glyph {
	return glyph.Lookup(r)
}

// Dot enables the dot overlay of the [Terminal].
func (d *pt6315) Dot() glyph.Glyph {
	return glyph.Dot
}

func (d *pt6315) command(class, data byte) error {
	return d.bus.Command((class & pt6315CommandMask) | (data &^ pt6315CommandMask))
}

func (d *pt6315) Begin() error {
	return d.command(pt6315ModeSet, d.mode)
}

func (d *pt6315) End() error {
	return nil
}

func (d *pt6315) Reset() error {
	return d.command(pt6315DataSet, pt6315DataWrite|pt6315AddrIncrement|pt6315ModeNormal)
}

func (d *pt6315) SetBrightness(level uint8) error {
	d.bright = level & pt6315BrightMask
	return d.command(pt6315DisplayControl, d.display|d.bright)
}

func (d *pt6315) SetPower(on bool) error {
	if on {
		d.display = pt6315DisplayOn
	} else {
		d.display = pt6315DisplayOff
	}
	return d.command(pt6315DisplayControl, d.display|d.bright)
}

func (d *pt6315) WriteAt(addr int, data []byte) error {
	offset := addr * pt6315BytesPerGrid
	if addr < 0 || offset+len(data) > pt6315MemorySize {
		return ErrBounds
	}
	return d.bus.Frame(append([]byte{pt6315AddressSet | byte(offset&pt6315AddressMask)}, data...))
}

func (d *pt6315) Flush(cells []glyph.Glyph) error {
	if len(cells) > d.cells {
		cells = cells[:d.cells]
	}
	frame := make([]byte, 1, 1+len(cells)*pt6315BytesPerGrid)
	frame[0] = pt6315AddressSet
	for _, g := range cells {
		b := g.Bytes()
		frame = append(frame, b[:]...)
	}
	return d.bus.Frame(frame)
}

func (d *pt6315) Clear() error {
	return d.Flush(make([]glyph.Glyph, d.cells))
}
