package vfd

import (
	"fmt"

	"github.com/BeatGlow/vfd/glyph"
)

// dotter is implemented by devices that can overlay a decimal point on a cell.
type dotter interface {
	Dot() glyph.Glyph
}

// Terminal is a character terminal on top of a single [Device].
//
// The cursor may equal the number of cells after the last cell was written; the next
// character scrolls the buffer one cell to the left before it is written.
type Terminal struct {
	dev   Device
	buf   []glyph.Glyph
	blank glyph.Glyph
	pos   int
	last  int
	dot   glyph.Glyph
}

// NewTerminal returns a terminal with a blank buffer sized to the device.
func NewTerminal(dev Device) *Terminal {
	t := &Terminal{
		dev:   dev,
		buf:   make([]glyph.Glyph, dev.Cells()),
		blank: dev.Encode(' '),
	}
	t.clear()
	return t
}

func (t *Terminal) String() string {
	return fmt.Sprintf("terminal on %s", t.dev)
}

// Cells is the number of visible characters.
func (t *Terminal) Cells() int {
	return len(t.buf)
}

// Contents returns a copy of the buffer.
func (t *Terminal) Contents() []glyph.Glyph {
	out := make([]glyph.Glyph, len(t.buf))
	copy(out, t.buf)
	return out
}

// SetDot enables merging a '.' into the previously written cell, on devices that support it.
func (t *Terminal) SetDot(enable bool) {
	t.dot = 0
	if d, ok := t.dev.(dotter); ok && enable {
		t.dot = d.Dot()
	}
}

func (t *Terminal) Begin() error {
	return t.dev.Begin()
}

func (t *Terminal) End() error {
	return t.dev.End()
}

func (t *Terminal) clear() {
	for i := range t.buf {
		t.buf[i] = t.blank
	}
	t.pos = 0
	t.last = 0
}

func (t *Terminal) Clear(flush bool) error {
	t.clear()
	if flush {
		return t.dev.Clear()
	}
	return nil
}

func (t *Terminal) Home() {
	t.pos = 0
}

func (t *Terminal) Pos() int {
	return t.pos
}

func (t *Terminal) SetPos(n int) {
	t.pos = clamp(n, 0, len(t.buf)-1)
	t.last = t.pos
}

// scroll drops the leftmost cell and shifts the others left.
func (t *Terminal) scroll() {
	copy(t.buf, t.buf[1:])
	t.buf[len(t.buf)-1] = t.blank
	t.pos--
	if t.last > 0 {
		t.last--
	}
}

func (t *Terminal) PutChar(r rune) {
	switch r {
	case '\n', '\r':
		t.Home()
		return
	case FormFeed:
		t.clear()
		return
	case Backspace:
		t.SetPos(t.pos - 1)
		return
	}

	if len(t.buf) == 0 {
		return
	}

	if r == '.' && t.dot != 0 && t.pos > 0 && t.last == t.pos-1 && t.buf[t.last]&t.dot == 0 {
		t.buf[t.last] = t.buf[t.last].Or(t.dot)
		return
	}

	if t.pos >= len(t.buf) {
		t.scroll()
	}

	t.last = t.pos
	t.buf[t.pos] = t.dev.Encode(r)
	t.pos++
}

func (t *Terminal) Puts(s string, flush bool) error {
	for _, r := range s {
		t.PutChar(r)
	}
	if flush {
		return t.Flush()
	}
	return nil
}

func (t *Terminal) Flush() error {
	return t.dev.Flush(t.buf)
}

func (t *Terminal) DirectWrite(addr int, data []byte) error {
	return t.dev.WriteAt(addr, data)
}

func (t *Terminal) SetBrightness(level uint8) error {
	return t.dev.SetBrightness(level)
}

func (t *Terminal) SetPower(on bool) error {
	return t.dev.SetPower(on)
}
