// Package vfd contains drivers and a character terminal for segment VFD displays.
//
// A [Device] speaks the wire protocol of one display controller. A [Terminal] keeps the
// character buffer, cursor and scroll state on top of a Device, and [Broadcast] fans a
// terminal's operations out to several displays. The [StatusOverlay] writes annunciator
// bits outside of the scrolling text region.
package vfd

import (
	"errors"
	"os"

	"periph.io/x/conn/v3/gpio"

	"github.com/BeatGlow/vfd/glyph"
)

var debug bool

func init() {
	debug = os.Getenv("VFD_DEBUG") != ""
}

// Errors
var (
	ErrBounds = errors.New("vfd: out of display bounds")
	ErrCells  = errors.New("vfd: invalid number of cells")
)

// Control characters interpreted by [Terminal.PutChar].
const (
	Backspace = '\b'
	FormFeed  = '\f'
)

// MaxBrightness is the highest brightness level on the common 0..7 scale.
const MaxBrightness = 7

// Device is the wire protocol of a display controller.
type Device interface {
	String() string

	// Cells is the number of visible characters.
	Cells() int

	// Encode returns the cell value for a character.
	Encode(rune) glyph.Glyph

	// Begin initializes the controller.
	Begin() error

	// End releases the controller.
	End() error

	// Reset puts the controller in a known state.
	Reset() error

	// SetBrightness adjusts the brightness, in range [0..MaxBrightness].
	SetBrightness(level uint8) error

	// SetPower toggles the display on or off.
	SetPower(on bool) error

	// WriteAt writes raw bytes at a fixed display address.
	WriteAt(addr int, data []byte) error

	// Flush transmits cells to the display.
	Flush(cells []glyph.Glyph) error

	// Clear wipes the display memory.
	Clear() error
}

// Display is a character terminal.
type Display interface {
	String() string

	// Begin initializes the display hardware.
	Begin() error

	// End releases the display hardware.
	End() error

	// Clear the buffer and move the cursor home; if flush is set the display is wiped too.
	Clear(flush bool) error

	// Home moves the cursor to the first cell.
	Home()

	// Pos is the cursor position.
	Pos() int

	// SetPos moves the cursor, clamped to the visible cells.
	SetPos(n int)

	// PutChar writes one character at the cursor.
	PutChar(r rune)

	// Puts writes all characters of s, and flushes once at the end if requested.
	Puts(s string, flush bool) error

	// Flush transmits the buffer.
	Flush() error

	// DirectWrite writes raw bytes at a fixed address, bypassing the buffer.
	DirectWrite(addr int, data []byte) error

	// SetBrightness adjusts the brightness, in range [0..MaxBrightness].
	SetBrightness(level uint8) error

	// SetPower toggles the display on or off.
	SetPower(on bool) error
}

// Config is the display configuration.
type Config struct {
	// Cells is the number of visible characters.
	Cells int

	// Mode is the grid/segment configuration of grid-addressed controllers.
	Mode uint8

	// Brightness is the initial brightness, in range [0..MaxBrightness].
	Brightness uint8

	// Reset pin
	Reset gpio.PinOut
}

func clamp(x, l, u int) int {
	if x < l {
		return l
	}
	if x > u {
		return u
	}
	return x
}
