package vfd

import (
	"errors"
	"strings"
)

// Broadcast presents several displays as one.
//
// Every operation is forwarded to each member in order. A failing member does not stop the
// others; the returned error joins the failures of all members. Members must only be driven
// through the Broadcast, so that their cursors stay in lockstep.
type Broadcast struct {
	members []Display
}

// NewBroadcast returns a composite of members.
func NewBroadcast(members ...Display) *Broadcast {
	return &Broadcast{members: members}
}

// Members returns the displays in declaration order.
func (b *Broadcast) Members() []Display {
	return b.members
}

func (b *Broadcast) String() string {
	names := make([]string, len(b.members))
	for i, m := range b.members {
		names[i] = m.String()
	}
	return "broadcast [" + strings.Join(names, ", ") + "]"
}

func (b *Broadcast) each(fn func(Display) error) error {
	var errs []error
	for _, m := range b.members {
		if err := fn(m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Broadcast) Begin() error {
	return b.each(Display.Begin)
}

func (b *Broadcast) End() error {
	return b.each(Display.End)
}

func (b *Broadcast) Clear(flush bool) error {
	return b.each(func(m Display) error { return m.Clear(flush) })
}

func (b *Broadcast) Home() {
	for _, m := range b.members {
		m.Home()
	}
}

// Pos is the cursor of the first member.
func (b *Broadcast) Pos() int {
	if len(b.members) == 0 {
		return 0
	}
	return b.members[0].Pos()
}

func (b *Broadcast) SetPos(n int) {
	for _, m := range b.members {
		m.SetPos(n)
	}
}

func (b *Broadcast) PutChar(r rune) {
	for _, m := range b.members {
		m.PutChar(r)
	}
}

func (b *Broadcast) Puts(s string, flush bool) error {
	return b.each(func(m Display) error { return m.Puts(s, flush) })
}

func (b *Broadcast) Flush() error {
	return b.each(Display.Flush)
}

func (b *Broadcast) DirectWrite(addr int, data []byte) error {
	return b.each(func(m Display) error { return m.DirectWrite(addr, data) })
}

func (b *Broadcast) SetBrightness(level uint8) error {
	return b.each(func(m Display) error { return m.SetBrightness(level) })
}

func (b *Broadcast) SetPower(on bool) error {
	return b.each(func(m Display) error { return m.SetPower(on) })
}
