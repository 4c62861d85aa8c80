package vfd

import (
	"bytes"
	"testing"

	"github.com/BeatGlow/vfd/glyph"
)

func newTestTerminal(t *testing.T) (*Terminal, *testPort) {
	t.Helper()
	dev, port := newTestPT6315(t)
	return NewTerminal(dev), port
}

func glyphs(s string) []glyph.Glyph {
	out := make([]glyph.Glyph, 0, len(s))
	for _, r := range s {
		out = append(out, glyph.Lookup(r))
	}
	return out
}

func expectContents(t *testing.T, term *Terminal, want string) {
	t.Helper()
	v := term.Contents()
	w := glyphs(want)
	if len(v) != len(w) {
		t.Fatalf("expected %d cells, got %d", len(w), len(v))
	}
	for i := range w {
		if v[i] != w[i] {
			t.Fatalf("cell %d: expected %#06x (%q), got %#06x", i, w[i], want, v[i])
		}
	}
}

func TestTerminalScroll(t *testing.T) {
	term, _ := newTestTerminal(t)
	for _, r := range "ABCDEFG" {
		term.PutChar(r)
	}
	expectContents(t, term, "BCDEFG")
	if v := term.Pos(); v != 6 {
		t.Fatalf("expected cursor at 6, got %d", v)
	}
}

func TestTerminalPutsScrollsToTail(t *testing.T) {
	term, port := newTestTerminal(t)
	if err := term.Puts("HELLO WORLD", false); err != nil {
		t.Fatal(err)
	}
	if len(port.frames) != 0 {
		t.Fatal("expected no flush")
	}
	expectContents(t, term, " WORLD")
	if v := term.Pos(); v != term.Cells() {
		t.Fatalf("expected cursor at %d, got %d", term.Cells(), v)
	}

	if err := term.Puts("!", true); err != nil {
		t.Fatal(err)
	}
	expectContents(t, term, "WORLD!")
	if len(port.frames) != 1 {
		t.Fatalf("expected one flush, got %d", len(port.frames))
	}
}

func TestTerminalClearEquivalence(t *testing.T) {
	deferred, deferredPort := newTestTerminal(t)
	immediate, immediatePort := newTestTerminal(t)
	for _, term := range []*Terminal{deferred, immediate} {
		if err := term.Puts("12:34", true); err != nil {
			t.Fatal(err)
		}
	}

	if err := deferred.Clear(false); err != nil {
		t.Fatal(err)
	}
	if err := deferred.Flush(); err != nil {
		t.Fatal(err)
	}
	if err := immediate.Clear(true); err != nil {
		t.Fatal(err)
	}

	a, b := deferredPort.frames[1:], immediatePort.frames[1:]
	if len(a) != 1 || len(b) != 1 || !bytes.Equal(a[0], b[0]) {
		t.Fatalf("expected identical wire bytes, got % x and % x", a, b)
	}
	if deferred.Pos() != 0 || immediate.Pos() != 0 {
		t.Fatal("expected cursor home after clear")
	}
}

func TestTerminalSetPos(t *testing.T) {
	term, _ := newTestTerminal(t)
	for _, n := range []int{-100, -1, 0, 1, 3, 5, 6, 7, 1 << 20} {
		term.SetPos(n)
		if v, want := term.Pos(), clamp(n, 0, 5); v != want {
			t.Errorf("SetPos(%d): expected %d, got %d", n, want, v)
		}
	}
}

func TestTerminalControl(t *testing.T) {
	t.Run("home", func(it *testing.T) {
		term, _ := newTestTerminal(it)
		term.Puts("ABC\rX", false)
		expectContents(it, term, "XBC   ")
		term.Puts("\nY", false)
		expectContents(it, term, "YBC   ")
	})
	t.Run("form-feed", func(it *testing.T) {
		term, port := newTestTerminal(it)
		term.Puts("ABC\fD", false)
		expectContents(it, term, "D     ")
		if len(port.frames) != 0 {
			it.Fatal("expected form feed to stay local")
		}
	})
	t.Run("backspace", func(it *testing.T) {
		term, _ := newTestTerminal(it)
		term.Puts("AB\bC", false)
		expectContents(it, term, "AC    ")
		term.Puts("\b\b\b\bZ", false)
		expectContents(it, term, "ZC    ")
		if v := term.Pos(); v != 1 {
			it.Fatalf("expected cursor at 1, got %d", v)
		}
	})
	t.Run("backspace-after-full", func(it *testing.T) {
		term, _ := newTestTerminal(it)
		term.Puts("ABCDEF\bX", false)
		expectContents(it, term, "ABCDEX")
	})
	t.Run("unsupported", func(it *testing.T) {
		term, _ := newTestTerminal(it)
		term.Puts("A{B", false)
		expectContents(it, term, "A B   ")
	})
}

func TestTerminalDirectWrite(t *testing.T) {
	term, port := newTestTerminal(t)
	term.Puts("AB", false)
	if err := term.DirectWrite(PT6315StatusAddr, []byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if v := term.Pos(); v != 2 {
		t.Fatalf("expected cursor at 2, got %d", v)
	}
	expectContents(t, term, "AB    ")
	if v := port.frames[0]; !bytes.Equal(v, []byte{0xd2, 1, 2, 3}) {
		t.Fatalf("unexpected frame % x", v)
	}
}

func TestTerminalDot(t *testing.T) {
	term, _ := newTestTerminal(t)
	term.SetDot(true)
	term.Puts("T.Y", false)
	v := term.Contents()
	if want := glyph.Lookup('T') | glyph.Dot; v[0] != want {
		t.Fatalf("expected dotted T %#06x, got %#06x", want, v[0])
	}
	if v[1] != glyph.Lookup('Y') {
		t.Fatalf("expected Y in second cell, got %#06x", v[1])
	}
	if term.Pos() != 2 {
		t.Fatalf("expected cursor at 2, got %d", term.Pos())
	}

	// The second dot can not merge and takes its own cell.
	term.Puts("..", false)
	v = term.Contents()
	if want := glyph.Lookup('Y') | glyph.Dot; v[1] != want {
		t.Fatalf("expected dotted Y %#06x, got %#06x", want, v[1])
	}
	if v[2] != glyph.Lookup('.') {
		t.Fatalf("expected dot cell, got %#06x", v[2])
	}
}

func TestTerminalDotDisabled(t *testing.T) {
	term, _ := newTestTerminal(t)
	term.Puts("T.", false)
	expectContents(t, term, "T.    ")

	// Off by default: '.' is a character of its own and advances the cursor.
	term.Clear(false)
	term.PutChar('F')
	term.PutChar('.')
	expectContents(t, term, "F.    ")
	if v := term.Pos(); v != 2 {
		t.Fatalf("expected cursor at 2, got %d", v)
	}

	term.SetDot(true)
	term.SetDot(false)
	term.Puts("P.", false)
	expectContents(t, term, "F.P.  ")
}

func TestTerminalMD06INKM(t *testing.T) {
	dev, port := newTestMD06INKM(t, nil)
	term := NewTerminal(dev)
	if err := term.Puts("12°C", true); err != nil {
		t.Fatal(err)
	}
	want := []byte{'1', '2', 0xef, 'C', ' ', ' ', ' ', ' '}
	if len(port.frames) != len(want) {
		t.Fatalf("expected %d cell frames, got %d", len(want), len(port.frames))
	}
	for i, code := range want {
		if v := port.frames[i]; !bytes.Equal(v, []byte{0x20 | byte(i), code}) {
			t.Errorf("cell %d: got % x", i, v)
		}
	}
}
