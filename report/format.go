package report

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Pad left aligns s in a field of width characters.
func Pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// PadLeft right aligns s in a field of width characters.
func PadLeft(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}

// Paced wraps s in pace toggles, so it scrolls in one character at a time.
func Paced(s string) string {
	return string(PaceToggle) + s + string(PaceToggle)
}

// Icon selects the annunciator icon, see [IconPlay], [IconEject] and [IconStop]. Any other
// selector clears the icon.
func Icon(selector rune) string {
	return string(IconMarker) + string(selector)
}

// Blink flashes s n times on a cleared display.
func Blink(s string, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString("\f#")
		b.WriteString(s)
		b.WriteString("###")
	}
	return b.String()
}

// NumberBlink flashes s in place, in a field of width characters, and leaves it shown.
func NumberBlink(s string, width, times int) string {
	var (
		b     strings.Builder
		field = Pad(s, width)
		back  = strings.Repeat("\b", width)
		blank = strings.Repeat(" ", width)
	)
	for i := 0; i < times; i++ {
		b.WriteString(field)
		b.WriteString("##")
		b.WriteString(back)
		b.WriteString(blank)
		b.WriteString("#")
		b.WriteString(back)
	}
	b.WriteString(field)
	return b.String()
}

// Clock formats the clock face: hours and minutes, or dashes if the time is unknown.
func Clock(hour, minute int, sep rune, known bool) string {
	if !known {
		return fmt.Sprintf("\f--%c--", sep)
	}
	return fmt.Sprintf("\f%02d%c%02d", hour, sep, minute)
}
