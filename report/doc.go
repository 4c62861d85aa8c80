// Package report turns queued ticker reports into timed display updates.
//
// A report is a string of display characters with embedded control codes:
//
//	0x0C  clear the buffer (form feed)
//	0x0D  cursor home (carriage return)
//	0x08  cursor left (backspace)
//	'~'   flush and pause for 1s
//	'#'   flush and pause for 100ms
//	0x01  toggle the scroll pace
//	0x02  icon marker, the next character selects the icon: A play, B eject, C stop, other none
//
// Producers put ready reports on a [Queue]. A single [Renderer] drains the queue through an
// [Interpreter] and shows the clock while the queue is empty.
package report
