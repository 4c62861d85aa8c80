// Package glyph implements the segment font used by 14-segment VFD tubes.
//
// A [Glyph] is a 24-bit segment bitmap, transmitted as three bytes with the most significant
// byte first. The table covers printable ASCII from '!' to '`', folds lowercase letters to
// uppercase and adds the degree sign. Anything else renders blank.
package glyph
