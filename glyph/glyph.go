package glyph

// Glyph is a 24-bit segment bitmap.
type Glyph uint32

// Blank has no segments lit.
const Blank Glyph = 0

// Degree is the degree sign (U+00B0).
const Degree Glyph = 0x8a0700

// Dot is the decimal point segment.
const Dot Glyph = 0x000008

// DegreeSign is the rune for [Degree].
const DegreeSign = '°'

const (
	first = '!'
	last  = '`'
)

// font by saisaiwa, indexed from '!'
var font = [...]Glyph{
	0x202204, // !
	0x300000, // "
	0x505700, // #
	0x2fa70f, // $
	0x451209, // %
	0x1bca0f, // &
	0x100000, // '
	0x090807, // (
	0x84800e, // )
	0x707700, // *
	0x202700, // +
	0x008000, // ,
	0x000700, // -
	0x000008, // .
	0x441201, // /
	0xcf980f, // 0
	0x848008, // 1
	0x870f0f, // 2
	0x47870f, // 3
	0x8d8708, // 4
	0x0f870f, // 5
	0x0f8f0f, // 6
	0x8f8008, // 7
	0x8f8f0f, // 8
	0x8f870f, // 9
	0x202000, // :
	0x202001, // ;
	0x404100, // <
	0x07000f, // =
	0x101200, // >
	0x472204, // ?
	0x8f1f07, // @
	0x8f8f09, // A
	0xa7a60f, // B
	0x0f080f, // C
	0xa7a20f, // D
	0x0f0f0f, // E
	0x0f0f01, // F
	0x0f8c0f, // G
	0x8d8f09, // H
	0x27220f, // I
	0x222a05, // J
	0x4d4b09, // K
	0x09080f, // L
	0xdd8a09, // M
	0x9dca09, // N
	0x8f880f, // O
	0x8f0f01, // P
	0x8fc80f, // Q
	0x8f4f09, // R
	0x0f870f, // S
	0x272204, // T
	0x8d880f, // U
	0x95c208, // V
	0x8dda09, // W
	0x555209, // X
	0x552204, // Y
	0x47120f, // Z
	0x0f080f, // [
	0x114208, // \
	0x87800f, // ]
	0x205000, // ^
	0x00000f, // _
	0x100000, // `
}

// Lookup returns the glyph for r. Unsupported runes map to [Blank].
func Lookup(r rune) Glyph {
	switch {
	case r >= first && r <= last:
		return font[r-first]
	case r >= 'a' && r <= 'z':
		return font[r-'a'+'A'-first]
	case r == DegreeSign:
		return Degree
	default:
		return Blank
	}
}

// Supported reports if r has a non-blank glyph, or is a space.
func Supported(r rune) bool {
	return r == ' ' || Lookup(r) != Blank
}

// Bytes returns the glyph as three bytes, most significant first.
func (g Glyph) Bytes() [3]byte {
	return [3]byte{byte(g >> 16), byte(g >> 8), byte(g)}
}

// Or combines the segments of g and o.
func (g Glyph) Or(o Glyph) Glyph {
	return g | o
}

// FromBytes decodes three bytes, most significant first.
func FromBytes(b [3]byte) Glyph {
	return Glyph(b[0])<<16 | Glyph(b[1])<<8 | Glyph(b[2])
}
