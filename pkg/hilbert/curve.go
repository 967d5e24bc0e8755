package hilbert

import "math/bits"

// Entangle returns the position of (x, y) along the curve.
func Entangle(x, y uint32) uint64 {
	var d uint64
	var state uint16
	for shift := 28; shift >= 0; shift -= 4 {
		key := (x>>shift&0xF)<<4 | (y >> shift & 0xF)
		e := entangleTable[state][key]
		d = d<<8 | uint64(e&0xFF)
		state = e >> 8
	}
	return d
}

// Detangle returns the coordinates at position d along the curve.
func Detangle(d uint64) (x, y uint32) {
	var state uint16
	for shift := 56; shift >= 0; shift -= 8 {
		e := detangleTable[state][byte(d>>shift)]
		x = x<<4 | uint32(e&0xF)
		y = y<<4 | uint32(e>>4&0xF)
		state = e >> 8
	}
	return x, y
}

// Decoder detangles a stream of indices, reusing the state reached by the
// bytes shared with the previous index. It gives the same answers as
// Detangle for any input order, and is fastest when consecutive indices
// share long prefixes, as sorted indices do.
//
// The zero value is ready to use. A Decoder is not safe for concurrent use.
type Decoder struct {
	prev   uint64
	primed bool
	x, y   uint32

	// state and partial coordinates on entry to each byte of prev
	states [8]uint16
	xs     [8]uint32
	ys     [8]uint32
}

// Detangle returns the coordinates at position d.
func (dec *Decoder) Detangle(d uint64) (uint32, uint32) {
	start := 0
	if dec.primed {
		diff := d ^ dec.prev
		if diff == 0 {
			return dec.x, dec.y
		}
		start = bits.LeadingZeros64(diff) / 8
	}

	state, x, y := dec.states[start], dec.xs[start], dec.ys[start]
	for i := start; i < 8; i++ {
		dec.states[i], dec.xs[i], dec.ys[i] = state, x, y
		e := detangleTable[state][byte(d>>(56-8*i))]
		x = x<<4 | uint32(e&0xF)
		y = y<<4 | uint32(e>>4&0xF)
		state = e >> 8
	}

	dec.prev, dec.primed = d, true
	dec.x, dec.y = x, y
	return x, y
}

// Reset forgets the previous index.
func (dec *Decoder) Reset() {
	*dec = Decoder{}
}
