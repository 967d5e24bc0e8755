package hilbert

// The curve orientation at any level is one of four states: bit 0 records
// that x and y are exchanged, bit 1 that both are complemented.
const (
	swapBit = 1
	flipBit = 2
)

// detangleTable[state][b] packs the four x bits (0-3), the four y bits (4-7)
// and the following state (8-9) produced by index byte b.
var detangleTable [4][256]uint16

// entangleTable[state][x4<<4|y4] packs the index byte (0-7) and the following
// state (8-9) produced by four bits each of x and y.
var entangleTable [4][256]uint16

func init() {
	for state := range 4 {
		for b := range 256 {
			x, y, next := detangleByte(uint8(state), uint8(b))
			detangleTable[state][b] = uint16(x) | uint16(y)<<4 | uint16(next)<<8
		}
		for key := range 256 {
			d, next := entangleByte(uint8(state), uint8(key>>4), uint8(key&0xF))
			entangleTable[state][key] = uint16(d) | uint16(next)<<8
		}
	}
}

// step advances the state after a quadrant with transformed bits (rx, ry).
func step(state, rx, ry uint8) uint8 {
	if ry == 0 {
		if rx == 1 {
			state ^= flipBit
		}
		state ^= swapBit
	}
	return state
}

func transform(state, bx, by uint8) (uint8, uint8) {
	if state&flipBit != 0 {
		bx ^= 1
		by ^= 1
	}
	if state&swapBit != 0 {
		bx, by = by, bx
	}
	return bx, by
}

func entangleByte(state, x4, y4 uint8) (uint8, uint8) {
	var d uint8
	for level := 3; level >= 0; level-- {
		rx, ry := transform(state, (x4>>level)&1, (y4>>level)&1)
		d = d<<2 | (3*rx)^ry
		state = step(state, rx, ry)
	}
	return d, state
}

func detangleByte(state, b uint8) (x4, y4, next uint8) {
	for level := 3; level >= 0; level-- {
		q := (b >> (2 * level)) & 3
		rx := q >> 1
		ry := (q ^ rx) & 1
		// The transform is its own inverse.
		bx, by := transform(state, rx, ry)
		x4 = x4<<1 | bx
		y4 = y4<<1 | by
		state = step(state, rx, ry)
	}
	return x4, y4, state
}
