package hilbert

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"
)

// referenceIndex walks the curve one level at a time.
func referenceIndex(x32, y32 uint32) uint64 {
	const n = uint64(1) << 32
	x, y := uint64(x32), uint64(y32)
	var d uint64
	for s := n / 2; s > 0; s /= 2 {
		var rx, ry uint64
		if x&s > 0 {
			rx = 1
		}
		if y&s > 0 {
			ry = 1
		}
		d += s * s * ((3 * rx) ^ ry)
		if ry == 0 {
			if rx == 1 {
				x = n - 1 - x
				y = n - 1 - y
			}
			x, y = y, x
		}
	}
	return d
}

func randUint32() uint32 { return uint32(frand.Uint64n(1 << 32)) }

func randUint64() uint64 { return frand.Uint64n(math.MaxUint64) }

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

func TestEntangleMatchesReference(t *testing.T) {
	cases := [][2]uint32{
		{0, 0}, {0, 1}, {1, 0}, {1, 1},
		{math.MaxUint32, 0}, {0, math.MaxUint32}, {math.MaxUint32, math.MaxUint32},
		{0x12345678, 0x9abcdef0}, {65535, 65536},
	}
	for range 1000 {
		cases = append(cases, [2]uint32{randUint32(), randUint32()})
	}
	for _, c := range cases {
		require.Equal(t, referenceIndex(c[0], c[1]), Entangle(c[0], c[1]), "(%d, %d)", c[0], c[1])
	}
}

func TestSmallGridOrder(t *testing.T) {
	// The first four cells visit the lower-left 2x2 block in curve order.
	assert.Equal(t, uint64(0), Entangle(0, 0))
	assert.Equal(t, uint64(1), Entangle(1, 0))
	assert.Equal(t, uint64(2), Entangle(1, 1))
	assert.Equal(t, uint64(3), Entangle(0, 1))
}

func TestDetangleInvertsEntangle(t *testing.T) {
	for range 5000 {
		x, y := randUint32(), randUint32()
		gx, gy := Detangle(Entangle(x, y))
		require.Equal(t, x, gx)
		require.Equal(t, y, gy)
	}
	for range 5000 {
		d := randUint64()
		x, y := Detangle(d)
		require.Equal(t, d, Entangle(x, y))
	}
	x, y := Detangle(math.MaxUint64)
	assert.Equal(t, uint64(math.MaxUint64), Entangle(x, y))
}

func TestConsecutivePositionsAreAdjacent(t *testing.T) {
	starts := []uint64{0, 1 << 20, 1<<32 - 100, 1<<62 + 12345, math.MaxUint64 - 5000}
	for _, start := range starts {
		px, py := Detangle(start)
		for d := start + 1; d < start+5000; d++ {
			x, y := Detangle(d)
			require.Equal(t, uint32(1), absDiff(x, px)+absDiff(y, py), "step to %d", d)
			px, py = x, y
		}
	}
}

func TestDecoderAgreesWithDetangle(t *testing.T) {
	indices := make([]uint64, 0, 4096)
	for range 2048 {
		indices = append(indices, randUint64())
	}
	for range 2048 {
		indices = append(indices, frand.Uint64n(1<<24))
	}

	t.Run("unsorted", func(t *testing.T) {
		var dec Decoder
		for _, d := range indices {
			x, y := dec.Detangle(d)
			wx, wy := Detangle(d)
			require.Equal(t, wx, x)
			require.Equal(t, wy, y)
		}
	})

	t.Run("sorted with repeats", func(t *testing.T) {
		sorted := slices.Clone(indices)
		sorted = append(sorted, sorted[:100]...)
		slices.Sort(sorted)
		var dec Decoder
		for _, d := range sorted {
			x, y := dec.Detangle(d)
			wx, wy := Detangle(d)
			require.Equal(t, wx, x)
			require.Equal(t, wy, y)
		}
	})

	t.Run("reset", func(t *testing.T) {
		var dec Decoder
		dec.Detangle(indices[0])
		dec.Reset()
		x, y := dec.Detangle(0)
		assert.Zero(t, x)
		assert.Zero(t, y)
	})
}

func BenchmarkEntangle(b *testing.B) {
	b.ReportAllocs()
	var sink uint64
	for i := 0; i < b.N; i++ {
		sink += Entangle(uint32(i), uint32(i>>3))
	}
	_ = sink
}

func BenchmarkDetangle(b *testing.B) {
	b.ReportAllocs()
	var sink uint32
	for i := 0; i < b.N; i++ {
		x, y := Detangle(uint64(i) * 7919)
		sink += x ^ y
	}
	_ = sink
}

func BenchmarkDecoderSorted(b *testing.B) {
	b.ReportAllocs()
	var dec Decoder
	var sink uint32
	for i := 0; i < b.N; i++ {
		x, y := dec.Detangle(uint64(i) * 3)
		sink += x ^ y
	}
	_ = sink
}
