package format

import (
	"bytes"
	"math"
	"slices"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"

	"github.com/utcs-scea/cost/pkg/hilbert"
)

type edgeList [][2]uint32

func (l edgeList) MapEdges(action func(src, dst uint32)) error {
	for _, e := range l {
		action(e[0], e[1])
	}
	return nil
}

func TestAppendDelta(t *testing.T) {
	cases := []struct {
		gap  uint64
		want []byte
	}{
		{1, []byte{1}},
		{255, []byte{255}},
		{256, []byte{0, 1, 0}},
		{65535, []byte{0, 0xff, 0xff}},
		{65536, []byte{0, 0, 1, 0, 0}},
		{1 << 56, []byte{0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0}},
		{math.MaxUint64, []byte{0, 0, 0, 0, 0, 0, 0, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, AppendDelta(nil, c.gap), "gap %d", c.gap)
	}
}

func encode(t *testing.T, indices []uint64) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := NewDeltaWriter(&buf)
	for _, index := range indices {
		require.NoError(t, w.WriteIndex(index))
	}
	require.NoError(t, w.Flush())
	require.Equal(t, uint64(len(indices)), w.Count())
	return buf.Bytes()
}

func decodeAll(t *testing.T, data []byte, bufSize int) ([]uint64, []uint64) {
	t.Helper()
	var fromSlice, fromStream []uint64
	require.NoError(t, DecodeDeltas(data, func(i uint64) { fromSlice = append(fromSlice, i) }))
	r := iotest.HalfReader(bytes.NewReader(data))
	require.NoError(t, DecodeDeltaStream(r, make([]byte, bufSize), func(i uint64) { fromStream = append(fromStream, i) }))
	return fromSlice, fromStream
}

func TestDeltaRoundTrip(t *testing.T) {
	indices := []uint64{1, 2, 257, 258, 1 << 20, 1<<40 + 3, 1 << 63, math.MaxUint64}
	for range 2000 {
		indices = append(indices, frand.Uint64n(1<<48)+1)
	}
	slices.Sort(indices)
	indices = slices.Compact(indices)

	data := encode(t, indices)
	for _, size := range []int{1, 3, 7, 4096} {
		fromSlice, fromStream := decodeAll(t, data, size)
		require.Equal(t, indices, fromSlice)
		require.Equal(t, indices, fromStream, "buffer size %d", size)
	}
}

func TestDeltaEmpty(t *testing.T) {
	fromSlice, fromStream := decodeAll(t, nil, 16)
	assert.Empty(t, fromSlice)
	assert.Empty(t, fromStream)
}

func TestDeltaTruncated(t *testing.T) {
	for _, data := range [][]byte{{0}, {0, 1}, {5, 0, 0, 1, 2}, {0, 0, 0}} {
		err := DecodeDeltas(data, func(uint64) {})
		assert.ErrorIs(t, err, ErrTruncatedDelta, "%v", data)
		err = DecodeDeltaStream(bytes.NewReader(data), make([]byte, 2), func(uint64) {})
		assert.ErrorIs(t, err, ErrTruncatedDelta, "%v", data)
	}
}

func TestDeltaOverflow(t *testing.T) {
	data := append(make([]byte, 8), bytes.Repeat([]byte{1}, 9)...)
	assert.ErrorIs(t, DecodeDeltas(data, func(uint64) {}), ErrDeltaOverflow)
	assert.ErrorIs(t, DecodeDeltaStream(bytes.NewReader(data), make([]byte, 4), func(uint64) {}), ErrDeltaOverflow)
}

func TestDeltaWriterRejectsRepeats(t *testing.T) {
	w := NewDeltaWriter(&bytes.Buffer{})
	require.ErrorIs(t, w.WriteIndex(0), ErrNonIncreasing)
	require.NoError(t, w.WriteIndex(5))
	require.ErrorIs(t, w.WriteIndex(5), ErrNonIncreasing)
	require.ErrorIs(t, w.WriteIndex(4), ErrNonIncreasing)
}

func TestCompressEdges(t *testing.T) {
	edges := edgeList{{3, 4}, {1, 2}, {3, 4}, {100000, 7}}

	_, err := CompressEdges(edges, &bytes.Buffer{}, 0, false)
	require.ErrorIs(t, err, ErrNonIncreasing)

	var buf bytes.Buffer
	stats, err := CompressEdges(edges, &buf, len(edges), true)
	require.NoError(t, err)
	assert.Equal(t, CompressStats{Edges: 4, Written: 3, Dropped: 1}, stats)

	var got [][2]uint32
	require.NoError(t, DecodeDeltas(buf.Bytes(), func(i uint64) {
		x, y := hilbert.Detangle(i)
		got = append(got, [2]uint32{x, y})
	}))
	assert.ElementsMatch(t, [][2]uint32{{3, 4}, {1, 2}, {100000, 7}}, got)

	_, err = CompressEdges(edgeList{{0, 0}}, &bytes.Buffer{}, 0, true)
	assert.ErrorIs(t, err, ErrNonIncreasing)
}

type group struct {
	upper  UpperRecord
	lowers []LowerRecord
}

func build(t *testing.T, edges edgeList, dense bool) []group {
	t.Helper()
	var groups []group
	require.NoError(t, ConvertToCurve(edges, len(edges), dense, func(u UpperRecord, ls []LowerRecord) error {
		groups = append(groups, group{upper: u, lowers: slices.Clone(ls)})
		return nil
	}))
	return groups
}

func blockOf(u UpperRecord) uint64 {
	return hilbert.Entangle(uint32(u.UX)<<16, uint32(u.UY)<<16) >> 32
}

func TestConvertToCurveGroupsByBlock(t *testing.T) {
	edges := edgeList{{0, 1}, {1, 0}, {70000, 3}, {3, 70000}, {1 << 20, 1 << 20}, {70001, 5}, {0, 1}}
	groups := build(t, edges, false)

	var replay [][2]uint32
	var prev uint64
	for i, g := range groups {
		require.Equal(t, int(g.upper.Count), len(g.lowers))
		require.NotZero(t, g.upper.Count)
		block := blockOf(g.upper)
		if i > 0 {
			require.Greater(t, block, prev)
		}
		prev = block

		var last uint64
		for j, l := range g.lowers {
			src, dst := g.upper.Edge(l)
			replay = append(replay, [2]uint32{src, dst})
			index := hilbert.Entangle(src, dst)
			require.Equal(t, block, index>>32)
			if j > 0 {
				require.GreaterOrEqual(t, index, last)
			}
			last = index
		}
	}
	assert.ElementsMatch(t, [][2]uint32(edges), replay)
}

func TestConvertToCurveDense(t *testing.T) {
	edges := edgeList{{70000, 3}, {3, 70000}, {5, 5}}
	groups := build(t, edges, true)

	var total uint32
	for i, g := range groups {
		assert.Equal(t, uint64(i), blockOf(g.upper), "position %d", i)
		total += g.upper.Count
	}
	assert.Equal(t, uint32(len(edges)), total)
	assert.NotZero(t, groups[len(groups)-1].upper.Count)

	sparse := build(t, edges, false)
	assert.Less(t, len(sparse), len(groups))
}

func TestConvertToCurveEmpty(t *testing.T) {
	assert.Empty(t, build(t, nil, false))
	assert.Empty(t, build(t, nil, true))
}

func TestCSRWriter(t *testing.T) {
	var nodes, edges bytes.Buffer
	w := NewCSRWriter(&nodes, &edges)
	require.NoError(t, w.WriteNode(2, []uint32{5, 1}))
	require.NoError(t, w.WriteNode(7, []uint32{0x01020304}))
	require.NoError(t, w.Flush())

	assert.Equal(t, []byte{2, 0, 0, 0, 2, 0, 0, 0, 7, 0, 0, 0, 1, 0, 0, 0}, nodes.Bytes())
	assert.Equal(t, []byte{5, 0, 0, 0, 1, 0, 0, 0, 4, 3, 2, 1}, edges.Bytes())
	n, e := w.Counts()
	assert.Equal(t, uint64(2), n)
	assert.Equal(t, uint64(3), e)
}

func TestCurveWriter(t *testing.T) {
	var upper, lower bytes.Buffer
	w := NewCurveWriter(&upper, &lower)
	require.NoError(t, w.WriteGroup(UpperRecord{UX: 1, UY: 0x0203, Count: 2}, []LowerRecord{{LX: 9, LY: 8}, {LX: 0x100, LY: 0}}))
	require.ErrorIs(t, w.WriteGroup(UpperRecord{Count: 3}, nil), ErrCountMismatch)
	require.NoError(t, w.Flush())

	assert.Equal(t, []byte{1, 0, 3, 2, 2, 0, 0, 0}, upper.Bytes())
	assert.Equal(t, []byte{9, 0, 8, 0, 0, 1, 0, 0}, lower.Bytes())
	groups, n := w.Counts()
	assert.Equal(t, uint64(1), groups)
	assert.Equal(t, uint64(2), n)
}

func TestTrimPrefix(t *testing.T) {
	assert.Equal(t, Paths("data/g"), TrimPrefix("data/g.nodes"))
	assert.Equal(t, Paths("data/g"), TrimPrefix("data/g.upper"))
	assert.Equal(t, Paths("data/g"), TrimPrefix("data/g"))
	assert.Equal(t, "data/g.lower", Paths("data/g").Lower())
	assert.Equal(t, "g", Paths("data/g").Base())
}

func BenchmarkDecodeDeltas(b *testing.B) {
	var data []byte
	for range 1 << 16 {
		data = AppendDelta(data, frand.Uint64n(1<<20)+1)
	}
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var sink uint64
		_ = DecodeDeltas(data, func(index uint64) { sink = index })
		_ = sink
	}
}

func TestBlockCountOverflow(t *testing.T) {
	n, err := blockCount(3, math.MaxUint32)
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), n)

	_, err = blockCount(3, math.MaxUint32+1)
	assert.ErrorContains(t, err, "block 3")
}
