package format

import (
	"fmt"
	"math"
	"slices"

	"github.com/utcs-scea/cost/pkg/hilbert"
)

// EdgeSource replays a stored edge set.
type EdgeSource interface {
	MapEdges(action func(src, dst uint32)) error
}

// CurveBuilder collects edges as Hilbert indices and regroups them by
// 2^16 x 2^16 block in curve order.
type CurveBuilder struct {
	indices []uint64
}

// NewCurveBuilder returns a builder with room for sizeHint edges.
func NewCurveBuilder(sizeHint int) *CurveBuilder {
	return &CurveBuilder{indices: make([]uint64, 0, max(sizeHint, 0))}
}

// Add records one edge.
func (b *CurveBuilder) Add(src, dst uint32) {
	b.indices = append(b.indices, hilbert.Entangle(src, dst))
}

// Len returns the number of edges added.
func (b *CurveBuilder) Len() int { return len(b.indices) }

// Build sorts the collected edges and calls emit once per block, in curve
// order. The lowers slice is reused between calls.
//
// With dense set, every block position from zero up to the last occupied
// one is emitted, unoccupied ones with a zero count, so the i-th upper
// record always describes curve block i.
func (b *CurveBuilder) Build(dense bool, emit func(UpperRecord, []LowerRecord) error) error {
	slices.Sort(b.indices)

	var dec hilbert.Decoder
	lowers := make([]LowerRecord, 0, 1024)
	var next uint64
	for i := 0; i < len(b.indices); {
		block := b.indices[i] >> 32

		if dense {
			for ; next < block; next++ {
				if err := emit(blockRecord(next, 0), nil); err != nil {
					return err
				}
			}
			next = block + 1
		}

		lowers = lowers[:0]
		j := i
		for ; j < len(b.indices) && b.indices[j]>>32 == block; j++ {
			x, y := dec.Detangle(b.indices[j])
			lowers = append(lowers, LowerRecord{LX: uint16(x), LY: uint16(y)})
		}
		count, err := blockCount(block, j-i)
		if err != nil {
			return err
		}
		if err := emit(blockRecord(block, count), lowers); err != nil {
			return err
		}
		i = j
	}
	return nil
}

// blockCount checks that n edges fit the upper record's count.
func blockCount(block uint64, n int) (uint32, error) {
	if uint64(n) > math.MaxUint32 {
		return 0, fmt.Errorf("format: block %d has %d edges, more than a record can count", block, n)
	}
	return uint32(n), nil
}

// blockRecord names curve block p, which covers indices p<<32 .. p<<32|0xFFFFFFFF.
func blockRecord(p uint64, count uint32) UpperRecord {
	x, y := hilbert.Detangle(p << 32)
	return UpperRecord{UX: uint16(x >> 16), UY: uint16(y >> 16), Count: count}
}

// ConvertToCurve replays src, regroups its edges by block and hands each
// group to emit.
func ConvertToCurve(src EdgeSource, sizeHint int, dense bool, emit func(UpperRecord, []LowerRecord) error) error {
	b := NewCurveBuilder(sizeHint)
	if err := src.MapEdges(b.Add); err != nil {
		return err
	}
	return b.Build(dense, emit)
}
