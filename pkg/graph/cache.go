package graph

import (
	"github.com/utcs-scea/cost/pkg/format"
)

// CachingMapper delegates its first pass to a source and keeps a
// curve-ordered copy of the edges for every later pass. The first pass
// visits edges in the source's order; later passes visit them in curve
// order.
//
// A CachingMapper is not safe for concurrent use.
type CachingMapper struct {
	source   EdgeMapper
	sizeHint int

	populated bool
	upper     []format.UpperRecord
	lower     []format.LowerRecord
}

// NewCachingMapper wraps source. sizeHint is the expected edge count and
// may be zero.
func NewCachingMapper(source EdgeMapper, sizeHint int) *CachingMapper {
	return &CachingMapper{source: source, sizeHint: sizeHint}
}

func (m *CachingMapper) MapEdges(action func(src, dst uint32)) error {
	if m.populated {
		return replayCurve(m.upper, m.lower, action)
	}

	b := format.NewCurveBuilder(m.sizeHint)
	err := m.source.MapEdges(func(src, dst uint32) {
		action(src, dst)
		b.Add(src, dst)
	})
	if err != nil {
		return err
	}

	upper := make([]format.UpperRecord, 0, 64)
	lower := make([]format.LowerRecord, 0, b.Len())
	err = b.Build(false, func(u format.UpperRecord, ls []format.LowerRecord) error {
		upper = append(upper, u)
		lower = append(lower, ls...)
		return nil
	})
	if err != nil {
		return err
	}
	m.upper, m.lower, m.populated = upper, lower, true
	return nil
}

// Populated reports whether the curve copy has been built.
func (m *CachingMapper) Populated() bool { return m.populated }

// Close releases the cached copy and closes the source if it can be closed.
func (m *CachingMapper) Close() error {
	m.upper, m.lower, m.populated = nil, nil, false
	if c, ok := m.source.(Backend); ok {
		return c.Close()
	}
	return nil
}
