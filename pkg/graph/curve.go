package graph

import (
	"errors"
	"fmt"

	"github.com/utcs-scea/cost/pkg/format"
	"github.com/utcs-scea/cost/pkg/typedmap"
)

// CurveMapper replays a memory-mapped .upper/.lower pair in curve order.
type CurveMapper struct {
	upper *typedmap.Map[format.UpperRecord]
	lower *typedmap.Map[format.LowerRecord]
}

// OpenCurve maps <prefix>.upper and <prefix>.lower.
func OpenCurve(prefix format.Paths) (*CurveMapper, error) {
	upper, err := typedmap.Open[format.UpperRecord](prefix.Upper())
	if err != nil {
		return nil, err
	}
	lower, err := typedmap.Open[format.LowerRecord](prefix.Lower())
	if err != nil {
		upper.Close()
		return nil, err
	}
	return &CurveMapper{upper: upper, lower: lower}, nil
}

func (m *CurveMapper) MapEdges(action func(src, dst uint32)) error {
	return replayCurve(m.upper.Records(), m.lower.Records(), action)
}

// Check verifies that the upper counts account for exactly the lower file.
func (m *CurveMapper) Check() error {
	var total uint64
	for _, u := range m.upper.Records() {
		total += uint64(u.Count)
	}
	if total != uint64(m.lower.Len()) {
		return fmt.Errorf("%w: counts sum to %d, %s holds %d records",
			format.ErrCountMismatch, total, m.lower.Path(), m.lower.Len())
	}
	return nil
}

// Groups returns the upper records.
func (m *CurveMapper) Groups() []format.UpperRecord { return m.upper.Records() }

func (m *CurveMapper) Close() error {
	return errors.Join(m.upper.Close(), m.lower.Close())
}

func replayCurve(upper []format.UpperRecord, lower []format.LowerRecord, action func(src, dst uint32)) error {
	for _, u := range upper {
		if uint64(u.Count) > uint64(len(lower)) {
			return fmt.Errorf("%w: block (%d, %d) wants %d records, %d remain", ErrShortLower, u.UX, u.UY, u.Count, len(lower))
		}
		ux, uy := uint32(u.UX)<<16, uint32(u.UY)<<16
		for _, l := range lower[:u.Count] {
			action(ux|uint32(l.LX), uy|uint32(l.LY))
		}
		lower = lower[u.Count:]
	}
	return nil
}
