package format

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	// ErrTruncatedDelta is returned when a delta stream ends inside a gap.
	ErrTruncatedDelta = errors.New("format: delta stream ends mid-value")
	// ErrDeltaOverflow is returned for a gap escape wider than eight bytes.
	ErrDeltaOverflow = errors.New("format: delta gap exceeds 64 bits")
	// ErrNonIncreasing is returned when delta-encoding an index that does not exceed its predecessor.
	ErrNonIncreasing = errors.New("format: indices must be strictly increasing")
	// ErrCountMismatch is returned when a record's count disagrees with its payload.
	ErrCountMismatch = errors.New("format: record count does not match payload")
)

// Record sizes in bytes.
const (
	NodeRecordSize  = 8
	EdgeRecordSize  = 4
	UpperRecordSize = 8
	LowerRecordSize = 4
)

// NodeRecord is one entry of a .nodes file.
type NodeRecord struct {
	ID     uint32
	Degree uint32
}

// UpperRecord is one entry of a .upper file: the high 16 bits of source and
// destination shared by Count consecutive .lower entries.
type UpperRecord struct {
	UX    uint16
	UY    uint16
	Count uint32
}

// LowerRecord is one entry of a .lower file.
type LowerRecord struct {
	LX uint16
	LY uint16
}

// Edge rebuilds the full edge from its block and low halves.
func (u UpperRecord) Edge(l LowerRecord) (src, dst uint32) {
	return uint32(u.UX)<<16 | uint32(l.LX), uint32(u.UY)<<16 | uint32(l.LY)
}

// Paths names the files that make up a graph stored under a common prefix.
type Paths string

func (p Paths) Nodes() string   { return string(p) + ".nodes" }
func (p Paths) Edges() string   { return string(p) + ".edges" }
func (p Paths) Upper() string   { return string(p) + ".upper" }
func (p Paths) Lower() string   { return string(p) + ".lower" }
func (p Paths) BiNodes() string { return string(p) + ".binodes" }
func (p Paths) BiEdges() string { return string(p) + ".biedges" }
func (p Paths) Names() string   { return string(p) + ".names" }

// Base returns the prefix with its directory stripped.
func (p Paths) Base() string { return filepath.Base(string(p)) }

// TrimPrefix strips a known suffix so either "g" or "g.nodes" names the same graph.
func TrimPrefix(path string) Paths {
	for _, ext := range []string{".nodes", ".edges", ".upper", ".lower"} {
		if strings.HasSuffix(path, ext) {
			return Paths(strings.TrimSuffix(path, ext))
		}
	}
	return Paths(path)
}
