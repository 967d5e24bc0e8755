package graph

import (
	"errors"
	"fmt"

	"github.com/utcs-scea/cost/pkg/format"
	"github.com/utcs-scea/cost/pkg/typedmap"
)

// CSRMapper replays a memory-mapped .nodes/.edges pair in node order.
type CSRMapper struct {
	nodes *typedmap.Map[format.NodeRecord]
	edges *typedmap.Map[uint32]
}

// OpenCSR maps <prefix>.nodes and <prefix>.edges.
func OpenCSR(prefix format.Paths) (*CSRMapper, error) {
	nodes, err := typedmap.Open[format.NodeRecord](prefix.Nodes())
	if err != nil {
		return nil, err
	}
	edges, err := typedmap.Open[uint32](prefix.Edges())
	if err != nil {
		nodes.Close()
		return nil, err
	}
	return &CSRMapper{nodes: nodes, edges: edges}, nil
}

func (m *CSRMapper) MapEdges(action func(src, dst uint32)) error {
	edges := m.edges.Records()
	for _, n := range m.nodes.Records() {
		if uint64(n.Degree) > uint64(len(edges)) {
			return fmt.Errorf("%w: node %d wants %d edges, %d remain", ErrShortEdges, n.ID, n.Degree, len(edges))
		}
		for _, dst := range edges[:n.Degree] {
			action(n.ID, dst)
		}
		edges = edges[n.Degree:]
	}
	return nil
}

// Check verifies that the node degrees account for exactly the edges file.
func (m *CSRMapper) Check() error {
	var total uint64
	for _, n := range m.nodes.Records() {
		total += uint64(n.Degree)
	}
	if total != uint64(m.edges.Len()) {
		return fmt.Errorf("%w: degrees sum to %d, %s holds %d edges",
			format.ErrCountMismatch, total, m.edges.Path(), m.edges.Len())
	}
	return nil
}

// NodeCount returns the number of node records.
func (m *CSRMapper) NodeCount() int { return m.nodes.Len() }

// EdgeCount returns the number of edge records.
func (m *CSRMapper) EdgeCount() int { return m.edges.Len() }

func (m *CSRMapper) Close() error {
	return errors.Join(m.nodes.Close(), m.edges.Close())
}
