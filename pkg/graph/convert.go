package graph

import (
	"cmp"
	"slices"

	"github.com/utcs-scea/cost/pkg/format"
)

type edge struct {
	src, dst uint32
}

func collect(m EdgeMapper, sizeHint int) ([]edge, error) {
	edges := make([]edge, 0, max(sizeHint, 0))
	err := m.MapEdges(func(src, dst uint32) {
		edges = append(edges, edge{src, dst})
	})
	return edges, err
}

// WriteCSR buckets the edges of m by source and writes them to w. Each
// source's destinations keep the order m produced them in. Vertices with
// no outgoing edges get no node record.
func WriteCSR(m EdgeMapper, w *format.CSRWriter, sizeHint int) error {
	edges, err := collect(m, sizeHint)
	if err != nil {
		return err
	}
	slices.SortStableFunc(edges, func(a, b edge) int { return cmp.Compare(a.src, b.src) })
	return writeRuns(edges, w)
}

// WriteSymmetricCSR writes both directions of every edge of m, sorted and
// without repeats.
func WriteSymmetricCSR(m EdgeMapper, w *format.CSRWriter, sizeHint int) error {
	edges := make([]edge, 0, 2*max(sizeHint, 0))
	err := m.MapEdges(func(src, dst uint32) {
		edges = append(edges, edge{src, dst}, edge{dst, src})
	})
	if err != nil {
		return err
	}
	slices.SortFunc(edges, func(a, b edge) int {
		if c := cmp.Compare(a.src, b.src); c != 0 {
			return c
		}
		return cmp.Compare(a.dst, b.dst)
	})
	return writeRuns(slices.Compact(edges), w)
}

func writeRuns(edges []edge, w *format.CSRWriter) error {
	dsts := make([]uint32, 0, 64)
	for i := 0; i < len(edges); {
		src := edges[i].src
		dsts = dsts[:0]
		for ; i < len(edges) && edges[i].src == src; i++ {
			dsts = append(dsts, edges[i].dst)
		}
		if err := w.WriteNode(src, dsts); err != nil {
			return err
		}
	}
	return w.Flush()
}
