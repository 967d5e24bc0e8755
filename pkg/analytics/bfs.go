package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/utcs-scea/cost/pkg/graph"
)

// Unvisited labels a vertex that is not reachable from the start.
const Unvisited = math.MaxUint32

type edge struct {
	src, dst uint32
}

// pending reports whether an edge can still promote one of its endpoints
// at some level after it.
func pending(ls, ld, it uint32) bool {
	return (ls > it && ld > it+1) || (ld > it && ls > it+1)
}

// BFS labels every vertex with its hop distance from start, treating edges
// as undirected. Unreachable vertices keep Unvisited.
//
// The first pass labels the start's neighbours and finds the start's
// component. Each later pass promotes the frontier by one level while
// buffering the in-component edges that may still matter. Once a pass
// buffers fewer edges than the graph holds, the remaining levels run over
// that buffer alone, and the buffer shrinks as its edges settle.
func BFS(ctx context.Context, g graph.EdgeMapper, nodes, start uint32, opts ...Option) ([]uint32, error) {
	o := newOptions(opts)
	ctx, span := o.tracer.Start(ctx, "analytics.BFS", trace.WithAttributes(
		attribute.Int64("graph.nodes", int64(nodes)),
		attribute.Int64("bfs.start", int64(start)),
	))
	defer span.End()

	if start >= nodes {
		return nil, fail(span, fmt.Errorf("%w: %d with %d nodes", ErrStartOutOfRange, start, nodes))
	}

	labels := make([]uint32, nodes)
	for i := range labels {
		labels[i] = Unvisited
	}
	labels[start] = 0

	inComp, edges, err := restrict(ctx, o, g, labels, start)
	if err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.Int("graph.edges", edges))
	if edges == 0 {
		return labels, nil
	}

	it, buffer, done, err := scanLevels(ctx, o, g, labels, inComp, edges)
	if err != nil {
		return nil, fail(span, err)
	}
	if !done {
		drainBuffer(ctx, o, labels, buffer, it)
	}
	return labels, nil
}

// restrict labels the start's neighbours and marks the vertices that share
// its undirected component. It returns the number of edges seen.
func restrict(ctx context.Context, o *options, g graph.EdgeMapper, labels []uint32, start uint32) ([]bool, int, error) {
	_, span := o.tracer.Start(ctx, "bfs.restrict")
	defer span.End()
	t0 := time.Now()

	uf := graph.NewUnionFind(uint32(len(labels)))
	edges := 0
	err := g.MapEdges(func(src, dst uint32) {
		if src == start && dst != start {
			labels[dst] = 1
		} else if dst == start && src != start {
			labels[src] = 1
		}
		uf.UnionMin(src, dst)
		edges++
	})
	if err != nil {
		return nil, 0, err
	}

	root := uf.Find(start)
	inComp := make([]bool, len(labels))
	size := 0
	for v := range inComp {
		if uf.Find(uint32(v)) == root {
			inComp[v] = true
			size++
		}
	}
	o.round(ctx, "bfs: restricted to component", "edges", edges, "component", size, "elapsed", time.Since(t0))
	return inComp, edges, nil
}

// scanLevels runs full passes until a pass buffers fewer than limit edges.
// done is true when the search finished during the passes.
func scanLevels(ctx context.Context, o *options, g graph.EdgeMapper, labels []uint32, inComp []bool, limit int) (uint32, []edge, bool, error) {
	_, span := o.tracer.Start(ctx, "bfs.scan")
	defer span.End()

	var buffer []edge
	it := uint32(1)
	for {
		t0 := time.Now()
		buffer = buffer[:0]
		promoted := 0
		err := g.MapEdges(func(src, dst uint32) {
			ls, ld := labels[src], labels[dst]
			if len(buffer) < limit && inComp[src] && inComp[dst] && pending(ls, ld, it) {
				buffer = append(buffer, edge{src, dst})
			}
			if ls == it && ld > it+1 {
				labels[dst] = it + 1
				promoted++
			} else if ld == it && ls > it+1 {
				labels[src] = it + 1
				promoted++
			}
		})
		if err != nil {
			return 0, nil, false, err
		}
		o.round(ctx, "bfs: scan", "level", it, "promoted", promoted, "buffered", len(buffer), "elapsed", time.Since(t0))
		it++
		if promoted == 0 {
			span.SetAttributes(attribute.Int64("bfs.levels", int64(it)))
			return it, nil, true, nil
		}
		if len(buffer) < limit {
			span.SetAttributes(attribute.Int64("bfs.scan_levels", int64(it-1)))
			return it, buffer, false, nil
		}
	}
}

// drainBuffer finishes the search over buffered edges, starting at level it.
func drainBuffer(ctx context.Context, o *options, labels []uint32, buffer []edge, it uint32) {
	_, span := o.tracer.Start(ctx, "bfs.drain", trace.WithAttributes(attribute.Int("bfs.buffered", len(buffer))))
	defer span.End()

	for len(buffer) > 0 {
		t0 := time.Now()
		promoted := 0
		kept := buffer[:0]
		for _, e := range buffer {
			ls, ld := labels[e.src], labels[e.dst]
			if ls == it && ld > it+1 {
				labels[e.dst] = it + 1
				ld = it + 1
				promoted++
			} else if ld == it && ls > it+1 {
				labels[e.src] = it + 1
				ls = it + 1
				promoted++
			}
			if pending(ls, ld, it) {
				kept = append(kept, e)
			}
		}
		buffer = kept
		o.round(ctx, "bfs: drain", "level", it, "promoted", promoted, "remaining", len(buffer), "elapsed", time.Since(t0))
		it++
		if promoted == 0 {
			break
		}
	}
}
