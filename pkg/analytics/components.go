package analytics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/utcs-scea/cost/pkg/graph"
)

// Components is the result of a connected-components run.
type Components struct {
	// Labels[v] is the smallest vertex id in v's component.
	Labels []uint32
	Count  uint32
	Passes int
}

// ConnectedComponents propagates the minimum vertex id across edges,
// treated as undirected, until a full pass changes nothing.
func ConnectedComponents(ctx context.Context, g graph.EdgeMapper, nodes uint32, opts ...Option) (Components, error) {
	o := newOptions(opts)
	ctx, span := o.tracer.Start(ctx, "analytics.ConnectedComponents")
	defer span.End()

	labels := make([]uint32, nodes)
	for i := range labels {
		labels[i] = uint32(i)
	}
	roots := nodes

	passes := 0
	for {
		t0 := time.Now()
		changed := false
		err := g.MapEdges(func(src, dst uint32) {
			ls, ld := labels[src], labels[dst]
			switch {
			case ls < ld:
				if ld == dst {
					roots--
				}
				labels[dst] = ls
				changed = true
			case ld < ls:
				if ls == src {
					roots--
				}
				labels[src] = ld
				changed = true
			}
		})
		if err != nil {
			return Components{}, fail(span, err)
		}
		passes++
		o.round(ctx, "cc: pass", "pass", passes, "components", roots, "elapsed", time.Since(t0))
		if !changed {
			break
		}
	}

	span.SetAttributes(attribute.Int64("cc.components", int64(roots)), attribute.Int("cc.passes", passes))
	return Components{Labels: labels, Count: roots, Passes: passes}, nil
}

// UnionFindResult is the result of a union-find run.
type UnionFindResult struct {
	// Roots[v] is the representative of v's set.
	Roots []uint32
	// Merges counts the unions that joined two distinct sets.
	Merges uint32
	Count  uint32
}

// UnionFind joins the endpoints of every edge in a single pass using
// union by rank.
func UnionFind(ctx context.Context, g graph.EdgeMapper, nodes uint32, opts ...Option) (UnionFindResult, error) {
	o := newOptions(opts)
	ctx, span := o.tracer.Start(ctx, "analytics.UnionFind")
	defer span.End()
	t0 := time.Now()

	uf := graph.NewUnionFind(nodes)
	var merges uint32
	err := g.MapEdges(func(src, dst uint32) {
		if uf.Union(src, dst) {
			merges++
		}
	})
	if err != nil {
		return UnionFindResult{}, fail(span, err)
	}

	roots := make([]uint32, nodes)
	for v := range roots {
		roots[v] = uf.Find(uint32(v))
	}
	o.round(ctx, "union-find: pass", "merges", merges, "elapsed", time.Since(t0))
	span.SetAttributes(attribute.Int64("uf.merges", int64(merges)))
	return UnionFindResult{Roots: roots, Merges: merges, Count: nodes - merges}, nil
}
