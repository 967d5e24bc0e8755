package analytics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/utcs-scea/cost/pkg/graph"
)

// Ranks is the result of a PageRank run.
type Ranks struct {
	Values []float32
	Max    float32
}

// PageRank runs a fixed number of unnormalized power iterations. Each
// vertex starts an iteration at 1-alpha and receives alpha times its
// in-neighbours' previous rank, split over their out-degree. Vertices
// without out-edges pass nothing on.
func PageRank(ctx context.Context, g graph.EdgeMapper, nodes uint32, opts ...Option) (Ranks, error) {
	o := newOptions(opts)
	ctx, span := o.tracer.Start(ctx, "analytics.PageRank")
	defer span.End()
	span.SetAttributes(attribute.Float64("pagerank.alpha", float64(o.alpha)), attribute.Int("pagerank.iterations", o.iterations))

	if nodes == 0 {
		return Ranks{}, fail(span, ErrNoNodes)
	}

	src := make([]float32, nodes)
	dst := make([]float32, nodes)
	deg := make([]float32, nodes)
	if err := g.MapEdges(func(s, _ uint32) { deg[s]++ }); err != nil {
		return Ranks{}, fail(span, err)
	}

	start := time.Now()
	for iteration := range o.iterations {
		for v := range dst {
			if deg[v] > 0 {
				src[v] = o.alpha * dst[v] / deg[v]
			} else {
				src[v] = 0
			}
			dst[v] = 1 - o.alpha
		}
		if err := g.MapEdges(func(s, d uint32) { dst[d] += src[s] }); err != nil {
			return Ranks{}, fail(span, err)
		}
		o.round(ctx, "pagerank: iteration", "iteration", iteration, "elapsed", time.Since(start))
	}

	var peak float32
	for _, v := range dst {
		peak = max(peak, v)
	}
	return Ranks{Values: dst, Max: peak}, nil
}
