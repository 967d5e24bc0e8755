package analytics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/utcs-scea/cost/pkg/graph"
)

// Summary describes an edge set in one pass.
type Summary struct {
	MaxSrc uint32 `yaml:"max_src"`
	MaxDst uint32 `yaml:"max_dst"`
	Edges  uint64 `yaml:"edges"`
	// Nodes is the smallest node count that covers every endpoint.
	Nodes     uint64 `yaml:"nodes"`
	SelfLoops uint64 `yaml:"self_loops"`
}

// Stats scans g once.
func Stats(ctx context.Context, g graph.EdgeMapper, opts ...Option) (Summary, error) {
	o := newOptions(opts)
	_, span := o.tracer.Start(ctx, "analytics.Stats")
	defer span.End()

	var s Summary
	err := g.MapEdges(func(src, dst uint32) {
		s.MaxSrc = max(s.MaxSrc, src)
		s.MaxDst = max(s.MaxDst, dst)
		s.Edges++
		if src == dst {
			s.SelfLoops++
		}
	})
	if err != nil {
		return Summary{}, fail(span, err)
	}
	if s.Edges > 0 {
		s.Nodes = uint64(max(s.MaxSrc, s.MaxDst)) + 1
	}
	span.SetAttributes(attribute.Int64("graph.edges", int64(s.Edges)))
	return s, nil
}
