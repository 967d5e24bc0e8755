// Package analytics runs whole-graph computations over any graph.EdgeMapper.
// Every analysis works in repeated full passes and keeps only per-vertex
// state in memory.
package analytics

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/utcs-scea/cost/pkg/config"
)

var (
	ErrStartOutOfRange = errors.New("analytics: start vertex out of range")
	ErrNoNodes         = errors.New("analytics: graph has no nodes")
)

// Option tunes an analysis.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	tracer      trace.Tracer
	printRounds bool
	alpha       float32
	iterations  int
}

func newOptions(opts []Option) *options {
	pr := config.DefaultPageRankConfig()
	o := &options{
		logger:     slog.Default(),
		tracer:     otel.Tracer("cost/analytics"),
		alpha:      pr.Alpha,
		iterations: pr.Iterations,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger for per-pass progress.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTracer sets the tracer used for analysis spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithPrintRounds logs every pass at Info instead of Debug.
func WithPrintRounds(on bool) Option {
	return func(o *options) {
		o.printRounds = on
	}
}

// WithAlpha sets the PageRank damping factor.
func WithAlpha(alpha float32) Option {
	return func(o *options) {
		o.alpha = alpha
	}
}

// WithIterations sets the number of PageRank iterations.
func WithIterations(n int) Option {
	return func(o *options) {
		o.iterations = n
	}
}

func (o *options) round(ctx context.Context, msg string, args ...any) {
	level := slog.LevelDebug
	if o.printRounds {
		level = slog.LevelInfo
	}
	o.logger.Log(ctx, level, msg, args...)
}

// fail records err on span and returns it.
func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
