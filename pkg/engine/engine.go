package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/utcs-scea/cost/pkg/analytics"
	"github.com/utcs-scea/cost/pkg/config"
	"github.com/utcs-scea/cost/pkg/graph"
	"github.com/utcs-scea/cost/pkg/storage"
	"github.com/utcs-scea/cost/pkg/telemetry"
	"github.com/utcs-scea/cost/pkg/version"
)

// ErrRunPanicked indicates an analysis aborted, typically on a vertex id
// outside the node count in trusted mode.
var ErrRunPanicked = errors.New("engine: analysis panicked")

// Config holds engine settings.
type Config struct {
	Mode        graph.Mode
	Input       string
	Nodes       uint32
	StartVertex uint32

	// Trusted skips the validation pass.
	Trusted     bool
	PrintRounds bool

	// Output is empty for stdout, a local path, or "s3://bucket/key".
	Output string

	// Telemetry config.
	OtelEndpoint  string // "http://localhost:4318" or via env
	TraceOut      string // file for JSON spans when no endpoint is set
	SkipTelemetry bool

	PageRank config.PageRankConfig
}

// ConfigFromSettings converts loaded settings into an engine Config.
func ConfigFromSettings(s config.Settings) (Config, error) {
	mode, err := graph.ParseMode(s.Mode)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Mode:          mode,
		Input:         s.Filename,
		Nodes:         s.Nodes,
		StartVertex:   s.StartVertex,
		Trusted:       s.Trusted,
		PrintRounds:   s.PrintRounds,
		Output:        s.Output,
		OtelEndpoint:  s.OtelEndpoint,
		TraceOut:      s.TraceOut,
		SkipTelemetry: s.SkipTelemetry,
		PageRank:      s.PageRank,
	}, nil
}

// Resolver maps an output target to a store and key.
type Resolver func(ctx context.Context, target string) (storage.BlobStore, string, error)

// Engine opens graphs and runs analyses over them.
type Engine struct {
	Logger *slog.Logger
	Tracer trace.Tracer

	// Immutable config.
	config Config

	resolve  Resolver
	shutdown []func(context.Context) error
}

// Option defines a functional configuration override.
type Option func(*Engine)

// New initializes the Engine.
func New(ctx context.Context, opts ...Option) (*Engine, error) {
	e := &Engine{
		Logger:  NewLogger(os.Stderr, false, false),
		Tracer:  otel.Tracer("cost/engine"),
		resolve: storage.Resolve,
		config:  Config{PageRank: config.DefaultPageRankConfig()},
	}

	for _, opt := range opts {
		opt(e)
	}

	slog.SetDefault(e.Logger)

	if !e.config.SkipTelemetry {
		tcfg := telemetry.Config{
			ServiceName:    version.AppName,
			ServiceVersion: version.Current,
			Endpoint:       e.config.OtelEndpoint,
		}
		if e.config.TraceOut != "" {
			f, err := os.Create(e.config.TraceOut)
			if err != nil {
				return nil, fmt.Errorf("failed to create trace file: %w", err)
			}
			tcfg.SpanWriter = f
			e.shutdown = append(e.shutdown, func(context.Context) error { return f.Close() })
		}
		shutdown, err := telemetry.Init(ctx, tcfg)
		if err != nil {
			e.Logger.Warn("Telemetry failed", "error", err)
		} else {
			// Flush spans before the trace file closes.
			e.shutdown = append([]func(context.Context) error{shutdown}, e.shutdown...)
		}
		e.Tracer = telemetry.Tracer("cost/engine")
	}

	return e, nil
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.Logger = l
		}
	}
}

// WithConfig sets raw config.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.config = cfg
	}
}

// WithResolver overrides how output targets are resolved.
func WithResolver(r Resolver) Option {
	return func(e *Engine) {
		if r != nil {
			e.resolve = r
		}
	}
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.config }

// Shutdown flushes telemetry.
func (e *Engine) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range e.shutdown {
		errs = append(errs, fn(ctx))
	}
	e.shutdown = nil
	return errors.Join(errs...)
}

// AnalyticsOptions returns the options that carry the engine's settings
// into an analysis.
func (e *Engine) AnalyticsOptions() []analytics.Option {
	return []analytics.Option{
		analytics.WithLogger(e.Logger),
		analytics.WithPrintRounds(e.config.PrintRounds),
		analytics.WithAlpha(e.config.PageRank.Alpha),
		analytics.WithIterations(e.config.PageRank.Iterations),
	}
}

// Open constructs the configured backend and, unless trusted, checks that
// every endpoint is below the node count.
func (e *Engine) Open(ctx context.Context) (graph.Backend, error) {
	ctx, span := e.Tracer.Start(ctx, "Engine.Open", trace.WithAttributes(
		attribute.String("graph.mode", string(e.config.Mode)),
		attribute.String("graph.input", e.config.Input),
	))
	defer span.End()

	b, err := graph.Open(e.config.Mode, e.config.Input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return nil, err
	}
	if e.config.Trusted {
		return b, nil
	}

	_, vspan := e.Tracer.Start(ctx, "Engine.Validate")
	start := time.Now()
	err = graph.Validate(b, e.config.Nodes)
	vspan.End()
	if err != nil {
		b.Close()
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return nil, err
	}
	e.Logger.Debug("Input validated", "mode", e.config.Mode, "nodes", e.config.Nodes, "elapsed", time.Since(start))
	return b, nil
}

// Run opens the graph and calls fn with it. A panic inside fn is
// recovered and reported as ErrRunPanicked.
func (e *Engine) Run(ctx context.Context, name string, fn func(context.Context, graph.EdgeMapper) error) (err error) {
	ctx, span := e.Tracer.Start(ctx, "Engine.Run", trace.WithAttributes(attribute.String("analysis", name)))
	defer span.End()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = e.recoverPanic(ctx, name, r)
		}
	}()

	g, err := e.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := g.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := fn(ctx, g); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	e.Logger.Info("E2E runtime", "analysis", name, "mode", e.config.Mode, "elapsed", time.Since(start))
	return nil
}

// Emit renders a result through write. With no output target it goes to
// w; otherwise it is stored at the target.
func (e *Engine) Emit(ctx context.Context, w io.Writer, write func(io.Writer) error) error {
	if e.config.Output == "" {
		return write(w)
	}

	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	store, key, err := e.resolve(ctx, e.config.Output)
	if err != nil {
		return err
	}
	if err := store.Put(ctx, key, buf.Bytes()); err != nil {
		return err
	}
	e.Logger.Info("Result published", "target", e.config.Output, "bytes", buf.Len())
	return nil
}

// recoverPanic turns a recovered panic into an error.
func (e *Engine) recoverPanic(ctx context.Context, name string, r any) error {
	_, span := e.Tracer.Start(ctx, "CriticalPanic")
	stack := debug.Stack()

	span.RecordError(fmt.Errorf("%v", r), trace.WithStackTrace(true))
	span.SetStatus(codes.Error, "CRITICAL FAILURE")
	span.SetAttributes(
		attribute.String("crash.stack", string(stack)),
		attribute.String("crash.reason", fmt.Sprintf("%v", r)),
	)
	span.End()

	e.Logger.Error("Analysis panicked", "analysis", name, "error", r, "trusted", e.config.Trusted)
	e.Logger.Debug("Panic stack", "stack", string(stack))
	return fmt.Errorf("%w: %s: %v", ErrRunPanicked, name, r)
}
