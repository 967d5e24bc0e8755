package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utcs-scea/cost/pkg/analytics"
	"github.com/utcs-scea/cost/pkg/config"
	"github.com/utcs-scea/cost/pkg/graph"
	"github.com/utcs-scea/cost/pkg/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeGraph(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.txt")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func newEngine(t *testing.T, cfg Config, opts ...Option) *Engine {
	t.Helper()
	cfg.SkipTelemetry = true
	if cfg.PageRank == (config.PageRankConfig{}) {
		cfg.PageRank = config.DefaultPageRankConfig()
	}
	eng, err := New(context.Background(), append([]Option{WithConfig(cfg), WithLogger(quietLogger())}, opts...)...)
	require.NoError(t, err)
	return eng
}

func TestEngineInitialization(t *testing.T) {
	cfg := Config{Mode: graph.ModeReader, SkipTelemetry: true}

	eng, err := New(context.Background(),
		WithConfig(cfg),
		WithLogger(quietLogger()),
	)

	if err != nil {
		t.Fatalf("Failed to initialize engine: %v", err)
	}

	if eng == nil {
		t.Fatal("Engine instance should not be nil")
	}
	if eng.Config().Mode != graph.ModeReader {
		t.Errorf("Expected mode reader, got %q", eng.Config().Mode)
	}
}

func TestEngineDefaults(t *testing.T) {
	eng, err := New(context.Background(), WithConfig(Config{SkipTelemetry: true}))
	if err != nil {
		t.Fatalf("Failed to initialize engine: %v", err)
	}
	if eng.Logger == nil {
		t.Error("Engine should have default logger")
	}
	if eng.Tracer == nil {
		t.Error("Engine should have default tracer")
	}
}

func TestConfigFromSettings(t *testing.T) {
	s := config.DefaultSettings()
	s.Mode = "Hilbert"
	s.Filename = "g"
	s.Nodes = 9
	cfg, err := ConfigFromSettings(s)
	require.NoError(t, err)
	assert.Equal(t, graph.ModeHilbert, cfg.Mode)
	assert.Equal(t, uint32(9), cfg.Nodes)
	assert.Equal(t, float32(0.85), cfg.PageRank.Alpha)

	s.Mode = "tiles"
	_, err = ConfigFromSettings(s)
	assert.ErrorIs(t, err, graph.ErrUnknownMode)
}

func TestRunValidatesInput(t *testing.T) {
	eng := newEngine(t, Config{Mode: graph.ModeReader, Input: writeGraph(t, "0 1\n1 5\n"), Nodes: 3})
	called := false
	err := eng.Run(context.Background(), "bfs", func(context.Context, graph.EdgeMapper) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, graph.ErrVertexOutOfRange)
	assert.False(t, called)
}

func TestRunRecoversPanicWhenTrusted(t *testing.T) {
	eng := newEngine(t, Config{Mode: graph.ModeReader, Input: writeGraph(t, "0 1\n1 5\n"), Nodes: 3, Trusted: true})
	err := eng.Run(context.Background(), "bfs", func(ctx context.Context, g graph.EdgeMapper) error {
		_, err := analytics.BFS(ctx, g, 3, 0, eng.AnalyticsOptions()...)
		return err
	})
	require.ErrorIs(t, err, ErrRunPanicked)
	assert.Contains(t, err.Error(), "bfs")
}

func TestRunPassesGraph(t *testing.T) {
	eng := newEngine(t, Config{Mode: graph.ModeHybrid, Input: writeGraph(t, "0 1\n1 2\n"), Nodes: 3})
	var labels []uint32
	err := eng.Run(context.Background(), "bfs", func(ctx context.Context, g graph.EdgeMapper) error {
		var err error
		labels, err = analytics.BFS(ctx, g, 3, 0, eng.AnalyticsOptions()...)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, labels)
}

func TestRunMissingInput(t *testing.T) {
	eng := newEngine(t, Config{Mode: graph.ModeVertex, Input: filepath.Join(t.TempDir(), "absent"), Nodes: 3})
	err := eng.Run(context.Background(), "cc", func(context.Context, graph.EdgeMapper) error { return nil })
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type memStore struct {
	objects map[string][]byte
}

func (m *memStore) Put(_ context.Context, key string, data []byte) error {
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *memStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.objects[key])), nil
}

func (m *memStore) List(context.Context, string) ([]string, error) { return nil, nil }

func TestEmit(t *testing.T) {
	write := func(w io.Writer) error { return WriteLabels(w, []uint32{0, analytics.Unvisited}) }

	t.Run("stdout", func(t *testing.T) {
		eng := newEngine(t, Config{})
		var buf bytes.Buffer
		require.NoError(t, eng.Emit(context.Background(), &buf, write))
		assert.Equal(t, "0\t0\n1\t4294967295\n", buf.String())
	})

	t.Run("store", func(t *testing.T) {
		store := &memStore{objects: map[string][]byte{}}
		var target string
		eng := newEngine(t, Config{Output: "s3://results/run/bfs.txt"}, WithResolver(func(_ context.Context, t string) (storage.BlobStore, string, error) {
			target = t
			return store, "run/bfs.txt", nil
		}))
		var buf bytes.Buffer
		require.NoError(t, eng.Emit(context.Background(), &buf, write))
		assert.Empty(t, buf.String())
		assert.Equal(t, "s3://results/run/bfs.txt", target)
		assert.Equal(t, "0\t0\n1\t4294967295\n", string(store.objects["run/bfs.txt"]))
	})

	t.Run("local file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "cc.txt")
		eng := newEngine(t, Config{Output: out})
		require.NoError(t, eng.Emit(context.Background(), io.Discard, write))
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "0\t0\n1\t4294967295\n", string(data))
	})
}

func TestWriteRanks(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRanks(&buf, []float32{0.15, 1.5}))
	assert.Equal(t, "0\t0.15\n1\t1.5\n", buf.String())
}

func TestNewLoggerJSONDurations(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, true, false).Info("E2E runtime", "elapsed", 1500*time.Millisecond)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "1.5s", entry["elapsed"])
}

func TestNewLoggerVerbose(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, false, false).Debug("hidden")
	assert.Empty(t, buf.String())
	NewLogger(&buf, false, true).Debug("shown")
	assert.True(t, strings.Contains(buf.String(), "shown"))
}

func TestTraceOut(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	traceFile := filepath.Join(t.TempDir(), "spans.json")
	eng, err := New(context.Background(),
		WithLogger(quietLogger()),
		WithConfig(Config{Mode: graph.ModeReader, Input: writeGraph(t, "0 1\n"), Nodes: 2, TraceOut: traceFile}),
	)
	require.NoError(t, err)
	require.NoError(t, eng.Run(context.Background(), "stats", func(ctx context.Context, g graph.EdgeMapper) error {
		_, err := analytics.Stats(ctx, g)
		return err
	}))
	require.NoError(t, eng.Shutdown(context.Background()))

	data, err := os.ReadFile(traceFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Engine.Run")
	assert.Contains(t, string(data), "analytics.Stats")
}
