// Package graph provides the edge-iteration backends shared by every
// analysis. Each backend replays a fixed edge set, once per MapEdges call,
// in an order of its choosing; analyses must not depend on that order.
package graph

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/utcs-scea/cost/pkg/format"
)

var (
	ErrMalformedLine    = errors.New("graph: malformed edge line")
	ErrVertexOutOfRange = errors.New("graph: vertex id out of range")
	ErrUnknownMode      = errors.New("graph: unknown mode")
	ErrShortLower       = errors.New("graph: lower file shorter than upper counts")
	ErrShortEdges       = errors.New("graph: edges file shorter than node degrees")
)

// EdgeMapper replays a stored edge set. MapEdges calls action once for
// every stored edge, duplicates included.
type EdgeMapper interface {
	MapEdges(action func(src, dst uint32)) error
}

// Backend is an EdgeMapper that holds resources until closed.
type Backend interface {
	EdgeMapper
	io.Closer
}

// Mode selects a backend.
type Mode string

const (
	// ModeReader parses a text edge list on every pass.
	ModeReader Mode = "reader"
	// ModeHybrid parses a text edge list once and replays a curve-ordered copy.
	ModeHybrid Mode = "hybrid"
	// ModeVertex maps a .nodes/.edges pair.
	ModeVertex Mode = "vertex"
	// ModeHilbert maps a .upper/.lower pair.
	ModeHilbert Mode = "hilbert"
	// ModeCompressed streams a delta file.
	ModeCompressed Mode = "compressed"
	// ModeCompressedMmap maps a delta file.
	ModeCompressedMmap Mode = "compressed-mmap"
)

// Modes lists every backend mode.
func Modes() []Mode {
	return []Mode{ModeReader, ModeHybrid, ModeVertex, ModeHilbert, ModeCompressed, ModeCompressedMmap}
}

// ParseMode accepts a mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes() {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Open constructs the backend for mode. path is a file for the text and
// delta modes and a prefix for the binary pair modes.
func Open(mode Mode, path string) (Backend, error) {
	switch mode {
	case ModeReader:
		if err := exists(path); err != nil {
			return nil, err
		}
		return NewTextMapper(path), nil
	case ModeHybrid:
		if err := exists(path); err != nil {
			return nil, err
		}
		return NewCachingMapper(NewTextMapper(path), textSizeHint(path)), nil
	case ModeVertex:
		return OpenCSR(format.TrimPrefix(path))
	case ModeHilbert:
		return OpenCurve(format.TrimPrefix(path))
	case ModeCompressed:
		if err := exists(path); err != nil {
			return nil, err
		}
		return NewDeltaMapper(path), nil
	case ModeCompressedMmap:
		return OpenDeltaSlice(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, string(mode))
	}
}

func exists(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("graph: %w", err)
	}
	return nil
}

// textSizeHint guesses the edge count of a text file from its size.
func textSizeHint(path string) int {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return int(info.Size() / 8)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
