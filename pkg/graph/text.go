package graph

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
)

const (
	textBufferSize = 1 << 16
	maxLineSize    = 1 << 20
)

// TextMapper parses a whitespace-separated edge list on every pass. Lines
// starting with '#' and blank lines are skipped; tokens after the second
// are ignored.
type TextMapper struct {
	nopCloser
	name string
	open func() (io.ReadCloser, error)
}

// NewTextMapper reads the edge list at path.
func NewTextMapper(path string) *TextMapper {
	return NewTextMapperFunc(path, func() (io.ReadCloser, error) { return os.Open(path) })
}

// NewTextMapperFunc reads the edge list produced by open, which is called
// once per pass. name labels parse errors.
func NewTextMapperFunc(name string, open func() (io.ReadCloser, error)) *TextMapper {
	return &TextMapper{name: name, open: open}
}

func (m *TextMapper) MapEdges(action func(src, dst uint32)) error {
	rc, err := m.open()
	if err != nil {
		return fmt.Errorf("graph: open %s: %w", m.name, err)
	}
	defer rc.Close()

	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, textBufferSize), maxLineSize)
	line := 0
	for sc.Scan() {
		line++
		src, dst, ok, err := parseEdgeLine(sc.Bytes())
		if err != nil {
			return fmt.Errorf("%w: %s:%d: %v", ErrMalformedLine, m.name, line, err)
		}
		if ok {
			action(src, dst)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("graph: read %s: %w", m.name, err)
	}
	return nil
}

// parseEdgeLine returns ok=false for comment and blank lines.
func parseEdgeLine(line []byte) (src, dst uint32, ok bool, err error) {
	if len(line) > 0 && line[0] == '#' {
		return 0, 0, false, nil
	}
	first, rest := nextField(line)
	if first == nil {
		return 0, 0, false, nil
	}
	second, _ := nextField(rest)
	if second == nil {
		return 0, 0, false, fmt.Errorf("missing destination in %q", line)
	}
	if src, ok = parseVertex(first); !ok {
		return 0, 0, false, fmt.Errorf("bad source %q", first)
	}
	if dst, ok = parseVertex(second); !ok {
		return 0, 0, false, fmt.Errorf("bad destination %q", second)
	}
	return src, dst, true, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\v' || c == '\f'
}

func nextField(b []byte) (field, rest []byte) {
	i := 0
	for i < len(b) && isSpace(b[i]) {
		i++
	}
	if i == len(b) {
		return nil, nil
	}
	j := i
	for j < len(b) && !isSpace(b[j]) {
		j++
	}
	return b[i:j], b[j:]
}

// parseVertex parses an unsigned decimal that fits in 32 bits.
func parseVertex(b []byte) (uint32, bool) {
	if len(b) == 0 {
		return 0, false
	}
	var v uint64
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + uint64(c-'0')
		if v > math.MaxUint32 {
			return 0, false
		}
	}
	return uint32(v), true
}
