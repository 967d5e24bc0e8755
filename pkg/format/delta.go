package format

import (
	"bufio"
	"fmt"
	"io"
	"math/bits"
	"slices"

	"github.com/utcs-scea/cost/pkg/hilbert"
)

// maxEscapeZeros is the longest zero run allowed before a gap; seven zeros
// introduce an eight byte gap.
const maxEscapeZeros = 7

// AppendDelta appends the encoding of gap, which must be non-zero.
func AppendDelta(dst []byte, gap uint64) []byte {
	if gap < 256 {
		return append(dst, byte(gap))
	}
	width := (bits.Len64(gap) + 7) / 8
	for range width - 1 {
		dst = append(dst, 0)
	}
	for shift := (width - 1) * 8; shift >= 0; shift -= 8 {
		dst = append(dst, byte(gap>>shift))
	}
	return dst
}

// DecodeDeltas calls fn with the running sum of every gap in data.
func DecodeDeltas(data []byte, fn func(index uint64)) error {
	var current uint64
	for i := 0; i < len(data); {
		b := data[i]
		i++
		if b != 0 {
			current += uint64(b)
			fn(current)
			continue
		}

		width := 2
		for i < len(data) && data[i] == 0 {
			i++
			width++
		}
		if width > maxEscapeZeros+1 {
			return fmt.Errorf("%w: %d byte gap at offset %d", ErrDeltaOverflow, width, i)
		}
		if i+width > len(data) {
			return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncatedDelta, width, i, len(data)-i)
		}

		var gap uint64
		for _, v := range data[i : i+width] {
			gap = gap<<8 | uint64(v)
		}
		i += width
		current += gap
		fn(current)
	}
	return nil
}

// DecodeDeltaStream is DecodeDeltas over a reader. buf is the read buffer
// and must not be empty.
func DecodeDeltaStream(r io.Reader, buf []byte, fn func(index uint64)) error {
	var (
		current uint64
		gap     uint64
		zeros   int  // escape zeros seen before the current gap
		pending int  // gap bytes still to read
		inGap   bool // the first gap byte has been read
	)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			if inGap {
				gap = gap<<8 | uint64(b)
				pending--
				if pending == 0 {
					current += gap
					fn(current)
					gap, zeros, inGap = 0, 0, false
				}
				continue
			}
			switch {
			case b == 0:
				zeros++
				if zeros > maxEscapeZeros {
					return fmt.Errorf("%w: %d escape zeros", ErrDeltaOverflow, zeros)
				}
			case zeros == 0:
				current += uint64(b)
				fn(current)
			default:
				gap = uint64(b)
				pending = zeros
				inGap = true
			}
		}
		if err == io.EOF {
			if zeros > 0 || inGap {
				return ErrTruncatedDelta
			}
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// DeltaWriter encodes a strictly increasing sequence of indices.
type DeltaWriter struct {
	w       *bufio.Writer
	buf     []byte
	current uint64
	count   uint64
}

// NewDeltaWriter returns a writer that encodes into w.
func NewDeltaWriter(w io.Writer) *DeltaWriter {
	return &DeltaWriter{w: bufio.NewWriterSize(w, writeBufferSize), buf: make([]byte, 0, 16)}
}

// WriteIndex appends index, which must exceed the previous one. The first
// index must be positive, so the edge (0, 0) has no encoding.
func (w *DeltaWriter) WriteIndex(index uint64) error {
	if index <= w.current {
		return fmt.Errorf("%w: %d after %d", ErrNonIncreasing, index, w.current)
	}
	w.buf = AppendDelta(w.buf[:0], index-w.current)
	if _, err := w.w.Write(w.buf); err != nil {
		return err
	}
	w.current = index
	w.count++
	return nil
}

// Count returns the number of indices written.
func (w *DeltaWriter) Count() uint64 { return w.count }

// Flush writes any buffered bytes.
func (w *DeltaWriter) Flush() error { return w.w.Flush() }

// CompressStats summarizes a CompressEdges run.
type CompressStats struct {
	Edges   uint64 `yaml:"edges"`
	Written uint64 `yaml:"written"`
	Dropped uint64 `yaml:"dropped"`
}

// CompressEdges writes the edges of src to w in delta format. Repeated
// edges fail with ErrNonIncreasing unless dedup is set, in which case they
// are dropped and counted.
func CompressEdges(src EdgeSource, w io.Writer, sizeHint int, dedup bool) (CompressStats, error) {
	var stats CompressStats
	indices := make([]uint64, 0, max(sizeHint, 0))
	if err := src.MapEdges(func(s, d uint32) {
		indices = append(indices, hilbert.Entangle(s, d))
	}); err != nil {
		return stats, err
	}
	stats.Edges = uint64(len(indices))
	slices.Sort(indices)

	dw := NewDeltaWriter(w)
	for i, index := range indices {
		if dedup && i > 0 && index == indices[i-1] {
			stats.Dropped++
			continue
		}
		if err := dw.WriteIndex(index); err != nil {
			return stats, err
		}
	}
	stats.Written = dw.Count()
	return stats, dw.Flush()
}
