package format

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

const writeBufferSize = 1 << 16

// CSRWriter streams nodes and their adjacency lists.
type CSRWriter struct {
	nodes *bufio.Writer
	edges *bufio.Writer
	buf   [NodeRecordSize]byte

	nodeCount uint64
	edgeCount uint64
}

// NewCSRWriter returns a writer that emits node records to nodes and edge
// records to edges.
func NewCSRWriter(nodes, edges io.Writer) *CSRWriter {
	return &CSRWriter{
		nodes: bufio.NewWriterSize(nodes, writeBufferSize),
		edges: bufio.NewWriterSize(edges, writeBufferSize),
	}
}

// WriteNode appends id with the given destinations. Nodes without
// destinations should be skipped by the caller.
func (w *CSRWriter) WriteNode(id uint32, dsts []uint32) error {
	if uint64(len(dsts)) > math.MaxUint32 {
		return fmt.Errorf("format: node %d has %d edges, more than a record can count", id, len(dsts))
	}
	binary.LittleEndian.PutUint32(w.buf[0:4], id)
	binary.LittleEndian.PutUint32(w.buf[4:8], uint32(len(dsts)))
	if _, err := w.nodes.Write(w.buf[:]); err != nil {
		return err
	}
	for _, dst := range dsts {
		binary.LittleEndian.PutUint32(w.buf[0:4], dst)
		if _, err := w.edges.Write(w.buf[:4]); err != nil {
			return err
		}
	}
	w.nodeCount++
	w.edgeCount += uint64(len(dsts))
	return nil
}

// Counts reports how many nodes and edges have been written.
func (w *CSRWriter) Counts() (nodes, edges uint64) { return w.nodeCount, w.edgeCount }

// Flush writes any buffered records.
func (w *CSRWriter) Flush() error {
	return errors.Join(w.nodes.Flush(), w.edges.Flush())
}

// CurveWriter streams upper groups and their lower records.
type CurveWriter struct {
	upper *bufio.Writer
	lower *bufio.Writer
	buf   [UpperRecordSize]byte

	groups uint64
	edges  uint64
}

// NewCurveWriter returns a writer for a .upper/.lower pair.
func NewCurveWriter(upper, lower io.Writer) *CurveWriter {
	return &CurveWriter{
		upper: bufio.NewWriterSize(upper, writeBufferSize),
		lower: bufio.NewWriterSize(lower, writeBufferSize),
	}
}

// WriteGroup appends one upper record and its lower records.
func (w *CurveWriter) WriteGroup(u UpperRecord, lowers []LowerRecord) error {
	if uint64(u.Count) != uint64(len(lowers)) {
		return fmt.Errorf("%w: block (%d, %d) declares %d edges, got %d",
			ErrCountMismatch, u.UX, u.UY, u.Count, len(lowers))
	}
	binary.LittleEndian.PutUint16(w.buf[0:2], u.UX)
	binary.LittleEndian.PutUint16(w.buf[2:4], u.UY)
	binary.LittleEndian.PutUint32(w.buf[4:8], u.Count)
	if _, err := w.upper.Write(w.buf[:]); err != nil {
		return err
	}
	for _, l := range lowers {
		binary.LittleEndian.PutUint16(w.buf[0:2], l.LX)
		binary.LittleEndian.PutUint16(w.buf[2:4], l.LY)
		if _, err := w.lower.Write(w.buf[:4]); err != nil {
			return err
		}
	}
	w.groups++
	w.edges += uint64(len(lowers))
	return nil
}

// Counts reports how many groups and edges have been written.
func (w *CurveWriter) Counts() (groups, edges uint64) { return w.groups, w.edges }

// Flush writes any buffered records.
func (w *CurveWriter) Flush() error {
	return errors.Join(w.upper.Flush(), w.lower.Flush())
}

// FilePair creates (truncating) two files and closes both on Close.
type FilePair struct {
	First, Second *os.File
}

// CreatePair creates both files. If the second cannot be created the first is closed.
func CreatePair(first, second string) (*FilePair, error) {
	f1, err := os.Create(first)
	if err != nil {
		return nil, fmt.Errorf("format: create %s: %w", first, err)
	}
	f2, err := os.Create(second)
	if err != nil {
		f1.Close()
		return nil, fmt.Errorf("format: create %s: %w", second, err)
	}
	return &FilePair{First: f1, Second: f2}, nil
}

// Close closes both files.
func (p *FilePair) Close() error {
	return errors.Join(p.First.Close(), p.Second.Close())
}
