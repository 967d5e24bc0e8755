package graph

import (
	"fmt"
	"io"
	"os"

	"github.com/utcs-scea/cost/pkg/format"
	"github.com/utcs-scea/cost/pkg/hilbert"
	"github.com/utcs-scea/cost/pkg/typedmap"
)

// DeltaMapper streams a delta-compressed file on every pass.
type DeltaMapper struct {
	nopCloser
	name    string
	open    func() (io.ReadCloser, error)
	bufSize int
}

// NewDeltaMapper reads the delta file at path.
func NewDeltaMapper(path string) *DeltaMapper {
	return NewDeltaMapperFunc(path, func() (io.ReadCloser, error) { return os.Open(path) })
}

// NewDeltaMapperFunc reads the delta stream produced by open, once per pass.
func NewDeltaMapperFunc(name string, open func() (io.ReadCloser, error)) *DeltaMapper {
	return &DeltaMapper{name: name, open: open, bufSize: textBufferSize}
}

func (m *DeltaMapper) MapEdges(action func(src, dst uint32)) error {
	rc, err := m.open()
	if err != nil {
		return fmt.Errorf("graph: open %s: %w", m.name, err)
	}
	defer rc.Close()

	var dec hilbert.Decoder
	err = format.DecodeDeltaStream(rc, make([]byte, m.bufSize), func(index uint64) {
		action(dec.Detangle(index))
	})
	if err != nil {
		return fmt.Errorf("graph: %s: %w", m.name, err)
	}
	return nil
}

// DeltaSliceMapper replays delta-compressed bytes held in memory.
type DeltaSliceMapper struct {
	data    []byte
	backing *typedmap.Map[byte]
}

// NewDeltaSliceMapper replays data, which must not change while in use.
func NewDeltaSliceMapper(data []byte) *DeltaSliceMapper {
	return &DeltaSliceMapper{data: data}
}

// OpenDeltaSlice maps the delta file at path.
func OpenDeltaSlice(path string) (*DeltaSliceMapper, error) {
	m, err := typedmap.Open[byte](path)
	if err != nil {
		return nil, err
	}
	return &DeltaSliceMapper{data: m.Records(), backing: m}, nil
}

func (m *DeltaSliceMapper) MapEdges(action func(src, dst uint32)) error {
	var dec hilbert.Decoder
	return format.DecodeDeltas(m.data, func(index uint64) {
		action(dec.Detangle(index))
	})
}

// Close releases the mapping. Later passes see no edges.
func (m *DeltaSliceMapper) Close() error {
	m.data = nil
	if m.backing == nil {
		return nil
	}
	return m.backing.Close()
}
