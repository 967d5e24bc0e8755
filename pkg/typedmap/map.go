// Package typedmap exposes read-only files as slices of fixed-size records.
//
// A Map is backed by a shared read-only memory mapping where the platform
// supports one. Record layouts are little-endian and packed, so the host must
// be little-endian as well.
package typedmap

import (
	"errors"
	"fmt"
	"os"
	"unsafe"
)

var (
	// ErrRecordSize is returned when the file length is not a whole number of records.
	ErrRecordSize = errors.New("typedmap: file length is not a multiple of the record size")
	// ErrBigEndianHost is returned when mapping little-endian records on a big-endian machine.
	ErrBigEndianHost = errors.New("typedmap: record layout requires a little-endian host")
)

// Map is an immutable view of a file as a sequence of T.
// T must be a fixed-size type that contains no pointers.
type Map[T any] struct {
	path    string
	data    []byte
	records []T
	release func([]byte) error
}

// Open maps path and reinterprets its bytes as records of T.
// An empty file yields an empty Map.
func Open[T any](path string) (*Map[T], error) {
	if !littleEndian() {
		return nil, ErrBigEndianHost
	}

	var zero T
	size := int64(unsafe.Sizeof(zero))
	if size == 0 {
		return nil, fmt.Errorf("%w: zero-sized record type", ErrRecordSize)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("typedmap: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("typedmap: stat %s: %w", path, err)
	}

	length := info.Size()
	if length%size != 0 {
		return nil, fmt.Errorf("%w: %s is %d bytes, record is %d", ErrRecordSize, path, length, size)
	}

	m := &Map[T]{path: path}
	if length == 0 {
		return m, nil
	}

	data, release, err := mapFile(f, int(length))
	if err != nil {
		return nil, err
	}
	m.data = data
	m.release = release
	m.records = unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(data))), int(length/size))
	return m, nil
}

// Records returns the mapped records. The slice must not be modified and
// is invalid after Close.
func (m *Map[T]) Records() []T { return m.records }

// Len returns the number of records.
func (m *Map[T]) Len() int { return len(m.records) }

// At returns record i.
func (m *Map[T]) At(i int) T { return m.records[i] }

// Bytes returns the raw mapped bytes.
func (m *Map[T]) Bytes() []byte { return m.data }

// Path returns the file the map was opened from.
func (m *Map[T]) Path() string { return m.path }

// Close releases the mapping. Calling Close more than once is a no-op.
func (m *Map[T]) Close() error {
	if m.release == nil {
		return nil
	}
	data, release := m.data, m.release
	m.data, m.records, m.release = nil, nil, nil
	if err := release(data); err != nil {
		return fmt.Errorf("typedmap: unmap %s: %w", m.path, err)
	}
	return nil
}

func littleEndian() bool {
	probe := uint16(1)
	return *(*byte)(unsafe.Pointer(&probe)) == 1
}
