package typedmap

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct {
	A uint32
	B uint32
}

type halves struct {
	X uint16
	Y uint16
}

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestOpenDecodesLittleEndianRecords(t *testing.T) {
	var buf []byte
	for i := uint32(0); i < 4; i++ {
		buf = binary.LittleEndian.AppendUint32(buf, i*10)
		buf = binary.LittleEndian.AppendUint32(buf, i+1)
	}
	path := writeFile(t, buf)

	m, err := Open[pair](path)
	require.NoError(t, err)
	defer m.Close()

	require.Equal(t, 4, m.Len())
	assert.Equal(t, pair{A: 20, B: 3}, m.At(2))
	assert.Equal(t, []pair{{0, 1}, {10, 2}, {20, 3}, {30, 4}}, m.Records())
	assert.Len(t, m.Bytes(), 32)
	assert.Equal(t, path, m.Path())
}

func TestOpenPackedHalfWords(t *testing.T) {
	buf := []byte{0x01, 0x00, 0xff, 0xff, 0x34, 0x12, 0x00, 0x80}
	m, err := Open[halves](writeFile(t, buf))
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, []halves{{X: 1, Y: 0xffff}, {X: 0x1234, Y: 0x8000}}, m.Records())
}

func TestOpenEmptyFile(t *testing.T) {
	m, err := Open[pair](writeFile(t, nil))
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Records())
	assert.NoError(t, m.Close())
}

func TestOpenRejectsPartialRecord(t *testing.T) {
	_, err := Open[pair](writeFile(t, make([]byte, 12)))
	require.ErrorIs(t, err, ErrRecordSize)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open[uint32](filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCloseIsIdempotent(t *testing.T) {
	m, err := Open[uint32](writeFile(t, []byte{1, 0, 0, 0}))
	require.NoError(t, err)
	assert.Equal(t, uint32(1), m.At(0))
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Equal(t, 0, m.Len())
}
