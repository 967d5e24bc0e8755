package graph

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextMapperSkipsCommentsAndBlanks(t *testing.T) {
	text := "# header\n0 1\n\n   \n2\t3 extra tokens\n#4 5\n4294967295 0\r\n"
	got := collectPairs(t, textSource(text))
	assert.Equal(t, []pair{{0, 1}, {2, 3}, {4294967295, 0}}, got)
}

func TestTextMapperRejectsMalformedLines(t *testing.T) {
	for _, text := range []string{"1\n", "a b\n", "1 -2\n", "4294967296 1\n", "0 1\n 3 x\n"} {
		err := textSource(text).MapEdges(func(uint32, uint32) {})
		assert.ErrorIs(t, err, ErrMalformedLine, "%q", text)
	}
}

func TestTextMapperReportsLineNumber(t *testing.T) {
	err := textSource("0 1\n1 2\nbad\n").MapEdges(func(uint32, uint32) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inline:3")
}

func FuzzParseEdgeLine(f *testing.F) {
	f.Add([]byte("0 1"))
	f.Add([]byte("# comment"))
	f.Add([]byte("  12\t34  56"))
	f.Add([]byte("99999999999 1"))

	f.Fuzz(func(t *testing.T, line []byte) {
		src, dst, ok, err := parseEdgeLine(line)
		if err != nil || !ok {
			return
		}
		again, _, _, err := parseEdgeLine(fmt.Appendf(nil, "%d %d", src, dst))
		if err != nil || again != src {
			t.Fatalf("reparse of %d %d failed: %v", src, dst, err)
		}
	})
}
