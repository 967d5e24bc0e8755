package engine

import (
	"bufio"
	"io"
	"strconv"
)

// WriteLabels writes one "vertex<TAB>value" line per vertex.
func WriteLabels(w io.Writer, labels []uint32) error {
	bw := bufio.NewWriterSize(w, 1<<16)
	line := make([]byte, 0, 24)
	for v, label := range labels {
		line = strconv.AppendUint(line[:0], uint64(v), 10)
		line = append(line, '\t')
		line = strconv.AppendUint(line, uint64(label), 10)
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteRanks writes one "vertex<TAB>rank" line per vertex.
func WriteRanks(w io.Writer, ranks []float32) error {
	bw := bufio.NewWriterSize(w, 1<<16)
	line := make([]byte, 0, 32)
	for v, rank := range ranks {
		line = strconv.AppendUint(line[:0], uint64(v), 10)
		line = append(line, '\t')
		line = strconv.AppendFloat(line, float64(rank), 'g', -1, 32)
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}
