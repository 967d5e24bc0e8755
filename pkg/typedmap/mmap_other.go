//go:build !unix

package typedmap

import (
	"fmt"
	"io"
	"os"
)

// mapFile reads the whole file where no memory mapping is available.
func mapFile(f *os.File, length int) ([]byte, func([]byte) error, error) {
	data := make([]byte, length)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, nil, fmt.Errorf("typedmap: read %s: %w", f.Name(), err)
	}
	return data, func([]byte) error { return nil }, nil
}
