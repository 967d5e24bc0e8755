package graph

import "fmt"

type checker interface {
	Check() error
}

// Validate makes one full pass over m and fails if any endpoint is not
// below nodes. Backends with a structural self-check run it first.
func Validate(m EdgeMapper, nodes uint32) error {
	if c, ok := m.(checker); ok {
		if err := c.Check(); err != nil {
			return err
		}
	}

	var (
		bad      bool
		src, dst uint32
	)
	err := m.MapEdges(func(s, d uint32) {
		if !bad && (s >= nodes || d >= nodes) {
			bad, src, dst = true, s, d
		}
	})
	if err != nil {
		return err
	}
	if bad {
		return fmt.Errorf("%w: edge (%d, %d) with %d nodes", ErrVertexOutOfRange, src, dst, nodes)
	}
	return nil
}
