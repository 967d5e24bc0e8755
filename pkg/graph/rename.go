package graph

// Renamer assigns dense ids to vertices in order of first appearance.
type Renamer struct {
	// names[v] is the dense id of v plus one; zero means unassigned.
	names   []uint32
	reverse []uint32
}

const unassigned uint32 = 0

// NewRenamer returns an empty Renamer.
func NewRenamer() *Renamer {
	return &Renamer{}
}

// Get returns the dense id for v, allocating the next one if necessary.
func (r *Renamer) Get(v uint32) uint32 {
	if int(v) >= len(r.names) {
		grown := make([]uint32, max(int(v)+1, 2*len(r.names)))
		copy(grown, r.names)
		r.names = grown
	}
	if id := r.names[v]; id != unassigned {
		return id - 1
	}
	r.reverse = append(r.reverse, v)
	id := uint32(len(r.reverse))
	r.names[v] = id
	return id - 1
}

// Original returns the vertex that was given dense id.
func (r *Renamer) Original(id uint32) (uint32, bool) {
	if int(id) >= len(r.reverse) {
		return 0, false
	}
	return r.reverse[id], true
}

// Originals returns the original id of every dense id, in dense order.
func (r *Renamer) Originals() []uint32 { return r.reverse }

// Len returns the number of ids assigned.
func (r *Renamer) Len() int { return len(r.reverse) }

// RenamedMapper replays a source with every endpoint passed through a Renamer.
type RenamedMapper struct {
	source EdgeMapper
	names  *Renamer
}

// Renamed wraps source. Ids are assigned during the first pass, src
// before dst, and stay fixed afterwards.
func Renamed(source EdgeMapper, names *Renamer) *RenamedMapper {
	return &RenamedMapper{source: source, names: names}
}

func (m *RenamedMapper) MapEdges(action func(src, dst uint32)) error {
	return m.source.MapEdges(func(src, dst uint32) {
		s := m.names.Get(src)
		action(s, m.names.Get(dst))
	})
}
