package graph

// UnionFind is a disjoint-set forest over vertex ids.
// It is not safe for concurrent use.
type UnionFind struct {
	parent []uint32
	rank   []uint8
}

// NewUnionFind initializes n singleton sets.
func NewUnionFind(n uint32) *UnionFind {
	parent := make([]uint32, n)
	for i := range parent {
		parent[i] = uint32(i)
	}
	return &UnionFind{parent: parent, rank: make([]uint8, n)}
}

// Find returns the set representative, halving the path on the way.
func (uf *UnionFind) Find(i uint32) uint32 {
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]]
		i = uf.parent[i]
	}
	return i
}

// Union merges sets by rank. It reports whether the sets were distinct.
func (uf *UnionFind) Union(i, j uint32) bool {
	rootI := uf.Find(i)
	rootJ := uf.Find(j)
	if rootI == rootJ {
		return false
	}

	switch {
	case uf.rank[rootI] < uf.rank[rootJ]:
		uf.parent[rootI] = rootJ
	case uf.rank[rootI] > uf.rank[rootJ]:
		uf.parent[rootJ] = rootI
	default:
		uf.parent[rootJ] = rootI
		uf.rank[rootI]++
	}
	return true
}

// UnionMin merges sets so the smaller root survives.
func (uf *UnionFind) UnionMin(i, j uint32) bool {
	rootI := uf.Find(i)
	rootJ := uf.Find(j)
	if rootI == rootJ {
		return false
	}
	if rootI < rootJ {
		uf.parent[rootJ] = rootI
	} else {
		uf.parent[rootI] = rootJ
	}
	return true
}

// Connected checks connectivity.
func (uf *UnionFind) Connected(i, j uint32) bool {
	return uf.Find(i) == uf.Find(j)
}

// Len returns the number of elements.
func (uf *UnionFind) Len() int { return len(uf.parent) }

// Sets counts the disjoint sets.
func (uf *UnionFind) Sets() int {
	n := 0
	for i, p := range uf.parent {
		if uint32(i) == p {
			n++
		}
	}
	return n
}
