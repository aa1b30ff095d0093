// Package weld merges coincident mesh vertices so that cells sharing a face
// reference shared vertex indices.
//
// Partitioned mesh writers duplicate vertices along piece boundaries, and
// ascii output can perturb coordinates in the last digits. The clusterer
// joins every pair of vertices closer than a tolerance using a union based
// subset-merge over a kd-tree, then exposes the resulting partition: a dense
// canonical index per raw vertex, a representative (witness) raw vertex per
// cluster, and centroid positions accumulated in float64.
//
// Canonical indices are assigned in increasing order of the clusters' root
// vertices, so merged vertex order is deterministic for a given input.
package weld

import (
	"errors"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/meshgo/internal/kdtree"
)

// Epsilon is the relative tolerance factor used to derive the default
// clustering tolerance from the mesh extent: the float32 machine epsilon.
const Epsilon = 0x1p-23

// ErrInvalidPositions is returned when the position slice length is not a
// multiple of three.
var ErrInvalidPositions = errors.New("position count is not a multiple of three")

// cluster carries the union state of one raw vertex. A cluster is a root
// when root points to itself; only roots hold meaningful centroid sums and,
// after clustering, a dense merged index.
type cluster struct {
	root   uint32
	acc    [3]float64
	weight float64
	index  uint32
}

// Clusterer merges coincident vertices of a raw position list.
type Clusterer struct {
	tree     *kdtree.Tree
	clusters []cluster

	// roots holds the arena indices of all root clusters in increasing
	// order once Cluster has run; the position of a root in this slice is
	// its merged vertex index.
	roots []uint32

	bboxMin [3]float32
	bboxMax [3]float32
	done    bool
}

// New creates a clusterer over interleaved x y z positions. The slice is not
// retained.
func New(positions []float32) (*Clusterer, error) {
	if len(positions)%3 != 0 {
		return nil, ErrInvalidPositions
	}

	n := len(positions) / 3

	c := &Clusterer{
		clusters: make([]cluster, n),
	}

	pts := make([]kdtree.Point, n)

	for i := 0; i < n; i++ {
		pos := [3]float32{positions[i*3], positions[i*3+1], positions[i*3+2]}
		pts[i] = kdtree.Point{Pos: pos, Index: uint32(i)}

		if i == 0 {
			c.bboxMin, c.bboxMax = pos, pos
		} else {
			for j := 0; j < 3; j++ {
				if pos[j] < c.bboxMin[j] {
					c.bboxMin[j] = pos[j]
				}

				if pos[j] > c.bboxMax[j] {
					c.bboxMax[j] = pos[j]
				}
			}
		}

		// Singleton clusters are their own roots and carry their vertex as
		// centroid.
		c.clusters[i] = cluster{
			root:   uint32(i),
			acc:    [3]float64{float64(pos[0]), float64(pos[1]), float64(pos[2])},
			weight: 1,
		}
	}

	c.tree = kdtree.Build(pts)

	return c, nil
}

// Len returns the number of raw vertices.
func (c *Clusterer) Len() int { return len(c.clusters) }

// BoundingBox returns the axis-aligned bounding box of the raw vertices.
// Both corners are zero for an empty vertex set.
func (c *Clusterer) BoundingBox() (min, max [3]float32) {
	return c.bboxMin, c.bboxMax
}

// DefaultTolerance returns the clustering tolerance derived from the mesh
// extent: the largest absolute bounding box coordinate scaled by Epsilon.
func (c *Clusterer) DefaultTolerance() float32 {
	var maxDim float32

	for j := 0; j < 3; j++ {
		if v := abs32(c.bboxMin[j]); v > maxDim {
			maxDim = v
		}

		if v := abs32(c.bboxMax[j]); v > maxDim {
			maxDim = v
		}
	}

	return maxDim * Epsilon
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}

	return v
}

// find returns the arena index of the root of cluster i, chasing root
// pointers without modifying them.
func (c *Clusterer) find(i uint32) uint32 {
	for c.clusters[i].root != i {
		i = c.clusters[i].root
	}

	return i
}

// Cluster joins all vertex pairs no more than tolerance apart and returns
// the number of merged vertices. A tolerance <= 0 selects DefaultTolerance.
// Repeated calls return the existing partition.
func (c *Clusterer) Cluster(tolerance float32) int {
	if c.done {
		return len(c.roots)
	}

	c.done = true

	if tolerance <= 0 {
		tolerance = c.DefaultTolerance()
	}

	// Merge pass: for every vertex, union its cluster with every cluster
	// within the tolerance. Root pointers of the two endpoints are
	// short-circuited on each visit to keep chains shallow.
	for _, p := range c.tree.Points() {
		cur := p.Index

		c.tree.ForEachInRange(p.Pos, tolerance, func(q kdtree.Point) {
			root := c.find(cur)
			otherRoot := c.find(q.Index)

			if otherRoot != root {
				for j := 0; j < 3; j++ {
					c.clusters[root].acc[j] += c.clusters[otherRoot].acc[j]
				}

				c.clusters[root].weight += c.clusters[otherRoot].weight
				c.clusters[otherRoot].root = root
			}

			c.clusters[cur].root = root
			c.clusters[q.Index].root = root
		})
	}

	// Assign merged indices to roots in arena order and fully
	// short-circuit every non-root cluster.
	n := uint32(0)

	for i := range c.clusters {
		if c.clusters[i].root == uint32(i) {
			c.clusters[i].index = n
			n++
		} else {
			c.clusters[i].root = c.find(c.clusters[i].root)
		}
	}

	c.roots = make([]uint32, 0, n)

	for i := range c.clusters {
		if c.clusters[i].root == uint32(i) {
			c.roots = append(c.roots, uint32(i))
		}
	}

	return len(c.roots)
}

// NumMerged returns the number of merged vertices. Valid after Cluster.
func (c *Clusterer) NumMerged() int { return len(c.roots) }

// CanonicalIndex returns the merged vertex index of the raw vertex i. Valid
// after Cluster.
func (c *Clusterer) CanonicalIndex(i int) int {
	return int(c.clusters[c.clusters[i].root].index)
}

// WitnessIndex returns the raw index of one representative vertex of the
// merged vertex m: the cluster's root vertex. Valid after Cluster.
func (c *Clusterer) WitnessIndex(m int) int {
	return int(c.roots[m])
}

// Members returns the raw indices of all vertices merged into the merged
// vertex m, in increasing order. Valid after Cluster.
func (c *Clusterer) Members(m int) []int {
	root := c.roots[m]

	var members []int

	for i := range c.clusters {
		if c.clusters[i].root == root {
			members = append(members, i)
		}
	}

	return members
}

// Duplicates returns the set of raw vertex indices that were merged into
// another vertex's cluster, i.e. all non-root vertices. Valid after Cluster.
func (c *Clusterer) Duplicates() *roaring.Bitmap {
	dup := roaring.New()

	for i := range c.clusters {
		if c.clusters[i].root != uint32(i) {
			dup.Add(uint32(i))
		}
	}

	return dup
}

// AppendPositions appends the centroid position of every merged vertex to
// dst in merged index order and returns the extended slice. Valid after
// Cluster.
func (c *Clusterer) AppendPositions(dst []float32) []float32 {
	for _, root := range c.roots {
		cl := &c.clusters[root]

		for j := 0; j < 3; j++ {
			dst = append(dst, float32(cl.acc[j]/cl.weight))
		}
	}

	return dst
}
