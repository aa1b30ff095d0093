// Package kdtree provides a balanced kd-tree over a fixed set of 3-D points
// for fixed-radius neighbor queries.
package kdtree

// Point is a position paired with the index it originated from.
type Point struct {
	Pos   [3]float32
	Index uint32
}

// Tree stores its points implicitly: the node of a range is the middle
// element, the two halves are its subtrees, and the split axis cycles per
// level. Build rearranges the point slice in place; no extra node structures
// are allocated.
type Tree struct {
	pts []Point
}

// Build arranges pts into kd-tree order and returns a tree over them. The
// slice is retained and reordered.
func Build(pts []Point) *Tree {
	t := &Tree{pts: pts}
	t.build(0, len(pts), 0)

	return t
}

// Len returns the number of points in the tree.
func (t *Tree) Len() int { return len(t.pts) }

// Points returns the tree's points in storage order.
func (t *Tree) Points() []Point { return t.pts }

func (t *Tree) build(lo, hi, depth int) {
	if hi-lo <= 1 {
		return
	}

	mid := (lo + hi) / 2

	t.selectMid(lo, hi, mid, depth%3)
	t.build(lo, mid, depth+1)
	t.build(mid+1, hi, depth+1)
}

// selectMid partitions pts[lo:hi] so that the element at mid is an axis
// median: every element left of mid compares <= and every element right of
// mid compares >=. The three way partition keeps the selection linear even
// when many points share a coordinate.
func (t *Tree) selectMid(lo, hi, mid, axis int) {
	for hi-lo > 1 {
		pivot := t.medianOfThree(lo, hi, axis)

		lt, i, gt := lo, lo, hi

		for i < gt {
			v := t.pts[i].Pos[axis]

			switch {
			case v < pivot:
				t.pts[lt], t.pts[i] = t.pts[i], t.pts[lt]
				lt++
				i++
			case v > pivot:
				gt--
				t.pts[i], t.pts[gt] = t.pts[gt], t.pts[i]
			default:
				i++
			}
		}

		switch {
		case mid < lt:
			hi = lt
		case mid >= gt:
			lo = gt
		default:
			// mid landed in the band of elements equal to the pivot.
			return
		}
	}
}

func (t *Tree) medianOfThree(lo, hi, axis int) float32 {
	a := t.pts[lo].Pos[axis]
	b := t.pts[(lo+hi)/2].Pos[axis]
	c := t.pts[hi-1].Pos[axis]

	if a > b {
		a, b = b, a
	}

	if b > c {
		b = c
	}

	if a > b {
		b = a
	}

	return b
}

// SqrDist returns the squared Euclidean distance between two positions in
// float32 arithmetic.
func SqrDist(a, b [3]float32) float32 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	dz := a[2] - b[2]

	return dx*dx + dy*dy + dz*dz
}

// ForEachInRange calls fn for every point whose squared distance to center
// is at most radius squared. The near half of each split is always
// descended; the far half only when the splitting plane lies within the
// radius.
func (t *Tree) ForEachInRange(center [3]float32, radius float32, fn func(p Point)) {
	if len(t.pts) == 0 {
		return
	}

	t.forEachInRange(0, len(t.pts), 0, center, radius*radius, fn)
}

func (t *Tree) forEachInRange(lo, hi, depth int, center [3]float32, r2 float32, fn func(p Point)) {
	if lo >= hi {
		return
	}

	mid := (lo + hi) / 2
	p := t.pts[mid]

	if SqrDist(center, p.Pos) <= r2 {
		fn(p)
	}

	axis := depth % 3
	d := center[axis] - p.Pos[axis]

	nearLo, nearHi := lo, mid
	farLo, farHi := mid+1, hi

	if d > 0 {
		nearLo, nearHi, farLo, farHi = farLo, farHi, nearLo, nearHi
	}

	t.forEachInRange(nearLo, nearHi, depth+1, center, r2, fn)

	if d*d <= r2 {
		t.forEachInRange(farLo, farHi, depth+1, center, r2, fn)
	}
}
