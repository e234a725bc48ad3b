package cluster

// kdbush is a flat, static 2D spatial index over points in projected
// [0,1] web-mercator space. Points are sorted once into an implicit
// KD-tree; Range and Within walk it iteratively.
type kdbush struct {
	nodeSize int
	ids      []int
	coords   []float64 // interleaved x,y pairs, parallel to ids
}

func newKDBush(xs, ys []float64, nodeSize int) *kdbush {
	if nodeSize <= 0 {
		nodeSize = 64
	}
	n := len(xs)
	b := &kdbush{
		nodeSize: nodeSize,
		ids:      make([]int, n),
		coords:   make([]float64, 2*n),
	}
	for i := 0; i < n; i++ {
		b.ids[i] = i
		b.coords[2*i] = xs[i]
		b.coords[2*i+1] = ys[i]
	}
	b.sortKD(0, n-1, 0)
	return b
}

func (b *kdbush) sortKD(left, right, axis int) {
	if right-left <= b.nodeSize {
		return
	}
	m := (left + right) >> 1
	b.selectMedian(m, left, right, axis)
	b.sortKD(left, m-1, 1-axis)
	b.sortKD(m+1, right, 1-axis)
}

// selectMedian partially sorts so the element at index k is the median
// along the given axis (Floyd-Rivest style partitioning)
func (b *kdbush) selectMedian(k, left, right, axis int) {
	for right > left {
		i := left
		j := right
		t := b.coords[2*k+axis]
		b.swap(left, k)
		if b.coords[2*right+axis] > t {
			b.swap(left, right)
		}
		for i < j {
			b.swap(i, j)
			i++
			j--
			for b.coords[2*i+axis] < t {
				i++
			}
			for b.coords[2*j+axis] > t {
				j--
			}
		}
		if b.coords[2*left+axis] == t {
			b.swap(left, j)
		} else {
			j++
			b.swap(j, right)
		}
		if j <= k {
			left = j + 1
		}
		if k <= j {
			right = j - 1
		}
	}
}

func (b *kdbush) swap(i, j int) {
	b.ids[i], b.ids[j] = b.ids[j], b.ids[i]
	b.coords[2*i], b.coords[2*j] = b.coords[2*j], b.coords[2*i]
	b.coords[2*i+1], b.coords[2*j+1] = b.coords[2*j+1], b.coords[2*i+1]
}

type queryNode struct {
	left, right, axis int
}

// Range returns the ids of all points within the bounding box
func (b *kdbush) Range(minX, minY, maxX, maxY float64) []int {
	var result []int
	if len(b.ids) == 0 {
		return result
	}
	stack := []queryNode{{0, len(b.ids) - 1, 0}}
	for len(stack) > 0 {
		q := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if q.right-q.left <= b.nodeSize {
			for i := q.left; i <= q.right; i++ {
				x, y := b.coords[2*i], b.coords[2*i+1]
				if x >= minX && x <= maxX && y >= minY && y <= maxY {
					result = append(result, b.ids[i])
				}
			}
			continue
		}

		m := (q.left + q.right) >> 1
		x, y := b.coords[2*m], b.coords[2*m+1]
		if x >= minX && x <= maxX && y >= minY && y <= maxY {
			result = append(result, b.ids[m])
		}

		var goLeft, goRight bool
		if q.axis == 0 {
			goLeft = minX <= x
			goRight = maxX >= x
		} else {
			goLeft = minY <= y
			goRight = maxY >= y
		}
		if goLeft {
			stack = append(stack, queryNode{q.left, m - 1, 1 - q.axis})
		}
		if goRight {
			stack = append(stack, queryNode{m + 1, q.right, 1 - q.axis})
		}
	}
	return result
}

// Within returns the ids of all points within radius r of (x, y)
func (b *kdbush) Within(x, y, r float64) []int {
	var result []int
	if len(b.ids) == 0 {
		return result
	}
	r2 := r * r
	stack := []queryNode{{0, len(b.ids) - 1, 0}}
	for len(stack) > 0 {
		q := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if q.right-q.left <= b.nodeSize {
			for i := q.left; i <= q.right; i++ {
				if sqDist(b.coords[2*i], b.coords[2*i+1], x, y) <= r2 {
					result = append(result, b.ids[i])
				}
			}
			continue
		}

		m := (q.left + q.right) >> 1
		px, py := b.coords[2*m], b.coords[2*m+1]
		if sqDist(px, py, x, y) <= r2 {
			result = append(result, b.ids[m])
		}

		var goLeft, goRight bool
		if q.axis == 0 {
			goLeft = x-r <= px
			goRight = x+r >= px
		} else {
			goLeft = y-r <= py
			goRight = y+r >= py
		}
		if goLeft {
			stack = append(stack, queryNode{q.left, m - 1, 1 - q.axis})
		}
		if goRight {
			stack = append(stack, queryNode{m + 1, q.right, 1 - q.axis})
		}
	}
	return result
}

func sqDist(ax, ay, bx, by float64) float64 {
	dx := ax - bx
	dy := ay - by
	return dx*dx + dy*dy
}
