package diff

// OpKind classifies a line in an edit script.
type OpKind int

const (
	OpEqual  OpKind = iota // line unchanged between old and new
	OpInsert               // line present in new only
	OpDelete               // line present in old only
)

// Op is a single operation in an edit script produced by Myers.
type Op struct {
	Kind OpKind
	Text string
}

// Myers computes the shortest edit script transforming a into b, operating
// on whole lines. Runs in O((N+M)*D) where D is the edit distance.
//
// Equality is decided on keyA/keyB, which hold the comparison form of each
// line (case or whitespace folded); emitted ops carry the original text.
func Myers(a, b, keyA, keyB []string) []Op {
	n := len(a)
	m := len(b)

	if n == 0 && m == 0 {
		return nil
	}
	if n == 0 {
		ops := make([]Op, m)
		for i, line := range b {
			ops[i] = Op{Kind: OpInsert, Text: line}
		}
		return ops
	}
	if m == 0 {
		ops := make([]Op, n)
		for i, line := range a {
			ops[i] = Op{Kind: OpDelete, Text: line}
		}
		return ops
	}

	max := n + m
	size := 2*max + 1
	v := make([]int, size)

	// trace[d] snapshots v after edit distance d, for backtracking.
	var trace [][]int

	for d := 0; d <= max; d++ {
		for k := -d; k <= d; k += 2 {
			idx := k + max
			var x int
			if k == -d || (k != d && v[idx-1] < v[idx+1]) {
				x = v[idx+1] // down: insert
			} else {
				x = v[idx-1] + 1 // right: delete
			}
			y := x - k

			for x < n && y < m && keyA[x] == keyB[y] {
				x++
				y++
			}
			v[idx] = x

			if x >= n && y >= m {
				snap := make([]int, size)
				copy(snap, v)
				trace = append(trace, snap)
				return backtrack(trace, a, b, keyA, keyB, d)
			}
		}
		snap := make([]int, size)
		copy(snap, v)
		trace = append(trace, snap)
	}
	return nil
}

func backtrack(trace [][]int, a, b, keyA, keyB []string, dFinal int) []Op {
	n := len(a)
	m := len(b)
	max := n + m

	x := n
	y := m

	var ops []Op

	for d := dFinal; d > 0; d-- {
		k := x - y
		idx := k + max
		vPrev := trace[d-1]

		var prevK int
		if k == -d || (k != d && vPrev[idx-1] < vPrev[idx+1]) {
			prevK = k + 1 // came via insert
		} else {
			prevK = k - 1 // came via delete
		}
		prevX := vPrev[prevK+max]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			x--
			y--
			ops = append(ops, Op{Kind: OpEqual, Text: a[x]})
		}

		if k == prevK+1 {
			x--
			ops = append(ops, Op{Kind: OpDelete, Text: a[x]})
		} else {
			y--
			ops = append(ops, Op{Kind: OpInsert, Text: b[y]})
		}
	}

	for x > 0 && y > 0 {
		x--
		y--
		ops = append(ops, Op{Kind: OpEqual, Text: a[x]})
	}

	for i, j := 0, len(ops)-1; i < j; i, j = i+1, j-1 {
		ops[i], ops[j] = ops[j], ops[i]
	}
	return ops
}
