// Package octree implements an octree color quantizer: pixels are
// classified into a tree of RGB cells, sparsely populated cells are merged
// until the color budget is met, and every pixel is then mapped to the
// nearest surviving cell color.
package octree

import (
	"image/color"
	"math"

	"github.com/hazendaz/smartsprites-sub000/internal/bitmap"
)

const (
	// MaxNodes is the hard cap on live tree nodes during classification.
	MaxNodes = 266817

	// MaxDepth is the deepest level a tree can be built to.
	MaxDepth = 8

	maxRGB = 255
	none   = -1
)

// squares[d+255] == d*d for d in [-255, 255].
var squares = func() [2*maxRGB + 1]int {
	var t [2*maxRGB + 1]int
	for d := -maxRGB; d <= maxRGB; d++ {
		t[d+maxRGB] = d * d
	}
	return t
}()

// shift[level] is the per-pixel weight added to a node at that level, so
// that subtree counts stay comparable across depths.
var shift = func() [MaxDepth + 1]int64 {
	var t [MaxDepth + 1]int64
	for l := range t {
		t[l] = 1 << (15 - l)
	}
	return t
}()

type node struct {
	mid      [3]int
	child    [8]int32
	children int
	parent   int32
	level    int
	id       int

	// weighted count of pixels passing through this node
	pixels int64
	// pixels whose classification ended here, and their channel sums
	unique int64
	sum    [3]int64

	color int32
}

// Session holds one quantization run. It is not safe for concurrent use.
type Session struct {
	nodes     []node
	free      []int32
	live      int
	colors    int
	depth     int
	maxColors int
	maxNodes  int
	pruned    int
	src       *bitmap.Buffer
	palette   bitmap.Palette
}

// Quantize reduces b to at most maxColors colors using exact
// nearest-color assignment. b is not modified. Alpha is ignored.
func Quantize(b *bitmap.Buffer, maxColors int) (bitmap.Palette, *bitmap.IndexBuffer) {
	s := Classify(b, maxColors)
	s.Reduce()
	return s.Assign(true)
}

// Classify builds the color tree for b.
func Classify(b *bitmap.Buffer, maxColors int) *Session {
	return ClassifyLimit(b, maxColors, MaxNodes)
}

// ClassifyLimit is Classify with a custom node cap. Whenever the tree
// outgrows maxNodes its deepest level is folded into its parents.
func ClassifyLimit(b *bitmap.Buffer, maxColors, maxNodes int) *Session {
	if maxNodes <= 0 {
		maxNodes = MaxNodes
	}
	if maxColors < 1 {
		maxColors = 1
	}
	s := &Session{
		maxColors: maxColors,
		maxNodes:  maxNodes,
		depth:     treeDepth(maxColors),
		src:       b,
	}
	root := s.alloc(none, 0, 0, [3]int{(maxRGB + 1) >> 1, (maxRGB + 1) >> 1, (maxRGB + 1) >> 1})
	s.nodes[root].parent = root
	s.nodes[root].pixels = math.MaxInt64

	for _, p := range b.Pix {
		if s.live > s.maxNodes && s.depth > 1 {
			s.pruneLevel(0)
			s.depth--
			s.pruned++
		}
		_, r, g, bl := bitmap.Channels(p)
		rgb := [3]int{int(r), int(g), int(bl)}

		n := int32(0)
		for level := 1; level <= s.depth; level++ {
			id := selector(&s.nodes[n], rgb)
			c := s.nodes[n].child[id]
			if c == none {
				c = s.newChild(n, id, level)
			}
			n = c
			s.nodes[n].pixels += shift[level]
		}
		nd := &s.nodes[n]
		nd.unique++
		nd.sum[0] += int64(rgb[0])
		nd.sum[1] += int64(rgb[1])
		nd.sum[2] += int64(rgb[2])
	}
	s.colors = s.countColors()
	return s
}

// treeDepth derives the classification depth from the color budget.
func treeDepth(maxColors int) int {
	depth := 1
	for i := maxColors; i != 0; depth++ {
		i /= 4
	}
	if depth > 1 {
		depth--
	}
	if depth > MaxDepth {
		depth = MaxDepth
	}
	if depth < 2 {
		depth = 2
	}
	return depth
}

func selector(n *node, rgb [3]int) int {
	id := 0
	if rgb[0] > n.mid[0] {
		id |= 1
	}
	if rgb[1] > n.mid[1] {
		id |= 2
	}
	if rgb[2] > n.mid[2] {
		id |= 4
	}
	return id
}

func (s *Session) alloc(parent int32, id, level int, mid [3]int) int32 {
	nd := node{mid: mid, parent: parent, level: level, id: id, color: none}
	for i := range nd.child {
		nd.child[i] = none
	}
	s.live++
	if k := len(s.free); k > 0 {
		idx := s.free[k-1]
		s.free = s.free[:k-1]
		s.nodes[idx] = nd
		return idx
	}
	s.nodes = append(s.nodes, nd)
	return int32(len(s.nodes) - 1)
}

func (s *Session) newChild(parent int32, id, level int) int32 {
	half := (1 << (MaxDepth - level)) >> 1
	mid := s.nodes[parent].mid
	for ch := 0; ch < 3; ch++ {
		if id&(1<<ch) != 0 {
			mid[ch] += half
		} else {
			mid[ch] -= half
		}
	}
	c := s.alloc(parent, id, level, mid)
	p := &s.nodes[parent]
	p.child[id] = c
	p.children++
	return c
}

// pruneChild merges n into its parent and releases it.
func (s *Session) pruneChild(n int32) {
	nd := &s.nodes[n]
	p := &s.nodes[nd.parent]
	p.unique += nd.unique
	p.sum[0] += nd.sum[0]
	p.sum[1] += nd.sum[1]
	p.sum[2] += nd.sum[2]
	p.child[nd.id] = none
	p.children--
	s.live--
	s.free = append(s.free, n)
}

// pruneLevel merges every node at the current deepest level into its
// parent.
func (s *Session) pruneLevel(n int32) {
	for _, c := range s.nodes[n].child {
		if c != none {
			s.pruneLevel(c)
		}
	}
	if s.nodes[n].level == s.depth && n != 0 {
		s.pruneChild(n)
	}
}

func (s *Session) countColors() int {
	count := 0
	var walk func(n int32)
	walk = func(n int32) {
		for _, c := range s.nodes[n].child {
			if c != none {
				walk(c)
			}
		}
		if s.nodes[n].unique != 0 {
			count++
		}
	}
	walk(0)
	return count
}

// Reduce merges the least populated nodes until at most maxColors cells
// carry pixels.
func (s *Session) Reduce() {
	threshold := int64(1)
	for s.colors > s.maxColors {
		s.colors = 0
		threshold = s.reduce(0, threshold, math.MaxInt64)
	}
}

func (s *Session) reduce(n int32, threshold, next int64) int64 {
	for _, c := range s.nodes[n].child {
		if c != none {
			next = s.reduce(c, threshold, next)
		}
	}
	nd := &s.nodes[n]
	if nd.pixels <= threshold && n != 0 {
		s.pruneChild(n)
		return next
	}
	if nd.unique != 0 {
		s.colors++
	}
	if nd.pixels < next {
		next = nd.pixels
	}
	return next
}

// Assign builds the palette and maps every source pixel to a palette
// index. With exact set, each pixel is matched against every color in the
// subtree around its cell; otherwise the cell's own color is used when it
// has one, which is faster but not necessarily the closest match.
func (s *Session) Assign(exact bool) (bitmap.Palette, *bitmap.IndexBuffer) {
	s.palette = nil
	s.colormap(0)

	ix := bitmap.NewIndex(s.src.W, s.src.H)
	for i, p := range s.src.Pix {
		_, r, g, bl := bitmap.Channels(p)
		rgb := [3]int{int(r), int(g), int(bl)}

		n := int32(0)
		for {
			c := s.nodes[n].child[selector(&s.nodes[n], rgb)]
			if c == none {
				break
			}
			n = c
		}

		if !exact && s.nodes[n].unique != 0 {
			ix.Pix[i] = s.nodes[n].color
			continue
		}
		from := n
		if exact {
			from = s.nodes[n].parent
		}
		best, dist := int32(0), math.MaxInt
		s.closest(from, rgb, &best, &dist)
		ix.Pix[i] = best
	}
	return s.palette, ix
}

func (s *Session) colormap(n int32) {
	for _, c := range s.nodes[n].child {
		if c != none {
			s.colormap(c)
		}
	}
	nd := &s.nodes[n]
	if nd.unique == 0 {
		return
	}
	half := nd.unique >> 1
	s.palette = append(s.palette, color.RGBA{
		R: uint8((nd.sum[0] + half) / nd.unique),
		G: uint8((nd.sum[1] + half) / nd.unique),
		B: uint8((nd.sum[2] + half) / nd.unique),
		A: 0xff,
	})
	nd.color = int32(len(s.palette) - 1)
}

func (s *Session) closest(n int32, rgb [3]int, best *int32, dist *int) {
	nd := &s.nodes[n]
	if nd.children != 0 {
		for _, c := range nd.child {
			if c != none {
				s.closest(c, rgb, best, dist)
			}
		}
	}
	if nd.unique == 0 {
		return
	}
	c := s.palette[nd.color]
	d := squares[int(c.R)-rgb[0]+maxRGB] +
		squares[int(c.G)-rgb[1]+maxRGB] +
		squares[int(c.B)-rgb[2]+maxRGB]
	if d < *dist {
		*dist = d
		*best = nd.color
	}
}

// Colors returns the number of cells currently carrying pixels.
func (s *Session) Colors() int { return s.colors }

// Depth returns the current classification depth.
func (s *Session) Depth() int { return s.depth }

// Nodes returns the number of live tree nodes.
func (s *Session) Nodes() int { return s.live }

// ForcedPrunes returns how many times the node cap forced a whole tree
// level to be merged during classification.
func (s *Session) ForcedPrunes() int { return s.pruned }
