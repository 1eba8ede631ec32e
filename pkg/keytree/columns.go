package keytree

import "math/bits"

// ColumnSet is a set of column indices.
type ColumnSet struct {
	words []uint64
}

// Columns returns a set holding cols.
func Columns(cols ...int) ColumnSet {
	var s ColumnSet
	for _, c := range cols {
		s.Add(c)
	}
	return s
}

// Add inserts col. Negative indices are ignored.
func (s *ColumnSet) Add(col int) {
	if col < 0 {
		return
	}
	w := col / 64
	if w >= len(s.words) {
		grown := make([]uint64, w+1)
		copy(grown, s.words)
		s.words = grown
	}
	s.words[w] |= 1 << (col % 64)
}

// Has reports whether col is in the set.
func (s ColumnSet) Has(col int) bool {
	if col < 0 {
		return false
	}
	w := col / 64
	return w < len(s.words) && s.words[w]&(1<<(col%64)) != 0
}

// Union returns a new set with the members of s and o.
func (s ColumnSet) Union(o ColumnSet) ColumnSet {
	n := max(len(s.words), len(o.words))
	if n == 0 {
		return ColumnSet{}
	}
	out := make([]uint64, n)
	copy(out, s.words)
	for i, w := range o.words {
		out[i] |= w
	}
	return ColumnSet{words: out}
}

// Len returns the number of members.
func (s ColumnSet) Len() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Empty reports whether the set has no members.
func (s ColumnSet) Empty() bool { return s.Len() == 0 }

// Slice returns the members in ascending order.
func (s ColumnSet) Slice() []int {
	var out []int
	for i, w := range s.words {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			out = append(out, i*64+b)
			w &^= 1 << b
		}
	}
	return out
}
