package keytree

import "github.com/AbelMSG89/json-synchronized/pkg/jsonval"

// Flatten lists the visible rows depth-first. A group's children are
// included only when isOpen reports its row id as open. A nil isOpen
// expands everything.
func Flatten(rows []Row, isOpen func(id string) bool) []Row {
	var out []Row
	var walk func([]Row)
	walk = func(rows []Row) {
		for _, r := range rows {
			out = append(out, r)
			if r.Kind == RowGroup && (isOpen == nil || isOpen(r.ID())) {
				walk(r.Children)
			}
		}
	}
	walk(rows)
	return out
}

// Find returns the group or field row at path.
func Find(rows []Row, path jsonval.Path) (Row, bool) {
	for _, r := range rows {
		if r.Kind == RowAdd {
			continue
		}
		if r.Path.Equal(path) {
			return r, true
		}
		if r.Kind == RowGroup && len(path) > len(r.Path) && r.Path.Equal(path[:len(r.Path)]) {
			return Find(r.Children, path)
		}
	}
	return Row{}, false
}

// Stats summarizes a merge result.
type Stats struct {
	Groups    int
	Fields    int
	Missing   []int // missing cells per column
	Errors    int   // non-string leaf values
	Conflicts int   // scalars where other documents hold an object
}

// MissingTotal sums Missing.
func (s Stats) MissingTotal() int {
	n := 0
	for _, m := range s.Missing {
		n += m
	}
	return n
}

// Clean reports whether there is nothing missing and no problems.
func (s Stats) Clean() bool {
	return s.MissingTotal() == 0 && s.Errors == 0 && s.Conflicts == 0
}

// Summarize counts rows and missing cells over columns documents.
func Summarize(res Result, columns int) Stats {
	st := Stats{Missing: make([]int, columns)}
	for _, r := range Flatten(res.Rows, nil) {
		switch r.Kind {
		case RowGroup:
			st.Groups++
		case RowField:
			st.Fields++
			for _, c := range r.Missing.Slice() {
				if c < columns {
					st.Missing[c]++
				}
			}
		}
	}
	for _, p := range res.Problems {
		if p.Conflict {
			st.Conflicts++
		} else {
			st.Errors++
		}
	}
	return st
}
