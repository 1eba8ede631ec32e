// Package mutate applies structural edits to the documents of a store.
//
// Every operation takes a root-relative [jsonval.Path] and one or more
// target documents, edits a copy of each affected body, and persists it
// through [docstore.Store.Write]. Operations that can be rejected check
// their preconditions against every target before the first write.
package mutate

import "github.com/AbelMSG89/json-synchronized/pkg/jsonval"

// Outcome classifies the result of walking a path.
type Outcome int

const (
	// FoundLeaf: the final segment holds a string or other non-object value.
	FoundLeaf Outcome = iota
	// FoundContainer: the final segment holds an object.
	FoundContainer
	// CreatedContainer: intermediate objects were created and the final
	// segment is absent.
	CreatedContainer
	// Missing: the final segment is absent. Parent is nil when an
	// intermediate segment was absent and creation was not requested.
	Missing
	// TypeConflict: an intermediate segment holds a non-object value.
	TypeConflict
)

func (o Outcome) String() string {
	switch o {
	case FoundLeaf:
		return "found-leaf"
	case FoundContainer:
		return "found-container"
	case CreatedContainer:
		return "created-container"
	case Missing:
		return "missing"
	case TypeConflict:
		return "type-conflict"
	default:
		return "unknown"
	}
}

// WalkResult is what Walk found.
type WalkResult struct {
	Outcome Outcome

	// Parent is the object holding the final segment.
	Parent *jsonval.Object

	// Value at the final segment; absent unless found.
	Value jsonval.Value

	// ConflictAt is the index of the segment that descended into a
	// non-object value, or -1.
	ConflictAt int
}

// Found reports whether the final segment exists.
func (r WalkResult) Found() bool {
	return r.Outcome == FoundLeaf || r.Outcome == FoundContainer
}

// Walk resolves path in obj. With create set, absent intermediate segments
// are replaced by new empty objects; obj is modified in that case.
// Descending through a string or other scalar is never repaired: it yields
// TypeConflict and leaves obj untouched.
func Walk(obj *jsonval.Object, path jsonval.Path, create bool) WalkResult {
	if len(path) == 0 {
		return WalkResult{Outcome: FoundContainer, Value: jsonval.ObjectValue(obj), ConflictAt: -1}
	}

	cur := obj
	created := false
	for i, seg := range path[:len(path)-1] {
		v, ok := cur.Get(seg)
		switch {
		case !ok:
			if !create {
				return WalkResult{Outcome: Missing, ConflictAt: -1}
			}
			next := jsonval.NewObject()
			cur.Set(seg, jsonval.ObjectValue(next))
			cur = next
			created = true
		case v.Kind() == jsonval.KindObject:
			cur, _ = v.Object()
		default:
			return WalkResult{Outcome: TypeConflict, ConflictAt: i}
		}
	}

	res := WalkResult{Parent: cur, ConflictAt: -1}
	v, ok := cur.Get(path.Last())
	switch {
	case !ok && created:
		res.Outcome = CreatedContainer
	case !ok:
		res.Outcome = Missing
	case v.Kind() == jsonval.KindObject:
		res.Outcome = FoundContainer
		res.Value = v
	default:
		res.Outcome = FoundLeaf
		res.Value = v
	}
	return res
}
