package keytree

import (
	"strings"

	"github.com/AbelMSG89/json-synchronized/pkg/jsonval"
)

// Result is the merged model of one level and everything beneath it.
type Result struct {
	Rows     []Row
	Missing  ColumnSet
	Problems []Problem
}

// Merge builds the row model for whole documents, in column order.
func Merge(docs []*jsonval.Object) Result {
	return MergeAt(docs, 0, jsonval.Path{})
}

// MergeAt merges the objects found at prefix in each document. A nil
// entry stands for a document without an object at prefix.
func MergeAt(docs []*jsonval.Object, depth int, prefix jsonval.Path) Result {
	var res Result
	keys := unionKeys(docs)

	for _, key := range keys {
		path := prefix.Child(key)
		if isNested(docs, key) {
			row, sub := mergeGroup(docs, key, depth, path)
			res.Rows = append(res.Rows, row)
			res.Missing = res.Missing.Union(row.Missing)
			res.Problems = append(res.Problems, sub...)
			continue
		}
		row, probs := mergeField(docs, key, depth, path)
		res.Rows = append(res.Rows, row)
		res.Missing = res.Missing.Union(row.Missing)
		res.Problems = append(res.Problems, probs...)
	}

	res.Rows = append(res.Rows, Row{
		Kind:     RowAdd,
		Path:     prefix,
		Depth:    depth,
		existing: keys,
	})
	return res
}

func unionKeys(docs []*jsonval.Object) []string {
	var keys []string
	seen := make(map[string]struct{})
	for _, d := range docs {
		for _, k := range d.Keys() {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	return keys
}

func isNested(docs []*jsonval.Object, key string) bool {
	for _, d := range docs {
		if v, _ := d.Get(key); v.Kind() == jsonval.KindObject {
			return true
		}
	}
	return false
}

func mergeGroup(docs []*jsonval.Object, key string, depth int, path jsonval.Path) (Row, []Problem) {
	row := Row{Kind: RowGroup, Key: key, Path: path, Depth: depth}
	var probs []Problem

	children := make([]*jsonval.Object, len(docs))
	for i, d := range docs {
		v, _ := d.Get(key)
		switch v.Kind() {
		case jsonval.KindObject:
			children[i], _ = v.Object()
		case jsonval.KindAbsent:
			children[i] = nil
		default:
			row.Conflicts.Add(i)
			probs = append(probs, Problem{Column: i, Path: path, Type: v.TypeName(), Conflict: true})
		}
	}

	sub := MergeAt(children, depth+1, path)
	row.Children = sub.Rows
	row.Missing = sub.Missing
	return row, append(probs, sub.Problems...)
}

func mergeField(docs []*jsonval.Object, key string, depth int, path jsonval.Path) (Row, []Problem) {
	row := Row{Kind: RowField, Key: key, Path: path, Depth: depth, Cells: make([]CellData, len(docs))}
	var probs []Problem

	for i, d := range docs {
		v, _ := d.Get(key)
		switch v.Kind() {
		case jsonval.KindAbsent:
			row.Cells[i] = CellData{IsEmpty: true}
			row.Missing.Add(i)
		case jsonval.KindString:
			s, _ := v.Str()
			empty := strings.TrimSpace(s) == ""
			row.Cells[i] = CellData{Value: s, IsEmpty: empty}
			if empty {
				row.Missing.Add(i)
			}
		default:
			row.Cells[i] = CellData{IsEmpty: true, HasError: true}
			probs = append(probs, Problem{Column: i, Path: path, Type: v.TypeName()})
		}
	}
	return row, probs
}
