package server

import (
	"github.com/AbelMSG89/json-synchronized/pkg/keytree"
)

type cellDTO struct {
	Value    string `json:"value"`
	Empty    bool   `json:"empty,omitempty"`
	HasError bool   `json:"error,omitempty"`
}

type rowDTO struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Key       string    `json:"key,omitempty"`
	Path      []string  `json:"path"`
	Depth     int       `json:"depth"`
	Cells     []cellDTO `json:"cells,omitempty"`
	Missing   []int     `json:"missing,omitempty"`
	Conflicts []int     `json:"conflicts,omitempty"`
	Children  []rowDTO  `json:"children,omitempty"`
}

type problemDTO struct {
	Column   int      `json:"column"`
	Path     []string `json:"path"`
	Type     string   `json:"type"`
	Conflict bool     `json:"conflict,omitempty"`
}

type resultDTO struct {
	Columns  []string      `json:"columns"`
	Rows     []rowDTO      `json:"rows"`
	Missing  []int         `json:"missing"`
	Problems []problemDTO  `json:"problems"`
	Stats    keytree.Stats `json:"stats"`
}

func newResultDTO(names []string, rows []keytree.Row, res keytree.Result, flat bool) resultDTO {
	problems := make([]problemDTO, 0, len(res.Problems))
	for _, p := range res.Problems {
		problems = append(problems, problemDTO{
			Column:   p.Column,
			Path:     nonNilPath(p.Path),
			Type:     p.Type,
			Conflict: p.Conflict,
		})
	}
	missing := res.Missing.Slice()
	if missing == nil {
		missing = []int{}
	}
	return resultDTO{
		Columns:  names,
		Rows:     rowDTOs(rows, !flat),
		Missing:  missing,
		Problems: problems,
		Stats:    keytree.Summarize(res, len(names)),
	}
}

// rowDTOs converts rows. Flattened input already lists children inline,
// so nested output is only produced for the tree form.
func rowDTOs(rows []keytree.Row, nested bool) []rowDTO {
	out := make([]rowDTO, 0, len(rows))
	for _, r := range rows {
		d := rowDTO{
			ID:        r.ID(),
			Kind:      r.Kind.String(),
			Key:       r.Key,
			Path:      nonNilPath(r.Path),
			Depth:     r.Depth,
			Missing:   r.Missing.Slice(),
			Conflicts: r.Conflicts.Slice(),
		}
		for _, c := range r.Cells {
			d.Cells = append(d.Cells, cellDTO{Value: c.Value, Empty: c.IsEmpty, HasError: c.HasError})
		}
		if nested && len(r.Children) > 0 {
			d.Children = rowDTOs(r.Children, true)
		}
		out = append(out, d)
	}
	return out
}

func nonNilPath(p []string) []string {
	if p == nil {
		return []string{}
	}
	return p
}
