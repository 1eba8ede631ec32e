package keytree

import (
	"slices"

	jerrors "github.com/AbelMSG89/json-synchronized/pkg/errors"
	"github.com/AbelMSG89/json-synchronized/pkg/jsonval"
)

// RowKind distinguishes the three row shapes.
type RowKind int

const (
	RowGroup RowKind = iota
	RowField
	RowAdd
)

func (k RowKind) String() string {
	switch k {
	case RowGroup:
		return "group"
	case RowField:
		return "field"
	case RowAdd:
		return "add"
	default:
		return "unknown"
	}
}

// CellData is one document's value for a field row.
type CellData struct {
	Value    string
	IsEmpty  bool // absent, blank, or not a string
	HasError bool // present but neither a string nor an object
}

// Row is one line of the merged grid.
type Row struct {
	Kind  RowKind
	Key   string       // last path segment; empty for add rows
	Path  jsonval.Path // full path; the parent path for add rows
	Depth int

	// Cells holds one entry per document for field rows.
	Cells []CellData

	// Missing holds the columns with an absent or blank value: the row's
	// own cells for fields, every descendant field for groups.
	Missing ColumnSet

	// Conflicts holds, for group rows, the columns whose value at this key
	// is not an object. Those documents are merged as if the value were {}.
	Conflicts ColumnSet

	// Children of a group row, ending with its add row.
	Children []Row

	existing []string
}

// ID returns a stable identifier for view state. Add row ids use "~+",
// which never occurs in an escaped path.
func (r Row) ID() string {
	if r.Kind == RowAdd {
		return r.Path.ID() + "/~+"
	}
	return r.Path.ID()
}

// ExistingKeys returns the keys already present at an add row's level.
func (r Row) ExistingKeys() []string { return slices.Clone(r.existing) }

// ValidateKey checks whether key may be added at this add row's level.
func (r Row) ValidateKey(key string) error {
	if r.Kind != RowAdd {
		return jerrors.New(jerrors.ErrCodeInvalidInput, "%s row does not accept new keys", r.Kind)
	}
	if err := jerrors.ValidateKey(key); err != nil {
		return err
	}
	if slices.Contains(r.existing, key) {
		return jerrors.New(jerrors.ErrCodeDuplicateKey, "Key already exists: %s", key)
	}
	return nil
}

// Problem is a data-quality issue found while merging.
type Problem struct {
	Column   int
	Path     jsonval.Path
	Type     string // JSON type of the offending value
	Conflict bool   // scalar where other documents hold an object
}
