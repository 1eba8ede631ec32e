package mutate

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/AbelMSG89/json-synchronized/pkg/docstore"
	jerrors "github.com/AbelMSG89/json-synchronized/pkg/errors"
	"github.com/AbelMSG89/json-synchronized/pkg/jsonval"
)

// Engine serializes edits over one store. Its lock covers the
// precondition checks and the writes of each operation.
type Engine struct {
	store  *docstore.Store
	logger *log.Logger
	mu     sync.Mutex
}

// New returns an engine over store.
func New(store *docstore.Store, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{store: store, logger: logger}
}

// Store returns the underlying store.
func (e *Engine) Store() *docstore.Store { return e.store }

// SetValue assigns value at path in one document, creating intermediate
// objects. Only that document is written.
func (e *Engine) SetValue(ctx context.Context, path jsonval.Path, name string, value jsonval.Value) error {
	if err := jerrors.RequirePath(path); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	body, ok := e.store.Get(name)
	if !ok {
		return jerrors.New(jerrors.ErrCodeDocumentNotFound, "document %q not found", name)
	}
	if err := checkSettable(body, path, value, name); err != nil {
		return err
	}

	next := body.Clone()
	w := Walk(next, path, true)
	w.Parent.Set(path.Last(), value.Clone())
	e.logger.Debug("set value", "doc", name, "path", path.String())
	return e.store.Write(ctx, name, next)
}

// SetValues assigns one value per document at path. All documents are
// checked for conflicts before any is written.
func (e *Engine) SetValues(ctx context.Context, path jsonval.Path, values map[string]jsonval.Value) ([]string, error) {
	if err := jerrors.RequirePath(path); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	var names []string
	for _, name := range e.store.Names() {
		if _, ok := values[name]; ok {
			names = append(names, name)
		}
	}
	if len(names) != len(values) {
		for name := range values {
			if _, ok := e.store.Get(name); !ok {
				return nil, jerrors.New(jerrors.ErrCodeDocumentNotFound, "document %q not found", name)
			}
		}
	}
	for _, name := range names {
		body, _ := e.store.Get(name)
		if err := checkSettable(body, path, values[name], name); err != nil {
			return nil, err
		}
	}

	var errs []error
	for _, name := range names {
		body, _ := e.store.Get(name)
		next := body.Clone()
		Walk(next, path, true).Parent.Set(path.Last(), values[name].Clone())
		if err := e.store.Write(ctx, name, next); err != nil {
			errs = append(errs, err)
		}
	}
	return names, errors.Join(errs...)
}

func checkSettable(body *jsonval.Object, path jsonval.Path, value jsonval.Value, name string) error {
	w := Walk(body, path, false)
	switch {
	case w.Outcome == TypeConflict:
		return conflictError(path, w.ConflictAt, name)
	case w.Outcome == FoundContainer && value.Kind() != jsonval.KindObject:
		return jerrors.New(jerrors.ErrCodePathConflict, "%s is a group in %s", path, name)
	}
	return nil
}

func conflictError(path jsonval.Path, at int, name string) error {
	return jerrors.New(jerrors.ErrCodePathConflict, "%s is not an object in %s", path[:at+1], name)
}

// AddKey creates path with value in every target. value must be an empty
// object (new group) or a string (new field). If the key already exists or
// cannot be reached in any target, nothing is written.
func (e *Engine) AddKey(ctx context.Context, path jsonval.Path, value jsonval.Value, targets []string) error {
	if len(path) > 0 {
		if err := jerrors.ValidateKey(path.Last()); err != nil {
			return err
		}
	}
	if err := jerrors.RequirePath(path); err != nil {
		return err
	}
	if k := value.Kind(); k != jsonval.KindString && k != jsonval.KindObject {
		return jerrors.New(jerrors.ErrCodeInvalidInput, "new keys hold a string or an object, got %s", value.TypeName())
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	names, err := e.resolve(targets)
	if err != nil {
		return err
	}
	for _, name := range names {
		body, _ := e.store.Get(name)
		w := Walk(body, path, false)
		switch {
		case w.Outcome == TypeConflict:
			return conflictError(path, w.ConflictAt, name)
		case w.Found():
			return jerrors.New(jerrors.ErrCodeDuplicateKey, "Key already exists: %s", path)
		}
	}

	var errs []error
	for _, name := range names {
		body, _ := e.store.Get(name)
		next := body.Clone()
		Walk(next, path, true).Parent.Set(path.Last(), value.Clone())
		if err := e.store.Write(ctx, name, next); err != nil {
			errs = append(errs, err)
		}
	}
	e.logger.Debug("added key", "path", path.String(), "docs", len(names))
	return errors.Join(errs...)
}

// RemoveKey deletes path from every target that has it. Targets without
// the path are skipped. It returns the documents that were modified.
func (e *Engine) RemoveKey(ctx context.Context, path jsonval.Path, targets []string) ([]string, error) {
	if err := jerrors.RequirePath(path); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	names, err := e.resolve(targets)
	if err != nil {
		return nil, err
	}

	var (
		modified []string
		errs     []error
	)
	for _, name := range names {
		body, _ := e.store.Get(name)
		if !Walk(body, path, false).Found() {
			continue
		}
		next := body.Clone()
		Walk(next, path, false).Parent.Delete(path.Last())
		modified = append(modified, name)
		if err := e.store.Write(ctx, name, next); err != nil {
			errs = append(errs, err)
		}
	}
	e.logger.Debug("removed key", "path", path.String(), "docs", len(modified))
	return modified, errors.Join(errs...)
}

// RenameKey renames the last segment of oldPath to newKey in every target
// that has it. If newKey already exists as a sibling in any target, nothing
// is written. The renamed key moves to the end of its parent object.
func (e *Engine) RenameKey(ctx context.Context, oldPath jsonval.Path, newKey string, targets []string) ([]string, error) {
	if err := jerrors.RequirePath(oldPath); err != nil {
		return nil, err
	}
	if err := jerrors.ValidateKey(newKey); err != nil {
		return nil, err
	}
	if newKey == oldPath.Last() {
		return nil, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	names, err := e.resolve(targets)
	if err != nil {
		return nil, err
	}
	newPath := oldPath.Parent().Child(newKey)
	for _, name := range names {
		body, _ := e.store.Get(name)
		if Walk(body, newPath, false).Found() {
			return nil, jerrors.New(jerrors.ErrCodeDuplicateKey, "Key already exists: %s", newPath)
		}
	}

	var (
		modified []string
		errs     []error
	)
	for _, name := range names {
		body, _ := e.store.Get(name)
		if !Walk(body, oldPath, false).Found() {
			continue
		}
		next := body.Clone()
		w := Walk(next, oldPath, false)
		w.Parent.Delete(oldPath.Last())
		w.Parent.Set(newKey, w.Value)
		modified = append(modified, name)
		if err := e.store.Write(ctx, name, next); err != nil {
			errs = append(errs, err)
		}
	}
	e.logger.Debug("renamed key", "from", oldPath.String(), "to", newKey, "docs", len(modified))
	return modified, errors.Join(errs...)
}

// resolve expands nil targets to every document and checks named ones.
func (e *Engine) resolve(targets []string) ([]string, error) {
	if targets == nil {
		return e.store.Names(), nil
	}
	for _, name := range targets {
		if _, ok := e.store.Get(name); !ok {
			return nil, jerrors.New(jerrors.ErrCodeDocumentNotFound, "document %q not found", name)
		}
	}
	return targets, nil
}
