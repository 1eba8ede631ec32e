package docstore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/AbelMSG89/json-synchronized/pkg/cache"
	jerrors "github.com/AbelMSG89/json-synchronized/pkg/errors"
	"github.com/AbelMSG89/json-synchronized/pkg/jsonval"
	"github.com/AbelMSG89/json-synchronized/pkg/observability"
)

// loadConcurrency bounds parallel file reads during Load.
const loadConcurrency = 8

// recentWrites is how many self-written hashes are kept per document.
const recentWrites = 8

// Document is one source file.
type Document struct {
	Name string // display name, e.g. "en/comments"
	Path string // absolute file path
	Body *jsonval.Object

	// Valid is false for documents outside the active set.
	Valid bool

	// Recovered marks a document whose file failed to parse at load time
	// and was replaced by an empty object so editing can proceed.
	Recovered bool
}

// Warning describes a file that did not load cleanly.
type Warning struct {
	Path     string
	Name     string
	Err      error
	Excluded bool // document is not part of the active set
}

func (w Warning) String() string {
	if w.Excluded {
		return w.Name + " was skipped: " + jerrors.UserMessage(w.Err)
	}
	return w.Name + " could not be parsed and was opened as an empty object: " + jerrors.UserMessage(w.Err)
}

// Store is an ordered set of documents. It is safe for concurrent use;
// callers that read-modify-write a body serialize among themselves.
type Store struct {
	base   string
	logger *log.Logger

	mu     sync.RWMutex
	docs   []*Document
	byName map[string]*Document
	hashes map[string]string

	// written holds the latest self-written hashes per document, newest
	// last. A watcher read of any of them is an echo of our own write.
	written map[string][]string
}

// New returns an empty store rooted at base.
func New(base string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		abs = base
	}
	return &Store{
		base:    abs,
		logger:  logger,
		byName:  make(map[string]*Document),
		hashes:  make(map[string]string),
		written: make(map[string][]string),
	}
}

// Discover returns every *.json file under root, sorted, skipping hidden
// directories and node_modules.
func Discover(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsDocumentFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, jerrors.Wrap(jerrors.ErrCodeNotFound, err, "scan %s", root)
	}
	slices.Sort(files)
	return files, nil
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}

// IsDocumentFile reports whether path names a visible *.json file.
func IsDocumentFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, ".json") && !strings.HasPrefix(base, ".")
}

// DisplayName derives the column name of path relative to base.
func DisplayName(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return strings.TrimSuffix(filepath.ToSlash(rel), ".json")
}

type loaded struct {
	doc  *Document
	hash string
	warn *Warning
}

// Load reads and parses files concurrently and returns a store holding
// them in the given order. A file that fails to parse is opened as an empty
// object; a file whose root is not an object is excluded. Neither aborts
// the load. The returned error is reserved for context cancellation.
func Load(ctx context.Context, base string, files []string, logger *log.Logger) (*Store, []Warning, error) {
	start := time.Now()
	s := New(base, logger)

	results := make([]loaded, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.loadFile(f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var warnings []Warning
	for _, r := range results {
		if r.warn != nil {
			warnings = append(warnings, *r.warn)
			if r.warn.Excluded {
				s.logger.Warn("skipping document", "name", r.warn.Name, "err", r.warn.Err)
			} else {
				s.logger.Warn("document recovered as empty object", "name", r.warn.Name, "err", r.warn.Err)
			}
		}
		if r.doc == nil {
			continue
		}
		s.docs = append(s.docs, r.doc)
		s.byName[r.doc.Name] = r.doc
		s.hashes[r.doc.Name] = r.hash
	}

	excluded := len(files) - len(s.docs)
	s.logger.Debug("loaded documents", "count", len(s.docs), "excluded", excluded)
	observability.Store().OnLoad(ctx, len(s.docs), excluded, time.Since(start))
	return s, warnings, nil
}

func (s *Store) loadFile(path string) loaded {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	name := DisplayName(s.base, abs)

	data, err := os.ReadFile(abs)
	if err != nil {
		return loaded{warn: &Warning{Path: abs, Name: name, Excluded: true,
			Err: jerrors.Wrap(jerrors.ErrCodeNotFound, err, "read %s", name)}}
	}

	body, err := jsonval.Parse(data)
	switch {
	case err == nil:
		return loaded{
			doc:  &Document{Name: name, Path: abs, Body: body, Valid: true},
			hash: cache.Hash(jsonval.Encode(body)),
		}
	case errors.Is(err, jsonval.ErrArrayRoot), errors.Is(err, jsonval.ErrNotObject):
		return loaded{warn: &Warning{Path: abs, Name: name, Excluded: true,
			Err: jerrors.Wrap(jerrors.ErrCodeInvalidDocument, err, "%s", name)}}
	default:
		return loaded{
			doc:  &Document{Name: name, Path: abs, Body: jsonval.NewObject(), Valid: true, Recovered: true},
			warn: &Warning{Path: abs, Name: name, Err: jerrors.Wrap(jerrors.ErrCodeInvalidDocument, err, "%s", name)},
		}
	}
}

// Base returns the absolute base directory.
func (s *Store) Base() string { return s.base }

// Len returns the number of active documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Names returns the display names in column order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.docs))
	for i, d := range s.docs {
		names[i] = d.Name
	}
	return names
}

// Bodies returns the live bodies in column order. Callers must not mutate
// them outside a Write cycle.
func (s *Store) Bodies() []*jsonval.Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bodies := make([]*jsonval.Object, len(s.docs))
	for i, d := range s.docs {
		bodies[i] = d.Body
	}
	return bodies
}

// Documents returns copies of the document records in column order.
// Bodies are shared, not cloned.
func (s *Store) Documents() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Document, len(s.docs))
	for i, d := range s.docs {
		out[i] = *d
	}
	return out
}

// Get returns the live body of the named document.
func (s *Store) Get(name string) (*jsonval.Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return d.Body, true
}

// Index returns the column index of name, or -1.
func (s *Store) Index(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.IndexFunc(s.docs, func(d *Document) bool { return d.Name == name })
}

// Lookup maps a file path to its display name. It succeeds only for
// documents in the active set.
func (s *Store) Lookup(path string) (string, bool) {
	name := s.nameFor(path)
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byName[name]
	return name, ok
}

func (s *Store) nameFor(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return DisplayName(s.base, abs)
}

// Snapshot returns a deep copy of the active set as one object mapping
// display name to body, in column order.
func (s *Store) Snapshot() *jsonval.Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := jsonval.NewObject()
	for _, d := range s.docs {
		snap.Set(d.Name, jsonval.ObjectValue(d.Body.Clone()))
	}
	return snap
}

// Write encodes body and persists it to the named document's file, then
// makes body the document's in-memory value. Writing an unchanged body
// produces byte-identical output.
func (s *Store) Write(ctx context.Context, name string, body *jsonval.Object) error {
	s.mu.RLock()
	d, ok := s.byName[name]
	s.mu.RUnlock()
	if !ok {
		return jerrors.New(jerrors.ErrCodeDocumentNotFound, "document %q not found", name)
	}

	start := time.Now()
	data := jsonval.Encode(body)
	err := writeFileAtomic(d.Path, data)
	observability.Store().OnWrite(ctx, name, len(data), time.Since(start), err)

	s.mu.Lock()
	d.Body = body
	if err == nil {
		d.Recovered = false
		hash := cache.Hash(data)
		s.hashes[name] = hash
		s.rememberWrite(name, hash)
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("write failed", "name", name, "err", err)
		return jerrors.Wrap(jerrors.ErrCodePersist, err, "could not save %s", name)
	}
	s.logger.Debug("wrote document", "name", name, "bytes", len(data))
	return nil
}

// Upsert applies an externally changed body for path. An unknown path is
// appended as a new document. It reports whether the content differs from
// what the store last saw. A body matching one of the store's own recent
// writes is ignored, so a late read of an older save cannot replace a
// newer one.
func (s *Store) Upsert(path string, body *jsonval.Object) (name string, changed bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	name = DisplayName(s.base, abs)
	hash := cache.Hash(jsonval.Encode(body))

	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.byName[name]; ok {
		if s.hashes[name] == hash || slices.Contains(s.written[name], hash) {
			return name, false
		}
		d.Body = body
		d.Valid = true
		d.Recovered = false
		s.hashes[name] = hash
		delete(s.written, name)
		return name, true
	}

	d := &Document{Name: name, Path: abs, Body: body, Valid: true}
	s.docs = append(s.docs, d)
	s.byName[name] = d
	s.hashes[name] = hash
	return name, true
}

// rememberWrite records hash as a self-write of name. Callers hold s.mu.
func (s *Store) rememberWrite(name, hash string) {
	w := append(s.written[name], hash)
	if len(w) > recentWrites {
		w = w[len(w)-recentWrites:]
	}
	s.written[name] = w
}

// Invalidate drops the document at path from the active set because its
// root is no longer an object. It reports whether it was active.
func (s *Store) Invalidate(path string) (name string, wasActive bool) {
	return s.drop(path)
}

// Remove drops the document at path after its file disappeared.
func (s *Store) Remove(path string) (name string, removed bool) {
	return s.drop(path)
}

func (s *Store) drop(path string) (string, bool) {
	name := s.nameFor(path)
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.byName[name]
	if !ok {
		return name, false
	}
	d.Valid = false
	delete(s.byName, name)
	delete(s.hashes, name)
	delete(s.written, name)
	s.docs = slices.DeleteFunc(s.docs, func(x *Document) bool { return x == d })
	return name, true
}
