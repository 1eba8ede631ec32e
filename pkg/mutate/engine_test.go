package mutate

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/AbelMSG89/json-synchronized/pkg/docstore"
	jerrors "github.com/AbelMSG89/json-synchronized/pkg/errors"
	"github.com/AbelMSG89/json-synchronized/pkg/jsonval"
)

// fixture writes files into a temp dir and returns an engine over them.
func fixture(t *testing.T, files map[string]string) (*Engine, string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	paths, err := docstore.Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: log.FatalLevel})
	store, _, err := docstore.Load(context.Background(), dir, paths, logger)
	if err != nil {
		t.Fatal(err)
	}
	return New(store, logger), dir
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func snapshotFiles(t *testing.T, dir string, names ...string) map[string]string {
	t.Helper()
	out := make(map[string]string, len(names))
	for _, n := range names {
		out[n] = readFile(t, dir, n)
	}
	return out
}

func lookupStr(t *testing.T, e *Engine, doc string, path ...string) (string, bool) {
	t.Helper()
	body, ok := e.Store().Get(doc)
	if !ok {
		t.Fatalf("document %s missing", doc)
	}
	return jsonval.Lookup(body, path).Str()
}

func TestWalk(t *testing.T) {
	obj, _ := jsonval.Parse([]byte(`{"a":{"b":"x","g":{}},"s":"str"}`))

	tests := []struct {
		name       string
		path       jsonval.Path
		create     bool
		want       Outcome
		conflictAt int
	}{
		{"leaf", jsonval.Path{"a", "b"}, false, FoundLeaf, -1},
		{"container", jsonval.Path{"a", "g"}, false, FoundContainer, -1},
		{"missing final", jsonval.Path{"a", "zz"}, false, Missing, -1},
		{"missing intermediate", jsonval.Path{"q", "zz"}, false, Missing, -1},
		{"through string", jsonval.Path{"s", "x"}, true, TypeConflict, 0},
		{"through nested string", jsonval.Path{"a", "b", "c", "d"}, true, TypeConflict, 1},
		{"root", jsonval.Path{}, false, FoundContainer, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := string(jsonval.Encode(obj))
			r := Walk(obj, tt.path, tt.create)
			if r.Outcome != tt.want {
				t.Errorf("Outcome = %v, want %v", r.Outcome, tt.want)
			}
			if r.ConflictAt != tt.conflictAt {
				t.Errorf("ConflictAt = %d, want %d", r.ConflictAt, tt.conflictAt)
			}
			if after := string(jsonval.Encode(obj)); after != before {
				t.Errorf("walk modified the object:\n%s", after)
			}
		})
	}
}

func TestWalkCreate(t *testing.T) {
	obj, _ := jsonval.Parse([]byte(`{"a":{}}`))
	r := Walk(obj, jsonval.Path{"a", "b", "c", "leaf"}, true)
	if r.Outcome != CreatedContainer || r.Parent == nil {
		t.Fatalf("Walk = %+v", r)
	}
	if got := string(jsonval.Encode(obj)); got != "{\n  \"a\": {\n    \"b\": {\n      \"c\": {}\n    }\n  }\n}" {
		t.Errorf("created structure:\n%s", got)
	}
	if r := Walk(obj, jsonval.Path{"a", "x"}, true); r.Outcome != Missing || r.Parent == nil {
		t.Errorf("existing parent, absent key = %+v", r)
	}
}

func TestSetValueWritesOneDocument(t *testing.T) {
	e, dir := fixture(t, map[string]string{
		"en.json": `{"title":"Hi"}`,
		"es.json": `{"title":"Hola"}`,
	})
	esBefore := readFile(t, dir, "es.json")

	if err := e.SetValue(context.Background(), jsonval.Path{"title"}, "en", jsonval.String("Hello")); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if got := readFile(t, dir, "en.json"); got != "{\n  \"title\": \"Hello\"\n}" {
		t.Errorf("en.json = %s", got)
	}
	if got := readFile(t, dir, "es.json"); got != esBefore {
		t.Errorf("es.json was modified: %s", got)
	}
	if v, _ := lookupStr(t, e, "en", "title"); v != "Hello" {
		t.Errorf("in-memory title = %q", v)
	}
}

func TestSetValueCreatesIntermediates(t *testing.T) {
	e, _ := fixture(t, map[string]string{"en.json": `{}`})
	if err := e.SetValue(context.Background(), jsonval.Path{"a", "b", "c"}, "en", jsonval.String("deep")); err != nil {
		t.Fatal(err)
	}
	if v, ok := lookupStr(t, e, "en", "a", "b", "c"); !ok || v != "deep" {
		t.Errorf("a.b.c = %q, %v", v, ok)
	}
}

func TestSetValueRejects(t *testing.T) {
	e, dir := fixture(t, map[string]string{"en.json": `{"s":"text","g":{"x":""}}`})
	before := readFile(t, dir, "en.json")
	ctx := context.Background()

	tests := []struct {
		name string
		path jsonval.Path
		doc  string
		code jerrors.Code
	}{
		{"through string", jsonval.Path{"s", "child"}, "en", jerrors.ErrCodePathConflict},
		{"over group", jsonval.Path{"g"}, "en", jerrors.ErrCodePathConflict},
		{"unknown doc", jsonval.Path{"s"}, "fr", jerrors.ErrCodeDocumentNotFound},
		{"empty path", jsonval.Path{}, "en", jerrors.ErrCodeInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.SetValue(ctx, tt.path, tt.doc, jsonval.String("v"))
			if !jerrors.Is(err, tt.code) {
				t.Errorf("SetValue = %v, want %s", err, tt.code)
			}
		})
	}
	if got := readFile(t, dir, "en.json"); got != before {
		t.Errorf("rejected edits modified the file: %s", got)
	}
}

func TestAddKeyAllOrNothing(t *testing.T) {
	e, dir := fixture(t, map[string]string{
		"en.json": `{"a":{"b":"hi"}}`,
		"es.json": `{"a":{}}`,
	})
	ctx := context.Background()

	if err := e.AddKey(ctx, jsonval.Path{"a", "c"}, jsonval.String(""), nil); err != nil {
		t.Fatalf("AddKey: %v", err)
	}
	for _, doc := range []string{"en", "es"} {
		if v, ok := lookupStr(t, e, doc, "a", "c"); !ok || v != "" {
			t.Errorf("%s a.c = %q, %v", doc, v, ok)
		}
	}

	before := snapshotFiles(t, dir, "en.json", "es.json")
	err := e.AddKey(ctx, jsonval.Path{"a", "c"}, jsonval.String(""), nil)
	if !jerrors.Is(err, jerrors.ErrCodeDuplicateKey) {
		t.Fatalf("second AddKey = %v, want DUPLICATE_KEY", err)
	}
	after := snapshotFiles(t, dir, "en.json", "es.json")
	for name := range before {
		if before[name] != after[name] {
			t.Errorf("%s changed after rejected AddKey", name)
		}
	}
}

func TestAddKeyDuplicateInOneTarget(t *testing.T) {
	e, dir := fixture(t, map[string]string{
		"en.json": `{}`,
		"es.json": `{"k":"exists"}`,
	})
	before := readFile(t, dir, "en.json")
	err := e.AddKey(context.Background(), jsonval.Path{"k"}, jsonval.String(""), nil)
	if !jerrors.Is(err, jerrors.ErrCodeDuplicateKey) {
		t.Fatalf("AddKey = %v", err)
	}
	if readFile(t, dir, "en.json") != before {
		t.Error("en.json must not be written when es.json already has the key")
	}
	body, _ := e.Store().Get("en")
	if body.Has("k") {
		t.Error("in-memory en must not be changed")
	}
}

func TestAddKeyGroupAndValidation(t *testing.T) {
	e, _ := fixture(t, map[string]string{"en.json": `{"s":"x"}`, "es.json": `{}`})
	ctx := context.Background()

	if err := e.AddKey(ctx, jsonval.Path{"grp"}, jsonval.ObjectValue(nil), nil); err != nil {
		t.Fatal(err)
	}
	body, _ := e.Store().Get("es")
	if v, _ := body.Get("grp"); v.Kind() != jsonval.KindObject {
		t.Errorf("grp kind = %v", v.Kind())
	}

	tests := []struct {
		name  string
		path  jsonval.Path
		value jsonval.Value
		code  jerrors.Code
	}{
		{"empty segment", jsonval.Path{"grp", ""}, jsonval.String(""), jerrors.ErrCodeInvalidKey},
		{"number value", jsonval.Path{"n"}, jsonval.Raw([]byte("1")), jerrors.ErrCodeInvalidInput},
		{"through string", jsonval.Path{"s", "x"}, jsonval.String(""), jerrors.ErrCodePathConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := e.AddKey(ctx, tt.path, tt.value, nil); !jerrors.Is(err, tt.code) {
				t.Errorf("AddKey = %v, want %s", err, tt.code)
			}
		})
	}

	// es has no "s", but en conflicts: nothing may be written to es
	if body, _ := e.Store().Get("es"); body.Has("s") {
		t.Error("conflict in en must block the add in es")
	}
}

func TestRemoveKeySkipsMissing(t *testing.T) {
	e, dir := fixture(t, map[string]string{
		"en.json": `{"a":{"b":"x","c":"y"}}`,
		"es.json": `{"z":"1"}`,
	})
	esBefore := readFile(t, dir, "es.json")

	modified, err := e.RemoveKey(context.Background(), jsonval.Path{"a", "b"}, nil)
	if err != nil {
		t.Fatalf("RemoveKey: %v", err)
	}
	if !slices.Equal(modified, []string{"en"}) {
		t.Errorf("modified = %v, want [en]", modified)
	}
	if _, ok := lookupStr(t, e, "en", "a", "b"); ok {
		t.Error("a.b should be gone from en")
	}
	if readFile(t, dir, "es.json") != esBefore {
		t.Error("es.json should be untouched")
	}

	modified, err = e.RemoveKey(context.Background(), jsonval.Path{"nope", "deeper"}, nil)
	if err != nil || len(modified) != 0 {
		t.Errorf("RemoveKey(missing) = %v, %v", modified, err)
	}
}

func TestRemoveKeyGroup(t *testing.T) {
	e, _ := fixture(t, map[string]string{"en.json": `{"a":{"b":{"c":"x"}},"k":""}`})
	if _, err := e.RemoveKey(context.Background(), jsonval.Path{"a"}, []string{"en"}); err != nil {
		t.Fatal(err)
	}
	body, _ := e.Store().Get("en")
	if got := body.Keys(); !slices.Equal(got, []string{"k"}) {
		t.Errorf("keys after removing group = %v", got)
	}
}

func TestRenameKey(t *testing.T) {
	e, dir := fixture(t, map[string]string{
		"en.json": `{"a":{"b":"1","x":"2"}}`,
		"es.json": `{"a":{"x":"3"}}`,
	})
	modified, err := e.RenameKey(context.Background(), jsonval.Path{"a", "b"}, "renamed", nil)
	if err != nil {
		t.Fatalf("RenameKey: %v", err)
	}
	if !slices.Equal(modified, []string{"en"}) {
		t.Errorf("modified = %v", modified)
	}
	want := "{\n  \"a\": {\n    \"x\": \"2\",\n    \"renamed\": \"1\"\n  }\n}"
	if got := readFile(t, dir, "en.json"); got != want {
		t.Errorf("en.json =\n%s\nwant\n%s", got, want)
	}
}

func TestRenameKeyRejectsExistingSibling(t *testing.T) {
	e, dir := fixture(t, map[string]string{
		"en.json": `{"a":{"b":"1"}}`,
		"es.json": `{"a":{"b":"2","c":"3"}}`,
	})
	before := snapshotFiles(t, dir, "en.json", "es.json")

	_, err := e.RenameKey(context.Background(), jsonval.Path{"a", "b"}, "c", nil)
	if !jerrors.Is(err, jerrors.ErrCodeDuplicateKey) {
		t.Fatalf("RenameKey = %v, want DUPLICATE_KEY", err)
	}
	after := snapshotFiles(t, dir, "en.json", "es.json")
	for name := range before {
		if before[name] != after[name] {
			t.Errorf("%s modified by rejected rename", name)
		}
	}
}

func TestRenameKeySameName(t *testing.T) {
	e, _ := fixture(t, map[string]string{"en.json": `{"a":"1","b":"2"}`})
	modified, err := e.RenameKey(context.Background(), jsonval.Path{"a"}, "a", nil)
	if err != nil || modified != nil {
		t.Errorf("rename to same key = %v, %v", modified, err)
	}
	body, _ := e.Store().Get("en")
	if got := body.Keys(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("order changed: %v", got)
	}
}

func TestExistingUnusualKeys(t *testing.T) {
	e, _ := fixture(t, map[string]string{
		"en.json": `{" ":"blank key","b":{"":"empty key"},"line\nbreak":"x"}`,
		"es.json": `{}`,
	})
	ctx := context.Background()

	if err := e.SetValue(ctx, jsonval.Path{" "}, "es", jsonval.String("clave")); err != nil {
		t.Fatalf("SetValue blank key: %v", err)
	}
	if v, ok := lookupStr(t, e, "es", " "); !ok || v != "clave" {
		t.Errorf(`es " " = %q, %v`, v, ok)
	}
	if err := e.SetValue(ctx, jsonval.Path{"b", ""}, "en", jsonval.String("changed")); err != nil {
		t.Fatalf("SetValue empty key: %v", err)
	}
	if v, _ := lookupStr(t, e, "en", "b", ""); v != "changed" {
		t.Errorf(`en b."" = %q`, v)
	}

	modified, err := e.RemoveKey(ctx, jsonval.Path{"b", ""}, nil)
	if err != nil || !slices.Equal(modified, []string{"en"}) {
		t.Fatalf("RemoveKey empty key = %v, %v", modified, err)
	}
	if _, ok := lookupStr(t, e, "en", "b", ""); ok {
		t.Error(`en b."" still present`)
	}

	if _, err := e.RenameKey(ctx, jsonval.Path{"line\nbreak"}, "linebreak", nil); err != nil {
		t.Fatalf("RenameKey control char key: %v", err)
	}
	if v, _ := lookupStr(t, e, "en", "linebreak"); v != "x" {
		t.Errorf("en linebreak = %q", v)
	}
	modified, err = e.RenameKey(ctx, jsonval.Path{" "}, "blank", nil)
	if err != nil || !slices.Equal(modified, []string{"en", "es"}) {
		t.Fatalf("RenameKey blank key = %v, %v", modified, err)
	}

	// new names are still checked
	if _, err := e.RenameKey(ctx, jsonval.Path{"blank"}, " ", nil); !jerrors.Is(err, jerrors.ErrCodeInvalidKey) {
		t.Errorf("rename to blank = %v, want INVALID_KEY", err)
	}
	if err := e.AddKey(ctx, jsonval.Path{"b", " "}, jsonval.String(""), nil); !jerrors.Is(err, jerrors.ErrCodeInvalidKey) {
		t.Errorf("add blank = %v, want INVALID_KEY", err)
	}
}

func TestSetValues(t *testing.T) {
	e, _ := fixture(t, map[string]string{
		"en.json": `{"t":"Hello"}`,
		"es.json": `{}`,
		"fr.json": `{"t":{"nested":""}}`,
	})
	ctx := context.Background()

	names, err := e.SetValues(ctx, jsonval.Path{"t"}, map[string]jsonval.Value{
		"es": jsonval.String("Hola"),
	})
	if err != nil || !slices.Equal(names, []string{"es"}) {
		t.Fatalf("SetValues = %v, %v", names, err)
	}

	_, err = e.SetValues(ctx, jsonval.Path{"t"}, map[string]jsonval.Value{
		"es": jsonval.String("Buenos"),
		"fr": jsonval.String("Bonjour"),
	})
	if !jerrors.Is(err, jerrors.ErrCodePathConflict) {
		t.Fatalf("SetValues over group = %v", err)
	}
	if v, _ := lookupStr(t, e, "es", "t"); v != "Hola" {
		t.Errorf("es must not change when fr conflicts, got %q", v)
	}

	if _, err := e.SetValues(ctx, jsonval.Path{"t"}, map[string]jsonval.Value{"de": jsonval.String("x")}); !jerrors.Is(err, jerrors.ErrCodeDocumentNotFound) {
		t.Errorf("unknown doc = %v", err)
	}
}

func TestUnknownTarget(t *testing.T) {
	e, _ := fixture(t, map[string]string{"en.json": `{}`})
	err := e.AddKey(context.Background(), jsonval.Path{"k"}, jsonval.String(""), []string{"en", "zz"})
	if !jerrors.Is(err, jerrors.ErrCodeDocumentNotFound) {
		t.Errorf("AddKey with unknown target = %v", err)
	}
	if body, _ := e.Store().Get("en"); body.Has("k") {
		t.Error("no document may change when a target is unknown")
	}
}

func TestPersistFailureReported(t *testing.T) {
	e, dir := fixture(t, map[string]string{"en.json": `{}`})
	if err := os.Chmod(dir, 0o500); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(dir, 0o755)
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	err := e.AddKey(context.Background(), jsonval.Path{"k"}, jsonval.String(""), nil)
	if !jerrors.Is(err, jerrors.ErrCodePersist) {
		t.Fatalf("AddKey = %v, want PERSIST_FAILED", err)
	}
	if body, _ := e.Store().Get("en"); !body.Has("k") {
		t.Error("in-memory state is kept after a failed write")
	}
}
