// Package docstore owns the set of JSON documents being edited.
//
// A [Store] holds one [Document] per input file, keyed by a display name
// derived from the file path relative to a base directory ("en/comments.json"
// becomes "en/comments"). Document order is discovery order and is the
// column order of the grid; documents created later are appended.
//
// The store is the single source of truth between writes: [Store.Write]
// replaces the in-memory body and persists it in the same call, and the
// watcher entry points ([Store.Upsert], [Store.Invalidate], [Store.Remove])
// apply external changes.
package docstore
