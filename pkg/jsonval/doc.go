// Package jsonval models localization documents as ordered, explicitly
// tagged JSON values.
//
// # Overview
//
// Translation files are plain JSON objects whose key order matters to the
// people editing them: the order of rows in the grid mirrors the order of
// keys in the files. Go maps do not preserve order, so this package
// provides [Object], an insertion-ordered map, and [Value], a tagged union
// with exactly four shapes:
//
//   - [KindAbsent]: the key does not exist in the document
//   - [KindString]: a translation string
//   - [KindObject]: a nested group of keys
//   - [KindOther]: anything else (numbers, booleans, null, arrays)
//
// Values of [KindOther] keep their original JSON bytes so data the editor
// does not understand survives a load/save cycle untouched.
//
// # Parsing and Encoding
//
// [Parse] accepts only documents whose root is an object. An array root is
// reported as [ErrArrayRoot], any other scalar root as [ErrNotObject], and
// malformed input as [ErrSyntax].
//
// [Encode] writes the canonical on-disk form: two-space indentation, no
// HTML escaping and no trailing newline. Encoding is deterministic, so
// writing an unchanged document twice produces identical bytes.
//
// # Paths
//
// A [Path] addresses a node in the shared key space of all documents. The
// same path is resolved independently in every document.
package jsonval
