// Package pkg provides the core libraries for jsonsync, an editor for sets
// of JSON localization files.
//
// # Overview
//
// jsonsync treats every *.json document under a directory as one column of
// a grid and every key path found in any document as one row. The pkg
// directory is organized into four areas:
//
//  1. Documents - [jsonval] values, [docstore] loading and atomic writes
//  2. Model - [keytree] merging and [mutate] key operations
//  3. Live editing - [watch] file events, [panel] UI message host, [viewstate]
//  4. Translation - [translate], [integrations] backends, [cache], [config]
//
// # Architecture
//
// The typical data flow:
//
//	*.json files
//	     ↓
//	[docstore] Store (ordered, hash-deduplicated bodies)
//	     ↓
//	[keytree] Merge (rows, missing cells, type problems)
//	     ↓
//	grid (CLI, TUI or websocket panel)
//	     ↓
//	[panel] Host → [mutate] Engine → Store.Write
//
// File changes made by other tools flow back through [watch], which
// debounces events, retries transient parse failures and reports each file
// as updated, invalid or removed.
//
// # Quick Start
//
// Load a directory and list the keys missing from each document:
//
//	import (
//	    "context"
//	    "github.com/AbelMSG89/json-synchronized/pkg/docstore"
//	    "github.com/AbelMSG89/json-synchronized/pkg/keytree"
//	)
//
//	files, _ := docstore.Discover("locales")
//	store, _, _ := docstore.Load(context.Background(), "locales", files, nil)
//	res := keytree.Merge(store.Bodies())
//	stats := keytree.Summarize(res, store.Len())
//	fmt.Println(stats.Missing)
//
// # Errors
//
// Every package returns [errors.Error] values with a machine-readable code
// (DUPLICATE_KEY, PATH_CONFLICT, PERSIST_FAILED, ...). Use errors.Is with a
// code to branch and errors.UserMessage for display.
package pkg
