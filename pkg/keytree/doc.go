// Package keytree merges N JSON documents into one ordered row model.
//
// Each level of the merged tree holds the union of the keys found at that
// path in any document, in first-seen order with the first document's order
// taking precedence. A key is a group when at least one document has an
// object there and a field otherwise. Field rows carry one [CellData] per
// document; group rows carry the columns that have a missing value anywhere
// beneath them. Every level ends with an add row that validates new keys.
//
// Merging is pure and recomputed from scratch on every publish.
package keytree
