// Package store persists one record collection as a single JSON object that
// maps record keys to records.
//
// Key order is preserved from the file so iteration follows store order and
// an unchanged collection serializes to identical bytes. Every Save rewrites
// the whole file through a temp file and rename. A writable store holds an
// advisory lock on <path>.lock for its lifetime so two runs cannot interleave
// writes to the same collection.
package store
