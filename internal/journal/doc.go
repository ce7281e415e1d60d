// Package journal keeps a SQLite history of reconciliation decisions.
//
// Every protocol outcome, refresh, reset and inferred gender is appended with
// the run's session id so an operator can later see why a record ended up
// with its current match. The journal is append-only; the JSON stores stay
// the source of truth.
package journal
