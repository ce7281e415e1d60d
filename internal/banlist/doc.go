// Package banlist tracks knowledge-base entities that must never be offered
// as candidates.
//
// The list combines the configured defaults with an operator-maintained JSON
// file. The file is reloaded when its modification time changes, and new
// entries are written back atomically.
package banlist
