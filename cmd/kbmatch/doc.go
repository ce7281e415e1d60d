// Package main hosts the kbmatch CLI entrypoint and command graph.
//
// The Cobra command tree wires the record stores, the Wikidata client, the
// interactive console, the banned list and the decision journal into one
// reconciliation run, and exposes read-only views (stats, show, history) over
// the same files. Configuration is resolved once per invocation and shared by
// every subcommand through commandContext.
//
// Keep this package thin: matching rules belong in internal/reconcile and
// persistence in internal/store and internal/journal.
package main
