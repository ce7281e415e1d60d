// Package console is the interactive terminal side of reconciliation.
//
// Console implements reconcile.Prompter and reconcile.Notifier over a line
// reader and a writer. It also renders the status lines and section headers
// the CLI prints, coloring them when the writer is a terminal.
package console
