// Package reconcile matches local person and place records against the
// knowledge base.
//
// The Engine walks a collection in store order. For each record it normalizes
// aliases, optionally refreshes resolved records, guards against implausible
// matches, and for unresolved records expands the name into search variants,
// looks up candidates (by VIAF identifier first, then by name) and hands them
// to the disambiguation protocol. The protocol presents only the first
// non-banned candidate; the operator confirms, skips the record, or names an
// entity explicitly. Every change is persisted before the next step runs.
//
// A VIAF hit is trusted by default: the first non-banned candidate found by
// VIAF identifier is accepted without a prompt and only announced on the
// console. Set Options.ConfirmVIAF to route it through the normal
// confirmation instead.
package reconcile
