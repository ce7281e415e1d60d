// Package notifications pushes run milestones to ntfy.
//
// NewService returns a no-op implementation when no topic is configured, so
// callers never branch on whether notifications are enabled.
package notifications
