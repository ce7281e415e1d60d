// Package logging assembles the structured slog loggers used across kbmatch.
//
// It owns the console and JSON handlers, routes console output to stderr so
// stdout stays free for the interactive disambiguation prompts, and mirrors
// every record into a JSON log file. Context helpers tag log lines with the
// run session, collection, and record key carried by the context.
package logging
