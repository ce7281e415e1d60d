package services

import "context"

type contextKey string

const (
	collectionKey contextKey = "collection"
	recordKeyKey  contextKey = "record_key"
	sessionKey    contextKey = "session_id"
)

// WithCollection annotates context with the collection being processed (people, places).
func WithCollection(ctx context.Context, collection string) context.Context {
	if collection == "" {
		return ctx
	}
	return context.WithValue(ctx, collectionKey, collection)
}

// CollectionFromContext returns the collection name if present.
func CollectionFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(collectionKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRecordKey annotates context with the store key of the record in flight.
func WithRecordKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, recordKeyKey, key)
}

// RecordKeyFromContext returns the record key if present.
func RecordKeyFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(recordKeyKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithSessionID annotates context with the run session identifier.
func WithSessionID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionKey, id)
}

// SessionIDFromContext extracts the run session identifier if present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(sessionKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
