package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"kbmatch/internal/reconcile"
	"kbmatch/internal/services"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was written by another schema version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Entry is one journaled decision.
type Entry struct {
	ID         int64
	SessionID  string
	Collection string
	Key        string
	Variant    string
	Source     string
	Decision   string
	Outcome    string
	IRI        string
	CreatedAt  time.Time
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	SessionID  string
	Collection string
	Key        string
	Limit      int
}

// Journal is the decision database.
type Journal struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open creates or opens the journal at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "journal", "open", "create journal directory", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	j := &Journal{db: db, path: path, now: time.Now}
	if err := j.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

func (j *Journal) Path() string { return j.path }

func (j *Journal) initSchema(ctx context.Context) error {
	var tableExists int
	err := j.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return j.createSchema(ctx)
	}

	var version int
	if err := j.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: journal has version %d, expected %d (delete %s to start a new history)",
			ErrSchemaMismatch, version, schemaVersion, j.path)
	}
	return nil
}

func (j *Journal) createSchema(ctx context.Context) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Append stores entry, stamping CreatedAt when unset.
func (j *Journal) Append(ctx context.Context, entry Entry) (int64, error) {
	if strings.TrimSpace(entry.SessionID) == "" {
		return 0, services.Wrap(services.ErrValidation, "journal", "append", "session id is required", nil)
	}
	created := entry.CreatedAt
	if created.IsZero() {
		created = j.now()
	}
	res, err := j.db.ExecContext(ctx,
		`INSERT INTO decisions (
            session_id, collection, record_key, variant, source, decision, outcome, iri, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionID,
		entry.Collection,
		entry.Key,
		nullableString(entry.Variant),
		entry.Source,
		entry.Decision,
		entry.Outcome,
		nullableString(entry.IRI),
		created.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert decision: %w", err)
	}
	return res.LastInsertId()
}

// List returns matching entries, newest first.
func (j *Journal) List(ctx context.Context, filter Filter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.SessionID != "" {
		clauses = append(clauses, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.Collection != "" {
		clauses = append(clauses, "collection = ?")
		args = append(args, filter.Collection)
	}
	if filter.Key != "" {
		clauses = append(clauses, "record_key = ?")
		args = append(args, filter.Key)
	}

	query := `SELECT id, session_id, collection, record_key, variant, source, decision, outcome, iri, created_at FROM decisions`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry   Entry
			variant sql.NullString
			iri     sql.NullString
			created string
		)
		if err := rows.Scan(&entry.ID, &entry.SessionID, &entry.Collection, &entry.Key, &variant,
			&entry.Source, &entry.Decision, &entry.Outcome, &iri, &created); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		entry.Variant = variant.String
		entry.IRI = iri.String
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			entry.CreatedAt = ts
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Recorder binds the journal to one run session.
type Recorder struct {
	journal   *Journal
	sessionID string
}

var _ reconcile.DecisionRecorder = (*Recorder)(nil)

// Session returns a recorder that stamps entries with sessionID.
func (j *Journal) Session(sessionID string) *Recorder {
	return &Recorder{journal: j, sessionID: sessionID}
}

func (r *Recorder) RecordDecision(ctx context.Context, entry reconcile.DecisionEntry) error {
	_, err := r.journal.Append(ctx, Entry{
		SessionID:  r.sessionID,
		Collection: entry.Collection,
		Key:        entry.Key,
		Variant:    entry.Variant,
		Source:     entry.Source,
		Decision:   entry.Decision,
		Outcome:    entry.Outcome,
		IRI:        entry.IRI,
	})
	return err
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
