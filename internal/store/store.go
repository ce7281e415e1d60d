package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/gofrs/flock"

	"kbmatch/internal/fileutil"
	"kbmatch/internal/logging"
	"kbmatch/internal/record"
	"kbmatch/internal/services"
)

// BackupSuffix is appended to the store path by Backup.
const BackupSuffix = ".bak"

// Store is an ordered, in-memory view of one collection file.
type Store struct {
	path     string
	kind     record.Kind
	logger   *slog.Logger
	lock     *flock.Flock
	readOnly bool

	keys    []string
	records map[string]record.Record
	saves   int
}

// Open loads path for reading and writing and takes the collection lock.
// A missing file yields an empty collection. Close releases the lock.
func Open(path string, kind record.Kind, logger *slog.Logger) (*Store, error) {
	s := newStore(path, kind, logger)
	s.lock = flock.New(path + ".lock")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "store", "open", "create store directory", err)
	}
	locked, err := s.lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "store", "lock", path, err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrLocked, "store", "lock",
			fmt.Sprintf("%s is in use by another kbmatch process", path), nil)
	}
	if err := s.load(); err != nil {
		_ = s.lock.Unlock()
		return nil, err
	}
	return s, nil
}

// Load reads path without taking the lock. The returned store refuses Save.
func Load(path string, kind record.Kind, logger *slog.Logger) (*Store, error) {
	s := newStore(path, kind, logger)
	s.readOnly = true
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func newStore(path string, kind record.Kind, logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		path:    path,
		kind:    kind,
		logger:  logging.NewComponentLogger(logger, "store").With(logging.String(logging.FieldCollection, kind.Collection())),
		records: make(map[string]record.Record),
	}
}

// Close releases the collection lock. It is safe to call on a read-only store.
func (s *Store) Close() error {
	if s == nil || s.lock == nil {
		return nil
	}
	return s.lock.Unlock()
}

func (s *Store) Path() string { return s.path }

func (s *Store) Kind() record.Kind { return s.kind }

func (s *Store) Len() int { return len(s.keys) }

// Saves reports how many times the collection has been written since it was opened.
func (s *Store) Saves() int { return s.saves }

// Keys returns the record keys in store order.
func (s *Store) Keys() []string {
	return slices.Clone(s.keys)
}

// Get returns a copy of the record stored under key.
func (s *Store) Get(key string) (record.Record, bool) {
	rec, ok := s.records[key]
	if !ok {
		return record.Record{}, false
	}
	return rec.Clone(), true
}

// Put stores a copy of rec under rec.Key. New keys are appended to the order.
func (s *Store) Put(rec record.Record) {
	if _, exists := s.records[rec.Key]; !exists {
		s.keys = append(s.keys, rec.Key)
	}
	if rec.Aliases == nil {
		rec.Aliases = []string{}
	}
	s.records[rec.Key] = rec.Clone()
}

// Records returns copies of every record in store order.
func (s *Store) Records() []record.Record {
	out := make([]record.Record, 0, len(s.keys))
	for _, key := range s.keys {
		out = append(out, s.records[key].Clone())
	}
	return out
}

// Backup copies the current file to <path>.bak before a run mutates it.
func (s *Store) Backup() (bool, error) {
	return fileutil.BackupFile(s.path, BackupSuffix)
}

// Save writes the whole collection atomically.
func (s *Store) Save() error {
	if s.readOnly {
		return services.Wrap(services.ErrValidation, "store", "save", "store opened read-only", nil)
	}
	data, err := s.Marshal()
	if err != nil {
		return services.Wrap(services.ErrValidation, "store", "marshal", s.path, err)
	}
	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return services.Wrap(services.ErrConfiguration, "store", "save", s.path, err)
	}
	s.saves++
	s.logger.Debug("collection saved",
		logging.String("path", s.path),
		logging.Int("record_count", len(s.keys)))
	return nil
}

// Marshal renders the collection as indented JSON in store order.
func (s *Store) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if len(s.keys) == 0 {
		buf.WriteString("{}\n")
		return buf.Bytes(), nil
	}
	buf.WriteString("{\n")
	for i, key := range s.keys {
		encodedKey, err := encode(key, "")
		if err != nil {
			return nil, err
		}
		body, err := encode(s.records[key], "  ")
		if err != nil {
			return nil, err
		}
		buf.WriteString("  ")
		buf.Write(encodedKey)
		buf.WriteString(": ")
		buf.Write(body)
		if i < len(s.keys)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func encode(value any, prefix string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if prefix != "" {
		enc.SetIndent(prefix, "  ")
	}
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (s *Store) load() error {
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("collection file absent, starting empty", logging.String("path", s.path))
			return nil
		}
		return services.Wrap(services.ErrConfiguration, "store", "open", s.path, err)
	}
	defer file.Close()

	dec := json.NewDecoder(file)
	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return services.Wrap(services.ErrValidation, "store", "parse", s.path, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return services.Wrap(services.ErrValidation, "store", "parse",
			fmt.Sprintf("%s: expected a JSON object of records", s.path), nil)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return services.Wrap(services.ErrValidation, "store", "parse", s.path, err)
		}
		key, ok := tok.(string)
		if !ok {
			return services.Wrap(services.ErrValidation, "store", "parse",
				fmt.Sprintf("%s: expected record key, got %v", s.path, tok), nil)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return services.Wrap(services.ErrValidation, "store", "parse", s.path, err)
		}
		rec, err := record.Decode(key, raw)
		if err != nil {
			return services.Wrap(services.ErrValidation, "store", "parse", s.path, err)
		}
		if _, dup := s.records[key]; dup {
			logging.WarnWithContext(s.logger, "duplicate key in collection file", "store_duplicate_key",
				logging.String(logging.FieldRecordKey, key),
				logging.String(logging.FieldImpact, "later entry wins"),
				logging.String(logging.FieldErrorHint, "remove the duplicate from the file"))
		}
		s.Put(rec)
	}
	if _, err := dec.Token(); err != nil {
		return services.Wrap(services.ErrValidation, "store", "parse", s.path, err)
	}

	s.logger.Debug("collection loaded",
		logging.String("path", s.path),
		logging.Int("record_count", len(s.keys)))
	return nil
}
