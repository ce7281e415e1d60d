package banlist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"kbmatch/internal/fileutil"
	"kbmatch/internal/logging"
	"kbmatch/internal/reconcile"
	"kbmatch/internal/record"
	"kbmatch/internal/services"
)

var qidPattern = regexp.MustCompile(`^Q[0-9]+$`)

// Entry is one banned entity.
type Entry struct {
	QID     string    `json:"qid"`
	Note    string    `json:"note,omitempty"`
	AddedAt time.Time `json:"added_at,omitzero"`
	// Builtin marks entries that come from configuration rather than the file.
	Builtin bool `json:"-"`
}

type fileFormat struct {
	Banned []Entry `json:"banned"`
}

// List answers ban lookups by QID, so IRIs under any prefix match.
type List struct {
	path   string
	logger *slog.Logger

	mu       sync.RWMutex
	builtin  []Entry
	entries  []Entry
	loaded   time.Time
	now      func() time.Time
	loadErrs int
}

var _ reconcile.Banned = (*List)(nil)

// New builds a list from configured defaults and the file at path. An empty
// path disables the file.
func New(defaults []string, path string, logger *slog.Logger) (*List, error) {
	l := &List{
		path:   strings.TrimSpace(path),
		logger: logging.NewComponentLogger(logger, "banlist"),
		now:    time.Now,
	}
	for _, value := range defaults {
		qid, ok := ParseID(value)
		if !ok {
			return nil, services.Wrap(services.ErrConfiguration, "banlist", "defaults",
				fmt.Sprintf("invalid banned entry %q", value), nil)
		}
		if !containsQID(l.builtin, qid) {
			l.builtin = append(l.builtin, Entry{QID: qid, Builtin: true})
		}
	}
	if err := l.ensureLoaded(); err != nil {
		return nil, err
	}
	return l, nil
}

// ParseID accepts a QID or an entity IRI and returns the QID.
func ParseID(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	if strings.Contains(trimmed, "/") {
		trimmed = record.QIDFromIRI(trimmed)
	}
	if !qidPattern.MatchString(trimmed) {
		return "", false
	}
	return trimmed, true
}

// Contains reports whether iri (or a bare QID) is banned. A file that fails
// to reload keeps the previously loaded entries.
func (l *List) Contains(iri string) bool {
	qid, ok := ParseID(iri)
	if !ok {
		return false
	}
	if err := l.ensureLoaded(); err != nil {
		l.mu.Lock()
		l.loadErrs++
		first := l.loadErrs == 1
		l.mu.Unlock()
		if first {
			logging.WarnWithContext(l.logger, "failed to reload banned list", "banlist_reload_failed",
				logging.String("path", l.path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "previously loaded bans stay in effect"),
				logging.String(logging.FieldErrorHint, "fix the JSON in paths.banned_file"))
		}
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return containsQID(l.builtin, qid) || containsQID(l.entries, qid)
}

// Entries returns builtin entries followed by file entries.
func (l *List) Entries() []Entry {
	_ = l.ensureLoaded()
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, 0, len(l.builtin)+len(l.entries))
	out = append(out, l.builtin...)
	out = append(out, l.entries...)
	return out
}

// Add bans id and persists the file. It reports false when id was already banned.
func (l *List) Add(id, note string) (bool, error) {
	qid, ok := ParseID(id)
	if !ok {
		return false, services.Wrap(services.ErrValidation, "banlist", "add",
			fmt.Sprintf("%q is not an entity id", id), nil)
	}
	if l.path == "" {
		return false, services.Wrap(services.ErrConfiguration, "banlist", "add", "paths.banned_file is not set", nil)
	}
	if err := l.ensureLoaded(); err != nil {
		return false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if containsQID(l.builtin, qid) || containsQID(l.entries, qid) {
		return false, nil
	}
	entries := append(slices.Clone(l.entries), Entry{QID: qid, Note: strings.TrimSpace(note), AddedAt: l.now().UTC()})

	data, err := json.MarshalIndent(fileFormat{Banned: entries}, "", "  ")
	if err != nil {
		return false, fmt.Errorf("encode banned list: %w", err)
	}
	data = append(data, '\n')
	if err := fileutil.WriteFileAtomic(l.path, data, 0o644); err != nil {
		return false, services.Wrap(services.ErrConfiguration, "banlist", "save", l.path, err)
	}
	l.entries = entries
	if info, err := os.Stat(l.path); err == nil {
		l.loaded = info.ModTime()
	}
	l.logger.Info("entity banned", logging.String("qid", qid))
	return true, nil
}

func (l *List) ensureLoaded() error {
	if l.path == "" {
		return nil
	}
	info, err := os.Stat(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	l.mu.RLock()
	alreadyLoaded := !l.loaded.IsZero() && l.loaded.Equal(info.ModTime())
	l.mu.RUnlock()
	if alreadyLoaded {
		return nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return err
	}
	entries, err := parseEntries(data)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "banlist", "parse", l.path, err)
	}

	l.mu.Lock()
	l.entries = entries
	l.loaded = info.ModTime()
	l.mu.Unlock()
	l.logger.Debug("loaded banned list", logging.String("path", l.path), logging.Int("count", len(entries)))
	return nil
}

// parseEntries accepts {"banned": [...]} or a bare array of ids.
func parseEntries(data []byte) ([]Entry, error) {
	data = bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var raw []Entry
	if data[0] == '{' {
		var wrapper fileFormat
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, err
		}
		raw = wrapper.Banned
	} else {
		var ids []string
		if err := json.Unmarshal(data, &ids); err != nil {
			return nil, err
		}
		for _, id := range ids {
			raw = append(raw, Entry{QID: id})
		}
	}

	entries := make([]Entry, 0, len(raw))
	for _, entry := range raw {
		qid, ok := ParseID(entry.QID)
		if !ok {
			return nil, fmt.Errorf("invalid banned entry %q", entry.QID)
		}
		if containsQID(entries, qid) {
			continue
		}
		entry.QID = qid
		entry.Note = strings.TrimSpace(entry.Note)
		entries = append(entries, entry)
	}
	return entries, nil
}

func containsQID(entries []Entry, qid string) bool {
	return slices.ContainsFunc(entries, func(e Entry) bool { return e.QID == qid })
}
