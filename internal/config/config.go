package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains store, import, and log locations.
type Paths struct {
	DataDir    string `toml:"data_dir"`
	PeopleFile string `toml:"people_file"`
	PlacesFile string `toml:"places_file"`
	PeopleCSV  string `toml:"people_csv"`
	PlacesCSV  string `toml:"places_csv"`
	BannedFile string `toml:"banned_file"`
	LogDir     string `toml:"log_dir"`
}

// Wikidata contains configuration for the SPARQL query service.
type Wikidata struct {
	Endpoint          string   `toml:"endpoint"`
	EntityPrefix      string   `toml:"entity_prefix"`
	UserAgent         string   `toml:"user_agent"`
	TimeoutSeconds    int      `toml:"timeout_seconds"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	Languages         []string `toml:"languages"`
	PersonClass       string   `toml:"person_class"`
	PlaceClass        string   `toml:"place_class"`
	ExcludedContinent string   `toml:"excluded_continent"`
}

// Matching contains the knobs of the reconciliation rules.
type Matching struct {
	// BirthYearCutoff resets any resolved person born after this year.
	BirthYearCutoff int `toml:"birth_year_cutoff"`
	// Banned lists entity IRIs (or bare QIDs) that are never offered as candidates.
	Banned []string `toml:"banned"`
	// ConfirmVIAFMatches prompts the operator even for VIAF hits; by default they are accepted.
	ConfirmVIAFMatches bool `toml:"confirm_viaf_matches"`
	// ReportBirthCountry prints the birth country of resolved people born outside the excluded continent.
	ReportBirthCountry bool `toml:"report_birth_country"`
}

// Run contains the per-invocation processing switches. CLI flags override them.
type Run struct {
	ImportFromSource bool   `toml:"import_from_source"`
	SearchPeople     bool   `toml:"search_people"`
	SearchPlaces     bool   `toml:"search_places"`
	UpdateAll        bool   `toml:"update_all"`
	StartFrom        string `toml:"start_from"`
}

// Journal contains configuration for the SQLite decision journal.
type Journal struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Notifications contains configuration for ntfy push messages.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for kbmatch.
//
// Configuration sections by subsystem:
//   - Paths: record stores, CSV import sources, banned list, logs
//   - Wikidata: SPARQL endpoint, pacing, label languages, class discriminators
//   - Matching: plausibility cutoff and candidate filtering
//   - Run: which collections to process and how
//   - Journal: SQLite decision history
//   - Notifications: optional ntfy push when a run ends
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Wikidata      Wikidata      `toml:"wikidata"`
	Matching      Matching      `toml:"matching"`
	Run           Run           `toml:"run"`
	Journal       Journal       `toml:"journal"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("kbmatch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Journal.Enabled && strings.TrimSpace(c.Journal.Path) != "" {
		if err := os.MkdirAll(filepath.Dir(c.Journal.Path), 0o755); err != nil {
			return fmt.Errorf("create journal directory: %w", err)
		}
	}
	return nil
}

// NotificationTimeout bounds one ntfy request.
func (c *Config) NotificationTimeout() time.Duration {
	return time.Duration(c.Notifications.RequestTimeoutSeconds) * time.Second
}

// QueryTimeout bounds every knowledge-base call.
func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.Wikidata.TimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
