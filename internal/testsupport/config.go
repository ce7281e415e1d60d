package testsupport

import (
	"path/filepath"
	"testing"

	"kbmatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose data, log and journal paths live in a
// fresh temp directory. The SPARQL endpoint points nowhere until overridden.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	dataDir := filepath.Join(base, "data")
	cfgVal.Paths.DataDir = dataDir
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.PeopleFile = filepath.Join(dataDir, "people.json")
	cfgVal.Paths.PlacesFile = filepath.Join(dataDir, "places.json")
	cfgVal.Paths.PeopleCSV = filepath.Join(dataDir, "people.csv")
	cfgVal.Paths.PlacesCSV = filepath.Join(dataDir, "places.csv")
	cfgVal.Paths.BannedFile = filepath.Join(dataDir, "banned.json")
	cfgVal.Journal.Path = filepath.Join(dataDir, "journal.db")
	cfgVal.Wikidata.Endpoint = "http://127.0.0.1:0/sparql"
	cfgVal.Wikidata.RequestsPerSecond = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithEndpoint points the config at a fake SPARQL server.
func WithEndpoint(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Wikidata.Endpoint = url
	}
}

// WithoutJournal disables the decision journal.
func WithoutJournal() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Journal.Enabled = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
