package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeWikidata()
	c.normalizeMatching()
	c.Run.StartFrom = strings.TrimSpace(c.Run.StartFrom)
	if err := c.normalizeJournal(); err != nil {
		return err
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyTimeout
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}

	dataFiles := []struct {
		field    *string
		fallback string
		name     string
	}{
		{&c.Paths.PeopleFile, defaultPeopleFileName, "paths.people_file"},
		{&c.Paths.PlacesFile, defaultPlacesFileName, "paths.places_file"},
		{&c.Paths.PeopleCSV, defaultPeopleCSVName, "paths.people_csv"},
		{&c.Paths.PlacesCSV, defaultPlacesCSVName, "paths.places_csv"},
		{&c.Paths.BannedFile, defaultBannedFileName, "paths.banned_file"},
	}
	for _, entry := range dataFiles {
		value := strings.TrimSpace(*entry.field)
		if value == "" {
			value = filepath.Join(c.Paths.DataDir, entry.fallback)
		}
		if *entry.field, err = expandPath(value); err != nil {
			return fmt.Errorf("%s: %w", entry.name, err)
		}
	}
	return nil
}

func (c *Config) normalizeWikidata() {
	c.Wikidata.Endpoint = strings.TrimSpace(c.Wikidata.Endpoint)
	if c.Wikidata.Endpoint == "" {
		c.Wikidata.Endpoint = defaultWikidataEndpoint
	}
	c.Wikidata.EntityPrefix = strings.TrimSpace(c.Wikidata.EntityPrefix)
	if c.Wikidata.EntityPrefix == "" {
		c.Wikidata.EntityPrefix = defaultEntityPrefix
	}
	if value, ok := os.LookupEnv("KBMATCH_USER_AGENT"); ok && strings.TrimSpace(value) != "" {
		c.Wikidata.UserAgent = strings.TrimSpace(value)
	}
	c.Wikidata.UserAgent = strings.TrimSpace(c.Wikidata.UserAgent)
	if c.Wikidata.UserAgent == "" {
		c.Wikidata.UserAgent = defaultUserAgent
	}
	if c.Wikidata.TimeoutSeconds <= 0 {
		c.Wikidata.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.Wikidata.RequestsPerSecond < 0 {
		c.Wikidata.RequestsPerSecond = 0
	}
	langs := make([]string, 0, len(c.Wikidata.Languages))
	seen := make(map[string]struct{}, len(c.Wikidata.Languages))
	for _, lang := range c.Wikidata.Languages {
		trimmed := strings.TrimSpace(lang)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		langs = append(langs, trimmed)
	}
	if len(langs) == 0 {
		langs = defaultLanguages()
	}
	c.Wikidata.Languages = langs
	c.Wikidata.PersonClass = strings.TrimSpace(c.Wikidata.PersonClass)
	if c.Wikidata.PersonClass == "" {
		c.Wikidata.PersonClass = defaultPersonClass
	}
	c.Wikidata.PlaceClass = strings.TrimSpace(c.Wikidata.PlaceClass)
	if c.Wikidata.PlaceClass == "" {
		c.Wikidata.PlaceClass = defaultPlaceClass
	}
	c.Wikidata.ExcludedContinent = strings.TrimSpace(c.Wikidata.ExcludedContinent)
}

func (c *Config) normalizeMatching() {
	if c.Matching.BirthYearCutoff == 0 {
		c.Matching.BirthYearCutoff = defaultBirthYearCutoff
	}
	banned := make([]string, 0, len(c.Matching.Banned))
	seen := make(map[string]struct{}, len(c.Matching.Banned))
	for _, entry := range c.Matching.Banned {
		trimmed := strings.TrimSpace(entry)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		banned = append(banned, trimmed)
	}
	c.Matching.Banned = banned
}

func (c *Config) normalizeJournal() error {
	var err error
	if strings.TrimSpace(c.Journal.Path) == "" {
		c.Journal.Path = filepath.Join(c.Paths.DataDir, defaultJournalFileName)
	}
	if c.Journal.Path, err = expandPath(c.Journal.Path); err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
