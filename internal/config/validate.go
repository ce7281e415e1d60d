package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var entityIDPattern = regexp.MustCompile(`^Q[0-9]+$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateWikidata(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.PeopleFile != "" && c.Paths.PeopleFile == c.Paths.PlacesFile {
		return errors.New("paths.people_file and paths.places_file must differ")
	}
	return nil
}

func (c *Config) validateWikidata() error {
	parsed, err := url.Parse(c.Wikidata.Endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("wikidata.endpoint must be an absolute URL, got %q", c.Wikidata.Endpoint)
	}
	if !strings.HasSuffix(c.Wikidata.EntityPrefix, "/") {
		return fmt.Errorf("wikidata.entity_prefix must end with '/', got %q", c.Wikidata.EntityPrefix)
	}
	for name, value := range map[string]string{
		"wikidata.person_class": c.Wikidata.PersonClass,
		"wikidata.place_class":  c.Wikidata.PlaceClass,
	} {
		if !entityIDPattern.MatchString(value) {
			return fmt.Errorf("%s must be an entity id like Q5, got %q", name, value)
		}
	}
	if c.Wikidata.ExcludedContinent != "" && !entityIDPattern.MatchString(c.Wikidata.ExcludedContinent) {
		return fmt.Errorf("wikidata.excluded_continent must be an entity id, got %q", c.Wikidata.ExcludedContinent)
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.BirthYearCutoff < 0 {
		return errors.New("matching.birth_year_cutoff must be positive")
	}
	for _, entry := range c.Matching.Banned {
		if entityIDPattern.MatchString(entry) {
			continue
		}
		if strings.HasPrefix(entry, c.Wikidata.EntityPrefix) && entityIDPattern.MatchString(strings.TrimPrefix(entry, c.Wikidata.EntityPrefix)) {
			continue
		}
		return fmt.Errorf("matching.banned entry %q is neither an entity IRI nor a QID", entry)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.NtfyTopic == "" {
		return nil
	}
	parsed, err := url.Parse(c.Notifications.NtfyTopic)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("notifications.ntfy_topic must be a full topic URL, got %q", c.Notifications.NtfyTopic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}
