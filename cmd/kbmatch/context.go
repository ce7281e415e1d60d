package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"kbmatch/internal/config"
	"kbmatch/internal/logging"
	"kbmatch/internal/reconcile"
	"kbmatch/internal/record"
	"kbmatch/internal/services"
	"kbmatch/internal/store"
	"kbmatch/internal/wikidata"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// openStores locks both collections for writing. The caller closes them.
func (c *commandContext) openStores(logger *slog.Logger) (*store.Store, *store.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	people, err := store.Open(cfg.Paths.PeopleFile, record.KindPerson, logger)
	if err != nil {
		return nil, nil, err
	}
	places, err := store.Open(cfg.Paths.PlacesFile, record.KindPlace, logger)
	if err != nil {
		_ = people.Close()
		return nil, nil, err
	}
	return people, places, nil
}

// loadStore reads one collection without locking it.
func (c *commandContext) loadStore(kind record.Kind) (*store.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	path := cfg.Paths.PeopleFile
	if kind == record.KindPlace {
		path = cfg.Paths.PlacesFile
	}
	return store.Load(path, kind, logging.NewNop())
}

func (c *commandContext) newSource(logger *slog.Logger) (*reconcile.WikidataSource, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	client, err := wikidata.New(cfg.Wikidata.Endpoint,
		wikidata.WithRateLimit(cfg.Wikidata.RequestsPerSecond, 1),
		wikidata.WithTimeout(cfg.QueryTimeout()),
		wikidata.WithUserAgent(cfg.Wikidata.UserAgent),
		wikidata.WithLanguages(cfg.Wikidata.Languages...),
		wikidata.WithEntityPrefix(cfg.Wikidata.EntityPrefix),
		wikidata.WithExcludedContinent(cfg.Wikidata.ExcludedContinent),
	)
	if err != nil {
		return nil, err
	}
	classes := reconcile.Classes{Person: cfg.Wikidata.PersonClass, Place: cfg.Wikidata.PlaceClass}
	return reconcile.NewWikidataSource(client, classes, logger), nil
}

func parseCollectionArg(value string) (record.Kind, error) {
	kind, ok := record.ParseKind(value)
	if !ok {
		return "", services.Wrap(services.ErrValidation, "cli", "parse collection",
			fmt.Sprintf("unknown collection %q (want people or places)", value), nil)
	}
	return kind, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
