package config

const (
	defaultConfigPath          = "~/.config/kbmatch/config.toml"
	defaultDataDir             = "~/.local/share/kbmatch"
	defaultLogDir              = "~/.local/share/kbmatch/logs"
	defaultPeopleFileName      = "people.json"
	defaultPlacesFileName      = "places.json"
	defaultPeopleCSVName       = "people.csv"
	defaultPlacesCSVName       = "places.csv"
	defaultBannedFileName      = "banned.json"
	defaultJournalFileName     = "journal.db"
	defaultWikidataEndpoint    = "https://query.wikidata.org/sparql"
	defaultEntityPrefix        = "http://www.wikidata.org/entity/"
	defaultUserAgent           = "kbmatch/dev (entity reconciliation)"
	defaultTimeoutSeconds      = 120
	defaultRequestsPerSecond   = 1.0
	defaultPersonClass         = "Q5"
	defaultPlaceClass          = "Q27096213"
	defaultExcludedContinent   = "Q46"
	defaultBirthYearCutoff     = 1743
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultSearchPeople        = true
	defaultSearchPlaces        = false
	defaultJournalEnabled      = true
	defaultNtfyTimeout         = 10
)

// defaultBanned lists entities that repeatedly surfaced as wrong matches.
var defaultBanned = []string{
	"http://www.wikidata.org/entity/Q1195653",
	"http://www.wikidata.org/entity/Q2447888",
	"http://www.wikidata.org/entity/Q2691454",
	"http://www.wikidata.org/entity/Q3301358",
	"http://www.wikidata.org/entity/Q3487832",
	"http://www.wikidata.org/entity/Q5457358",
	"http://www.wikidata.org/entity/Q5518251",
	"http://www.wikidata.org/entity/Q5645737",
	"http://www.wikidata.org/entity/Q7506702",
	"http://www.wikidata.org/entity/Q7721368",
	"http://www.wikidata.org/entity/Q10314624",
	"http://www.wikidata.org/entity/Q16993690",
	"http://www.wikidata.org/entity/Q20523028",
	"http://www.wikidata.org/entity/Q24065083",
	"http://www.wikidata.org/entity/Q60838490",
}

func defaultLanguages() []string {
	return []string{"[AUTO_LANGUAGE]", "en", "la", "it", "fr", "es", "de"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	banned := make([]string, len(defaultBanned))
	copy(banned, defaultBanned)
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Wikidata: Wikidata{
			Endpoint:          defaultWikidataEndpoint,
			EntityPrefix:      defaultEntityPrefix,
			UserAgent:         defaultUserAgent,
			TimeoutSeconds:    defaultTimeoutSeconds,
			RequestsPerSecond: defaultRequestsPerSecond,
			Languages:         defaultLanguages(),
			PersonClass:       defaultPersonClass,
			PlaceClass:        defaultPlaceClass,
			ExcludedContinent: defaultExcludedContinent,
		},
		Matching: Matching{
			BirthYearCutoff: defaultBirthYearCutoff,
			Banned:          banned,
		},
		Run: Run{
			SearchPeople: defaultSearchPeople,
			SearchPlaces: defaultSearchPlaces,
		},
		Journal: Journal{
			Enabled: defaultJournalEnabled,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
