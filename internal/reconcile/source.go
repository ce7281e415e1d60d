package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"kbmatch/internal/logging"
	"kbmatch/internal/record"
	"kbmatch/internal/services"
	"kbmatch/internal/wikidata"
)

// CandidateSource retrieves candidates from the knowledge base. Result order
// is the source's ranking and is preserved.
type CandidateSource interface {
	QueryByExternalID(ctx context.Context, id string, kind record.Kind) ([]Candidate, error)
	QueryByName(ctx context.Context, name string, kind record.Kind) ([]Candidate, error)
	FetchByID(ctx context.Context, qid string) (Candidate, error)
	FetchBirthCountry(ctx context.Context, qid string) (string, bool)
}

// SPARQLClient is the subset of the wikidata client the source relies on.
type SPARQLClient interface {
	SearchByName(ctx context.Context, name, class string) ([]wikidata.Entity, error)
	SearchByVIAF(ctx context.Context, viaf string) ([]wikidata.Entity, error)
	Statements(ctx context.Context, qid string) (wikidata.Entity, bool, error)
	BirthCountry(ctx context.Context, qid string) (string, bool, error)
}

// Classes maps record kinds to the knowledge-base class used to scope searches.
type Classes struct {
	Person string
	Place  string
}

func (c Classes) forKind(kind record.Kind) string {
	if kind == record.KindPlace {
		return c.Place
	}
	return c.Person
}

const defaultCacheTTL = 10 * time.Minute

type cacheEntry struct {
	candidates []Candidate
	expires    time.Time
}

// WikidataSource adapts a SPARQL client to CandidateSource and memoizes
// queries for the length of a run, so the same VIAF lookup repeated for every
// name variant hits the network once.
type WikidataSource struct {
	client  SPARQLClient
	classes Classes
	logger  *slog.Logger
	ttl     time.Duration
	now     func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

var _ CandidateSource = (*WikidataSource)(nil)

// NewWikidataSource builds a caching source over client.
func NewWikidataSource(client SPARQLClient, classes Classes, logger *slog.Logger) *WikidataSource {
	return &WikidataSource{
		client:  client,
		classes: classes,
		logger:  logging.NewComponentLogger(logger, "candidate-source"),
		ttl:     defaultCacheTTL,
		now:     time.Now,
		cache:   make(map[string]cacheEntry),
	}
}

func (s *WikidataSource) QueryByExternalID(ctx context.Context, id string, kind record.Kind) ([]Candidate, error) {
	id = strings.TrimSpace(id)
	key := "viaf|" + id
	return s.cached(ctx, key, func() ([]wikidata.Entity, error) {
		return s.client.SearchByVIAF(ctx, id)
	})
}

func (s *WikidataSource) QueryByName(ctx context.Context, name string, kind record.Kind) ([]Candidate, error) {
	name = strings.TrimSpace(name)
	class := s.classes.forKind(kind)
	key := fmt.Sprintf("name|%s|%s", class, strings.ToLower(name))
	return s.cached(ctx, key, func() ([]wikidata.Entity, error) {
		return s.client.SearchByName(ctx, name, class)
	})
}

// FetchByID returns full details for qid, or an ErrNotFound error when the
// knowledge base has no such entity.
func (s *WikidataSource) FetchByID(ctx context.Context, qid string) (Candidate, error) {
	entity, found, err := s.client.Statements(ctx, qid)
	if err != nil {
		return Candidate{}, err
	}
	if !found {
		return Candidate{}, services.Wrap(services.ErrNotFound, "candidate-source", "fetch",
			fmt.Sprintf("entity %s not found", qid), nil)
	}
	return NormalizeCandidate(entity), nil
}

// FetchBirthCountry never fails; lookup errors are logged and reported as absent.
func (s *WikidataSource) FetchBirthCountry(ctx context.Context, qid string) (string, bool) {
	country, ok, err := s.client.BirthCountry(ctx, qid)
	if err != nil {
		s.logger.Debug("birth country lookup failed",
			logging.String("qid", qid),
			logging.Error(err))
		return "", false
	}
	return country, ok
}

func (s *WikidataSource) cached(ctx context.Context, key string, query func() ([]wikidata.Entity, error)) ([]Candidate, error) {
	now := s.now()
	s.mu.Lock()
	if entry, ok := s.cache[key]; ok && now.Before(entry.expires) {
		s.mu.Unlock()
		s.logger.Debug("candidate cache hit", logging.String("query", key))
		return cloneCandidates(entry.candidates), nil
	}
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entities, err := query()
	if err != nil {
		return nil, err
	}
	candidates := NormalizeCandidates(entities)

	s.mu.Lock()
	s.cache[key] = cacheEntry{candidates: candidates, expires: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return cloneCandidates(candidates), nil
}

func cloneCandidates(in []Candidate) []Candidate {
	out := make([]Candidate, len(in))
	copy(out, in)
	return out
}
