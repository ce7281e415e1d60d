package wikidata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/time/rate"

	"kbmatch/internal/services"
)

const (
	DefaultEndpoint     = "https://query.wikidata.org/sparql"
	DefaultEntityPrefix = "http://www.wikidata.org/entity/"
	defaultTimeout      = 120 * time.Second
	defaultUserAgent    = "kbmatch/dev"
)

// Client executes SPARQL SELECT queries against a Wikidata-compatible endpoint.
type Client struct {
	endpoint          string
	entityPrefix      string
	userAgent         string
	languages         []string
	excludedContinent string
	timeout           time.Duration
	httpClient        *http.Client
	limiter           *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRateLimit paces outbound requests. A non-positive rate disables pacing.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// WithTimeout bounds each query.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every query.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if ua := strings.TrimSpace(userAgent); ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLanguages sets the label service language fallback chain.
func WithLanguages(languages ...string) Option {
	return func(c *Client) {
		if len(languages) > 0 {
			c.languages = append([]string(nil), languages...)
		}
	}
}

// WithEntityPrefix sets the IRI prefix of entities (http://www.wikidata.org/entity/).
func WithEntityPrefix(prefix string) Option {
	return func(c *Client) {
		if prefix = strings.TrimSpace(prefix); prefix != "" {
			c.entityPrefix = prefix
		}
	}
}

// WithExcludedContinent sets the continent whose countries BirthCountry ignores.
func WithExcludedContinent(qid string) Option {
	return func(c *Client) {
		c.excludedContinent = strings.TrimSpace(qid)
	}
}

// New creates a SPARQL client for endpoint.
func New(endpoint string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, services.Wrap(services.ErrConfiguration, "wikidata", "new client",
			fmt.Sprintf("invalid endpoint %q", endpoint), err)
	}
	client := &Client{
		endpoint:     endpoint,
		entityPrefix: DefaultEntityPrefix,
		userAgent:    defaultUserAgent,
		languages:    []string{"[AUTO_LANGUAGE]", "en"},
		timeout:      defaultTimeout,
		httpClient:   &http.Client{},
		limiter:      rate.NewLimiter(rate.Limit(1), 1),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// EntityPrefix returns the IRI prefix used to build and recognize entity IRIs.
func (c *Client) EntityPrefix() string {
	return c.entityPrefix
}

// Select runs a SELECT query and returns its bindings in result order.
func (c *Client) Select(ctx context.Context, query string) ([]Binding, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, services.Wrap(services.ErrTransport, "wikidata", "rate limit", "", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "wikidata", "select", "parse endpoint", err)
	}
	params := endpoint.Query()
	params.Set("query", query)
	params.Set("format", "json")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "wikidata", "select", "build request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/sparql-results+json")
	req.Header.Set("Accept-Encoding", "gzip")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, context.Canceled
		}
		return nil, services.Wrap(services.ErrTransport, "wikidata", "select",
			fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, services.Wrap(services.ErrTransport, "wikidata", "select",
			fmt.Sprintf("endpoint returned %d (latency=%v): %s", resp.StatusCode, latency, strings.TrimSpace(string(snippet))), nil)
	}

	body := io.Reader(resp.Body)
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, services.Wrap(services.ErrTransport, "wikidata", "select", "open gzip body", err)
		}
		defer gz.Close()
		body = gz
	}

	var payload response
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return nil, services.Wrap(services.ErrTransport, "wikidata", "select", "decode response", err)
	}
	return payload.Results.Bindings, nil
}

// SearchByName runs the entity search service for name, restricted to
// instances (or subclass instances) of class. Results keep the search ranking.
func (c *Client) SearchByName(ctx context.Context, name, class string) ([]Entity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, services.Wrap(services.ErrValidation, "wikidata", "search by name", "name must not be empty", nil)
	}
	if !IsQID(class) {
		return nil, services.Wrap(services.ErrValidation, "wikidata", "search by name",
			fmt.Sprintf("invalid class %q", class), nil)
	}
	bindings, err := c.Select(ctx, c.nameSearchQuery(name, class))
	if err != nil {
		return nil, err
	}
	return entitiesFromBindings(bindings), nil
}

// SearchByVIAF returns entities whose VIAF identifier (P214) equals viaf.
func (c *Client) SearchByVIAF(ctx context.Context, viaf string) ([]Entity, error) {
	viaf = strings.TrimSpace(viaf)
	if viaf == "" {
		return nil, services.Wrap(services.ErrValidation, "wikidata", "search by viaf", "viaf must not be empty", nil)
	}
	bindings, err := c.Select(ctx, c.viafQuery(viaf))
	if err != nil {
		return nil, err
	}
	return entitiesFromBindings(bindings), nil
}

// Statements fetches the full detail of one entity. found is false when the
// entity does not exist or has no instance-of statement.
func (c *Client) Statements(ctx context.Context, qid string) (Entity, bool, error) {
	qid = strings.TrimSpace(qid)
	if !IsQID(qid) {
		return Entity{}, false, services.Wrap(services.ErrValidation, "wikidata", "statements",
			fmt.Sprintf("invalid entity id %q", qid), nil)
	}
	bindings, err := c.Select(ctx, c.statementsQuery(qid))
	if err != nil {
		return Entity{}, false, err
	}
	entities := entitiesFromBindings(bindings)
	if len(entities) == 0 {
		return Entity{IRI: c.entityPrefix + qid}, false, nil
	}
	entity := entities[0]
	if entity.IRI == "" {
		entity.IRI = c.entityPrefix + qid
	}
	return entity, true, nil
}

// BirthCountry returns the label of the country of the entity's place of
// birth, skipping countries on the excluded continent.
func (c *Client) BirthCountry(ctx context.Context, qid string) (string, bool, error) {
	qid = strings.TrimSpace(qid)
	if !IsQID(qid) {
		return "", false, services.Wrap(services.ErrValidation, "wikidata", "birth country",
			fmt.Sprintf("invalid entity id %q", qid), nil)
	}
	bindings, err := c.Select(ctx, c.birthCountryQuery(qid))
	if err != nil {
		return "", false, err
	}
	for _, binding := range bindings {
		if label := binding.Value("countryLabel"); label != "" {
			return label, true, nil
		}
	}
	return "", false, nil
}
