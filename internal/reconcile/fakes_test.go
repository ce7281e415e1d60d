package reconcile

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"kbmatch/internal/record"
	"kbmatch/internal/services"
)

const testPrefix = "http://www.wikidata.org/entity/"

func ptr(s string) *string { return &s }

func candidate(qid, label string) Candidate {
	return Candidate{IRI: testPrefix + qid, QID: qid, Label: ptr(label)}
}

type fakeSource struct {
	byName    map[string][]Candidate
	byVIAF    map[string][]Candidate
	byID      map[string]Candidate
	countries map[string]string
	err       error

	nameQueries []string
	viafQueries []string
}

func (f *fakeSource) QueryByExternalID(_ context.Context, id string, _ record.Kind) ([]Candidate, error) {
	f.viafQueries = append(f.viafQueries, id)
	if f.err != nil {
		return nil, f.err
	}
	return slices.Clone(f.byVIAF[id]), nil
}

func (f *fakeSource) QueryByName(_ context.Context, name string, _ record.Kind) ([]Candidate, error) {
	f.nameQueries = append(f.nameQueries, name)
	if f.err != nil {
		return nil, f.err
	}
	return slices.Clone(f.byName[name]), nil
}

func (f *fakeSource) FetchByID(_ context.Context, qid string) (Candidate, error) {
	if f.err != nil {
		return Candidate{}, f.err
	}
	c, ok := f.byID[qid]
	if !ok {
		return Candidate{}, services.Wrap(services.ErrNotFound, "fake", "fetch", qid, nil)
	}
	return c, nil
}

func (f *fakeSource) FetchBirthCountry(_ context.Context, qid string) (string, bool) {
	country, ok := f.countries[qid]
	return country, ok
}

var errUnexpectedPrompt = errors.New("unexpected prompt")

// scriptedPrompter replays canned answers and records what it was asked.
type scriptedPrompter struct {
	responses []Response
	err       error

	presented []Candidate
	noMatch   []string
	names     []string
}

func (p *scriptedPrompter) next() (Response, error) {
	if len(p.responses) == 0 {
		if p.err != nil {
			return Response{}, p.err
		}
		return Response{}, errUnexpectedPrompt
	}
	resp := p.responses[0]
	p.responses = p.responses[1:]
	return resp, nil
}

func (p *scriptedPrompter) Confirm(_ context.Context, name string, c Candidate) (Response, error) {
	p.names = append(p.names, name)
	p.presented = append(p.presented, c)
	return p.next()
}

func (p *scriptedPrompter) ManualID(_ context.Context, name string) (Response, error) {
	p.names = append(p.names, name)
	p.noMatch = append(p.noMatch, name)
	return p.next()
}

func answers(lines ...string) []Response {
	out := make([]Response, 0, len(lines))
	for _, line := range lines {
		out = append(out, ParseResponse(line))
	}
	return out
}

type bannedSet map[string]bool

func (b bannedSet) Contains(iri string) bool { return b[iri] || b[record.QIDFromIRI(iri)] }

// memCollection keeps records in memory and snapshots them on every Save.
type memCollection struct {
	kind      record.Kind
	keys      []string
	records   map[string]record.Record
	saves     int
	persisted map[string]record.Record
	saveErr   error
}

func newMemCollection(kind record.Kind, recs ...record.Record) *memCollection {
	c := &memCollection{kind: kind, records: map[string]record.Record{}, persisted: map[string]record.Record{}}
	for _, rec := range recs {
		if rec.Aliases == nil {
			rec.Aliases = []string{}
		}
		if rec.Name == "" {
			rec.Name = rec.Key
		}
		c.keys = append(c.keys, rec.Key)
		c.records[rec.Key] = rec.Clone()
		c.persisted[rec.Key] = rec.Clone()
	}
	return c
}

func (c *memCollection) Kind() record.Kind { return c.kind }

func (c *memCollection) Keys() []string { return slices.Clone(c.keys) }

func (c *memCollection) Get(key string) (record.Record, bool) {
	rec, ok := c.records[key]
	return rec.Clone(), ok
}

func (c *memCollection) Put(rec record.Record) {
	if _, ok := c.records[rec.Key]; !ok {
		c.keys = append(c.keys, rec.Key)
	}
	c.records[rec.Key] = rec.Clone()
}

func (c *memCollection) Save() error {
	if c.saveErr != nil {
		return c.saveErr
	}
	c.saves++
	for key, rec := range c.records {
		c.persisted[key] = rec.Clone()
	}
	return nil
}

func (c *memCollection) mustPersisted(key string) record.Record {
	rec, ok := c.persisted[key]
	if !ok {
		panic(fmt.Sprintf("no persisted record %q", key))
	}
	return rec
}

type recordingNotifier struct {
	notices  []Notice
	sections []string
}

func (n *recordingNotifier) Notify(notice Notice) { n.notices = append(n.notices, notice) }

func (n *recordingNotifier) Section(title string) { n.sections = append(n.sections, title) }

type recordingJournal struct{ entries []DecisionEntry }

func (j *recordingJournal) RecordDecision(_ context.Context, entry DecisionEntry) error {
	j.entries = append(j.entries, entry)
	return nil
}
