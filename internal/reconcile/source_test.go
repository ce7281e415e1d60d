package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"kbmatch/internal/record"
	"kbmatch/internal/services"
	"kbmatch/internal/wikidata"
)

type fakeClient struct {
	nameCalls  int
	viafCalls  int
	classes    []string
	entities   []wikidata.Entity
	statements map[string]wikidata.Entity
	countryErr error
}

func (f *fakeClient) SearchByName(_ context.Context, _ string, class string) ([]wikidata.Entity, error) {
	f.nameCalls++
	f.classes = append(f.classes, class)
	return f.entities, nil
}

func (f *fakeClient) SearchByVIAF(context.Context, string) ([]wikidata.Entity, error) {
	f.viafCalls++
	return f.entities, nil
}

func (f *fakeClient) Statements(_ context.Context, qid string) (wikidata.Entity, bool, error) {
	entity, ok := f.statements[qid]
	return entity, ok, nil
}

func (f *fakeClient) BirthCountry(context.Context, string) (string, bool, error) {
	if f.countryErr != nil {
		return "", false, f.countryErr
	}
	return "Ireland", true, nil
}

func TestWikidataSourceCachesQueries(t *testing.T) {
	client := &fakeClient{entities: []wikidata.Entity{{IRI: testPrefix + "Q1", Label: "One"}, {IRI: testPrefix + "Q2", Label: "Two"}}}
	source := NewWikidataSource(client, Classes{Person: "Q5", Place: "Q27096213"}, nil)
	ctx := context.Background()

	for range 3 {
		got, err := source.QueryByExternalID(ctx, "123", record.KindPerson)
		if err != nil {
			t.Fatalf("QueryByExternalID: %v", err)
		}
		if len(got) != 2 || got[0].QID != "Q1" || got[1].QID != "Q2" {
			t.Fatalf("order not preserved: %+v", got)
		}
	}
	if client.viafCalls != 1 {
		t.Fatalf("viaf calls = %d, want 1", client.viafCalls)
	}

	if _, err := source.QueryByName(ctx, "London", record.KindPlace); err != nil {
		t.Fatalf("QueryByName: %v", err)
	}
	if _, err := source.QueryByName(ctx, "london", record.KindPlace); err != nil {
		t.Fatalf("QueryByName: %v", err)
	}
	if _, err := source.QueryByName(ctx, "London", record.KindPerson); err != nil {
		t.Fatalf("QueryByName: %v", err)
	}
	if client.nameCalls != 2 {
		t.Fatalf("name calls = %d, want 2", client.nameCalls)
	}
	if client.classes[0] != "Q27096213" || client.classes[1] != "Q5" {
		t.Fatalf("classes = %v", client.classes)
	}
}

func TestWikidataSourceCacheExpires(t *testing.T) {
	client := &fakeClient{}
	source := NewWikidataSource(client, Classes{Person: "Q5"}, nil)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	source.now = func() time.Time { return now }

	_, _ = source.QueryByName(context.Background(), "Ada", record.KindPerson)
	now = now.Add(defaultCacheTTL + time.Second)
	_, _ = source.QueryByName(context.Background(), "Ada", record.KindPerson)
	if client.nameCalls != 2 {
		t.Fatalf("name calls = %d, want 2", client.nameCalls)
	}
}

func TestWikidataSourceFetchByID(t *testing.T) {
	client := &fakeClient{statements: map[string]wikidata.Entity{
		"Q42": {IRI: testPrefix + "Q42", Label: "Douglas Adams", Gender: "male"},
	}}
	source := NewWikidataSource(client, Classes{}, nil)

	got, err := source.FetchByID(context.Background(), "Q42")
	if err != nil {
		t.Fatalf("FetchByID: %v", err)
	}
	if record.Deref(got.Gender) != GenderMan {
		t.Fatalf("gender = %v", record.Deref(got.Gender))
	}
	if _, err := source.FetchByID(context.Background(), "Q0"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestWikidataSourceBirthCountryNeverFails(t *testing.T) {
	client := &fakeClient{countryErr: errors.New("boom")}
	source := NewWikidataSource(client, Classes{}, nil)
	if country, ok := source.FetchBirthCountry(context.Background(), "Q1"); ok || country != "" {
		t.Fatalf("got %q, %v", country, ok)
	}
	client.countryErr = nil
	if country, ok := source.FetchBirthCountry(context.Background(), "Q1"); !ok || country != "Ireland" {
		t.Fatalf("got %q, %v", country, ok)
	}
}
