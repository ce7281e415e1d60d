package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"kbmatch/internal/record"
	"kbmatch/internal/testsupport"
)

const smithPayload = `{
  "head": {"vars": ["item", "itemLabel"]},
  "results": {"bindings": [
    {"item": {"type": "uri", "value": "http://www.wikidata.org/entity/Q1"},
     "itemLabel": {"type": "literal", "value": "John Smith"},
     "itemDescription": {"type": "literal", "value": "English antiquary"},
     "birth": {"type": "literal", "value": "1700-01-01T00:00:00Z"},
     "genderLabel": {"type": "literal", "value": "male"}}
  ]}
}`

func TestRunResolvesAndJournalsDecision(t *testing.T) {
	server := newSPARQLServer(t, smithPayload)
	env := setupCLITestEnv(t, testsupport.WithEndpoint(server.URL+"/sparql"))
	testsupport.SeedStore(t, env.cfg.Paths.PeopleFile, record.KindPerson, record.New("Smith, John"))

	out, _, err := runCLI(t, []string{"run", "--people", "--places=false"}, env.configPath, "y\n")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Person Search")
	requireContains(t, out, "Q1 • John Smith • English antiquary")
	requireContains(t, out, "Statistics")

	people := testsupport.MustOpenStore(t, env.cfg.Paths.PeopleFile, record.KindPerson)
	rec, ok := people.Get("Smith, John")
	if !ok {
		t.Fatal("record missing after run")
	}
	if rec.QID() != "Q1" || rec.Name != "John Smith" {
		t.Fatalf("record = %+v", rec)
	}
	_ = people.Close()

	out, _, err = runCLI(t, []string{"history", "--collection", "people"}, env.configPath, "")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "Smith, John")
	requireContains(t, out, "confirm")
	requireContains(t, out, "Q1")
}

func TestRunClosedInputCancels(t *testing.T) {
	server := newSPARQLServer(t, smithPayload)
	env := setupCLITestEnv(t, testsupport.WithEndpoint(server.URL+"/sparql"))
	testsupport.SeedStore(t, env.cfg.Paths.PeopleFile, record.KindPerson, record.New("Smith, John"))

	out, _, err := runCLI(t, []string{"run", "--people"}, env.configPath, "")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if strings.Contains(out, "Statistics") {
		t.Fatalf("interrupted run printed a summary: %q", out)
	}

	people := testsupport.MustOpenStore(t, env.cfg.Paths.PeopleFile, record.KindPerson)
	defer people.Close()
	if rec, _ := people.Get("Smith, John"); rec.Resolved() {
		t.Fatalf("record resolved after interrupt: %+v", rec)
	}
}

func TestRunUnknownStartKeyWarns(t *testing.T) {
	server := newSPARQLServer(t, smithPayload)
	env := setupCLITestEnv(t, testsupport.WithEndpoint(server.URL+"/sparql"))
	testsupport.SeedStore(t, env.cfg.Paths.PeopleFile, record.KindPerson, record.New("Smith, John"))

	out, _, err := runCLI(t, []string{"run", "--start-from", "Nobody"}, env.configPath, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, `"Nobody" not found in people`)
}

func TestRunBannedCandidateOffersManualID(t *testing.T) {
	server := newSPARQLServer(t, smithPayload)
	env := setupCLITestEnv(t, testsupport.WithEndpoint(server.URL+"/sparql"))
	testsupport.SeedStore(t, env.cfg.Paths.PeopleFile, record.KindPerson, record.New("Smith, John"))

	if _, _, err := runCLI(t, []string{"banned", "add", "Q1"}, env.configPath, ""); err != nil {
		t.Fatalf("banned add: %v", err)
	}
	out, _, err := runCLI(t, []string{"run"}, env.configPath, "s\n")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "No matches found")
}

func TestResolveRunOptionsFlagsOverrideConfig(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Run.SearchPlaces = true
	env.cfg.Run.StartFrom = "From Config"

	cmd := newRunCommand(newCommandContext(nil))
	if err := cmd.ParseFlags([]string{"--places=false", "--update-all"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	opts := resolveRunOptions(cmd, env.cfg, runFlags{places: false, updateAll: true})
	if opts.SearchPlaces || !opts.UpdateAll {
		t.Fatalf("flags not applied: %+v", opts)
	}
	if !opts.SearchPeople || opts.StartFrom != "From Config" {
		t.Fatalf("config values lost: %+v", opts)
	}
	if opts.BirthYearCutoff != record.BirthYearCutoff {
		t.Fatalf("cutoff = %d", opts.BirthYearCutoff)
	}
}
