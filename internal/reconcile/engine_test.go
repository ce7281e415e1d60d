package reconcile

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"kbmatch/internal/record"
	"kbmatch/internal/services"
	"kbmatch/internal/store"
)

func person(key string) record.Record {
	return record.New(key)
}

func resolvedPerson(key, qid, name string) record.Record {
	rec := record.New(key)
	rec.Name = name
	rec.IRI = ptr(testPrefix + qid)
	return rec
}

func newTestEngine(source *fakeSource, prompter *scriptedPrompter, banned Banned, opts Options, extra ...EngineOption) *Engine {
	return NewEngine(source, prompter, banned, opts, extra...)
}

func TestRunPeopleResolvesByName(t *testing.T) {
	c := candidate("Q1", "John Smith")
	c.Birth = ptr("1700-01-01")
	c.Gender = ptr("male")
	source := &fakeSource{byName: map[string][]Candidate{"Smith, John": {c}}}
	prompter := &scriptedPrompter{responses: answers("y")}
	coll := newMemCollection(record.KindPerson, person("Smith, John"))

	summary, err := newTestEngine(source, prompter, nil, Options{}).RunPeople(context.Background(), coll)
	if err != nil {
		t.Fatalf("RunPeople: %v", err)
	}
	if summary.Resolved != 1 || summary.Processed != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	got := coll.mustPersisted("Smith, John")
	if record.Deref(got.IRI) != testPrefix+"Q1" || got.Name != "John Smith" {
		t.Fatalf("record = %+v", got)
	}
	if !slices.Equal(got.Aliases, []string{"Smith, John"}) {
		t.Fatalf("aliases = %v", got.Aliases)
	}
	if record.Deref(got.Gender) != GenderMan || record.Deref(got.Birth) != "1700-01-01" {
		t.Fatalf("gender/birth = %v/%v", record.Deref(got.Gender), record.Deref(got.Birth))
	}
}

func TestRunPeopleDeclineTriesNextVariant(t *testing.T) {
	source := &fakeSource{byName: map[string][]Candidate{
		"John De La Cruz": {candidate("Q1", "Wrong"), candidate("Q3", "Never shown")},
		"John de la Cruz": {candidate("Q2", "John de la Cruz")},
	}}
	prompter := &scriptedPrompter{responses: answers("n", "y")}
	coll := newMemCollection(record.KindPerson, person("john de la cruz"))

	if _, err := newTestEngine(source, prompter, nil, Options{}).RunPeople(context.Background(), coll); err != nil {
		t.Fatalf("RunPeople: %v", err)
	}
	if len(prompter.presented) != 2 || prompter.presented[0].QID != "Q1" || prompter.presented[1].QID != "Q2" {
		t.Fatalf("presented = %+v", prompter.presented)
	}
	if got := coll.mustPersisted("john de la cruz"); record.Deref(got.IRI) != testPrefix+"Q2" {
		t.Fatalf("iri = %v", record.Deref(got.IRI))
	}
}

func TestRunPeopleSkipStopsRecord(t *testing.T) {
	source := &fakeSource{byName: map[string][]Candidate{
		"John De La Cruz": {candidate("Q1", "Wrong")},
		"John de la Cruz": {candidate("Q2", "Right")},
	}}
	prompter := &scriptedPrompter{responses: answers("s")}
	coll := newMemCollection(record.KindPerson, person("john de la cruz"))

	summary, err := newTestEngine(source, prompter, nil, Options{}).RunPeople(context.Background(), coll)
	if err != nil {
		t.Fatalf("RunPeople: %v", err)
	}
	if summary.Skipped != 1 || len(source.nameQueries) != 1 {
		t.Fatalf("summary = %+v queries = %v", summary, source.nameQueries)
	}
	if coll.mustPersisted("john de la cruz").Resolved() {
		t.Fatal("skipped record must stay unresolved")
	}
}

func TestRunPeopleBannedOnlyCandidateLeavesUnresolved(t *testing.T) {
	source := &fakeSource{byName: map[string][]Candidate{"Ada Byron": {candidate("Q5", "human")}}}
	prompter := &scriptedPrompter{responses: answers("")}
	coll := newMemCollection(record.KindPerson, person("Ada Byron"))

	if _, err := newTestEngine(source, prompter, bannedSet{"Q5": true}, Options{}).RunPeople(context.Background(), coll); err != nil {
		t.Fatalf("RunPeople: %v", err)
	}
	if len(prompter.presented) != 0 || len(prompter.noMatch) != 1 {
		t.Fatalf("prompts: presented=%v noMatch=%v", prompter.presented, prompter.noMatch)
	}
	if coll.mustPersisted("Ada Byron").Resolved() {
		t.Fatal("record must remain unresolved")
	}
	if coll.saves != 0 {
		t.Fatalf("saves = %d, want 0", coll.saves)
	}
}

func TestRunPeopleViafAutoAccept(t *testing.T) {
	rec := person("Byron")
	rec.VIAF = ptr("95230794")
	source := &fakeSource{byVIAF: map[string][]Candidate{"95230794": {candidate("Q5679", "Lord Byron")}}}
	notifier := &recordingNotifier{}
	journal := &recordingJournal{}
	coll := newMemCollection(record.KindPerson, rec)

	engine := newTestEngine(source, &scriptedPrompter{}, nil, Options{}, WithNotifier(notifier), WithRecorder(journal))
	if _, err := engine.RunPeople(context.Background(), coll); err != nil {
		t.Fatalf("RunPeople: %v", err)
	}
	got := coll.mustPersisted("Byron")
	if record.Deref(got.IRI) != testPrefix+"Q5679" {
		t.Fatalf("iri = %v", record.Deref(got.IRI))
	}
	if len(source.nameQueries) != 0 {
		t.Fatalf("name search should not run: %v", source.nameQueries)
	}
	if len(notifier.notices) != 1 {
		t.Fatalf("notices = %+v", notifier.notices)
	}
	// The adopted label "Lord Byron" also yields a gender.
	if len(journal.entries) != 2 || journal.entries[0].Decision != "auto" || journal.entries[0].Source != SourceVIAF || journal.entries[1].Source != SourceHeuristic {
		t.Fatalf("journal = %+v", journal.entries)
	}
}

func TestRunPeopleViafConfirmFallsBackToName(t *testing.T) {
	rec := person("Byron")
	rec.VIAF = ptr("1")
	source := &fakeSource{
		byVIAF: map[string][]Candidate{"1": {candidate("Q1", "Wrong Byron")}},
		byName: map[string][]Candidate{"Byron": {candidate("Q2", "Right Byron")}},
	}
	prompter := &scriptedPrompter{responses: answers("n", "y")}
	coll := newMemCollection(record.KindPerson, rec)

	engine := newTestEngine(source, prompter, nil, Options{ConfirmVIAF: true})
	if _, err := engine.RunPeople(context.Background(), coll); err != nil {
		t.Fatalf("RunPeople: %v", err)
	}
	if got := coll.mustPersisted("Byron"); record.Deref(got.IRI) != testPrefix+"Q2" {
		t.Fatalf("iri = %v", record.Deref(got.IRI))
	}
}

func TestRunPeopleEmptyViafFallsBackToName(t *testing.T) {
	rec := person("Byron")
	rec.VIAF = ptr("1")
	source := &fakeSource{byName: map[string][]Candidate{"Byron": {candidate("Q2", "Byron")}}}
	prompter := &scriptedPrompter{responses: answers("y")}
	coll := newMemCollection(record.KindPerson, rec)

	if _, err := newTestEngine(source, prompter, nil, Options{}).RunPeople(context.Background(), coll); err != nil {
		t.Fatalf("RunPeople: %v", err)
	}
	if len(source.viafQueries) != 1 || len(source.nameQueries) != 1 {
		t.Fatalf("viaf=%v name=%v", source.viafQueries, source.nameQueries)
	}
	if !coll.mustPersisted("Byron").Resolved() {
		t.Fatal("expected name search to resolve")
	}
}

func TestRunPeopleBlankViafBecomesNull(t *testing.T) {
	rec := resolvedPerson("Byron", "Q2", "Byron")
	rec.VIAF = ptr("  ")
	coll := newMemCollection(record.KindPerson, rec)

	if _, err := newTestEngine(&fakeSource{}, &scriptedPrompter{}, nil, Options{}).RunPeople(context.Background(), coll); err != nil {
		t.Fatalf("RunPeople: %v", err)
	}
	if got := coll.mustPersisted("Byron"); got.VIAF != nil {
		t.Fatalf("viaf = %q", *got.VIAF)
	}
}

func TestRunPeopleImplausibleBirthResets(t *testing.T) {
	rec := resolvedPerson("Anne Lister", "Q9", "Anne Lister")
	rec.Birth = ptr("1850-02-03")
	rec.Description = ptr("someone later")
	rec.Gender = ptr(GenderWoman)
	journal := &recordingJournal{}
	prompter := &scriptedPrompter{responses: answers("")}
	coll := newMemCollection(record.KindPerson, rec)

	summary, err := newTestEngine(&fakeSource{}, prompter, nil, Options{}, WithRecorder(journal)).RunPeople(context.Background(), coll)
	if err != nil {
		t.Fatalf("RunPeople: %v", err)
	}
	got := coll.mustPersisted("Anne Lister")
	if got.IRI != nil || got.Birth != nil || got.Description != nil {
		t.Fatalf("record not reset: %+v", got)
	}
	if record.Deref(got.Gender) != GenderWoman {
		t.Fatal("reset must keep gender")
	}
	if summary.Reset != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if len(prompter.noMatch) != 1 {
		t.Fatal("reset record should be searched again")
	}
	if journal.entries[0].Source != SourceGuard || journal.entries[0].IRI != testPrefix+"Q9" {
		t.Fatalf("journal = %+v", journal.entries)
	}
}

func TestRunPeopleImplausibleBirthRestoresKeyAsName(t *testing.T) {
	rec := resolvedPerson("Smith", "Q1", "John Smith")
	rec.Aliases = []string{"Smith"}
	rec.Birth = ptr("1800-01-01")
	rec.Gender = ptr(GenderMan)
	prompter := &scriptedPrompter{responses: answers("")}
	coll := newMemCollection(record.KindPerson, rec)

	if _, err := newTestEngine(&fakeSource{}, prompter, nil, Options{}).RunPeople(context.Background(), coll); err != nil {
		t.Fatalf("RunPeople: %v", err)
	}
	got := coll.mustPersisted("Smith")
	if got.Resolved() || got.Birth != nil {
		t.Fatalf("record not reset: %+v", got)
	}
	if got.Name != "Smith" {
		t.Fatalf("name = %q, want key", got.Name)
	}
	if slices.Contains(got.Aliases, got.Name) {
		t.Fatalf("aliases %v contain name %q", got.Aliases, got.Name)
	}
}

func TestRunPeopleNonNumericBirthIgnored(t *testing.T) {
	rec := resolvedPerson("Anne Lister", "Q9", "Anne Lister")
	rec.Birth = ptr("c. 1850")
	rec.Gender = ptr(GenderWoman)
	coll := newMemCollection(record.KindPerson, rec)

	if _, err := newTestEngine(&fakeSource{}, &scriptedPrompter{}, nil, Options{}).RunPeople(context.Background(), coll); err != nil {
		t.Fatalf("RunPeople: %v", err)
	}
	if !coll.mustPersisted("Anne Lister").Resolved() {
		t.Fatal("non-numeric birth must not reset")
	}
}

func TestRunPeopleCustomCutoff(t *testing.T) {
	rec := resolvedPerson("Anne Lister", "Q9", "Anne Lister")
	rec.Birth = ptr("1791-04-03")
	rec.Gender = ptr(GenderWoman)
	coll := newMemCollection(record.KindPerson, rec)
	prompter := &scriptedPrompter{responses: answers("")}

	if _, err := newTestEngine(&fakeSource{}, prompter, nil, Options{BirthYearCutoff: 1790}).RunPeople(context.Background(), coll); err != nil {
		t.Fatalf("RunPeople: %v", err)
	}
	if coll.mustPersisted("Anne Lister").Resolved() {
		t.Fatal("birth after custom cutoff should reset")
	}
}

func TestRunPeopleCanonicalizesGender(t *testing.T) {
	rec := resolvedPerson("Anne Lister", "Q9", "Anne Lister")
	rec.Gender = ptr("female")
	coll := newMemCollection(record.KindPerson, rec)

	if _, err := newTestEngine(&fakeSource{}, &scriptedPrompter{}, nil, Options{}).RunPeople(context.Background(), coll); err != nil {
		t.Fatalf("RunPeople: %v", err)
	}
	if got := coll.mustPersisted("Anne Lister"); record.Deref(got.Gender) != GenderWoman {
		t.Fatalf("gender = %v", record.Deref(got.Gender))
	}
}

func TestRunPeopleHonorificHeuristic(t *testing.T) {
	unresolved := person("Lady Mary")
	aliased := resolvedPerson("Wortley", "Q3", "Wortley")
	aliased.Aliases = []string{"Sir Edward Wortley"}
	known := resolvedPerson("Lord Someone", "Q4", "Lord Someone")
	known.Gender = ptr(GenderWoman)
	coll := newMemCollection(record.KindPerson, unresolved, aliased, known)
	prompter := &scriptedPrompter{responses: answers("")}

	summary, err := newTestEngine(&fakeSource{}, prompter, nil, Options{}).RunPeople(context.Background(), coll)
	if err != nil {
		t.Fatalf("RunPeople: %v", err)
	}
	if got := coll.mustPersisted("Lady Mary"); record.Deref(got.Gender) != GenderWoman {
		t.Fatalf("Lady Mary gender = %v", record.Deref(got.Gender))
	}
	if got := coll.mustPersisted("Wortley"); record.Deref(got.Gender) != GenderMan {
		t.Fatalf("Wortley gender = %v", record.Deref(got.Gender))
	}
	if got := coll.mustPersisted("Lord Someone"); record.Deref(got.Gender) != GenderWoman {
		t.Fatal("existing gender must not be overwritten")
	}
	if summary.Inferred != 2 {
		t.Fatalf("inferred = %d", summary.Inferred)
	}
}

func TestRunPeopleUpdateAllRefreshes(t *testing.T) {
	rec := resolvedPerson("Byron", "Q3", "Byron")
	rec.Gender = ptr(GenderMan)
	fresh := candidate("Q3", "Lord Byron")
	fresh.Description = ptr("poet")
	fresh.Gender = ptr(GenderMan)
	fresh.Birth = ptr("1700-01-22")
	source := &fakeSource{byID: map[string]Candidate{"Q3": fresh}}
	coll := newMemCollection(record.KindPerson, rec)

	summary, err := newTestEngine(source, &scriptedPrompter{}, nil, Options{UpdateAll: true}).RunPeople(context.Background(), coll)
	if err != nil {
		t.Fatalf("RunPeople: %v", err)
	}
	got := coll.mustPersisted("Byron")
	if got.Name != "Lord Byron" || record.Deref(got.Description) != "poet" {
		t.Fatalf("record = %+v", got)
	}
	if !slices.Contains(got.Aliases, "Byron") {
		t.Fatalf("key must move to aliases: %v", got.Aliases)
	}
	if summary.Refreshed != 1 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestRunPeopleUpdateAllMissingEntityKeepsRecord(t *testing.T) {
	rec := resolvedPerson("Byron", "Q3", "Byron")
	rec.Gender = ptr(GenderMan)
	coll := newMemCollection(record.KindPerson, rec)

	if _, err := newTestEngine(&fakeSource{}, &scriptedPrompter{}, nil, Options{UpdateAll: true}).RunPeople(context.Background(), coll); err != nil {
		t.Fatalf("RunPeople: %v", err)
	}
	if coll.saves != 0 {
		t.Fatalf("saves = %d", coll.saves)
	}
}

func TestRunPeopleBirthCountryNotice(t *testing.T) {
	rec := resolvedPerson("Pocahontas", "Q7", "Pocahontas")
	rec.Gender = ptr(GenderWoman)
	source := &fakeSource{countries: map[string]string{"Q7": "United States"}}
	notifier := &recordingNotifier{}
	coll := newMemCollection(record.KindPerson, rec)

	engine := newTestEngine(source, &scriptedPrompter{}, nil, Options{ReportBirthCountry: true}, WithNotifier(notifier))
	if _, err := engine.RunPeople(context.Background(), coll); err != nil {
		t.Fatalf("RunPeople: %v", err)
	}
	if len(notifier.notices) != 1 || notifier.notices[0].Detail != "born in United States" {
		t.Fatalf("notices = %+v", notifier.notices)
	}
}

func TestRunPeopleStartFrom(t *testing.T) {
	coll := newMemCollection(record.KindPerson, person("Alpha"), person("Bravo"), person("Charlie"))
	prompter := &scriptedPrompter{responses: answers("", "")}

	summary, err := newTestEngine(&fakeSource{}, prompter, nil, Options{StartFrom: "Bravo"}).RunPeople(context.Background(), coll)
	if err != nil {
		t.Fatalf("RunPeople: %v", err)
	}
	if !slices.Equal(prompter.noMatch, []string{"Bravo", "Charlie"}) {
		t.Fatalf("prompted for %v", prompter.noMatch)
	}
	if summary.Processed != 2 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestRunPeopleUnknownStartKey(t *testing.T) {
	coll := newMemCollection(record.KindPerson, person("Alpha"))

	summary, err := newTestEngine(&fakeSource{}, &scriptedPrompter{}, nil, Options{StartFrom: "Zulu"}).RunPeople(context.Background(), coll)
	if err != nil {
		t.Fatalf("RunPeople: %v", err)
	}
	if !summary.StartKeyMissing || summary.Processed != 0 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestRunPeopleInterruptDoesNotPersistInFlight(t *testing.T) {
	coll := newMemCollection(record.KindPerson, person("Alpha"), person("Bravo"))
	source := &fakeSource{byName: map[string][]Candidate{"Alpha": {candidate("Q1", "Alpha")}}}
	prompter := &scriptedPrompter{err: io.EOF}

	_, err := newTestEngine(source, prompter, nil, Options{}).RunPeople(context.Background(), coll)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if coll.saves != 0 {
		t.Fatalf("saves = %d", coll.saves)
	}
	if len(prompter.names) != 1 {
		t.Fatalf("later records must not be processed: %v", prompter.names)
	}
}

func TestRunPeopleTransportErrorIsFatal(t *testing.T) {
	coll := newMemCollection(record.KindPerson, person("Alpha"))
	source := &fakeSource{err: services.Wrap(services.ErrTransport, "fake", "query", "down", nil)}

	_, err := newTestEngine(source, &scriptedPrompter{}, nil, Options{}).RunPeople(context.Background(), coll)
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("err = %v", err)
	}
}

func TestRunPlacesClearsBannedAndExtractsGeo(t *testing.T) {
	rec := record.New("London")
	rec.IRI = ptr(testPrefix + "Q5")
	c := candidate("Q84", "London")
	c.Geo = ptr("Point(-0.1275 51.507222222)")
	source := &fakeSource{byName: map[string][]Candidate{"London": {c}}}
	prompter := &scriptedPrompter{responses: answers("y")}
	coll := newMemCollection(record.KindPlace, rec)

	if _, err := newTestEngine(source, prompter, bannedSet{"Q5": true}, Options{}).RunPlaces(context.Background(), coll); err != nil {
		t.Fatalf("RunPlaces: %v", err)
	}
	got := coll.mustPersisted("London")
	if record.Deref(got.IRI) != testPrefix+"Q84" {
		t.Fatalf("iri = %v", record.Deref(got.IRI))
	}
	if got.Lat == nil || *got.Lat != 51.507222222 || *got.Lon != -0.1275 {
		t.Fatalf("coordinates = %v/%v", got.Lat, got.Lon)
	}
	if got.Gender != nil {
		t.Fatal("places never get a gender")
	}
}

func TestRunPlacesUpdateAllNotifiesInstanceOf(t *testing.T) {
	rec := record.New("Bath")
	rec.IRI = ptr(testPrefix + "Q22889")
	fresh := candidate("Q22889", "Bath")
	fresh.InstanceOf = ptr("city")
	fresh.Geo = ptr("Point(-2.36 51.38)")
	source := &fakeSource{byID: map[string]Candidate{"Q22889": fresh}}
	notifier := &recordingNotifier{}
	coll := newMemCollection(record.KindPlace, rec)

	engine := newTestEngine(source, &scriptedPrompter{}, nil, Options{UpdateAll: true}, WithNotifier(notifier))
	if _, err := engine.RunPlaces(context.Background(), coll); err != nil {
		t.Fatalf("RunPlaces: %v", err)
	}
	got := coll.mustPersisted("Bath")
	if got.Lat == nil || *got.Lat != 51.38 {
		t.Fatalf("lat = %v", got.Lat)
	}
	if len(notifier.notices) != 1 || notifier.notices[0].Detail != "instance of city" {
		t.Fatalf("notices = %+v", notifier.notices)
	}
}

type countingImporter struct{ calls int }

func (i *countingImporter) Import(_ context.Context, dst Collection) (int, error) {
	i.calls++
	rec := record.New("Imported " + string(dst.Kind()))
	dst.Put(rec)
	return 1, dst.Save()
}

func TestRunImportsAndHonoursSearchSwitches(t *testing.T) {
	people := newMemCollection(record.KindPerson)
	places := newMemCollection(record.KindPlace)
	importer := &countingImporter{}
	prompter := &scriptedPrompter{responses: answers("")}

	engine := newTestEngine(&fakeSource{}, prompter, nil, Options{ImportFromSource: true, SearchPeople: true}, WithImporter(importer))
	summaries, err := engine.Run(context.Background(), people, places)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if importer.calls != 2 {
		t.Fatalf("import calls = %d", importer.calls)
	}
	if len(summaries) != 1 || summaries[0].Collection != "people" || summaries[0].Imported != 1 {
		t.Fatalf("summaries = %+v", summaries)
	}
	if !slices.Equal(prompter.noMatch, []string{"Imported Person"}) {
		t.Fatalf("prompted for %v", prompter.noMatch)
	}
}

func TestRunAnnouncesEachPass(t *testing.T) {
	people := newMemCollection(record.KindPerson)
	places := newMemCollection(record.KindPlace)
	notifier := &recordingNotifier{}

	engine := newTestEngine(&fakeSource{}, &scriptedPrompter{}, nil, Options{SearchPeople: true, SearchPlaces: true}, WithNotifier(notifier))
	if _, err := engine.Run(context.Background(), people, places); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !slices.Equal(notifier.sections, []string{"Person Search", "Place Search"}) {
		t.Fatalf("sections = %v", notifier.sections)
	}
}

func TestRunIsIdempotentOnStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.json")
	initial := `{
  "Byron": {
    "name": "Byron",
    "viaf": "",
    "aliases": ["Lord Byron", " Lord Byron", "Byron"],
    "iri": "http://www.wikidata.org/entity/Q5679",
    "desc": "poet",
    "image": null,
    "birth": "1688-01-22",
    "death": "1724-04-19",
    "gender": "male"
  },
  "Lady Mary": {
    "name": "Lady Mary",
    "viaf": null,
    "aliases": [],
    "iri": null,
    "desc": null,
    "image": null,
    "birth": null,
    "death": null,
    "gender": null
  }
}
`
	if err := os.WriteFile(path, []byte(initial), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	run := func() (int, []byte) {
		s, err := store.Open(path, record.KindPerson, nil)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		defer s.Close()
		prompter := &scriptedPrompter{responses: answers("")}
		if _, err := newTestEngine(&fakeSource{}, prompter, nil, Options{}).RunPeople(context.Background(), s); err != nil {
			t.Fatalf("RunPeople: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		return s.Saves(), data
	}

	firstSaves, first := run()
	if firstSaves == 0 {
		t.Fatal("first run should normalize the store")
	}
	secondSaves, second := run()
	if secondSaves != 0 {
		t.Fatalf("second run saved %d times", secondSaves)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("store changed on second run:\n%s\n---\n%s", first, second)
	}
}
