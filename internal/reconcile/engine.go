package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"kbmatch/internal/logging"
	"kbmatch/internal/record"
	"kbmatch/internal/services"
)

// Collection is the persisted set of records a pass walks. store.Store
// satisfies it.
type Collection interface {
	Kind() record.Kind
	Keys() []string
	Get(key string) (record.Record, bool)
	Put(rec record.Record)
	Save() error
}

// Importer bulk-loads records into a collection from its source files.
type Importer interface {
	Import(ctx context.Context, dst Collection) (int, error)
}

// Notice is an operator-facing message that needs no answer.
type Notice struct {
	Subject string
	Detail  string
	Warn    bool
}

// Notifier shows notices to the operator.
type Notifier interface {
	Notify(notice Notice)
}

// SectionNotifier is implemented by notifiers that announce each pass.
type SectionNotifier interface {
	Section(title string)
}

// DecisionEntry describes one reconciliation decision for the journal.
type DecisionEntry struct {
	Collection string
	Key        string
	Variant    string
	Source     string
	Decision   string
	Outcome    string
	IRI        string
}

// DecisionRecorder persists decisions. Failures are logged and never abort a run.
type DecisionRecorder interface {
	RecordDecision(ctx context.Context, entry DecisionEntry) error
}

// Decision sources recorded in the journal.
const (
	SourceVIAF      = "viaf"
	SourceName      = "name"
	SourceRefresh   = "refresh"
	SourceGuard     = "guard"
	SourceHeuristic = "heuristic"
	SourceBanned    = "banned"
)

// Options are the per-run switches.
type Options struct {
	// ImportFromSource bulk-loads both collections through the Importer before processing.
	ImportFromSource bool
	SearchPeople     bool
	SearchPlaces     bool
	// UpdateAll refreshes already resolved records from the knowledge base.
	UpdateAll bool
	// StartFrom skips records before this key for the current pass.
	StartFrom string
	// ReportBirthCountry prints the birth country of resolved people.
	ReportBirthCountry bool
	// ConfirmVIAF prompts for VIAF matches instead of accepting the first
	// non-banned hit automatically.
	ConfirmVIAF bool
	// BirthYearCutoff overrides record.BirthYearCutoff when positive.
	BirthYearCutoff int
}

// Summary counts what one pass over a collection did.
type Summary struct {
	Collection      string
	Imported        int
	Processed       int
	Resolved        int
	Skipped         int
	Refreshed       int
	Reset           int
	Inferred        int
	StartKeyMissing bool
}

// Engine runs reconciliation passes.
type Engine struct {
	source   CandidateSource
	prompter Prompter
	banned   Banned
	opts     Options
	logger   *slog.Logger
	notifier Notifier
	recorder DecisionRecorder
	importer Importer
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithNotifier(notifier Notifier) EngineOption {
	return func(e *Engine) { e.notifier = notifier }
}

func WithRecorder(recorder DecisionRecorder) EngineOption {
	return func(e *Engine) { e.recorder = recorder }
}

func WithImporter(importer Importer) EngineOption {
	return func(e *Engine) { e.importer = importer }
}

// NewEngine builds an engine. banned may be nil.
func NewEngine(source CandidateSource, prompter Prompter, banned Banned, opts Options, options ...EngineOption) *Engine {
	if opts.BirthYearCutoff <= 0 {
		opts.BirthYearCutoff = record.BirthYearCutoff
	}
	opts.StartFrom = strings.TrimSpace(opts.StartFrom)
	e := &Engine{
		source:   source,
		prompter: prompter,
		banned:   banned,
		opts:     opts,
		logger:   logging.NewNop(),
	}
	for _, option := range options {
		option(e)
	}
	e.logger = logging.NewComponentLogger(e.logger, "reconcile")
	return e
}

// Run imports (when enabled) and processes the enabled collections. A nil
// collection is skipped.
func (e *Engine) Run(ctx context.Context, people, places Collection) ([]Summary, error) {
	imported := map[Collection]int{}
	if e.opts.ImportFromSource && e.importer != nil {
		for _, coll := range []Collection{people, places} {
			if coll == nil {
				continue
			}
			n, err := e.importer.Import(ctx, coll)
			if err != nil {
				return nil, err
			}
			imported[coll] = n
		}
	}

	var summaries []Summary
	if e.opts.SearchPeople && people != nil {
		summary, err := e.RunPeople(ctx, people)
		summary.Imported = imported[people]
		summaries = append(summaries, summary)
		if err != nil {
			return summaries, err
		}
	}
	if e.opts.SearchPlaces && places != nil {
		summary, err := e.RunPlaces(ctx, places)
		summary.Imported = imported[places]
		summaries = append(summaries, summary)
		if err != nil {
			return summaries, err
		}
	}
	return summaries, nil
}

// RunPeople processes every person in store order.
func (e *Engine) RunPeople(ctx context.Context, people Collection) (Summary, error) {
	return e.walk(ctx, people, e.processPerson)
}

// RunPlaces processes every place in store order.
func (e *Engine) RunPlaces(ctx context.Context, places Collection) (Summary, error) {
	return e.walk(ctx, places, e.processPlace)
}

type recordStep func(ctx context.Context, pass *pass, rec record.Record) error

// pass carries the state of one walk over a collection.
type pass struct {
	coll    Collection
	summary *Summary
	logger  *slog.Logger
}

// commit stores rec and rewrites the whole collection.
func (p *pass) commit(rec record.Record) error {
	p.coll.Put(rec)
	return p.coll.Save()
}

func (e *Engine) walk(ctx context.Context, coll Collection, step recordStep) (Summary, error) {
	collection := coll.Kind().Collection()
	summary := Summary{Collection: collection}
	ctx = services.WithCollection(ctx, collection)
	logger := logging.WithContext(ctx, e.logger)

	keys := coll.Keys()
	if e.opts.StartFrom != "" {
		idx := slices.Index(keys, e.opts.StartFrom)
		if idx < 0 {
			summary.StartKeyMissing = true
			logging.WarnWithContext(logger, "start key not found in collection", "start_key_missing",
				logging.String("start_from", e.opts.StartFrom),
				logging.String(logging.FieldImpact, "no records processed in this collection"),
				logging.String(logging.FieldErrorHint, "check --start-from against the store keys"))
			return summary, nil
		}
		keys = keys[idx:]
	}

	if sections, ok := e.notifier.(SectionNotifier); ok {
		sections.Section(passTitle(coll.Kind()))
	}
	logger.Info("reconciliation pass started", logging.Int("record_count", len(keys)))
	p := &pass{coll: coll, summary: &summary}
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		rec, ok := coll.Get(key)
		if !ok {
			continue
		}
		recordCtx := services.WithRecordKey(ctx, key)
		p.logger = logging.WithContext(recordCtx, e.logger)
		if err := step(recordCtx, p, rec); err != nil {
			return summary, err
		}
		summary.Processed++
	}
	logger.Info("reconciliation pass finished",
		logging.Int("processed", summary.Processed),
		logging.Int("resolved", summary.Resolved),
		logging.Int("skipped", summary.Skipped),
		logging.Int("refreshed", summary.Refreshed),
		logging.Int("reset", summary.Reset))
	return summary, nil
}

func passTitle(kind record.Kind) string {
	if kind == record.KindPlace {
		return "Place Search"
	}
	return "Person Search"
}

type applyFunc func(rec *record.Record, c Candidate)

// search tries each expanded name until one resolves or the operator skips.
func (e *Engine) search(ctx context.Context, p *pass, rec *record.Record, apply applyFunc) error {
	name := rec.Name
	if strings.TrimSpace(name) == "" {
		name = rec.Key
	}
	for _, variant := range ExpandNames(name, rec.Aliases) {
		searchName := SearchName(variant)
		if searchName == "" {
			continue
		}
		outcome, source, err := e.lookup(ctx, p.coll.Kind(), rec, searchName)
		if err != nil {
			return err
		}
		e.recordOutcome(ctx, p, rec.Key, searchName, source, outcome)

		switch outcome.State {
		case StateResolved:
			apply(rec, outcome.Candidate)
			if err := p.commit(*rec); err != nil {
				return err
			}
			p.summary.Resolved++
			p.logger.Info("record resolved",
				logging.String("iri", outcome.Candidate.IRI),
				logging.String("variant", searchName),
				logging.String("source", source))
			return nil
		case StateSkipped:
			p.summary.Skipped++
			p.logger.Debug("record skipped by operator", logging.String("variant", searchName))
			return nil
		}
	}
	return nil
}

// lookup queries by VIAF first and falls back to a name search when the VIAF
// lookup yields nothing usable.
func (e *Engine) lookup(ctx context.Context, kind record.Kind, rec *record.Record, name string) (Outcome, string, error) {
	if rec.VIAF != nil {
		candidates, err := e.source.QueryByExternalID(ctx, *rec.VIAF, kind)
		if err != nil {
			return Outcome{}, SourceVIAF, err
		}
		filtered := FilterBanned(candidates, e.banned)
		if len(filtered) > 0 {
			if !e.opts.ConfirmVIAF {
				first := filtered[0]
				e.notify(Notice{Subject: name, Detail: "VIAF match " + first.Title()})
				return Outcome{State: StateResolved, Candidate: first, Decision: DecisionConfirm}, SourceVIAF, nil
			}
			outcome, err := Disambiguate(ctx, name, filtered, e.banned, e.prompter, e.source)
			if err != nil || outcome.State != StateUnresolved {
				return outcome, SourceVIAF, err
			}
		}
	}

	candidates, err := e.source.QueryByName(ctx, name, kind)
	if err != nil {
		return Outcome{}, SourceName, err
	}
	outcome, err := Disambiguate(ctx, name, candidates, e.banned, e.prompter, e.source)
	return outcome, SourceName, err
}

// refresh re-fetches a resolved record and applies the fresh facts. An entity
// that no longer exists is reported and left alone.
func (e *Engine) refresh(ctx context.Context, p *pass, rec *record.Record, apply applyFunc) (Candidate, bool, error) {
	candidate, err := e.source.FetchByID(ctx, rec.QID())
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			logging.WarnWithContext(p.logger, "resolved entity no longer found", "refresh_not_found",
				logging.String("iri", record.Deref(rec.IRI)),
				logging.Error(err),
				logging.String(logging.FieldImpact, "record kept as is"),
				logging.String(logging.FieldErrorHint, "check whether the entity was merged or deleted"))
			return Candidate{}, false, nil
		}
		return Candidate{}, false, err
	}
	before := rec.Clone()
	apply(rec, candidate)
	if rec.Equal(before) {
		return candidate, false, nil
	}
	if err := p.commit(*rec); err != nil {
		return candidate, false, err
	}
	p.summary.Refreshed++
	e.record(ctx, DecisionEntry{
		Collection: p.summary.Collection,
		Key:        rec.Key,
		Source:     SourceRefresh,
		Decision:   "refresh",
		Outcome:    StateResolved.String(),
		IRI:        candidate.IRI,
	})
	return candidate, true, nil
}

func (e *Engine) normalizeCommonAliases(p *pass, rec *record.Record) error {
	if !rec.NormalizeAliases() {
		return nil
	}
	return p.commit(*rec)
}

// normalizeVIAF turns a blank VIAF id into null.
func (e *Engine) normalizeVIAF(p *pass, rec *record.Record) error {
	if rec.VIAF == nil || strings.TrimSpace(*rec.VIAF) != "" {
		return nil
	}
	rec.VIAF = nil
	return p.commit(*rec)
}

func (e *Engine) notify(notice Notice) {
	if e.notifier != nil {
		e.notifier.Notify(notice)
	}
}

func (e *Engine) recordOutcome(ctx context.Context, p *pass, key, variant, source string, outcome Outcome) {
	decision := outcome.Decision.String()
	switch {
	case source == SourceVIAF && outcome.Presented == nil && !outcome.NoMatch && outcome.State == StateResolved:
		decision = "auto"
	case outcome.NoMatch && outcome.Decision == DecisionDecline:
		decision = "no_match"
	}
	p.logger.Debug("disambiguation outcome",
		logging.Args(logging.DecisionAttrs("candidate_selection", outcome.State.String(), decision)...)...)
	e.record(ctx, DecisionEntry{
		Collection: p.summary.Collection,
		Key:        key,
		Variant:    variant,
		Source:     source,
		Decision:   decision,
		Outcome:    outcome.State.String(),
		IRI:        outcome.Candidate.IRI,
	})
}

func (e *Engine) record(ctx context.Context, entry DecisionEntry) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.RecordDecision(ctx, entry); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, e.logger), "failed to journal decision", "journal_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "decision history incomplete"),
			logging.String(logging.FieldErrorHint, "check journal.path permissions"))
	}
}
