package reconcile

import (
	"context"

	"kbmatch/internal/logging"
	"kbmatch/internal/record"
)

func (e *Engine) processPerson(ctx context.Context, p *pass, rec record.Record) error {
	if err := e.normalizeCommonAliases(p, &rec); err != nil {
		return err
	}

	if e.opts.ReportBirthCountry && rec.Resolved() {
		if country, ok := e.source.FetchBirthCountry(ctx, rec.QID()); ok {
			e.notify(Notice{Subject: rec.Name, Detail: "born in " + country})
		}
	}

	if e.opts.UpdateAll && rec.Resolved() {
		if _, _, err := e.refresh(ctx, p, &rec, applyPerson); err != nil {
			return err
		}
	}

	if gender := CanonicalGender(rec.Gender); !sameString(gender, rec.Gender) {
		rec.Gender = gender
		if err := p.commit(rec); err != nil {
			return err
		}
	}

	if rec.ImplausibleBirth(e.opts.BirthYearCutoff) {
		iri := record.Deref(rec.IRI)
		logging.WarnWithContext(p.logger, "implausible birth date, resetting match", "implausible_birth",
			logging.String("birth", record.Deref(rec.Birth)),
			logging.String("iri", iri),
			logging.Int("cutoff", e.opts.BirthYearCutoff),
			logging.String(logging.FieldImpact, "record returned to unresolved"),
			logging.String(logging.FieldErrorHint, "the record will be searched again in this pass"))
		rec.Reset()
		if err := p.commit(rec); err != nil {
			return err
		}
		p.summary.Reset++
		e.record(ctx, DecisionEntry{
			Collection: p.summary.Collection,
			Key:        rec.Key,
			Source:     SourceGuard,
			Decision:   "reset",
			Outcome:    StateUnresolved.String(),
			IRI:        iri,
		})
	}

	if err := e.normalizeVIAF(p, &rec); err != nil {
		return err
	}

	if !rec.Resolved() {
		if err := e.search(ctx, p, &rec, applyPerson); err != nil {
			return err
		}
	}

	if rec.Gender == nil {
		names := append([]string{rec.Key, rec.Name}, rec.Aliases...)
		if gender, ok := GenderFromHonorifics(names...); ok {
			rec.Gender = record.StringPtr(gender)
			if err := p.commit(rec); err != nil {
				return err
			}
			p.summary.Inferred++
			p.logger.Debug("gender inferred from honorific", logging.String("gender", gender))
			e.record(ctx, DecisionEntry{
				Collection: p.summary.Collection,
				Key:        rec.Key,
				Source:     SourceHeuristic,
				Decision:   "gender",
				Outcome:    gender,
			})
		}
	}
	return nil
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
