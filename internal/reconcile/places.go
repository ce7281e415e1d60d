package reconcile

import (
	"context"

	"kbmatch/internal/logging"
	"kbmatch/internal/record"
)

func (e *Engine) processPlace(ctx context.Context, p *pass, rec record.Record) error {
	if err := e.normalizeCommonAliases(p, &rec); err != nil {
		return err
	}
	if err := e.normalizeVIAF(p, &rec); err != nil {
		return err
	}

	if rec.Resolved() && e.banned != nil && e.banned.Contains(*rec.IRI) {
		iri := *rec.IRI
		logging.WarnWithContext(p.logger, "stored match is banned, clearing", "banned_match_cleared",
			logging.String("iri", iri),
			logging.String(logging.FieldImpact, "place returned to unresolved"),
			logging.String(logging.FieldErrorHint, "the place will be searched again"))
		rec.IRI = nil
		if err := p.commit(rec); err != nil {
			return err
		}
		e.record(ctx, DecisionEntry{
			Collection: p.summary.Collection,
			Key:        rec.Key,
			Source:     SourceBanned,
			Decision:   "clear",
			Outcome:    StateUnresolved.String(),
			IRI:        iri,
		})
	}

	switch {
	case !rec.Resolved():
		return e.search(ctx, p, &rec, applyPlace)
	case e.opts.UpdateAll:
		candidate, _, err := e.refresh(ctx, p, &rec, applyPlace)
		if err != nil {
			return err
		}
		if candidate.InstanceOf != nil {
			e.notify(Notice{Subject: rec.Name, Detail: "instance of " + *candidate.InstanceOf})
		}
	}
	return nil
}
