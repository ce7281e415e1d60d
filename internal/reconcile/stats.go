package reconcile

import "kbmatch/internal/record"

// CollectionStats summarizes how complete one collection is.
type CollectionStats struct {
	Collection  string
	Total       int
	Resolved    int
	WithGender  int
	WithCoords  int
	WithVIAF    int
	WithAliases int
}

// ComputeStats counts fill rates over records.
func ComputeStats(kind record.Kind, records []record.Record) CollectionStats {
	stats := CollectionStats{Collection: kind.Collection(), Total: len(records)}
	for _, rec := range records {
		if rec.Resolved() {
			stats.Resolved++
		}
		if rec.Gender != nil {
			stats.WithGender++
		}
		if rec.Lat != nil && rec.Lon != nil {
			stats.WithCoords++
		}
		if rec.VIAF != nil {
			stats.WithVIAF++
		}
		if len(rec.Aliases) > 0 {
			stats.WithAliases++
		}
	}
	return stats
}

// Percent returns part as a percentage of Total, 0 for an empty collection.
func (s CollectionStats) Percent(part int) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(part) * 100 / float64(s.Total)
}
