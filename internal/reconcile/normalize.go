package reconcile

import (
	"strings"

	"kbmatch/internal/record"
	"kbmatch/internal/wikidata"
)

const (
	GenderMan   = "man"
	GenderWoman = "woman"
)

// NormalizeCandidate maps a raw entity into a Candidate. Dates lose their
// time-of-day, gender is canonicalized, and empty values become nil.
func NormalizeCandidate(entity wikidata.Entity) Candidate {
	return Candidate{
		IRI:         entity.IRI,
		QID:         record.QIDFromIRI(entity.IRI),
		Label:       record.StringPtr(entity.Label),
		Description: record.StringPtr(entity.Description),
		Image:       record.StringPtr(entity.Image),
		Birth:       TruncateDate(entity.Birth),
		Death:       TruncateDate(entity.Death),
		Gender:      CanonicalGender(record.StringPtr(entity.Gender)),
		InstanceOf:  record.StringPtr(entity.InstanceOf),
		Geo:         record.StringPtr(entity.Geo),
	}
}

// NormalizeCandidates maps entities in order.
func NormalizeCandidates(entities []wikidata.Entity) []Candidate {
	out := make([]Candidate, 0, len(entities))
	for _, entity := range entities {
		out = append(out, NormalizeCandidate(entity))
	}
	return out
}

// TruncateDate keeps the date portion of an xsd:dateTime value.
func TruncateDate(value string) *string {
	date, _, _ := strings.Cut(value, "T")
	return record.StringPtr(date)
}

// CanonicalGender maps the knowledge-base vocabulary onto man/woman. Other
// values pass through unchanged; nil and "" yield nil.
func CanonicalGender(value *string) *string {
	if value == nil || *value == "" {
		return nil
	}
	switch *value {
	case "female":
		return record.StringPtr(GenderWoman)
	case "male":
		return record.StringPtr(GenderMan)
	default:
		v := *value
		return &v
	}
}
