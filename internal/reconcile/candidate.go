package reconcile

import (
	"kbmatch/internal/record"
)

// Candidate is a knowledge-base entity proposed for a record. Every field but
// IRI and QID is optional.
type Candidate struct {
	IRI         string
	QID         string
	Label       *string
	Description *string
	Image       *string
	Birth       *string
	Death       *string
	Gender      *string
	InstanceOf  *string
	Geo         *string
}

// Title renders the candidate the way the console shows it.
func (c Candidate) Title() string {
	return c.QID + " • " + orUnknown(c.Label) + " • " + orUnknown(c.Description)
}

func orUnknown(value *string) string {
	if value == nil {
		return "?"
	}
	return *value
}

// applyPerson merges a chosen candidate into a person record.
func applyPerson(rec *record.Record, c Candidate) {
	iri := c.IRI
	rec.IRI = &iri
	rec.Description = c.Description
	rec.Image = c.Image
	rec.Birth = c.Birth
	rec.Death = c.Death
	rec.Gender = CanonicalGender(c.Gender)
	rec.AdoptLabel(c.Label)
}

// applyPlace merges a chosen candidate into a place record. Coordinates are
// only taken when the candidate carries a parseable geo literal.
func applyPlace(rec *record.Record, c Candidate) {
	iri := c.IRI
	rec.IRI = &iri
	rec.Description = c.Description
	rec.Image = c.Image
	rec.AdoptLabel(c.Label)
	if c.Geo != nil {
		if lat, lon, ok := record.ParseGeo(*c.Geo); ok {
			rec.Lat = &lat
			rec.Lon = &lon
		}
	}
}
