package record

import (
	"slices"
	"strconv"
	"strings"
)

// BirthYearCutoff is the latest plausible birth year for people in the
// collection. Resolutions born later are treated as wrong matches.
const BirthYearCutoff = 1743

// Kind distinguishes the two record collections.
type Kind string

const (
	KindPerson Kind = "person"
	KindPlace  Kind = "place"
)

// Collection returns the plural collection name used in logs and the journal.
func (k Kind) Collection() string {
	switch k {
	case KindPlace:
		return "places"
	default:
		return "people"
	}
}

// ParseKind accepts singular or plural collection names.
func ParseKind(value string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "person", "people":
		return KindPerson, true
	case "place", "places":
		return KindPlace, true
	default:
		return "", false
	}
}

// Record is one entry of a collection. Key is the store map key and is not
// repeated in the JSON body.
type Record struct {
	Key         string   `json:"-"`
	Name        string   `json:"name"`
	VIAF        *string  `json:"viaf"`
	Aliases     []string `json:"aliases"`
	IRI         *string  `json:"iri"`
	Description *string  `json:"desc"`
	Image       *string  `json:"image"`
	Birth       *string  `json:"birth"`
	Death       *string  `json:"death"`
	Gender      *string  `json:"gender"`
	Lat         *float64 `json:"lat,omitempty"`
	Lon         *float64 `json:"lon,omitempty"`
}

// New creates a record whose name equals its key.
func New(key string) Record {
	return Record{Key: key, Name: key, Aliases: []string{}}
}

// Resolved reports whether the record carries an external identifier.
func (r Record) Resolved() bool {
	return r.IRI != nil
}

// QID returns the last path segment of the IRI, or "" when unresolved.
func (r Record) QID() string {
	if r.IRI == nil {
		return ""
	}
	return QIDFromIRI(*r.IRI)
}

// QIDFromIRI returns the last path segment of an entity IRI.
func QIDFromIRI(iri string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(iri), "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

// NormalizeAliases trims every alias, drops blanks, duplicates and the current
// name, and sorts the result. It reports whether anything changed.
func (r *Record) NormalizeAliases() bool {
	seen := make(map[string]struct{}, len(r.Aliases))
	out := make([]string, 0, len(r.Aliases))
	for _, alias := range r.Aliases {
		alias = strings.TrimSpace(alias)
		if alias == "" || alias == r.Name {
			continue
		}
		if _, ok := seen[alias]; ok {
			continue
		}
		seen[alias] = struct{}{}
		out = append(out, alias)
	}
	slices.Sort(out)
	changed := !slices.Equal(out, r.Aliases) || r.Aliases == nil
	r.Aliases = out
	return changed
}

// AdoptLabel resets the name to the key and then switches to label when it
// differs, keeping the key reachable as an alias.
func (r *Record) AdoptLabel(label *string) {
	r.Name = r.Key
	if label == nil || *label == "" || *label == r.Key {
		r.NormalizeAliases()
		return
	}
	r.Name = *label
	if !slices.Contains(r.Aliases, r.Key) {
		r.Aliases = append([]string{r.Key}, r.Aliases...)
	}
	r.NormalizeAliases()
}

// BirthYear parses the leading four characters of Birth. ok is false when
// birth is unset or not numeric.
func (r Record) BirthYear() (int, bool) {
	if r.Birth == nil || len(*r.Birth) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi((*r.Birth)[:4])
	if err != nil {
		return 0, false
	}
	return year, true
}

// ImplausibleBirth reports whether the birth year is later than cutoff.
func (r Record) ImplausibleBirth(cutoff int) bool {
	year, ok := r.BirthYear()
	return ok && year > cutoff
}

// Reset returns the record to the unresolved state. Gender, VIAF, aliases and
// coordinates are kept; the key stops being an alias once it is the name again.
func (r *Record) Reset() {
	r.Name = r.Key
	r.IRI = nil
	r.Description = nil
	r.Image = nil
	r.Birth = nil
	r.Death = nil
	r.NormalizeAliases()
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	out := r
	out.Aliases = slices.Clone(r.Aliases)
	out.VIAF = cloneString(r.VIAF)
	out.IRI = cloneString(r.IRI)
	out.Description = cloneString(r.Description)
	out.Image = cloneString(r.Image)
	out.Birth = cloneString(r.Birth)
	out.Death = cloneString(r.Death)
	out.Gender = cloneString(r.Gender)
	out.Lat = cloneFloat(r.Lat)
	out.Lon = cloneFloat(r.Lon)
	return out
}

// Equal compares every persisted field.
func (r Record) Equal(other Record) bool {
	return r.Key == other.Key &&
		r.Name == other.Name &&
		slices.Equal(r.Aliases, other.Aliases) &&
		equalString(r.VIAF, other.VIAF) &&
		equalString(r.IRI, other.IRI) &&
		equalString(r.Description, other.Description) &&
		equalString(r.Image, other.Image) &&
		equalString(r.Birth, other.Birth) &&
		equalString(r.Death, other.Death) &&
		equalString(r.Gender, other.Gender) &&
		equalFloat(r.Lat, other.Lat) &&
		equalFloat(r.Lon, other.Lon)
}

// StringPtr returns nil for empty strings.
func StringPtr(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// Deref returns the pointed-to string or "".
func Deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

func cloneFloat(value *float64) *float64 {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
