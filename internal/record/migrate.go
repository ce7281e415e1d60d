package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Decode builds a Record from a stored JSON object. Missing fields become nil,
// empty strings in optional fields become nil, coordinates stored as strings
// are parsed, and unknown legacy fields such as "img" are dropped.
func Decode(key string, raw []byte) (Record, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Record{}, fmt.Errorf("decode record %q: %w", key, err)
	}

	rec := New(key)
	if name, err := optionalString(fields["name"]); err != nil {
		return Record{}, fmt.Errorf("record %q name: %w", key, err)
	} else if name != nil {
		rec.Name = *name
	}

	if aliases, ok := fields["aliases"]; ok && !isNull(aliases) {
		var values []string
		if err := json.Unmarshal(aliases, &values); err != nil {
			return Record{}, fmt.Errorf("record %q aliases: %w", key, err)
		}
		rec.Aliases = values
	}

	targets := []struct {
		name string
		dst  **string
	}{
		{"viaf", &rec.VIAF},
		{"iri", &rec.IRI},
		{"desc", &rec.Description},
		{"image", &rec.Image},
		{"birth", &rec.Birth},
		{"death", &rec.Death},
		{"gender", &rec.Gender},
	}
	for _, target := range targets {
		value, err := optionalString(fields[target.name])
		if err != nil {
			return Record{}, fmt.Errorf("record %q %s: %w", key, target.name, err)
		}
		*target.dst = value
	}

	rec.Lat = optionalFloat(fields["lat"])
	rec.Lon = optionalFloat(fields["lon"])
	return rec, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// optionalString accepts strings and numbers (VIAF ids are sometimes stored as
// numbers); false, null and "" become nil.
func optionalString(raw json.RawMessage) (*string, error) {
	if isNull(raw) {
		return nil, nil
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	switch v := value.(type) {
	case string:
		return StringPtr(v), nil
	case float64:
		return StringPtr(strconv.FormatFloat(v, 'f', -1, 64)), nil
	case bool:
		if !v {
			return nil, nil
		}
		return nil, fmt.Errorf("unexpected boolean value")
	default:
		return nil, fmt.Errorf("unexpected value %s", string(raw))
	}
}

func optionalFloat(raw json.RawMessage) *float64 {
	if isNull(raw) {
		return nil
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil
	}
	switch v := value.(type) {
	case float64:
		return &v
	case string:
		return ParseCoordinate(v)
	default:
		return nil
	}
}
