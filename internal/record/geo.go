package record

import (
	"strconv"
	"strings"
)

// ParseGeo extracts coordinates from a WKT literal such as "POINT(-0.1 51.5)".
// Longitude comes first.
func ParseGeo(literal string) (lat, lon float64, ok bool) {
	open := strings.Index(literal, "(")
	end := strings.LastIndex(literal, ")")
	if open < 0 || end <= open {
		return 0, 0, false
	}
	parts := strings.Fields(literal[open+1 : end])
	if len(parts) != 2 {
		return 0, 0, false
	}
	lon, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, false
	}
	lat, err = strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// ParseCoordinate parses a decimal degree string; blanks and garbage yield nil.
func ParseCoordinate(value string) *float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil
	}
	return &parsed
}
