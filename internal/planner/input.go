package planner

import (
	"strconv"
	"strings"
)

// ParseFloat parses a required numeric field from raw text.
func ParseFloat(field, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, invalid(field, "is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !isFinite(v) {
		return 0, invalid(field, "must be a number")
	}
	return v, nil
}

// ParseOptionalFloat returns nil for blank input.
func ParseOptionalFloat(field, raw string) (*float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, err := ParseFloat(field, raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ParseDate checks that raw is a YYYY-MM-DD date and returns it trimmed.
func ParseDate(field, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", invalid(field, "is required")
	}
	if _, err := ParseDay(raw); err != nil {
		return "", invalid(field, "must use the YYYY-MM-DD format")
	}
	return raw, nil
}

// ParseOptionalDate returns nil for blank input.
func ParseOptionalDate(field, raw string) (*string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, err := ParseDate(field, raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// NormalizeStatus lowercases and trims a status; blank becomes pending.
func NormalizeStatus(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return StatusPending
	}
	return raw
}
