// Package convert turns loosely typed JSON values (as found in aggregate
// payloads) into Go scalars.
// This package has no dependencies on other internal packages to avoid circular imports.
package convert

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ToInt converts a decoded JSON value to int with a fallback value.
// Handles the integer and float kinds, json.Number and numeric strings.
// Non-integral floats are truncated toward zero.
func ToInt(v interface{}, fallback int) int {
	switch val := v.(type) {
	case int:
		return val
	case int32:
		return int(val)
	case int64:
		return int(val)
	case uint:
		return int(val)
	case uint64:
		return int(val)
	case float32:
		return floatToInt(float64(val), fallback)
	case float64:
		return floatToInt(val, fallback)
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return int(n)
		}
		if f, err := val.Float64(); err == nil {
			return floatToInt(f, fallback)
		}
	case string:
		s := strings.TrimSpace(val)
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatToInt(f, fallback)
		}
	}
	return fallback
}

func floatToInt(f float64, fallback int) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return int(f)
}

// ToString converts a decoded JSON value to a display string.
// nil, blank strings and composite values yield fallback.
func ToString(v interface{}, fallback string) string {
	switch val := v.(type) {
	case string:
		if strings.TrimSpace(val) == "" {
			return fallback
		}
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	}
	return fallback
}
