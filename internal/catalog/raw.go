// Package catalog normalizes loosely typed short-drama platform payloads into
// one item model and resolves playable stream URLs from episode payloads.
//
// Every function in this package is total: it accepts whatever the upstream
// JSON decoder produced and degrades to defaults instead of returning errors.
package catalog

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Record is one decoded JSON object.
type Record = map[string]any

// sentinels are string values upstream APIs emit in place of a missing field.
var sentinels = map[string]struct{}{
	"":          {},
	"undefined": {},
	"null":      {},
}

// IsPresent reports whether v carries a usable value. nil, sentinel strings,
// numeric zero and false are absent; objects and arrays are present even when
// empty.
func IsPresent(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		_, sentinel := sentinels[strings.TrimSpace(val)]
		return !sentinel
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return val.String() != ""
		}
		return f != 0
	case float64:
		return val != 0 && !math.IsNaN(val)
	case float32:
		return val != 0
	case int:
		return val != 0
	case int64:
		return val != 0
	case int32:
		return val != 0
	case bool:
		return val
	default:
		return true
	}
}

// PresentString returns s trimmed, or "" when s is a sentinel.
func PresentString(s string) string {
	s = strings.TrimSpace(s)
	if _, sentinel := sentinels[s]; sentinel {
		return ""
	}
	return s
}

// stringify coerces a scalar JSON value to its string form. Objects and
// arrays yield "".
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// toInt coerces a numeric or numeric-string JSON value. ok is false when v is
// not a number.
func toInt(v any) (int, bool) {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return int(i), true
		}
		if f, err := val.Float64(); err == nil {
			return int(f), true
		}
	case float64:
		return int(val), true
	case float32:
		return int(val), true
	case int:
		return val, true
	case int64:
		return int(val), true
	case int32:
		return int(val), true
	case string:
		s := strings.TrimSpace(val)
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f), true
		}
	}
	return 0, false
}

// firstValue returns the first present value among keys.
func firstValue(r Record, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && IsPresent(v) {
			return v, true
		}
	}
	return nil, false
}

// firstString returns the first present scalar value among keys as a trimmed
// string. Object and array values are skipped.
func firstString(r Record, keys []string) string {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || !IsPresent(v) {
			continue
		}
		if s := PresentString(stringify(v)); s != "" {
			return s
		}
	}
	return ""
}

// asRecord returns v as an object.
func asRecord(v any) (Record, bool) {
	r, ok := v.(map[string]any)
	return r, ok
}

// asList returns v as an array.
func asList(v any) ([]any, bool) {
	l, ok := v.([]any)
	return l, ok
}

// records keeps the object elements of list, in order.
func records(list []any) []Record {
	out := make([]Record, 0, len(list))
	for _, el := range list {
		if r, ok := asRecord(el); ok {
			out = append(out, r)
		}
	}
	return out
}

// nested walks r through the object path keys.
func nested(r Record, path ...string) (any, bool) {
	var cur any = r
	for _, k := range path {
		obj, ok := asRecord(cur)
		if !ok {
			return nil, false
		}
		cur, ok = obj[k]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// equalID compares two identifiers after coercion to strings.
func equalID(v any, target string) bool {
	if !IsPresent(v) {
		return false
	}
	return strings.TrimSpace(stringify(v)) == target
}

// StringField returns the first present scalar among keys as a trimmed
// string, or "".
func StringField(r Record, keys ...string) string {
	return firstString(r, keys)
}

// IntField returns r[key] coerced to an integer, or 0.
func IntField(r Record, key string) int {
	n, _ := toInt(r[key])
	return n
}

// Truthy reports whether r[key] is present and not a zero or false value.
func Truthy(r Record, key string) bool {
	return IsPresent(r[key])
}

// RecordField returns r[key] when it is an object.
func RecordField(r Record, key string) (Record, bool) {
	return asRecord(r[key])
}

// ListField returns the object elements of r[key] when it is an array.
func ListField(r Record, key string) ([]Record, bool) {
	l, ok := asList(r[key])
	if !ok {
		return nil, false
	}
	return records(l), true
}
