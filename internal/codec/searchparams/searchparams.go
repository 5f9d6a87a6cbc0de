// Package searchparams encodes search form state to and from URL query strings.
//
// Strings pass through, objects are JSON-encoded, and arrays use the
// bracket form key[]=a&key[]=b so a one-element array decodes back to an
// array. Decoding promotes a value to a structured one only when it parses as
// a JSON object or array. Booleans and numbers are encoded as text and are
// not coerced back.
package searchparams

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

const arraySuffix = "[]"

// Serialize encodes state as a query string with keys in sorted order.
// nil values, empty strings and empty arrays are dropped.
func Serialize(state map[string]any) string {
	values := url.Values{}
	for k, v := range state {
		switch x := v.(type) {
		case []any:
			for _, item := range x {
				if s, ok := scalar(item); ok {
					values.Add(k+arraySuffix, s)
				}
			}
		case []string:
			for _, item := range x {
				if item != "" {
					values.Add(k+arraySuffix, item)
				}
			}
		default:
			if s, ok := scalar(v); ok {
				values.Set(k, s)
			}
		}
	}
	return values.Encode()
}

// scalar stringifies one value; ok is false for values that are dropped.
func scalar(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, x != ""
	case bool:
		return strconv.FormatBool(x), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case json.Number:
		return x.String(), true
	default:
		raw, err := json.Marshal(x)
		if err != nil || string(raw) == "null" {
			return "", false
		}
		return string(raw), true
	}
}

// Deserialize decodes a query string produced by Serialize. It never fails:
// malformed escapes keep their raw text and empty keys are skipped.
// Keys repeated without the bracket suffix also decode as arrays.
func Deserialize(qs string) map[string]any {
	qs = strings.TrimPrefix(qs, "?")
	out := make(map[string]any)
	arrays := make(map[string]bool)
	for pair := range strings.SplitSeq(qs, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key := unescape(rawKey)
		if key == "" {
			continue
		}
		value := parse(unescape(rawValue))

		if name, isArray := strings.CutSuffix(key, arraySuffix); isArray && name != "" {
			key = name
			arrays[key] = true
		}
		prev, seen := out[key]
		switch {
		case !seen && arrays[key]:
			out[key] = []any{value}
		case !seen:
			out[key] = value
		default:
			if list, ok := prev.([]any); ok && arrays[key] {
				out[key] = append(list, value)
			} else {
				arrays[key] = true
				out[key] = []any{prev, value}
			}
		}
	}
	return out
}

func unescape(s string) string {
	if u, err := url.QueryUnescape(s); err == nil {
		return u
	}
	return s
}

// parse keeps s verbatim unless it decodes to a JSON object or array.
func parse(s string) any {
	t := strings.TrimSpace(s)
	if t == "" || (t[0] != '{' && t[0] != '[') {
		return s
	}
	var v any
	if err := json.Unmarshal([]byte(t), &v); err != nil {
		return s
	}
	switch v.(type) {
	case map[string]any, []any:
		return v
	default:
		return s
	}
}
