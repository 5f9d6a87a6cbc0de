package field

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ValueKind tags the variants of Value.
type ValueKind int

// Value kinds.
const (
	KindScalar ValueKind = iota
	KindName
	KindDateRange
	KindSelectDateRange
	KindAddress
)

// Value is a field value interpreted through its field type.
// Implementations: NameValue, DateRangeValue, SelectDateRangeValue,
// AddressValue, ScalarValue.
type Value interface {
	Kind() ValueKind
	IsEmpty() bool
}

// NameValue is the value of a NAME field.
type NameValue struct {
	Firstname  string
	Middlename string
	Surname    string
}

// Kind implements Value.
func (NameValue) Kind() ValueKind { return KindName }

// IsEmpty reports whether no name part is set.
func (n NameValue) IsEmpty() bool { return n.String() == "" }

// String joins the non-empty parts as "firstname middlename surname".
func (n NameValue) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{n.Firstname, n.Middlename, n.Surname} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// FilledParts counts the non-empty name parts.
func (n NameValue) FilledParts() int {
	count := 0
	for _, p := range []string{n.Firstname, n.Middlename, n.Surname} {
		if strings.TrimSpace(p) != "" {
			count++
		}
	}
	return count
}

// DateRangeValue is an inclusive date range. A single date has Start == End.
type DateRangeValue struct {
	Start string
	End   string
}

// Kind implements Value.
func (DateRangeValue) Kind() ValueKind { return KindDateRange }

// IsEmpty reports whether neither bound is set.
func (d DateRangeValue) IsEmpty() bool { return d.Start == "" && d.End == "" }

// String returns the "start,end" form.
func (d DateRangeValue) String() string { return d.Start + "," + d.End }

// SelectDateRangeValue is a named time period such as "last7Days".
type SelectDateRangeValue struct {
	Period string
}

// Kind implements Value.
func (SelectDateRangeValue) Kind() ValueKind { return KindSelectDateRange }

// IsEmpty reports whether no period is chosen.
func (s SelectDateRangeValue) IsEmpty() bool { return s.Period == "" }

// AddressValue is the structured value of an ADDRESS field.
type AddressValue struct {
	Fields map[string]any
}

// Kind implements Value.
func (AddressValue) Kind() ValueKind { return KindAddress }

// IsEmpty reports whether no address part is set.
func (a AddressValue) IsEmpty() bool {
	for _, v := range a.Fields {
		if !IsEmptyRaw(v) {
			return false
		}
	}
	return true
}

// JSON serializes the address as a single search term.
func (a AddressValue) JSON() (string, error) {
	raw, err := json.Marshal(a.Fields)
	if err != nil {
		return "", fmt.Errorf("marshal address: %w", err)
	}
	return string(raw), nil
}

// ScalarValue is any value without field-specific structure.
type ScalarValue struct {
	Raw any
}

// Kind implements Value.
func (ScalarValue) Kind() ValueKind { return KindScalar }

// IsEmpty reports whether the value is nil, an empty string or an empty list.
func (s ScalarValue) IsEmpty() bool { return IsEmptyRaw(s.Raw) }

// String stringifies the value the way it is indexed.
func (s ScalarValue) String() string { return stringify(s.Raw) }

// Strings returns list elements as strings; a non-list yields one element.
func (s ScalarValue) Strings() []string {
	switch v := s.Raw.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if !IsEmptyRaw(item) {
				out = append(out, stringify(item))
			}
		}
		return out
	case []string:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item != "" {
				out = append(out, item)
			}
		}
		return out
	default:
		if IsEmptyRaw(v) {
			return nil
		}
		return []string{stringify(v)}
	}
}

// IsEmptyRaw reports whether a raw value represents "no value".
func IsEmptyRaw(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []any:
		return len(x) == 0
	case []string:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	default:
		return false
	}
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	case nil:
		return ""
	default:
		raw, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(raw)
	}
}

// ParseValue interprets a raw value according to the field type.
// A nil raw value yields a nil Value.
func ParseValue(t Type, raw any) (Value, error) {
	if raw == nil {
		return nil, nil
	}
	switch t {
	case Name:
		return parseName(raw)
	case Date, DateRange:
		return parseDateRange(raw)
	case SelectDateRange:
		if s, ok := raw.(string); ok && !isDateLike(s) {
			return SelectDateRangeValue{Period: s}, nil
		}
		return parseDateRange(raw)
	case Address:
		m, ok := asMap(raw)
		if !ok {
			return nil, fmt.Errorf("address value must be an object, got %T", raw)
		}
		return AddressValue{Fields: m}, nil
	default:
		return ScalarValue{Raw: raw}, nil
	}
}

func parseName(raw any) (Value, error) {
	m, ok := asMap(raw)
	if !ok {
		return nil, fmt.Errorf("name value must be an object, got %T", raw)
	}
	return NameValue{
		Firstname:  stringify(m["firstname"]),
		Middlename: stringify(m["middlename"]),
		Surname:    stringify(m["surname"]),
	}, nil
}

func parseDateRange(raw any) (Value, error) {
	switch v := raw.(type) {
	case string:
		if start, end, ok := strings.Cut(v, ","); ok {
			return DateRangeValue{Start: strings.TrimSpace(start), End: strings.TrimSpace(end)}, nil
		}
		return DateRangeValue{Start: v, End: v}, nil
	default:
		m, ok := asMap(raw)
		if !ok {
			return nil, fmt.Errorf("date range value must be a string or object, got %T", raw)
		}
		return DateRangeValue{Start: stringify(m["start"]), End: stringify(m["end"])}, nil
	}
}

func asMap(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case map[string]any:
		return v, true
	case map[string]string:
		out := make(map[string]any, len(v))
		for k, s := range v {
			out[k] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// isDateLike reports whether s starts with a YYYY-MM-DD date.
func isDateLike(s string) bool {
	if len(s) < 10 {
		return false
	}
	for i, r := range s[:10] {
		switch i {
		case 4, 7:
			if r != '-' {
				return false
			}
		default:
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}
