package expr

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// pureRef matches a trimmed template consisting of exactly one reference and
// nothing else: "{{ path }}".
var pureRef = regexp.MustCompile(`^\{\{([^{}]*)\}\}$`)

// ref matches one reference occurrence inside a larger template.
var ref = regexp.MustCompile(`\{\{([^{}]*)\}\}`)

// Evaluate resolves a template against a context.
//
// A non-string input is returned unchanged. A string with no "{{" is a
// literal, returned unchanged. A string that is exactly one reference
// ("pure-reference mode") resolves to the referenced value with its native
// type preserved; a missing path yields nil. Any other string containing
// references is interpolated: each reference is replaced by the string form
// of its value (missing paths become the empty string) and the result is
// always a string.
//
// Evaluation is a pure function of (template, context).
func Evaluate(template any, context map[string]any) any {
	s, ok := template.(string)
	if !ok {
		return template
	}
	if !strings.Contains(s, "{{") {
		return s
	}

	trimmed := strings.TrimSpace(s)
	if m := pureRef.FindStringSubmatch(trimmed); m != nil {
		value, found := Lookup(context, strings.TrimSpace(m[1]))
		if !found {
			return nil
		}
		return value
	}

	return Interpolate(s, context)
}

// Interpolate replaces every "{{ path }}" occurrence in s with the string
// form of its resolved value. Missing paths resolve to the empty string,
// never the literal "undefined".
func Interpolate(s string, context map[string]any) string {
	return ref.ReplaceAllStringFunc(s, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-2])
		value, found := Lookup(context, path)
		if !found {
			return ""
		}
		return Stringify(value)
	})
}

// Lookup resolves a dot-separated path against a JSON-like value. Dots
// traverse nested mappings; numeric segments index sequences. A missing
// intermediate key reports not-found rather than panicking.
func Lookup(root any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	current := root
	for _, segment := range strings.Split(path, ".") {
		switch v := current.(type) {
		case map[string]any:
			next, ok := v[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, false
			}
			current = v[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// Stringify renders a resolved value for interpolation. Numbers keep their
// shortest decimal form, composites render as JSON, nil renders empty.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
