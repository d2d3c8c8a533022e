package validation

import (
	"fmt"
	"it-solutions-hub/internal/schema"
	"it-solutions-hub/internal/slug"
	"slices"
	"sort"
	"strings"
	"unicode/utf8"
)

// Errors maps a payload key to the reason it was rejected.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e[k]))
	}
	return strings.Join(parts, "; ")
}

// Payload checks an admin payload against an entity definition.
//
// Unknown keys and read-only keys are rejected. With partial set (an update)
// only the keys present are checked; otherwise required fields must be present
// and non-empty. A nil error means the payload is acceptable.
func Payload(entity schema.Entity, payload map[string]any, partial bool) error {
	errs := Errors{}

	for key, value := range payload {
		field, ok := entity.Field(key)
		if !ok {
			errs[key] = "unknown field"
			continue
		}
		if field.ReadOnly {
			errs[key] = "field is read-only"
			continue
		}
		if msg := checkValue(field, value); len(msg) > 0 {
			errs[key] = msg
		}
	}

	if !partial {
		for _, field := range entity.Fields {
			if !field.Required || field.ReadOnly {
				continue
			}
			key := field.Column()
			if _, rejected := errs[key]; rejected {
				continue
			}
			if isBlank(payload[key]) {
				errs[key] = "this field is required"
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func checkValue(field schema.Field, value any) string {
	switch field.Kind {
	case schema.KindString, schema.KindText, schema.KindImage:
		s, ok := value.(string)
		if !ok {
			return "must be a string"
		}
		if field.Required && len(strings.TrimSpace(s)) == 0 {
			return "this field is required"
		}
		if field.MaxLength > 0 && utf8.RuneCountInString(s) > field.MaxLength {
			return fmt.Sprintf("must be at most %d characters", field.MaxLength)
		}
		if len(field.Choices) > 0 && !slices.Contains(field.Choices, s) {
			return fmt.Sprintf("must be one of %s", strings.Join(field.Choices, ", "))
		}
		if field.Name == "Slug" && len(s) > 0 && !slug.IsValid(s) {
			return "must consist of letters, numbers, underscores or hyphens"
		}
	case schema.KindInt:
		n, ok := asNumber(value)
		if !ok {
			return "must be a number"
		}
		if n < 0 {
			return "must not be negative"
		}
	case schema.KindBool:
		if _, ok := value.(bool); !ok {
			return "must be a boolean"
		}
	case schema.KindRef:
		if value == nil {
			return ""
		}
		n, ok := asNumber(value)
		if !ok || n <= 0 {
			return "must be a positive id or null"
		}
	case schema.KindRefs:
		ids, ok := value.([]any)
		if !ok {
			return "must be a list of ids"
		}
		for _, id := range ids {
			if n, ok := asNumber(id); !ok || n <= 0 {
				return "must be a list of positive ids"
			}
		}
	case schema.KindTime:
		return "field is read-only"
	}
	return ""
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, v == float64(int64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	}
	return 0, false
}

func isBlank(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return len(strings.TrimSpace(s)) == 0
	}
	return false
}
