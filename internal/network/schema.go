package network

import (
	"fmt"
	"strings"
)

// validateSchema checks doc against the provider's field rules. The document
// must be an object and every present field must have the declared kind.
// Optional fields may be absent but never null.
func validateSchema(doc Value, rules []FieldRule) error {
	if doc.Kind() != KindObject {
		return fmt.Errorf("%w: response is %s, not object", ErrValidation, doc.Kind())
	}
	for _, rule := range rules {
		v, ok := doc.Path(rule.Path)
		if !ok {
			if rule.Required {
				return fmt.Errorf("%w: missing required field %q", ErrValidation, rule.Path)
			}
			continue
		}
		want := rule.Kind
		if want == KindNull {
			// untyped rules check for a string
			want = KindString
		}
		if v.Kind() != want {
			return fmt.Errorf("%w: field %q is %s, want %s", ErrValidation, rule.Path, v.Kind(), want)
		}
	}
	return nil
}

// failureMarker returns the first failure rule doc matches.
func failureMarker(doc Value, rules []FailureRule) (FailureRule, bool) {
	for _, rule := range rules {
		v, ok := doc.Path(rule.Path)
		if ok && v.Equals(rule.Equals) {
			return rule, true
		}
	}
	return FailureRule{}, false
}

// extract resolves every configured field path in doc. Missing, non-string
// and blank values fall back to Unknown, except region which falls back to
// the empty string.
func extract(doc Value, fields Fields) Record {
	return Record{
		IP:      textAt(doc, fields.IP, Unknown),
		City:    textAt(doc, fields.City, Unknown),
		Region:  textAt(doc, fields.Region, ""),
		Country: textAt(doc, fields.Country, Unknown),
		ISP:     textAt(doc, fields.ISP, Unknown),
	}
}

func textAt(doc Value, path, fallback string) string {
	if path == "" {
		return fallback
	}
	v, ok := doc.Path(path)
	if !ok {
		return fallback
	}
	s, ok := v.Text()
	if !ok {
		return fallback
	}
	if s = strings.TrimSpace(s); s == "" {
		return fallback
	}
	return s
}
