// Package parser turns free-text model replies into typed records.
//
// The model is asked to follow a label template ("Outcome: ...") but nothing
// guarantees it does, so every extractor is permissive: labels match in any
// case, may carry markdown emphasis and accept a colon or a spaced dash as the
// separator. A label that cannot be found never fails the request; the field
// takes its fallback value and the label is reported as missing.
package parser

import (
	"regexp"
	"strings"
)

// separator accepts "Label:" or "Label -" (also en/em dash). A dash must be
// followed by whitespace so hyphenated prose ("outcome-based") is not a label.
const separator = `[*_]*\s*(?::|[-–—](?:\s|$))`

// fieldSet finds labelled values in text. A value runs from its label to the
// next label of the same set, or to the end of the text.
type fieldSet struct {
	re *regexp.Regexp
}

func newFieldSet(labels ...string) fieldSet {
	return fieldSet{re: regexp.MustCompile(`(?i)\b(` + strings.Join(labels, "|") + `)\b` + separator)}
}

type field struct {
	value string
	start int // offset of the label
	end   int // offset just past the value
}

// extract returns the first occurrence of each label, keyed by lower-cased label.
func (f fieldSet) extract(text string) map[string]field {
	matches := f.re.FindAllStringSubmatchIndex(text, -1)
	out := make(map[string]field, len(matches))
	for i, m := range matches {
		label := strings.ToLower(text[m[2]:m[3]])
		if _, seen := out[label]; seen {
			continue
		}
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		out[label] = field{value: cleanValue(text[m[1]:end]), start: m[0], end: end}
	}
	return out
}

// cleanValue strips whitespace and stray markdown emphasis around a value.
func cleanValue(s string) string {
	return strings.Trim(s, " \t\r\n*_")
}

func valueOr(fields map[string]field, label, fallback string) (string, bool) {
	if f, ok := fields[label]; ok && f.value != "" {
		return f.value, true
	}
	return fallback, false
}
