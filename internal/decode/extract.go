package decode

import (
	"regexp"
)

// Extractor finds two-character token candidates in OCR text.
type Extractor struct {
	pattern *regexp.Regexp
}

// NewExtractor builds an extractor whose character class is the hexadecimal
// alphabet plus every trigger in the ambiguity list. Matching is
// case-insensitive.
func NewExtractor(ambiguities AmbiguityList) *Extractor {
	class := "0-9a-fA-F" + regexp.QuoteMeta(ambiguities.Triggers())
	return &Extractor{
		pattern: regexp.MustCompile(`(?i)[` + class + `]{2}`),
	}
}

// Extract returns every non-overlapping two-character match, left to right.
// The result is empty, not nil, when nothing matches.
func (e *Extractor) Extract(text string) []string {
	tokens := e.pattern.FindAllString(text, -1)
	if tokens == nil {
		return []string{}
	}
	return tokens
}

// Pattern returns the compiled expression, for diagnostics.
func (e *Extractor) Pattern() string {
	return e.pattern.String()
}
