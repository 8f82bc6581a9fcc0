package decode

import (
	"errors"
	"fmt"
)

// ErrInvalidAmbiguity is returned by AmbiguityList.Validate.
var ErrInvalidAmbiguity = errors.New("invalid ambiguity entry")

// Ambiguity pairs a commonly misread character with the hexadecimal digits
// it is most likely standing in for, best guess first.
type Ambiguity struct {
	Trigger      byte   `json:"trigger"`
	Replacements string `json:"replacements"`
}

// AmbiguityList is consulted in slice order; earlier entries win.
type AmbiguityList []Ambiguity

// DefaultAmbiguities lists the misreads seen from tesseract on code images,
// ordered by priority.
var DefaultAmbiguities = AmbiguityList{
	{Trigger: 'G', Replacements: "6"},
	{Trigger: 'S', Replacements: "5"},
	{Trigger: 'H', Replacements: "4"},
	{Trigger: 'Z', Replacements: "7"},
	{Trigger: 'B', Replacements: "8"},
	{Trigger: '8', Replacements: "B"},
}

// Validate checks that every trigger is a single uppercase letter or digit
// and every replacement set is a non-empty run of hexadecimal digits.
func (l AmbiguityList) Validate() error {
	seen := make(map[byte]bool, len(l))
	for i, a := range l {
		if !(('A' <= a.Trigger && a.Trigger <= 'Z') || ('0' <= a.Trigger && a.Trigger <= '9')) {
			return fmt.Errorf("%w: entry %d: trigger %q must be an uppercase letter or digit",
				ErrInvalidAmbiguity, i, a.Trigger)
		}
		if seen[a.Trigger] {
			return fmt.Errorf("%w: entry %d: trigger %q listed twice", ErrInvalidAmbiguity, i, a.Trigger)
		}
		seen[a.Trigger] = true
		if a.Replacements == "" {
			return fmt.Errorf("%w: entry %d: trigger %q has no replacements", ErrInvalidAmbiguity, i, a.Trigger)
		}
		for j := 0; j < len(a.Replacements); j++ {
			c := a.Replacements[j]
			if !isHexDigit(c) || ('a' <= c && c <= 'f') {
				return fmt.Errorf("%w: entry %d: replacement %q is not an uppercase hex digit",
					ErrInvalidAmbiguity, i, c)
			}
		}
	}
	return nil
}

// Triggers returns the trigger characters in priority order.
func (l AmbiguityList) Triggers() string {
	b := make([]byte, 0, len(l))
	for _, a := range l {
		b = append(b, a.Trigger)
	}
	return string(b)
}

// MaxAttempts is the upper bound on table lookups for one token.
func (l AmbiguityList) MaxAttempts() int {
	n := 1
	for _, a := range l {
		n += len(a.Replacements)
	}
	return n
}
