package decode

import (
	"strings"
)

// Substitution records one candidate tried while resolving a token.
type Substitution struct {
	Trigger     string `json:"trigger"`
	Replacement string `json:"replacement"`
	Candidate   string `json:"candidate"`
	Hit         bool   `json:"hit"`
}

// Resolution is the outcome of resolving a single token.
type Resolution struct {
	// Token is the token as extracted.
	Token string `json:"token"`

	// Code is the corrected code. When Found is false it holds the token
	// after every substitution was applied.
	Code string `json:"code"`

	// Entry is the matched table row; zero when Found is false.
	Entry Entry `json:"entry"`

	Found bool `json:"found"`

	// Attempts counts table lookups, including the initial one.
	Attempts int `json:"attempts"`

	Substitutions []Substitution `json:"substitutions,omitempty"`
}

// Corrector resolves tokens against a table using an ambiguity list.
type Corrector struct {
	table       *Table
	ambiguities AmbiguityList
}

// NewCorrector returns a corrector over table and ambiguities.
func NewCorrector(table *Table, ambiguities AmbiguityList) *Corrector {
	return &Corrector{table: table, ambiguities: ambiguities}
}

// Resolve uppercases token and looks it up. On a miss, each ambiguity is
// applied in order: every candidate replacement is tried against the token as
// it stood before that ambiguity, and the first table hit wins. If no
// candidate hits, the first candidate's substitution is kept and the next
// ambiguity starts from there. Each ambiguity is applied once, so the number
// of lookups never exceeds ambiguities.MaxAttempts().
func (c *Corrector) Resolve(token string) Resolution {
	code := strings.ToUpper(token)
	res := Resolution{Token: token, Code: code, Attempts: 1}

	if e, ok := c.table.Lookup(code); ok {
		res.Entry, res.Found = e, true
		return res
	}

	for _, a := range c.ambiguities {
		trigger := string(a.Trigger)
		if !strings.Contains(code, trigger) {
			continue
		}

		base := code
		for i := 0; i < len(a.Replacements); i++ {
			repl := a.Replacements[i : i+1]
			candidate := strings.ReplaceAll(base, trigger, repl)
			res.Attempts++

			e, ok := c.table.Lookup(candidate)
			res.Substitutions = append(res.Substitutions, Substitution{
				Trigger:     trigger,
				Replacement: repl,
				Candidate:   candidate,
				Hit:         ok,
			})
			if ok {
				res.Code, res.Entry, res.Found = candidate, e, true
				return res
			}
			if i == 0 {
				code = candidate
			}
		}
	}

	res.Code = code
	return res
}
