package decode

import (
	"fmt"
	"strings"
)

// Mode selects how each resolved token is rendered in the output.
type Mode string

const (
	ModeSymbol  Mode = "sym"
	ModeHex     Mode = "hex"
	ModeDecimal Mode = "dec"
	ModeBinary  Mode = "bin"
	ModeOctal   Mode = "oct"
)

// ParseMode accepts the mode names used in settings and tool arguments.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", ModeSymbol:
		return ModeSymbol, nil
	case ModeHex, ModeDecimal, ModeBinary, ModeOctal:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want sym, hex, dec, bin or oct)", s)
	}
}

// Challenges are listed by the disclosure suffix.
var Challenges = []string{
	"Software Architecture",
	"Third-party Integration",
	"Team Management",
}

// DisclosureSuffix is appended to the output when disclosure is enabled.
var DisclosureSuffix = "\n\nI believe the three most difficult challenges are " + strings.Join(Challenges, ", ")

// Result is the outcome of decoding one OCR text.
type Result struct {
	Tokens      []string     `json:"tokens"`
	Resolutions []Resolution `json:"resolutions"`
	Unresolved  []string     `json:"unresolved"`
	Output      string       `json:"output"`
	Mode        Mode         `json:"mode"`
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithMode sets the render mode. Default ModeSymbol.
func WithMode(m Mode) Option {
	return func(d *Decoder) { d.mode = m }
}

// WithDisclosure appends DisclosureSuffix to every output when enabled.
func WithDisclosure(enabled bool) Option {
	return func(d *Decoder) { d.disclosure = enabled }
}

// WithLogf routes per-token diagnostics to logf.
func WithLogf(logf func(format string, args ...interface{})) Option {
	return func(d *Decoder) { d.logf = logf }
}

// Decoder runs extraction, correction and output assembly.
// It holds no mutable state and is safe for concurrent use.
type Decoder struct {
	table       *Table
	ambiguities AmbiguityList
	extractor   *Extractor
	corrector   *Corrector

	mode       Mode
	disclosure bool
	logf       func(format string, args ...interface{})
}

// NewDecoder validates ambiguities and builds a decoder.
func NewDecoder(table *Table, ambiguities AmbiguityList, opts ...Option) (*Decoder, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: nil table", ErrInvalidTable)
	}
	if err := ambiguities.Validate(); err != nil {
		return nil, err
	}

	d := &Decoder{
		table:       table,
		ambiguities: ambiguities,
		extractor:   NewExtractor(ambiguities),
		corrector:   NewCorrector(table, ambiguities),
		mode:        ModeSymbol,
		logf:        func(string, ...interface{}) {},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Default returns a decoder over DefaultTable and DefaultAmbiguities.
func Default(opts ...Option) *Decoder {
	d, err := NewDecoder(DefaultTable(), DefaultAmbiguities, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// With returns a copy of d with opts applied.
func (d *Decoder) With(opts ...Option) *Decoder {
	c := *d
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

// Mode returns the configured render mode.
func (d *Decoder) Mode() Mode { return d.mode }

// Disclosure reports whether the disclosure suffix is appended.
func (d *Decoder) Disclosure() bool { return d.disclosure }

// Extract exposes the extraction stage.
func (d *Decoder) Extract(text string) []string {
	return d.extractor.Extract(text)
}

// Resolve exposes the correction stage for a single token.
func (d *Decoder) Resolve(token string) Resolution {
	return d.corrector.Resolve(token)
}

// Decode runs the full pipeline over text.
func (d *Decoder) Decode(text string) Result {
	tokens := d.extractor.Extract(text)
	res := Result{
		Tokens:      tokens,
		Resolutions: make([]Resolution, 0, len(tokens)),
		Unresolved:  []string{},
		Mode:        d.mode,
	}

	parts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		r := d.corrector.Resolve(tok)
		res.Resolutions = append(res.Resolutions, r)

		if !r.Found {
			d.logf("no symbol for token %q (tried %q after %d lookups)", tok, r.Code, r.Attempts)
			res.Unresolved = append(res.Unresolved, tok)
			continue
		}
		if r.Code != strings.ToUpper(tok) {
			d.logf("corrected token %q to %q", tok, r.Code)
		}
		parts = append(parts, d.render(r.Entry))
	}

	sep := " "
	if d.mode == ModeSymbol {
		sep = ""
	}
	res.Output = strings.Join(parts, sep)
	if d.disclosure {
		res.Output += DisclosureSuffix
	}
	return res
}

func (d *Decoder) render(e Entry) string {
	switch d.mode {
	case ModeHex:
		return e.Hex
	case ModeDecimal:
		return e.Dec
	case ModeBinary:
		return e.Bin
	case ModeOctal:
		return e.Oct
	default:
		if e.Symbol == SpaceSymbol {
			return " "
		}
		return e.Symbol
	}
}
