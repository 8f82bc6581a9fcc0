package decode

import (
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Column positions within a lookup table record.
const (
	colDec = iota
	colOct
	colBin
	colHex
	colSymbol
	colDescription
)

// SpaceSymbol is the symbol name rendered as a literal space.
const SpaceSymbol = "SPACE"

// ErrInvalidTable is returned when a lookup table source is malformed.
var ErrInvalidTable = errors.New("invalid lookup table")

//go:embed ascii_table.csv
var asciiTableCSV string

var (
	defaultTable     *Table
	defaultTableOnce sync.Once
)

// Entry is one row of the lookup table.
type Entry struct {
	Dec         string `json:"dec"`
	Oct         string `json:"oct"`
	Bin         string `json:"bin"`
	Hex         string `json:"hex"`
	Symbol      string `json:"symbol"`
	Description string `json:"description,omitempty"`
}

// Table maps two-character uppercase hexadecimal codes to entries.
// A Table is never modified after LoadTable returns.
type Table struct {
	entries map[string]Entry
}

// LoadTable parses comma-separated lookup records.
//
// Column 3 holds the code, which is uppercased on load; column 4 holds the
// symbol name. Columns 0-2 (decimal, octal, binary) and 5 (description) are
// optional. Every code must be exactly two hexadecimal digits and unique.
func LoadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	t := &Table{entries: make(map[string]Entry)}
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidTable, line, err)
		}
		if len(rec) <= colSymbol {
			return nil, fmt.Errorf("%w: line %d: want at least %d columns, got %d",
				ErrInvalidTable, line, colSymbol+1, len(rec))
		}

		code := strings.ToUpper(strings.TrimSpace(rec[colHex]))
		if !isHexCode(code) {
			return nil, fmt.Errorf("%w: line %d: code %q is not two hex digits", ErrInvalidTable, line, code)
		}
		if _, dup := t.entries[code]; dup {
			return nil, fmt.Errorf("%w: line %d: duplicate code %s", ErrInvalidTable, line, code)
		}

		e := Entry{
			Dec:    rec[colDec],
			Oct:    rec[colOct],
			Bin:    rec[colBin],
			Hex:    code,
			Symbol: rec[colSymbol],
		}
		if len(rec) > colDescription {
			e.Description = rec[colDescription]
		}
		t.entries[code] = e
	}
	return t, nil
}

// NewTable builds a table from code/symbol pairs. Codes are uppercased.
// It is intended for small hand-built tables; LoadTable is used for files.
func NewTable(symbols map[string]string) (*Table, error) {
	t := &Table{entries: make(map[string]Entry, len(symbols))}
	for code, sym := range symbols {
		code = strings.ToUpper(code)
		if !isHexCode(code) {
			return nil, fmt.Errorf("%w: code %q is not two hex digits", ErrInvalidTable, code)
		}
		if _, dup := t.entries[code]; dup {
			return nil, fmt.Errorf("%w: duplicate code %s", ErrInvalidTable, code)
		}
		t.entries[code] = Entry{Hex: code, Symbol: sym}
	}
	return t, nil
}

// DefaultTable returns the embedded ASCII table (codes 00-7F).
func DefaultTable() *Table {
	defaultTableOnce.Do(func() {
		t, err := LoadTable(strings.NewReader(asciiTableCSV))
		if err != nil {
			panic(fmt.Sprintf("decode: embedded ascii table: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// Lookup returns the entry for an uppercase code.
func (t *Table) Lookup(code string) (Entry, bool) {
	e, ok := t.entries[code]
	return e, ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}

func isHexCode(s string) bool {
	return len(s) == 2 && isHexDigit(s[0]) && isHexDigit(s[1])
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('A' <= c && c <= 'F') || ('a' <= c && c <= 'f')
}
