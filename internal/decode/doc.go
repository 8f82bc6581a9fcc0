// Package decode turns OCR text into a decoded message.
//
// The pipeline has three stages:
//
//   - Extractor: scans raw OCR text for two-character tokens drawn from the
//     hexadecimal alphabet plus the trigger characters of the ambiguity list.
//   - Corrector: resolves each token against the lookup table, substituting
//     commonly misread characters in priority order until the table matches.
//   - Decoder: runs both stages and assembles the symbols of resolved tokens
//     into the output string.
//
// # Lookup Table
//
// The table maps an uppercase two-character hexadecimal code to an Entry
// (decimal, octal, binary, hex, symbol name, description). DefaultTable
// returns the embedded ASCII table covering codes 00 to 7F. Tables are
// immutable once loaded and safe for concurrent use.
//
// # Ambiguity List
//
// An AmbiguityList is an ordered slice of (trigger, replacements) pairs. The
// order is the priority order and is never derived from a map, so the same
// token always resolves the same way:
//
//	G -> 6, S -> 5, H -> 4, Z -> 7, B -> 8, 8 -> B
//
// B and 8 are both hexadecimal digits and appear on both sides. Each entry is
// applied once, in one direction, so a resolution attempt always terminates.
//
// # Unresolved Tokens
//
// A token that never matches the table is dropped from the output and
// reported in Result.Unresolved. It is not an error.
package decode
