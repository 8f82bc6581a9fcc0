// Package ocr runs Tesseract over an in-memory image.
//
// Two engines implement the Engine interface:
//
//   - TesseractEngine links libtesseract through gosseract/v2.
//   - CLIEngine runs the tesseract executable named in the settings file,
//     for installs where only the binary is available.
//
// Both return the recognized text plus one Box per recognized character.
// Boxes use the Tesseract box-file convention: the origin is the bottom-left
// corner of the image, so Y1 is the bottom edge and Y2 the top edge.
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr libtesseract-dev
//   - macOS: brew install tesseract
//   - Windows: Download from https://github.com/UB-Mannheim/tesseract/wiki
//
// # Error Handling
//
// A missing executable, library or language data is reported as
// ErrEngineUnavailable so callers can tell "fix your install" apart from a
// failed recognition. If per-character boxes cannot be produced the engines
// still return the text with an empty Boxes slice.
package ocr
