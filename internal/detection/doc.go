// Package detection locates text in an image so OCR can run on a tight
// crop instead of the whole screenshot.
//
// # Algorithm
//
//  1. Edge map: grayscale, Laplacian edge detection (bild), then a threshold
//  2. Scan: a sliding window steps by half its size; a summed-area table
//     gives each window's edge density in constant time
//  3. Filter: windows outside the density range, or whose edges are not
//     mostly horizontal runs, are dropped
//  4. Merge: overlapping windows are folded into regions
//
// FindText returns the union of all regions with padding, which is what
// the solver crops to when auto-crop is enabled.
//
// # Coordinate System
//
// Regions use the input image's coordinates, so a sub-image yields bounds
// that can be passed straight back to a crop of the parent.
//
// # Limitations
//
// The heuristics suit dark glyphs on a plain light or dark background.
// Busy backgrounds can push windows past MaxDensity and hide the text.
package detection
