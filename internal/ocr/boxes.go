package ocr

import (
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Box is one recognized character in box-file coordinates.
type Box struct {
	Char string `json:"char"`
	X1   int    `json:"x1"` // Left edge
	Y1   int    `json:"y1"` // Bottom edge, measured from the image bottom
	X2   int    `json:"x2"` // Right edge
	Y2   int    `json:"y2"` // Top edge, measured from the image bottom
	Page int    `json:"page"`
}

// Rect converts the box to top-left origin pixel coordinates for an image of
// the given height.
func (b Box) Rect(imageHeight int) image.Rectangle {
	return image.Rect(b.X1, imageHeight-b.Y2, b.X2, imageHeight-b.Y1)
}

// boxFromRect is the inverse of Box.Rect.
func boxFromRect(char string, r image.Rectangle, imageHeight int) Box {
	return Box{
		Char: char,
		X1:   r.Min.X,
		Y1:   imageHeight - r.Max.Y,
		X2:   r.Max.X,
		Y2:   imageHeight - r.Min.Y,
	}
}

// ParseBoxes parses Tesseract box output: one record per line made of the
// character followed by left, bottom, right and top, and optionally the page.
// Blank lines are ignored.
func ParseBoxes(blob string) ([]Box, error) {
	boxes := make([]Box, 0)
	for n, line := range strings.Split(blob, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 5 || len(fields) > 6 {
			return nil, fmt.Errorf("box line %d: want 5 or 6 fields, got %d", n+1, len(fields))
		}
		if !utf8.ValidString(fields[0]) {
			return nil, fmt.Errorf("box line %d: invalid character %q", n+1, fields[0])
		}

		var coords [5]int
		for i, f := range fields[1:] {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("box line %d: field %d: %w", n+1, i+2, err)
			}
			coords[i] = v
		}
		boxes = append(boxes, Box{
			Char: fields[0],
			X1:   coords[0],
			Y1:   coords[1],
			X2:   coords[2],
			Y2:   coords[3],
			Page: coords[4],
		})
	}
	return boxes, nil
}

// FormatBoxes renders boxes in the format read by ParseBoxes.
func FormatBoxes(boxes []Box) string {
	var sb strings.Builder
	for i, b := range boxes {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s %d %d %d %d %d", b.Char, b.X1, b.Y1, b.X2, b.Y2, b.Page)
	}
	return sb.String()
}

// ScaleBoxes divides every coordinate by factor, mapping boxes found on an
// upscaled copy back to the original image. A factor of 0 or 1 returns the
// boxes unchanged.
func ScaleBoxes(boxes []Box, factor float64) []Box {
	if factor == 0 || factor == 1 {
		return boxes
	}
	out := make([]Box, len(boxes))
	for i, b := range boxes {
		b.X1 = int(math.Round(float64(b.X1) / factor))
		b.Y1 = int(math.Round(float64(b.Y1) / factor))
		b.X2 = int(math.Round(float64(b.X2) / factor))
		b.Y2 = int(math.Round(float64(b.Y2) / factor))
		out[i] = b
	}
	return out
}
