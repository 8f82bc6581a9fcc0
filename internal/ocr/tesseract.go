package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine recognizes text through libtesseract.
type TesseractEngine struct {
	opts          Options
	clientFactory func() *gosseract.Client
}

// NewTesseractEngine returns a gosseract-backed engine.
func NewTesseractEngine(opts Options) *TesseractEngine {
	return &TesseractEngine{opts: opts, clientFactory: gosseract.NewClient}
}

func (e *TesseractEngine) Name() string { return EngineGosseract }

// Recognize performs OCR on img and returns its text and per-character boxes.
//
// The image is handed to Tesseract as PNG bytes, so no temporary file is
// written. Character boxes come from the RIL_SYMBOL iterator level and are
// converted to box-file coordinates. If box extraction fails, the text is
// still returned with an empty Boxes slice.
func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	client := e.clientFactory()
	defer client.Close()

	if e.opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(e.opts.TessdataPrefix); err != nil {
			return nil, fmt.Errorf("%w: failed to set tessdata path: %v", ErrEngineUnavailable, err)
		}
	}

	if err := client.SetLanguage(e.opts.language()); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		if isInitError(err) {
			return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
		}
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	symbols, err := client.GetBoundingBoxes(gosseract.RIL_SYMBOL)
	if err != nil {
		return &Result{Text: text, Boxes: []Box{}}, nil
	}

	// Tesseract sees the PNG copy, whose origin is always (0,0).
	height := img.Bounds().Dy()
	boxes := make([]Box, 0, len(symbols))
	for _, s := range symbols {
		char := strings.TrimSpace(s.Word)
		if char == "" {
			continue
		}
		boxes = append(boxes, boxFromRect(char, s.Box, height))
	}

	return &Result{Text: text, Boxes: boxes}, nil
}

// isInitError reports whether err comes from TessBaseAPI initialization,
// which fails when the language data or library cannot be found.
func isInitError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "initialize") || strings.Contains(msg, "tessdata")
}
