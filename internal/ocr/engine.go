package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"
)

var (
	// ErrEngineUnavailable means tesseract could not be started at all.
	ErrEngineUnavailable = errors.New("OCR engine unavailable")

	// ErrUnknownEngine is returned by NewEngine for an unrecognized name.
	ErrUnknownEngine = errors.New("unknown OCR engine")
)

// Engine names accepted by NewEngine.
const (
	EngineGosseract = "gosseract"
	EngineCLI       = "cli"
)

// Result is the output of one recognition pass.
type Result struct {
	// Text is the recognized text with the engine's spacing and newlines.
	Text string `json:"text"`

	// Boxes holds one entry per recognized character. May be empty.
	Boxes []Box `json:"boxes"`
}

// Engine recognizes text in an image.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, img image.Image) (*Result, error)
}

// Options configures an engine.
type Options struct {
	// Language is the Tesseract language code. Default "eng".
	Language string

	// TessdataPrefix overrides the directory holding *.traineddata files.
	TessdataPrefix string

	// BinaryPath is the tesseract executable used by CLIEngine.
	BinaryPath string

	// Timeout bounds a CLIEngine run. Zero means no limit beyond ctx.
	Timeout time.Duration
}

func (o Options) language() string {
	if o.Language == "" {
		return "eng"
	}
	return o.Language
}

// NewEngine returns the engine registered under name.
func NewEngine(name string, opts Options) (Engine, error) {
	switch name {
	case "", EngineGosseract:
		return NewTesseractEngine(opts), nil
	case EngineCLI:
		return NewCLIEngine(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q (want %s or %s)", ErrUnknownEngine, name, EngineGosseract, EngineCLI)
	}
}
