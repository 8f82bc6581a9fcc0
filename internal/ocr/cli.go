package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/disintegration/imaging"
)

// CLIEngine runs the tesseract executable once for text and once with the
// makebox config for character boxes.
type CLIEngine struct {
	opts     Options
	lookPath func(string) (string, error)
}

// NewCLIEngine returns an engine that shells out to opts.BinaryPath
// ("tesseract" when empty).
func NewCLIEngine(opts Options) *CLIEngine {
	if opts.BinaryPath == "" {
		opts.BinaryPath = "tesseract"
	}
	return &CLIEngine{opts: opts, lookPath: exec.LookPath}
}

func (e *CLIEngine) Name() string { return EngineCLI }

// Recognize writes img to a temporary PNG and runs tesseract on it.
func (e *CLIEngine) Recognize(ctx context.Context, img image.Image) (*Result, error) {
	bin, err := e.lookPath(e.opts.BinaryPath)
	if err != nil {
		return nil, fmt.Errorf("%w: did not find tesseract at %s", ErrEngineUnavailable, e.opts.BinaryPath)
	}

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	tmpFile, err := os.CreateTemp("", "code-solver-ocr-*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if err := imaging.Encode(tmpFile, img, imaging.PNG); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("failed to encode temp image: %w", err)
	}
	tmpFile.Close()

	text, err := e.run(ctx, bin, tmpPath)
	if err != nil {
		return nil, err
	}

	blob, err := e.run(ctx, bin, tmpPath, "makebox")
	if err != nil {
		log.Printf("tesseract makebox failed, returning text only: %v", err)
		return &Result{Text: text, Boxes: []Box{}}, nil
	}
	boxes, err := ParseBoxes(blob)
	if err != nil {
		log.Printf("unreadable tesseract box output, returning text only: %v", err)
		return &Result{Text: text, Boxes: []Box{}}, nil
	}

	return &Result{Text: text, Boxes: boxes}, nil
}

func (e *CLIEngine) run(ctx context.Context, bin, input string, configs ...string) (string, error) {
	args := []string{input, "stdout", "-l", e.opts.language()}
	if e.opts.TessdataPrefix != "" {
		args = append(args, "--tessdata-dir", e.opts.TessdataPrefix)
	}
	args = append(args, configs...)

	cmd := exec.CommandContext(ctx, bin, args...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("tesseract failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out.String(), nil
}
