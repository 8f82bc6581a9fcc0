// Package solver ties image acquisition, OCR and decoding together and
// holds the state a user session works on: the current image, the
// recognized boxes, the last decoded output and a status line.
package solver

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/ironsheep/code-solver/internal/config"
	"github.com/ironsheep/code-solver/internal/decode"
	"github.com/ironsheep/code-solver/internal/detection"
	"github.com/ironsheep/code-solver/internal/imaging"
	"github.com/ironsheep/code-solver/internal/logutil"
	"github.com/ironsheep/code-solver/internal/ocr"
)

const (
	// HighlightDuration is how long an error status stays highlighted.
	HighlightDuration = 1500 * time.Millisecond

	// SeeErrorLog is the status shown for failures written to errors.log.
	SeeErrorLog = "Error occurred, see errors.log"
)

var (
	// ErrNoImage is returned when cracking or rendering before an image
	// has been loaded.
	ErrNoImage = errors.New("no image loaded")

	// ErrInvalidRegion is returned when a crack region does not fit the image.
	ErrInvalidRegion = errors.New("invalid region")
)

// Level classifies the status line.
type Level string

const (
	LevelInfo    Level = "info"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

// Status is the status line plus what the session can do next.
type Status struct {
	Text      string `json:"text"`
	Level     Level  `json:"level"`
	Highlight bool   `json:"highlight"`
	CanCrack  bool   `json:"can_crack"`

	Image  *imaging.ImageInfo `json:"image,omitempty"`
	Output string             `json:"output"`
}

// Rect selects part of the image in pixel coordinates; (X2,Y2) is exclusive.
type Rect struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// CrackResult is the outcome of one OCR and decode pass.
type CrackResult struct {
	Engine string        `json:"engine"`
	Text   string        `json:"text"`
	Boxes  []ocr.Box     `json:"boxes"`
	Region *Rect         `json:"region,omitempty"`
	Decode decode.Result `json:"decode"`
}

// RenderRequest sizes the canvas and overrides the stored canvas settings.
// Zero or nil fields fall back to the settings.
type RenderRequest struct {
	CanvasWidth  int
	CanvasHeight int
	Alpha        *int
	ShowBoxes    *bool
}

// Option configures a Solver.
type Option func(*Solver)

// WithEngine fixes the OCR engine instead of building one from settings.
func WithEngine(e ocr.Engine) Option {
	return func(s *Solver) { s.engine = e }
}

// WithLoader replaces the image loader.
func WithLoader(l *imaging.Loader) Option {
	return func(s *Solver) { s.loader = l }
}

// WithDecoder replaces the base decoder. Mode and disclosure still come
// from settings.
func WithDecoder(d *decode.Decoder) Option {
	return func(s *Solver) { s.decoder = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Solver) { s.now = now }
}

// Solver is safe for concurrent use. OCR runs without holding the state
// lock, so Status stays responsive during a crack.
type Solver struct {
	store    *config.Store
	loader   *imaging.Loader
	engine   ocr.Engine
	decoder  *decode.Decoder
	viewport *imaging.Viewport
	now      func() time.Time

	mu             sync.Mutex
	img            image.Image
	info           *imaging.ImageInfo
	marks          []imaging.Mark
	last           *CrackResult
	status         Status
	highlightUntil time.Time
}

// New creates a solver reading its settings from store.
func New(store *config.Store, opts ...Option) *Solver {
	settings := store.Settings()

	s := &Solver{
		store:    store,
		viewport: imaging.NewViewport(settings.Canvas.ResizeThreshold, settings.Window.CenterImage),
		now:      time.Now,
		status:   Status{Text: "Awaiting user", Level: LevelInfo},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.loader == nil {
		s.loader = imaging.NewLoader(settings.System.HTTPTimeout)
	}
	if s.decoder == nil {
		s.decoder = decode.Default(decode.WithLogf(logutil.Debugf))
	}
	return s
}

// LoadURL downloads the image at url and makes it current.
func (s *Solver) LoadURL(ctx context.Context, url string) (*imaging.ImageInfo, error) {
	img, err := s.loader.LoadURL(ctx, url)
	return s.accept(img, imaging.Source{Kind: imaging.SourceURL, Location: url}, err)
}

// LoadFile decodes the image at path and makes it current.
func (s *Solver) LoadFile(path string) (*imaging.ImageInfo, error) {
	img, err := s.loader.LoadFile(path)
	return s.accept(img, imaging.Source{Kind: imaging.SourceFile, Location: path}, err)
}

// CaptureScreen grabs region, or the primary display when region is nil,
// and makes it current.
func (s *Solver) CaptureScreen(region *imaging.Region) (*imaging.ImageInfo, error) {
	var r imaging.Region
	if region != nil {
		r = *region
	} else {
		display, err := imaging.PrimaryDisplay()
		if err != nil {
			return s.accept(nil, imaging.Source{Kind: imaging.SourceScreen}, err)
		}
		r = display
	}

	img, err := s.loader.CaptureScreen(r)
	loc := fmt.Sprintf("%d,%d %dx%d", r.X, r.Y, r.Width, r.Height)
	return s.accept(img, imaging.Source{Kind: imaging.SourceScreen, Location: loc}, err)
}

func (s *Solver) accept(img image.Image, src imaging.Source, err error) (*imaging.ImageInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.setErrorLocked(acquireMessage(err), err)
		return nil, err
	}

	info := imaging.InfoFor(img, src)
	s.img = img
	s.info = info
	s.marks = nil
	s.last = nil
	s.viewport.SetImage(info.Width, info.Height)
	s.setStatusLocked("Loaded image", LevelInfo)
	logutil.Debugf("Loaded %s image %s (%dx%d)", src.Kind, src.Location, info.Width, info.Height)
	return info, nil
}

func acquireMessage(err error) string {
	switch {
	case errors.Is(err, imaging.ErrInvalidURL):
		return "Invalid image URL"
	case errors.Is(err, imaging.ErrFileNotFound):
		return "Did not find specified local image"
	case errors.Is(err, imaging.ErrCapture):
		return "Screen capture failed"
	default:
		return SeeErrorLog
	}
}

// Crack runs OCR on the current image, or on region of it, and decodes the
// recognized text. On failure the previous output is kept.
func (s *Solver) Crack(ctx context.Context, region *Rect) (*CrackResult, error) {
	s.mu.Lock()
	img := s.img
	s.mu.Unlock()

	if img == nil {
		return nil, ErrNoImage
	}

	target := img
	if region != nil {
		cropped, err := imaging.CropRegion(img, region.X1, region.Y1, region.X2, region.Y2)
		if err != nil {
			s.setError("Invalid region", err)
			return nil, fmt.Errorf("%w: %v", ErrInvalidRegion, err)
		}
		target = cropped
	}

	settings := s.store.Settings()
	if region == nil && settings.System.AutoCrop {
		if r, ok := detection.FindText(img, detection.DefaultOptions); ok {
			if cropped, err := imaging.CropRegion(img, r.Min.X, r.Min.Y, r.Max.X, r.Max.Y); err == nil {
				logutil.Debugf("auto-crop to %v", r)
				target = cropped
				region = &Rect{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
			}
		}
	}

	engine, err := s.engineFor(settings)
	if err != nil {
		s.setError(SeeErrorLog, err)
		return nil, err
	}

	prep := imaging.PreprocessOptions{Scale: settings.System.Upscale}
	if settings.System.Preprocess {
		prep = imaging.DefaultPreprocess
		prep.Scale = settings.System.Upscale
	}

	res, err := engine.Recognize(ctx, imaging.Preprocess(target, prep))
	if err != nil {
		s.setError(ocrMessage(err, settings), err)
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	boxes := ocr.ScaleBoxes(res.Boxes, prep.Scale)
	bounds := target.Bounds()
	marks := make([]imaging.Mark, len(boxes))
	for i, b := range boxes {
		marks[i] = imaging.Mark{Label: b.Char, Rect: b.Rect(bounds.Dy()).Add(bounds.Min)}
	}

	result := &CrackResult{
		Engine: engine.Name(),
		Text:   res.Text,
		Boxes:  boxes,
		Region: region,
		Decode: s.decoderFor(settings).Decode(res.Text),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.img == img {
		s.marks = marks
		s.last = result
		s.setStatusLocked("Cracked code!", LevelSuccess)
	}
	return result, nil
}

func ocrMessage(err error, settings config.Settings) string {
	switch {
	case errors.Is(err, ocr.ErrEngineUnavailable):
		if settings.System.OCREngine == ocr.EngineCLI {
			return "Did not find tesseract at " + settings.System.TesseractPath
		}
		return "OCR engine unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "OCR canceled"
	default:
		return SeeErrorLog
	}
}

// DecodeText runs the decode pipeline on text without touching the session.
func (s *Solver) DecodeText(text string) decode.Result {
	return s.decoderFor(s.store.Settings()).Decode(text)
}

// ResolveToken corrects and looks up a single token.
func (s *Solver) ResolveToken(token string) decode.Resolution {
	return s.decoder.Resolve(token)
}

// Render draws the current image with its boxes into a canvas.
func (s *Solver) Render(req RenderRequest) (*imaging.ImageResult, imaging.Layout, error) {
	settings := s.store.Settings()

	w, h := req.CanvasWidth, req.CanvasHeight
	if w <= 0 {
		w = settings.Window.Width
	}
	if h <= 0 {
		h = settings.Window.Height
	}
	if err := config.CheckWindowSize(w, h); err != nil {
		return nil, imaging.Layout{}, fmt.Errorf("invalid canvas size: %w", err)
	}
	opts := imaging.OverlayOptions{
		Alpha:      settings.Canvas.OverlayAlpha,
		ShowMarks:  settings.Canvas.RenderBoxes,
		BoxColor:   settings.Canvas.BoxColor,
		LabelColor: settings.Canvas.LabelColor,
	}
	if req.Alpha != nil {
		opts.Alpha = *req.Alpha
	}
	if req.ShowBoxes != nil {
		opts.ShowMarks = *req.ShowBoxes
	}

	s.mu.Lock()
	img, marks := s.img, s.marks
	s.mu.Unlock()

	if img == nil {
		return nil, imaging.Layout{}, ErrNoImage
	}

	s.viewport.Configure(settings.Canvas.ResizeThreshold, settings.Window.CenterImage)
	layout, changed, err := s.viewport.Fit(w, h)
	if err != nil {
		return nil, imaging.Layout{}, err
	}
	if changed {
		if err := s.store.SetWindowSize(w, h); err != nil {
			logutil.Errorf("failed to record window size: %v", err)
		}
	}

	out, err := imaging.RenderOverlay(img, marks, layout, opts)
	if err != nil {
		return nil, imaging.Layout{}, err
	}
	return out, layout, nil
}

// Result returns the last crack result, or nil.
func (s *Solver) Result() *CrackResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Status returns the status line.
func (s *Solver) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.status
	st.Highlight = st.Level == LevelError && s.now().Before(s.highlightUntil)
	st.CanCrack = s.img != nil
	st.Image = s.info
	if s.last != nil {
		st.Output = s.last.Decode.Output
	}
	return st
}

// Settings returns the settings store.
func (s *Solver) Settings() *config.Store { return s.store }

func (s *Solver) engineFor(settings config.Settings) (ocr.Engine, error) {
	if s.engine != nil {
		return s.engine, nil
	}
	return ocr.NewEngine(settings.System.OCREngine, ocr.Options{
		Language:       settings.System.Language,
		TessdataPrefix: settings.System.TessdataPrefix,
		BinaryPath:     settings.System.TesseractPath,
	})
}

func (s *Solver) decoderFor(settings config.Settings) *decode.Decoder {
	mode, err := decode.ParseMode(settings.Decoder.Mode)
	if err != nil {
		logutil.Errorf("Falling back to symbol output: %v", err)
		mode = decode.ModeSymbol
	}
	return s.decoder.With(decode.WithMode(mode), decode.WithDisclosure(settings.Decoder.AppendDisclosure))
}

func (s *Solver) setError(text string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setErrorLocked(text, err)
}

func (s *Solver) setErrorLocked(text string, err error) {
	if text == SeeErrorLog {
		logutil.Errorf("%v", err)
	} else {
		logutil.Debugf("%s: %v", text, err)
	}
	s.status = Status{Text: text, Level: LevelError}
	s.highlightUntil = s.now().Add(HighlightDuration)
}

func (s *Solver) setStatusLocked(text string, level Level) {
	s.status = Status{Text: text, Level: level}
	s.highlightUntil = time.Time{}
}
