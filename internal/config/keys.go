package config

import (
	"fmt"
	"regexp"
	"strings"
)

// Section names in config.ini.
const (
	SectionSystem  = "system"
	SectionWindow  = "window"
	SectionCanvas  = "canvas"
	SectionDecoder = "decoder"
	SectionAdmin   = "admin"
)

// Keys are "section.key".
const (
	KeyTesseractPath  = "system.tesseract_path"
	KeyTessdataPrefix = "system.tessdata_prefix"
	KeyOCREngine      = "system.ocr_engine"
	KeyLanguage       = "system.language"
	KeyHTTPTimeout    = "system.http_timeout_sec"
	KeyPreprocess     = "system.preprocess"
	KeyUpscale        = "system.upscale"
	KeyAutoCrop       = "system.auto_crop"

	KeyTransparentOnLostFocus   = "window.transparent_on_lost_focus"
	KeyDefaultTransparencyAlpha = "window.default_transparency_alpha"
	KeySetTopmost               = "window.set_topmost"
	KeyWindowWidth              = "window.window_width"
	KeyWindowHeight             = "window.window_height"
	KeyCenterImage              = "window.center_image_on_canvas"

	KeyResizeThreshold = "canvas.resize_threshold"
	KeyRenderBoxes     = "canvas.render_boxes"
	KeyOverlayAlpha    = "canvas.overlay_alpha"
	KeyBoxColor        = "canvas.box_color"
	KeyLabelColor      = "canvas.label_color"

	KeyDecoderMode      = "decoder.mode"
	KeyAppendDisclosure = "decoder.append_disclosure"

	KeyPasswordHash = "admin.password_hash"
)

type keyDef struct {
	name  string
	def   interface{}
	check func(v interface{}) error
}

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}([0-9A-Fa-f]{2})?$`)

var keyDefs = []keyDef{
	{KeyTesseractPath, "tesseract", nonEmpty},
	{KeyTessdataPrefix, "", nil},
	{KeyOCREngine, "gosseract", oneOf("gosseract", "cli")},
	{KeyLanguage, "eng", nonEmpty},
	{KeyHTTPTimeout, 15, intRange(1, 600)},
	{KeyPreprocess, true, nil},
	{KeyUpscale, 1.0, floatRange(0.25, 8)},
	{KeyAutoCrop, false, nil},

	{KeyTransparentOnLostFocus, true, nil},
	{KeyDefaultTransparencyAlpha, 0.4, floatRange(0, 1)},
	{KeySetTopmost, true, nil},
	{KeyWindowWidth, 700, intRange(1, 16384)},
	{KeyWindowHeight, 550, intRange(1, 16384)},
	{KeyCenterImage, true, nil},

	{KeyResizeThreshold, 1, intRange(0, 1000)},
	{KeyRenderBoxes, true, nil},
	{KeyOverlayAlpha, 0, intRange(0, 100)},
	{KeyBoxColor, "#FF0000", color},
	{KeyLabelColor, "#FFA500", color},

	{KeyDecoderMode, "sym", oneOf("sym", "hex", "dec", "bin", "oct")},
	{KeyAppendDisclosure, false, nil},

	{KeyPasswordHash, "", nil},
}

func lookupKey(name string) (keyDef, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, k := range keyDefs {
		if k.name == name {
			return k, true
		}
	}
	return keyDef{}, false
}

// Keys returns every known key in file order.
func Keys() []string {
	names := make([]string, len(keyDefs))
	for i, k := range keyDefs {
		names[i] = k.name
	}
	return names
}

// Protected reports whether changing key requires the admin password.
func Protected(key string) bool {
	section, _, _ := strings.Cut(strings.ToLower(key), ".")
	return section == SectionSystem || section == SectionAdmin
}

func nonEmpty(v interface{}) error {
	if strings.TrimSpace(v.(string)) == "" {
		return fmt.Errorf("must not be empty")
	}
	return nil
}

func oneOf(allowed ...string) func(interface{}) error {
	return func(v interface{}) error {
		s := v.(string)
		for _, a := range allowed {
			if s == a {
				return nil
			}
		}
		return fmt.Errorf("must be one of %s", strings.Join(allowed, ", "))
	}
}

func intRange(lo, hi int) func(interface{}) error {
	return func(v interface{}) error {
		n := v.(int)
		if n < lo || n > hi {
			return fmt.Errorf("must be between %d and %d", lo, hi)
		}
		return nil
	}
}

func floatRange(lo, hi float64) func(interface{}) error {
	return func(v interface{}) error {
		f := v.(float64)
		if f < lo || f > hi {
			return fmt.Errorf("must be between %g and %g", lo, hi)
		}
		return nil
	}
}

func color(v interface{}) error {
	if !hexColor.MatchString(v.(string)) {
		return fmt.Errorf("must be #RRGGBB or #RRGGBBAA")
	}
	return nil
}
