package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/ini.v1"

	"github.com/ironsheep/code-solver/internal/debounce"
	"github.com/ironsheep/code-solver/internal/logutil"
)

const (
	// FileName is the settings file read at startup.
	FileName = "config.ini"

	// EnvPrefix prefixes every environment override, e.g.
	// CODE_SOLVER_SYSTEM_TESSERACT_PATH.
	EnvPrefix = "CODE_SOLVER"

	saveDelay = 2 * time.Second
)

var (
	// ErrUnknownKey is returned for a key outside the known sections.
	ErrUnknownKey = errors.New("unknown setting")

	// ErrInvalidValue is returned when a value fails type or range checks.
	ErrInvalidValue = errors.New("invalid setting value")

	// ErrAdminRequired is returned when a protected key is changed without a
	// password, or before an admin password hash is configured.
	ErrAdminRequired = errors.New("admin password required")

	// ErrAdminDenied is returned when the admin password does not match.
	ErrAdminDenied = errors.New("admin password rejected")
)

// System holds OCR engine settings.
type System struct {
	TesseractPath  string
	TessdataPrefix string
	OCREngine      string
	Language       string
	HTTPTimeout    time.Duration
	Preprocess     bool
	Upscale        float64
	AutoCrop       bool
}

// Window holds the window geometry and behaviour the settings file keeps.
type Window struct {
	TransparentOnLostFocus   bool
	DefaultTransparencyAlpha float64
	SetTopmost               bool
	Width                    int
	Height                   int
	CenterImage              bool
}

// Canvas holds rendering settings.
type Canvas struct {
	ResizeThreshold int
	RenderBoxes     bool
	OverlayAlpha    int
	BoxColor        string
	LabelColor      string
}

// Decoder holds output settings.
type Decoder struct {
	Mode             string
	AppendDisclosure bool
}

// Settings is a typed snapshot of the store.
type Settings struct {
	System  System
	Window  Window
	Canvas  Canvas
	Decoder Decoder
}

// Store holds settings backed by an INI file.
//
// Values resolve in this order: values set at runtime, environment
// overrides, the file, then defaults. Store is safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	v     *viper.Viper
	path  string
	saver *debounce.Debouncer
}

// Load reads settings from path. A missing file is not an error; defaults
// are used and the file is created on the first save. Environment overrides
// from a .env file are applied first (see LoadDotenv).
func Load(path string) (*Store, error) {
	if envPath := LoadDotenv(); envPath != "" {
		logutil.Debugf("Loaded environment from %s", envPath)
	}

	// Colours are written as "#RRGGBB", so '#' cannot start a comment.
	v := viper.NewWithOptions(viper.IniLoadOptions(ini.LoadOptions{IgnoreInlineComment: true}))
	v.SetConfigType("ini")
	for _, k := range keyDefs {
		v.SetDefault(k.name, k.def)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	s := &Store{v: v, path: path}
	s.saver = debounce.New(saveDelay, func() {
		if err := s.Save(); err != nil {
			logutil.Errorf("Failed to save settings: %v", err)
		}
	})

	if path == "" {
		return s, nil
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logutil.Debugf("No settings file at %s, using defaults", path)
			return s, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	return s, nil
}

// Path returns the settings file path.
func (s *Store) Path() string { return s.path }

// Get returns the current value of key.
func (s *Store) Get(key string) (interface{}, error) {
	k, ok := lookupKey(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typed(k), nil
}

// All returns every setting keyed by "section.key". The admin password
// hash is left out.
func (s *Store) All() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]interface{}, len(keyDefs))
	for _, k := range keyDefs {
		if k.name == KeyPasswordHash {
			continue
		}
		out[k.name] = s.typed(k)
	}
	return out
}

// Set changes key to value and schedules a save.
//
// Keys in the system and admin sections need the admin password. Setting
// admin.password_hash stores the bcrypt hash of value, so value is the new
// password in plain text.
func (s *Store) Set(key, value, password string) error {
	k, ok := lookupKey(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	parsed, err := parseValue(k, value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if Protected(k.name) {
		if err := s.checkAdmin(password); err != nil {
			return err
		}
	}

	if k.name == KeyPasswordHash {
		hash, err := HashPassword(value)
		if err != nil {
			return err
		}
		parsed = hash
	}

	s.v.Set(k.name, parsed)
	if s.path != "" {
		s.saver.Trigger()
	}
	return nil
}

// Settings returns a typed snapshot.
func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.v
	return Settings{
		System: System{
			TesseractPath:  v.GetString(KeyTesseractPath),
			TessdataPrefix: v.GetString(KeyTessdataPrefix),
			OCREngine:      v.GetString(KeyOCREngine),
			Language:       v.GetString(KeyLanguage),
			HTTPTimeout:    time.Duration(v.GetInt(KeyHTTPTimeout)) * time.Second,
			Preprocess:     v.GetBool(KeyPreprocess),
			Upscale:        v.GetFloat64(KeyUpscale),
			AutoCrop:       v.GetBool(KeyAutoCrop),
		},
		Window: Window{
			TransparentOnLostFocus:   v.GetBool(KeyTransparentOnLostFocus),
			DefaultTransparencyAlpha: v.GetFloat64(KeyDefaultTransparencyAlpha),
			SetTopmost:               v.GetBool(KeySetTopmost),
			Width:                    v.GetInt(KeyWindowWidth),
			Height:                   v.GetInt(KeyWindowHeight),
			CenterImage:              v.GetBool(KeyCenterImage),
		},
		Canvas: Canvas{
			ResizeThreshold: v.GetInt(KeyResizeThreshold),
			RenderBoxes:     v.GetBool(KeyRenderBoxes),
			OverlayAlpha:    v.GetInt(KeyOverlayAlpha),
			BoxColor:        v.GetString(KeyBoxColor),
			LabelColor:      v.GetString(KeyLabelColor),
		},
		Decoder: Decoder{
			Mode:             v.GetString(KeyDecoderMode),
			AppendDisclosure: v.GetBool(KeyAppendDisclosure),
		},
	}
}

// CheckWindowSize validates a canvas size against the window key ranges.
func CheckWindowSize(width, height int) error {
	for name, v := range map[string]int{KeyWindowWidth: width, KeyWindowHeight: height} {
		k, _ := lookupKey(name)
		if err := k.check(v); err != nil {
			return fmt.Errorf("%w: %s %v", ErrInvalidValue, name, err)
		}
	}
	return nil
}

// SetWindowSize records the last canvas size without admin checks.
func (s *Store) SetWindowSize(width, height int) error {
	if err := CheckWindowSize(width, height); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.v.GetInt(KeyWindowWidth) == width && s.v.GetInt(KeyWindowHeight) == height {
		return nil
	}
	s.v.Set(KeyWindowWidth, width)
	s.v.Set(KeyWindowHeight, height)
	if s.path != "" {
		s.saver.Trigger()
	}
	return nil
}

// Save writes every setting to the settings file.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// Close cancels any scheduled save and writes the settings file.
func (s *Store) Close() error {
	s.saver.Stop()
	return s.Save()
}

// Pending reports whether a debounced save is scheduled.
func (s *Store) Pending() bool {
	return s.saver.Pending()
}

func (s *Store) checkAdmin(password string) error {
	hash := s.v.GetString(KeyPasswordHash)
	if hash == "" || password == "" {
		return ErrAdminRequired
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrAdminDenied
	}
	return nil
}

func (s *Store) typed(k keyDef) interface{} {
	switch k.def.(type) {
	case bool:
		return s.v.GetBool(k.name)
	case int:
		return s.v.GetInt(k.name)
	case float64:
		return s.v.GetFloat64(k.name)
	default:
		return s.v.GetString(k.name)
	}
}

func parseValue(k keyDef, raw string) (interface{}, error) {
	raw = strings.TrimSpace(raw)

	var (
		v   interface{}
		err error
	)
	switch k.def.(type) {
	case bool:
		v, err = strconv.ParseBool(raw)
	case int:
		v, err = strconv.Atoi(raw)
	case float64:
		v, err = strconv.ParseFloat(raw, 64)
	default:
		v = raw
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q: %v", ErrInvalidValue, k.name, raw, err)
	}

	if k.check != nil {
		if err := k.check(v); err != nil {
			return nil, fmt.Errorf("%w: %s %v", ErrInvalidValue, k.name, err)
		}
	}
	return v, nil
}

// HashPassword returns the bcrypt hash stored in admin.password_hash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: empty password", ErrInvalidValue)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// SortedKeys returns the keys of m in order.
func SortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
