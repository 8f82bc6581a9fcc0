// Package logutil configures the standard logger and keeps a size-rotated
// errors.log next to the settings file.
package logutil

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	// LevelEnv enables debug logging when set to "debug".
	LevelEnv = "CODE_SOLVER_LOG_LEVEL"

	// ErrorLogName is the file Errorf appends to.
	ErrorLogName = "errors.log"

	maxArchives = 3
)

var maxSizeBytes int64 = 1 << 20 // 1 MB

var (
	mu      sync.Mutex
	debug   bool
	errPath = ErrorLogName
	errW    *rotatingWriter
	errLog  *log.Logger
)

// Setup sends log output to stderr (stdout carries the MCP protocol), reads
// the debug level from the environment and places errors.log in dir. An
// empty dir means the working directory.
func Setup(dir string) {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	mu.Lock()
	defer mu.Unlock()

	debug = strings.EqualFold(strings.TrimSpace(os.Getenv(LevelEnv)), "debug")
	errPath = filepath.Join(dir, ErrorLogName)
	closeLocked()
}

// DebugEnabled reports whether Debugf writes anything.
func DebugEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return debug
}

// Debugf logs when debug logging is enabled.
func Debugf(format string, args ...interface{}) {
	if !DebugEnabled() {
		return
	}
	log.Output(2, fmt.Sprintf(format, args...))
}

// Errorf logs an error and appends it to errors.log.
func Errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	log.Output(2, "ERROR: "+msg)

	mu.Lock()
	defer mu.Unlock()

	if errLog == nil {
		w, err := openRotating(errPath)
		if err != nil {
			log.Printf("Failed to open error log: %v", err)
			return
		}
		errW = w
		errLog = log.New(w, "", log.Ldate|log.Ltime|log.Lshortfile)
	}
	errLog.Output(2, msg)
}

// ErrorLogPath returns where Errorf writes.
func ErrorLogPath() string {
	mu.Lock()
	defer mu.Unlock()
	return errPath
}

// Close closes errors.log. A later Errorf reopens it.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
}

func closeLocked() {
	if errW != nil {
		errW.f.Close()
	}
	errW, errLog = nil, nil
}

type rotatingWriter struct {
	path string
	f    *os.File
}

func openRotating(path string) (*rotatingWriter, error) {
	rotateIfNeeded(path)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &rotatingWriter{path: path, f: f}, nil
}

func (w *rotatingWriter) Write(p []byte) (int, error) {
	if st, err := w.f.Stat(); err == nil && st.Size()+int64(len(p)) > maxSizeBytes {
		_ = w.f.Close()
		rotate(w.path)
		nf, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return 0, err
		}
		w.f = nf
	}
	return w.f.Write(p)
}

func rotateIfNeeded(path string) {
	if st, err := os.Stat(path); err == nil && st.Size() > maxSizeBytes {
		rotate(path)
	}
}

// rotate shifts path to path.1, path.1 to path.2 and so on, dropping the
// oldest archive.
func rotate(path string) {
	_ = os.Remove(archiveName(path, maxArchives))
	for i := maxArchives - 1; i >= 1; i-- {
		_ = os.Rename(archiveName(path, i), archiveName(path, i+1))
	}
	_ = os.Rename(path, archiveName(path, 1))
}

func archiveName(path string, n int) string { return fmt.Sprintf("%s.%d", path, n) }
