package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// EnvFileVar names an alternative .env file.
const EnvFileVar = "CODE_SOLVER_ENV"

// LoadDotenv loads environment overrides from a .env file and returns the
// file used, or "" if none was found.
//
// The .env beside the executable wins; otherwise the file named by
// CODE_SOLVER_ENV is used. Variables already set are not overwritten.
func LoadDotenv() string {
	path := resolveEnvPath()
	if path == "" {
		return ""
	}
	if err := godotenv.Load(path); err != nil {
		return ""
	}
	return path
}

func resolveEnvPath() string {
	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvFileVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

// DefaultPath returns config.ini beside the executable, falling back to the
// working directory.
func DefaultPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return FileName
	}
	return filepath.Join(filepath.Dir(execPath), FileName)
}
