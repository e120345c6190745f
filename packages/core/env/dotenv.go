package env

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/abdul-hamid-achik/apix/packages/core/errdef"
)

// DefaultDotEnv is loaded from the working directory when present.
const DefaultDotEnv = ".env"

// LoadDotEnv parses a .env file and returns its key-value pairs without
// touching the process environment.
func LoadDotEnv(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, errdef.IO(path, err)
	}
	return vars, nil
}

// LoadAndExportDotEnv parses a .env file and exports its variables to the
// process environment. Variables already set are left untouched.
func LoadAndExportDotEnv(path string) (map[string]string, error) {
	vars, err := LoadDotEnv(path)
	if err != nil {
		return nil, err
	}
	if err := godotenv.Load(path); err != nil {
		return nil, errdef.IO(path, err)
	}
	return vars, nil
}

// LoadFiles exports the given .env files. With no files the default .env is
// loaded if it exists; explicitly named files must exist.
func LoadFiles(files ...string) error {
	if len(files) == 0 {
		if _, err := os.Stat(DefaultDotEnv); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		files = []string{DefaultDotEnv}
	}
	for _, f := range files {
		if _, err := LoadAndExportDotEnv(f); err != nil {
			return err
		}
	}
	return nil
}
