// Package envfile loads key-value pairs from .aml-setup.env files.
//
// The format is the dotenv format: KEY=VALUE per line, # comments, optional
// quotes and `export` prefixes. This package does NOT set process environment
// variables; it returns a map so values stay scoped to the caller.
package envfile

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// DefaultPath is the env file read when no --env-file flag is given.
const DefaultPath = ".aml-setup.env"

// Load reads an env file and returns its non-empty values.
// Returns an empty map (not an error) if the file does not exist.
func Load(path string) (map[string]string, error) {
	vals, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	for k, v := range vals {
		if v == "" {
			delete(vals, k)
		}
	}
	return vals, nil
}
