package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gorewood/shipwright/internal/output"
)

const fileHeader = "# shipwright release configuration.\n" +
	"# Environment variables (SHIPWRIGHT_<SECTION>_<KEY>) override these values.\n"

// Marshal renders cfg as YAML with a short header comment.
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(fileHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes cfg to path. An existing file is only replaced when force
// is set; otherwise a conflict error is returned.
func WriteFile(path string, cfg *Config, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return output.NewConflictError(path + " already exists (use --force to overwrite)")
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return output.NewSystemErrorWithCause("failed to stat "+path, err)
	}

	data, err := Marshal(cfg)
	if err != nil {
		return output.NewSystemErrorWithCause("failed to render config", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return output.NewSystemErrorWithCause("failed to create "+dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // config is meant to be committed
		return output.NewSystemErrorWithCause("failed to write "+path, err)
	}
	return nil
}
