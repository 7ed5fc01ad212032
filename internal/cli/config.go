package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/syssam/strata/dialect"
)

const defaultConfigFile = "strata.yaml"

// Config is the project configuration. Flags override its values.
type Config struct {
	// Dialect used for planning and database access. Default is sqlite.
	Dialect string `yaml:"dialect"`
	// DSN of the database used by migrate and inspect.
	DSN string `yaml:"dsn"`
	// Schema is the default schema file.
	Schema string `yaml:"schema"`
	// Out is the target directory of generated code. Default is "migrate".
	Out string `yaml:"out"`
	// Package of the generated code. Defaults to the base name of Out.
	Package string `yaml:"package"`
}

// loadConfig reads the configuration at path. A missing file is only an
// error if it was named explicitly.
func loadConfig(path string, explicit bool) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if cfg.Dialect == "" {
		cfg.Dialect = dialect.SQLite
	}
	if cfg.Out == "" {
		cfg.Out = "migrate"
	}
	return cfg, nil
}
