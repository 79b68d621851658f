// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/fnr/pkg/report"
	"github.com/walteh/fnr/pkg/text"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// DefaultFiles are looked up, in order, by Discover.
var DefaultFiles = []string{".fnr.yaml", ".fnr.yml", ".fnr.hcl", ".fnr.json"}

// 📚 Config holds run defaults. Flags given on the command line win over it.
type Config struct {
	Case     string   `json:"case,omitempty" yaml:"case,omitempty" hcl:"case,optional"`
	Literal  bool     `json:"literal,omitempty" yaml:"literal,omitempty" hcl:"literal,optional"`
	Word     bool     `json:"word,omitempty" yaml:"word,omitempty" hcl:"word,optional"`
	Hidden   bool     `json:"hidden,omitempty" yaml:"hidden,omitempty" hcl:"hidden,optional"`
	AllFiles bool     `json:"all_files,omitempty" yaml:"all_files,omitempty" hcl:"all_files,optional"`
	Include  []string `json:"include,omitempty" yaml:"include,omitempty" hcl:"include,optional"`
	Exclude  []string `json:"exclude,omitempty" yaml:"exclude,omitempty" hcl:"exclude,optional"`
	Context  int      `json:"context,omitempty" yaml:"context,omitempty" hcl:"context,optional"`
	Workers  int      `json:"workers,omitempty" yaml:"workers,omitempty" hcl:"workers,optional"`
	Color    string   `json:"color,omitempty" yaml:"color,omitempty" hcl:"color,optional"`
	Format   string   `json:"format,omitempty" yaml:"format,omitempty" hcl:"format,optional"`
	Journal  string   `json:"journal,omitempty" yaml:"journal,omitempty" hcl:"journal,optional"`

	location string
}

// Location is the file the config was loaded from.
func (cfg *Config) Location() string { return cfg.location }

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config %s: %w", path, err)
	}
	cfg.location = path

	return cfg, nil
}

// 🔍 Discover loads the first of DefaultFiles found in dir. It returns an empty
// config when there is none.
func Discover(ctx context.Context, dir string) (*Config, error) {
	for _, name := range DefaultFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, errors.Errorf("checking %s: %w", path, err)
		}
		return Load(ctx, path)
	}
	return &Config{}, nil
}

// 🔍 Validate checks if the configuration is valid
func (cfg *Config) Validate() error {
	if _, err := text.ParseCaseMode(cfg.Case); err != nil {
		return err
	}
	if _, err := report.ParseFormat(cfg.Format); err != nil {
		return err
	}

	switch strings.ToLower(cfg.Color) {
	case "", "auto", "always", "never":
	default:
		return errors.Errorf("color must be auto, always or never, got %q", cfg.Color)
	}

	if cfg.Context < 0 {
		return errors.Errorf("context must not be negative, got %d", cfg.Context)
	}
	if cfg.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", cfg.Workers)
	}

	for _, g := range append(append([]string{}, cfg.Include...), cfg.Exclude...) {
		if !doublestar.ValidatePattern(g) {
			return errors.Errorf("invalid glob %q", g)
		}
	}

	return nil
}
