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

package opts

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/term"

	"github.com/walteh/fnr/pkg/config"
	"github.com/walteh/fnr/pkg/journal"
)

// 🔌 Streams are the terminal streams a command talks to
type Streams struct {
	In          io.Reader
	Out         io.Writer
	Err         io.Writer
	InTerminal  bool
	OutTerminal bool
	Width       int // terminal width of Out, zero when unknown
}

// OSStreams returns the process streams with terminal detection.
func OSStreams() Streams {
	s := Streams{
		In:          os.Stdin,
		Out:         os.Stdout,
		Err:         os.Stderr,
		InTerminal:  term.IsTerminal(int(os.Stdin.Fd())),
		OutTerminal: term.IsTerminal(int(os.Stdout.Fd())),
	}
	if s.OutTerminal {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			s.Width = w
		}
	}
	return s
}

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Streams

	ConfigFile string
	Journal    string
	Debug      bool
}

// Logger returns the diagnostics logger. It writes to Err at warn level, or
// debug with --debug.
func (o *RootOpts) Logger() zerolog.Logger {
	level := zerolog.WarnLevel
	if o.Debug {
		level = zerolog.DebugLevel
	}
	w := zerolog.ConsoleWriter{Out: o.Err, NoColor: true}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// LoadConfig loads --config, or discovers a config file in the working directory.
func (o *RootOpts) LoadConfig(ctx context.Context) (*config.Config, error) {
	if o.ConfigFile != "" {
		cfg, err := config.Load(ctx, o.ConfigFile)
		if err != nil {
			return nil, errors.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Errorf("getting working directory: %w", err)
	}
	cfg, err := config.Discover(ctx, wd)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// JournalPath is --journal, falling back to the config file.
func (o *RootOpts) JournalPath(cfg *config.Config) string {
	if o.Journal != "" {
		return o.Journal
	}
	if cfg != nil {
		return cfg.Journal
	}
	return ""
}

// OpenJournal opens the configured journal. It returns nil when none is set.
func (o *RootOpts) OpenJournal(ctx context.Context, cfg *config.Config) (*journal.Journal, error) {
	path := o.JournalPath(cfg)
	if path == "" {
		return nil, nil
	}
	j, err := journal.Open(ctx, path)
	if err != nil {
		return nil, errors.Errorf("opening journal: %w", err)
	}
	return j, nil
}
