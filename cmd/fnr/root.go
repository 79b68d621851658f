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

package main

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/fnr/cmd/fnr/commands"
	"github.com/walteh/fnr/cmd/fnr/opts"
	"github.com/walteh/fnr/pkg/config"
	"github.com/walteh/fnr/pkg/log"
	"github.com/walteh/fnr/pkg/operation"
	"github.com/walteh/fnr/pkg/report"
	"github.com/walteh/fnr/pkg/scan"
	"github.com/walteh/fnr/pkg/text"
	"github.com/walteh/fnr/pkg/walk"
)

// replaceFlags are the flags of the root command
type replaceFlags struct {
	ignoreCase    bool
	caseSensitive bool
	literal       bool
	word          bool

	write  bool
	prompt bool

	after   int
	before  int
	context int

	hidden   bool
	allFiles bool
	include  []string
	exclude  []string

	color   string
	format  string
	stats   bool
	verbose bool
	workers int
}

func newRootCmd(o *opts.RootOpts) *cobra.Command {
	f := &replaceFlags{}

	cmd := &cobra.Command{
		Use:   "fnr FIND REPLACE [PATH...]",
		Short: "Find and replace across files, with review",
		Long: `fnr finds every match of FIND below the given paths and replaces it with
REPLACE. FIND is a regular expression unless --literal is set; REPLACE may refer
to capture groups as $1, ${1}, $name or ${name}.

Nothing is written unless --write or --prompt is given. Without paths, fnr reads
one path per line from stdin when stdin is not a terminal, and searches the
current directory otherwise.`,
		Example: `  fnr 'const (\w+) = \d+;' 'const $1 = 42;' src
  fnr -Q 'i += 1' 'i++' -w main.c
  git ls-files | fnr -C 1 foo bar`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := o.Logger()
			cmd.SetContext(logger.WithContext(cmd.Context()))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplace(cmd, o, f, args)
		},
	}

	addRootFlags(cmd, o)
	addReplaceFlags(cmd.Flags(), f)

	cmd.AddCommand(
		commands.NewGuideCmd(o),
		commands.NewHistoryCmd(o),
		commands.NewMCPCmd(o),
	)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().StringVar(&o.ConfigFile, "config", "", "config file path (default: .fnr.{yaml,yml,hcl,json} in the working directory)")
	cmd.PersistentFlags().StringVar(&o.Journal, "journal", "", "record rewritten files in this SQLite database")
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
}

func addReplaceFlags(fs *pflag.FlagSet, f *replaceFlags) {
	fs.BoolVarP(&f.ignoreCase, "ignore-case", "i", false, "match case-insensitively")
	fs.BoolVarP(&f.caseSensitive, "case-sensitive", "s", false, "match case exactly (default: smart case)")
	fs.BoolVarP(&f.literal, "literal", "Q", false, "treat FIND as exact text")
	fs.BoolVar(&f.word, "word", false, "only match whole words")

	fs.BoolVarP(&f.write, "write", "w", false, "rewrite files in place")
	fs.BoolVarP(&f.prompt, "prompt", "p", false, "review every match before writing")

	fs.IntVarP(&f.after, "after-context", "A", 0, "lines of context after each change")
	fs.IntVarP(&f.before, "before-context", "B", 0, "lines of context before each change")
	fs.IntVarP(&f.context, "context", "C", 0, "lines of context around each change")

	fs.BoolVarP(&f.hidden, "hidden", "H", false, "search hidden files and directories")
	fs.BoolVarP(&f.allFiles, "all-files", "a", false, "search hidden files and version control directories")
	fs.StringSliceVarP(&f.include, "include", "I", nil, "only search files matching these globs")
	fs.StringSliceVarP(&f.exclude, "exclude", "E", nil, "skip files matching these globs")

	fs.StringVar(&f.color, "color", "", "colorize output: auto, always or never")
	fs.StringVar(&f.format, "format", "", "output format: full, compact or quiet")
	fs.BoolVar(&f.stats, "stats", false, "print statistics after the summary")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log the outcome of every file")
	fs.IntVar(&f.workers, "workers", 0, "parallel file scans (default: number of CPUs, at most 12)")

	fs.SortFlags = false
}

// settings is the merge of flags over the config file.
type settings struct {
	text     text.Options
	walk     walk.Options
	report   report.Options
	colorize string
	workers  int
}

func resolve(fs *pflag.FlagSet, f *replaceFlags, cfg *config.Config) (settings, error) {
	var s settings

	changed := fs.Changed

	caseMode, err := text.ParseCaseMode(cfg.Case)
	if err != nil {
		return s, err
	}
	switch {
	case changed("ignore-case") && changed("case-sensitive"):
		return s, errors.New("--ignore-case and --case-sensitive cannot be combined")
	case changed("ignore-case"):
		caseMode = text.CaseInsensitive
	case changed("case-sensitive"):
		caseMode = text.CaseSensitive
	}

	s.text = text.Options{
		Case:    caseMode,
		Literal: pick(changed("literal"), f.literal, cfg.Literal),
		Word:    pick(changed("word"), f.word, cfg.Word),
	}

	s.walk = walk.Options{
		Hidden:   pick(changed("hidden"), f.hidden, cfg.Hidden),
		AllFiles: pick(changed("all-files"), f.allFiles, cfg.AllFiles),
		Include:  pick(changed("include"), f.include, cfg.Include),
		Exclude:  pick(changed("exclude"), f.exclude, cfg.Exclude),
	}

	format, err := report.ParseFormat(pick(changed("format"), f.format, cfg.Format))
	if err != nil {
		return s, err
	}

	around := pick(changed("context"), f.context, cfg.Context)
	s.report = report.Options{
		Format: format,
		Before: pick(changed("before-context"), f.before, around),
		After:  pick(changed("after-context"), f.after, around),
	}
	if s.report.Before < 0 || s.report.After < 0 {
		return s, errors.New("context lines must not be negative")
	}

	s.colorize = strings.ToLower(pick(changed("color"), f.color, cfg.Color))
	switch s.colorize {
	case "":
		s.colorize = "auto"
	case "auto", "always", "never":
	default:
		return s, errors.Errorf("--color must be auto, always or never, got %q", s.colorize)
	}

	s.workers = pick(changed("workers"), f.workers, cfg.Workers)
	if s.workers < 0 {
		return s, errors.New("--workers must not be negative")
	}
	s.workers = min(s.workers, scan.MaxWorkers)

	return s, nil
}

// pick returns the flag value when the flag was set, else the config value.
func pick[T any](set bool, flag, cfg T) T {
	if set {
		return flag
	}
	return cfg
}

func colorEnabled(mode string, terminal bool) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		_, noColor := os.LookupEnv("NO_COLOR")
		return terminal && !noColor
	}
}

func runReplace(cmd *cobra.Command, o *opts.RootOpts, f *replaceFlags, args []string) error {
	ctx := cmd.Context()
	zlog := zerolog.Ctx(ctx)

	cfg, err := o.LoadConfig(ctx)
	if err != nil {
		return err
	}

	s, err := resolve(cmd.Flags(), f, cfg)
	if err != nil {
		return err
	}

	p, err := text.Compile(args[0], s.text)
	if err != nil {
		return err
	}
	tmpl, err := text.CompileTemplate(args[1], p)
	if err != nil {
		return err
	}

	roots := args[2:]
	if len(roots) == 0 && !o.InTerminal {
		if f.prompt {
			return errors.New("--prompt needs paths as arguments, stdin is used for review commands")
		}
		roots, err = walk.ReadPaths(o.In)
		if err != nil {
			return err
		}
	}

	w, err := walk.New(s.walk)
	if err != nil {
		return err
	}

	colored := colorEnabled(s.colorize, o.OutTerminal)
	s.report.Color = colored

	userLog := zerolog.Nop()
	if o.Debug {
		userLog = *zlog
	}
	ctx = log.NewContext(ctx, log.New(o.Err, userLog, colored))

	// a dry run never touches the filesystem, the journal included
	var rec operation.Recorder
	if f.write || f.prompt {
		j, err := o.OpenJournal(ctx, cfg)
		if err != nil {
			return err
		}
		if j != nil {
			defer j.Close()
			rec = j
		}
	}

	op, err := operation.NewReplace(operation.Options{
		Pattern:  p,
		Template: tmpl,
		Walker:   w,
		Roots:    roots,
		Write:    f.write,
		Prompt:   f.prompt,
		Input:    o.In,
		Output:   o.Out,
		Reporter: report.New(s.report),
		Verbose:  f.verbose,
		Stats:    f.stats,
		Workers:  s.workers,
		Journal:  rec,
	})
	if err != nil {
		return err
	}

	return operation.NewRunner(zlog, true).Run(ctx, op)
}
