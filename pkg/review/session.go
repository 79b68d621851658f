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

package review

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/fnr/pkg/edit"
)

// 🚦 State is the policy a Session applies to the next match
type State int

const (
	Prompting      State = iota // ask about every match
	AutoAcceptFile              // accept the rest of the current file
	AutoRejectFile              // reject the rest of the current file
	AutoAcceptAll               // accept everything that is left
	Quit                        // reject everything that is left, never prompt again
)

func (s State) String() string {
	switch s {
	case AutoAcceptFile:
		return "auto-accept-file"
	case AutoRejectFile:
		return "auto-reject-file"
	case AutoAcceptAll:
		return "auto-accept-all"
	case Quit:
		return "quit"
	default:
		return "prompting"
	}
}

// fileScoped reports whether the state ends with the current file.
func (s State) fileScoped() bool {
	return s == AutoAcceptFile || s == AutoRejectFile
}

// 🖼️ HunkRenderer draws what the reviewer is deciding on
type HunkRenderer interface {
	// RenderHeader is called once before the first hunk of a file.
	RenderHeader(w io.Writer, cs *edit.FileChangeSet) error
	// RenderHunk shows edit index of cs with its current replacement.
	RenderHunk(w io.Writer, cs *edit.FileChangeSet, index int) error
}

// 🗳️ Session walks a reviewer through every match of a run. It reads one answer
// per line from its input, so any io.Reader can drive it. A Session carries the
// policy across files and must not be shared between runs.
type Session struct {
	in       *bufio.Reader
	out      io.Writer
	renderer HunkRenderer
	state    State
}

// 🏭 NewSession creates a session in the Prompting state
func NewSession(in io.Reader, out io.Writer, renderer HunkRenderer) *Session {
	return &Session{
		in:       bufio.NewReader(in),
		out:      out,
		renderer: renderer,
		state:    Prompting,
	}
}

// State returns the current policy.
func (s *Session) State() State { return s.state }

// Done reports whether the reviewer quit.
func (s *Session) Done() bool { return s.state == Quit }

// Review decides every edit of cs. File-scoped policies from the previous file are
// dropped first. It reports whether anything was shown to the reviewer; a file
// reached after q or ! is decided silently.
func (s *Session) Review(ctx context.Context, cs *edit.FileChangeSet) (bool, error) {
	if s.state.fileScoped() {
		s.setState(ctx, Prompting)
	}

	if s.state != Prompting || len(cs.Edits) == 0 {
		for i := range cs.Edits {
			s.apply(cs, i)
		}
		return false, nil
	}

	if err := s.renderer.RenderHeader(s.out, cs); err != nil {
		return true, errors.Errorf("rendering header of %s: %w", cs.Path, err)
	}

	for i := range cs.Edits {
		if s.state == Prompting && ctx.Err() != nil {
			s.setState(ctx, Quit)
		}

		if s.state != Quit {
			if err := s.renderer.RenderHunk(s.out, cs, i); err != nil {
				return true, errors.Errorf("rendering %s: %w", cs.Path, err)
			}
		}

		if s.state != Prompting {
			s.apply(cs, i)
			continue
		}

		if err := s.prompt(ctx, cs, i); err != nil {
			return true, err
		}
	}

	return true, nil
}

// apply decides edit i from the current policy.
func (s *Session) apply(cs *edit.FileChangeSet, i int) {
	switch s.state {
	case AutoAcceptFile, AutoAcceptAll:
		cs.Edits[i].Decision = edit.Accepted
	default:
		cs.Edits[i].Decision = edit.Rejected
	}
}

func (s *Session) prompt(ctx context.Context, cs *edit.FileChangeSet, i int) error {
	e := &cs.Edits[i]
	for {
		fmt.Fprint(s.out, Prompt)

		line, ok := s.readLine(ctx)
		if !ok {
			fmt.Fprintln(s.out)
			e.Decision = edit.Rejected
			s.setState(ctx, Quit)
			return nil
		}

		switch ParseCommand(line) {
		case CmdYes:
			e.Decision = edit.Accepted
		case CmdNo:
			e.Decision = edit.Rejected
		case CmdAll:
			e.Decision = edit.Accepted
			s.setState(ctx, AutoAcceptFile)
		case CmdDone:
			e.Decision = edit.Rejected
			s.setState(ctx, AutoRejectFile)
		case CmdQuit:
			e.Decision = edit.Rejected
			s.setState(ctx, Quit)
		case CmdEverything:
			e.Decision = edit.Accepted
			s.setState(ctx, AutoAcceptAll)
		case CmdEdit:
			return s.edit(ctx, cs, i)
		case CmdHelp:
			fmt.Fprint(s.out, Legend)
			continue
		default:
			fmt.Fprintf(s.out, "unknown command %q, type ? for help\n", strings.TrimSpace(line))
			continue
		}
		return nil
	}
}

// edit reads a custom replacement for edit i. It replaces the matched span as
// typed; an empty line or end of input skips the match.
func (s *Session) edit(ctx context.Context, cs *edit.FileChangeSet, i int) error {
	e := &cs.Edits[i]

	fmt.Fprint(s.out, EditPrompt)
	line, ok := s.readLine(ctx)
	line = strings.TrimRight(line, "\r\n")
	if !ok || line == "" {
		if !ok {
			fmt.Fprintln(s.out)
		}
		fmt.Fprintln(s.out, Skipped)
		e.Decision = edit.Rejected
		return nil
	}

	e.Replacement = []byte(line)
	e.Custom = true
	e.Decision = edit.Accepted

	if err := s.renderer.RenderHunk(s.out, cs, i); err != nil {
		return errors.Errorf("rendering %s: %w", cs.Path, err)
	}
	return nil
}

// readLine returns the next input line. ok is false once the input is exhausted
// or broken; a final line without a newline still counts.
func (s *Session) readLine(ctx context.Context) (string, bool) {
	line, err := s.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			zerolog.Ctx(ctx).Debug().Err(err).Msg("reading review input")
		}
		if line == "" {
			return "", false
		}
	}
	return line, true
}

func (s *Session) setState(ctx context.Context, st State) {
	if s.state == st {
		return
	}
	zerolog.Ctx(ctx).Debug().Stringer("from", s.state).Stringer("to", st).Msg("review state")
	s.state = st
}
