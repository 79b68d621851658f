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

package text

import (
	"bytes"
	"fmt"
	"iter"
	"regexp"
	"regexp/syntax"
	"slices"
	"strings"
	"unicode"

	"gitlab.com/tozd/go/errors"
)

// ErrEmptyPattern is returned when compiling an empty search pattern.
var ErrEmptyPattern = errors.Base("empty pattern")

// 🔠 CaseMode controls case sensitivity of a Pattern
type CaseMode int

const (
	// CaseSmart matches case-insensitively unless the pattern has an upper-case letter.
	CaseSmart CaseMode = iota
	CaseSensitive
	CaseInsensitive
)

func (c CaseMode) String() string {
	switch c {
	case CaseSensitive:
		return "sensitive"
	case CaseInsensitive:
		return "insensitive"
	default:
		return "smart"
	}
}

// ParseCaseMode parses "smart", "sensitive" or "insensitive".
func ParseCaseMode(s string) (CaseMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "smart":
		return CaseSmart, nil
	case "sensitive":
		return CaseSensitive, nil
	case "insensitive", "ignore":
		return CaseInsensitive, nil
	default:
		return CaseSmart, errors.Errorf("unknown case mode %q", s)
	}
}

// Options configures Compile.
type Options struct {
	Literal bool     // treat the pattern as an exact string
	Case    CaseMode // case sensitivity
	Word    bool     // only match at word boundaries
}

// PatternError reports a pattern that could not be compiled.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("compiling pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// Span is a half-open byte range. Start and End are -1 for a group that did not
// participate in the match.
type Span struct {
	Start int
	End   int
}

// Valid reports whether the span refers to text.
func (s Span) Valid() bool { return s.Start >= 0 && s.End >= s.Start }

// 🎯 Match is one occurrence of a Pattern in a text.
type Match struct {
	Start     int // byte offset of the first matched byte
	End       int // byte offset one past the last matched byte
	StartLine int // 1-based line holding Start
	EndLine   int // 1-based line holding the last matched byte
	Groups    []Span
}

// Len returns the number of matched bytes.
func (m Match) Len() int { return m.End - m.Start }

// Bytes returns the matched bytes of text.
func (m Match) Bytes(text []byte) []byte { return text[m.Start:m.End] }

// 🔍 Pattern is a compiled search pattern. It is immutable and safe for concurrent use.
type Pattern struct {
	source  string
	opts    Options
	matcher Matcher
}

// Compile compiles a literal or regular expression pattern.
func Compile(pattern string, opts Options) (*Pattern, error) {
	if pattern == "" {
		return nil, &PatternError{Pattern: pattern, Err: ErrEmptyPattern}
	}

	fold := foldCase(pattern, opts)

	if opts.Literal && !fold && !opts.Word {
		return &Pattern{
			source:  pattern,
			opts:    opts,
			matcher: &literalMatcher{needle: []byte(pattern)},
		}, nil
	}

	expr := pattern
	if opts.Literal {
		expr = regexp.QuoteMeta(pattern)
	}
	if opts.Word {
		expr = wordEdges(pattern, opts.Literal, expr)
	}
	if fold {
		expr = "(?i)" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Err: err}
	}

	return &Pattern{
		source:  pattern,
		opts:    opts,
		matcher: &regexMatcher{re: re},
	}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(pattern string, opts Options) *Pattern {
	p, err := Compile(pattern, opts)
	if err != nil {
		panic(err)
	}
	return p
}

// FromMatcher builds a Pattern on top of a custom Matcher.
func FromMatcher(source string, m Matcher) *Pattern {
	return &Pattern{source: source, matcher: m}
}

// String returns the pattern as given to Compile.
func (p *Pattern) String() string { return p.source }

// Options returns the options the pattern was compiled with.
func (p *Pattern) Options() Options { return p.opts }

// NumGroups returns the number of capture groups, not counting the whole match.
func (p *Pattern) NumGroups() int { return p.matcher.NumGroups() }

// GroupIndex returns the index of the named group, or -1.
func (p *Pattern) GroupIndex(name string) int {
	if name == "" {
		return -1
	}
	return slices.Index(p.matcher.GroupNames(), name)
}

// All yields the matches in text in increasing, non-overlapping order. The sequence
// can be ranged over any number of times.
func (p *Pattern) All(text []byte) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		locs := p.matcher.FindAll(text)

		line, lineAt := 1, 0
		prevStart, prevEnd := -1, 0
		for _, loc := range locs {
			if len(loc) < 2 {
				continue
			}
			start, end := loc[0], loc[1]
			// drop anything a misbehaving matcher returns out of order
			if start <= prevStart || start < prevEnd || end < start || end > len(text) {
				continue
			}
			prevStart, prevEnd = start, end

			line += bytes.Count(text[lineAt:start], []byte{'\n'})
			lineAt = start

			endLine := line
			if last := end - 1; last > start {
				endLine += bytes.Count(text[start:last], []byte{'\n'})
			}

			groups := make([]Span, 0, len(loc)/2)
			for i := 0; i+1 < len(loc); i += 2 {
				groups = append(groups, Span{Start: loc[i], End: loc[i+1]})
			}

			m := Match{
				Start:     start,
				End:       end,
				StartLine: line,
				EndLine:   endLine,
				Groups:    groups,
			}
			if !yield(m) {
				return
			}
		}
	}
}

// Find returns every match in text.
func (p *Pattern) Find(text []byte) []Match {
	return slices.Collect(p.All(text))
}

// foldCase decides whether matching ignores case.
func foldCase(pattern string, opts Options) bool {
	switch opts.Case {
	case CaseSensitive:
		return false
	case CaseInsensitive:
		return true
	}
	return !hasUpper(pattern, opts.Literal)
}

// hasUpper reports whether the pattern has an upper-case literal character. Escapes
// such as \S or \W do not count.
func hasUpper(pattern string, literal bool) bool {
	if literal {
		return strings.IndexFunc(pattern, unicode.IsUpper) >= 0
	}
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return strings.IndexFunc(pattern, unicode.IsUpper) >= 0
	}
	return literalHasUpper(re)
}

func literalHasUpper(re *syntax.Regexp) bool {
	if re.Op == syntax.OpLiteral {
		for _, r := range re.Rune {
			if unicode.IsUpper(r) {
				return true
			}
		}
	}
	for _, sub := range re.Sub {
		if literalHasUpper(sub) {
			return true
		}
	}
	return false
}

// wordEdges wraps expr so it only matches where it is not glued to a word
// character. An edge that is itself a word character needs \b; an edge that is
// not needs \B, since \b could never hold there. Edges that cannot be known from
// the pattern fall back to \b.
func wordEdges(pattern string, literal bool, expr string) string {
	first, last := edgeRunes(pattern, literal)
	return edge(first) + `(?:` + expr + `)` + edge(last)
}

func edge(r rune) string {
	if r >= 0 && !isWordRune(r) {
		return `\B`
	}
	return `\b`
}

// isWordRune matches the ASCII word class RE2 uses for \b.
func isWordRune(r rune) bool {
	return r == '_' || ('0' <= r && r <= '9') || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}

// edgeRunes returns the first and last rune every match starts and ends with,
// or -1 when that depends on the input.
func edgeRunes(pattern string, literal bool) (first, last rune) {
	if literal {
		runes := []rune(pattern)
		return runes[0], runes[len(runes)-1]
	}
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return -1, -1
	}
	return edgeRune(re, true), edgeRune(re, false)
}

func edgeRune(re *syntax.Regexp, first bool) rune {
	switch re.Op {
	case syntax.OpLiteral:
		if len(re.Rune) == 0 {
			return -1
		}
		if first {
			return re.Rune[0]
		}
		return re.Rune[len(re.Rune)-1]
	case syntax.OpCapture:
		return edgeRune(re.Sub[0], first)
	case syntax.OpConcat:
		if len(re.Sub) == 0 {
			return -1
		}
		if first {
			return edgeRune(re.Sub[0], true)
		}
		return edgeRune(re.Sub[len(re.Sub)-1], false)
	}
	return -1
}
