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
	"fmt"
	"strconv"
	"strings"
)

// TemplateError reports a replacement template that does not fit its pattern.
type TemplateError struct {
	Template string
	Ref      string // offending reference, e.g. "$3" or "${name}"
	Reason   string
}

func (e *TemplateError) Error() string {
	if e.Ref == "" {
		return fmt.Sprintf("replacement %q: %s", e.Template, e.Reason)
	}
	return fmt.Sprintf("replacement %q: %s %s", e.Template, e.Ref, e.Reason)
}

// segment is either literal text (group < 0) or a group reference.
type segment struct {
	literal string
	group   int
}

// 📝 Template is a compiled replacement. References ($1, ${1}, $name, ${name}) are
// resolved against the pattern's groups at compile time; $$ is a literal dollar.
type Template struct {
	source   string
	segments []segment
}

// CompileTemplate parses tmpl and resolves its references against p.
func CompileTemplate(tmpl string, p *Pattern) (*Template, error) {
	t := &Template{source: tmpl}

	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			t.segments = append(t.segments, segment{literal: lit.String(), group: -1})
			lit.Reset()
		}
	}
	ref := func(name, raw string) error {
		idx, reason := resolve(name, p)
		if reason != "" {
			return &TemplateError{Template: tmpl, Ref: raw, Reason: reason}
		}
		flush()
		t.segments = append(t.segments, segment{group: idx})
		return nil
	}

	for i := 0; i < len(tmpl); {
		c := tmpl[i]
		if c != '$' || i+1 >= len(tmpl) {
			lit.WriteByte(c)
			i++
			continue
		}

		next := tmpl[i+1]
		switch {
		case next == '$':
			lit.WriteByte('$')
			i += 2
		case next == '{':
			end := strings.IndexByte(tmpl[i+2:], '}')
			if end < 0 {
				return nil, &TemplateError{Template: tmpl, Ref: tmpl[i:], Reason: "is missing a closing brace"}
			}
			name := tmpl[i+2 : i+2+end]
			if err := ref(name, tmpl[i:i+3+end]); err != nil {
				return nil, err
			}
			i += 3 + end
		case isDigit(next):
			j := i + 1
			for j < len(tmpl) && isDigit(tmpl[j]) {
				j++
			}
			if err := ref(tmpl[i+1:j], tmpl[i:j]); err != nil {
				return nil, err
			}
			i = j
		case isIdentStart(next):
			j := i + 1
			for j < len(tmpl) && isIdent(tmpl[j]) {
				j++
			}
			if err := ref(tmpl[i+1:j], tmpl[i:j]); err != nil {
				return nil, err
			}
			i = j
		default:
			lit.WriteByte('$')
			i++
		}
	}
	flush()

	return t, nil
}

// String returns the template source.
func (t *Template) String() string { return t.source }

// Literal reports whether the template has no group references.
func (t *Template) Literal() bool {
	for _, s := range t.segments {
		if s.group >= 0 {
			return false
		}
	}
	return true
}

// Render expands the template for one match of text.
func (t *Template) Render(text []byte, m Match) ([]byte, error) {
	out := make([]byte, 0, len(t.source)+m.Len())
	for _, s := range t.segments {
		if s.group < 0 {
			out = append(out, s.literal...)
			continue
		}
		if s.group >= len(m.Groups) {
			return nil, &TemplateError{
				Template: t.source,
				Ref:      "$" + strconv.Itoa(s.group),
				Reason:   fmt.Sprintf("is out of range for a match with %d groups", len(m.Groups)-1),
			}
		}
		span := m.Groups[s.group]
		if !span.Valid() {
			continue
		}
		if span.End > len(text) {
			return nil, &TemplateError{Template: t.source, Ref: "$" + strconv.Itoa(s.group), Reason: "points past the end of the text"}
		}
		out = append(out, text[span.Start:span.End]...)
	}
	return out, nil
}

// resolve maps a reference to a group index; a non-empty reason means it failed.
func resolve(name string, p *Pattern) (int, string) {
	if name == "" {
		return 0, "is empty"
	}
	if isDigit(name[0]) {
		idx, err := strconv.Atoi(name)
		if err != nil {
			return 0, "is not a group number"
		}
		if idx > p.NumGroups() {
			return 0, fmt.Sprintf("is out of range: the pattern has %d groups", p.NumGroups())
		}
		return idx, ""
	}
	idx := p.GroupIndex(name)
	if idx < 0 {
		return 0, "does not name a group of the pattern"
	}
	return idx, ""
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdent(c byte) bool { return isIdentStart(c) || isDigit(c) }
