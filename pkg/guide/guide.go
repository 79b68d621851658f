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

// Package guide holds the embedded user guide.
package guide

import (
	_ "embed"
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	"gitlab.com/tozd/go/errors"
)

//go:embed guide.md
var content string

// Markdown returns the raw guide.
func Markdown() string { return content }

// Render writes the guide to w. On a terminal it is rendered with glamour at
// the given width; otherwise the raw markdown is written.
func Render(w io.Writer, terminal bool, width int) error {
	if !terminal {
		_, err := io.WriteString(w, content)
		return err
	}

	opts := []glamour.TermRendererOption{glamour.WithStandardStyle("dark")}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return errors.Errorf("creating guide renderer: %w", err)
	}
	out, err := r.Render(content)
	if err != nil {
		return errors.Errorf("rendering guide: %w", err)
	}
	_, err = fmt.Fprint(w, out)
	return err
}
