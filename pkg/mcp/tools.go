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

package mcp

import (
	"bytes"
	"context"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/fnr/pkg/operation"
	"github.com/walteh/fnr/pkg/report"
	"github.com/walteh/fnr/pkg/text"
	"github.com/walteh/fnr/pkg/walk"
)

// replace handles fnr_replace tool calls.
func (s *Server) replace(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	find, err := req.RequireString("find")
	if err != nil {
		return mcp.NewToolResultError("find is required"), nil //nolint:nilerr
	}
	repl, err := req.RequireString("replace")
	if err != nil {
		return mcp.NewToolResultError("replace is required"), nil //nolint:nilerr
	}

	caseMode := text.CaseSmart
	if getBool(req, "ignore_case", false) {
		caseMode = text.CaseInsensitive
	}

	p, err := text.Compile(find, text.Options{
		Literal: getBool(req, "literal", false),
		Case:    caseMode,
		Word:    getBool(req, "word", false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tmpl, err := text.CompileTemplate(repl, p)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	w, err := walk.New(walk.Options{})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	roots := getStrings(req, "paths")
	if len(roots) == 0 {
		roots = []string{"."}
	}
	for i, r := range roots {
		if !filepath.IsAbs(r) {
			roots[i] = filepath.Join(s.root, r)
		}
	}

	n := max(0, getInt(req, "context", 0))

	var out bytes.Buffer
	op, err := operation.NewReplace(operation.Options{
		Pattern:  p,
		Template: tmpl,
		Walker:   w,
		Roots:    roots,
		Write:    getBool(req, "write", false),
		Output:   &out,
		Reporter: report.New(report.Options{Before: n, After: n}),
		Journal:  s.journal,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ctx = s.logger.WithContext(ctx)
	if err := op.Execute(ctx); err != nil {
		if errors.Is(err, operation.ErrWriteFailed) {
			return mcp.NewToolResultError(out.String() + err.Error()), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(out.String()), nil
}

// getBool reads a boolean argument, returning def when it is missing or not a boolean.
func getBool(req mcp.CallToolRequest, name string, def bool) bool {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return def
	}
	if v, ok := args[name].(bool); ok {
		return v
	}
	return def
}

// getInt reads a numeric argument; JSON numbers arrive as float64.
func getInt(req mcp.CallToolRequest, name string, def int) int {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return def
	}
	if v, ok := args[name].(float64); ok {
		return int(v)
	}
	return def
}

// getStrings reads a string array argument, skipping non-string elements.
func getStrings(req mcp.CallToolRequest, name string) []string {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return nil
	}
	arr, ok := args[name].([]any)
	if !ok {
		return nil
	}
	result := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			result = append(result, s)
		}
	}
	return result
}
