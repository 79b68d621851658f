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

// Package mcp serves the non-interactive replace pipeline over the Model
// Context Protocol on stdio.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/fnr/pkg/operation"
)

// Version is advertised to clients.
const Version = "1.0.0"

// ToolReplace is the name of the replace tool.
const ToolReplace = "fnr_replace"

// 🛰️ Server exposes fnr as MCP tools
type Server struct {
	root    string             // relative paths are resolved against root
	journal operation.Recorder // optional
	logger  zerolog.Logger
}

// 🏭 New creates a new server working below root
func New(ctx context.Context, root string, journal operation.Recorder) *Server {
	return &Server{root: root, journal: journal, logger: *zerolog.Ctx(ctx)}
}

// MCPServer builds the protocol server with every tool registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer(
		"fnr",
		Version,
		server.WithToolCapabilities(true),
	)
	s.registerTools(srv)
	return srv
}

// Serve blocks serving stdio until the client disconnects.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info().Str("version", Version).Str("root", s.root).Msg("fnr MCP server ready")

	err := server.ServeStdio(s.MCPServer())
	if errors.Is(err, context.Canceled) {
		s.logger.Info().Msg("server stopped")
		return nil
	}
	if err != nil {
		return errors.Errorf("serving stdio: %w", err)
	}
	return nil
}

func (s *Server) registerTools(srv *server.MCPServer) {
	srv.AddTool(
		mcp.NewTool(ToolReplace,
			mcp.WithDescription("Find and replace text across files. Reports every change as -/+ line pairs. Files are only rewritten when write is true."),
			mcp.WithString("find", mcp.Required(), mcp.Description("Regular expression, or exact text when literal is true")),
			mcp.WithString("replace", mcp.Required(), mcp.Description("Replacement; $1, ${1}, $name and ${name} insert capture groups, $$ is a dollar sign")),
			mcp.WithArray("paths", mcp.Description("Files or directories to search (default: the server root)"), mcp.WithStringItems()),
			mcp.WithBoolean("literal", mcp.Description("Treat find as exact text")),
			mcp.WithBoolean("ignore_case", mcp.Description("Match case-insensitively")),
			mcp.WithBoolean("word", mcp.Description("Only match whole words")),
			mcp.WithBoolean("write", mcp.Description("Rewrite the files in place")),
			mcp.WithNumber("context", mcp.Description("Context lines around each change")),
		),
		s.replace,
	)
}
