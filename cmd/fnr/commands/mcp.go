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

package commands

import (
	"os"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/fnr/cmd/fnr/opts"
	"github.com/walteh/fnr/pkg/mcp"
	"github.com/walteh/fnr/pkg/operation"
)

// NewMCPCmd creates the mcp command
func NewMCPCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve fnr to MCP clients over stdio",
		Long: `MCP starts a Model Context Protocol server on stdin and stdout.
It exposes the fnr_replace tool, working below the current directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := o.LoadConfig(ctx)
			if err != nil {
				return err
			}

			root, err := os.Getwd()
			if err != nil {
				return errors.Errorf("getting working directory: %w", err)
			}

			var rec operation.Recorder
			j, err := o.OpenJournal(ctx, cfg)
			if err != nil {
				return err
			}
			if j != nil {
				defer j.Close()
				rec = j
			}

			return mcp.New(ctx, root, rec).Serve(ctx)
		},
	}
}
