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
	"github.com/spf13/cobra"

	"github.com/walteh/fnr/cmd/fnr/opts"
	"github.com/walteh/fnr/pkg/guide"
)

// NewGuideCmd creates the guide command
func NewGuideCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "guide",
		Short: "Show the fnr usage guide",
		Long: `Guide prints the fnr usage guide. On a terminal it is rendered,
otherwise the raw markdown is written so it can be piped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return guide.Render(o.Out, o.OutTerminal, o.Width)
		},
	}
}
