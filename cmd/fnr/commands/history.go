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
	"fmt"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/fnr/cmd/fnr/opts"
)

// NewHistoryCmd creates the history command
func NewHistoryCmd(o *opts.RootOpts) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List files rewritten by earlier runs",
		Long: `History lists the most recent entries of the change journal,
newest first. The journal is set with --journal or the journal config key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := o.LoadConfig(ctx)
			if err != nil {
				return err
			}

			j, err := o.OpenJournal(ctx, cfg)
			if err != nil {
				return err
			}
			if j == nil {
				return errors.New("no journal configured, pass --journal PATH")
			}
			defer j.Close()

			entries, err := j.Recent(ctx, limit)
			if err != nil {
				return errors.Errorf("reading history: %w", err)
			}
			if len(entries) == 0 {
				_, err := fmt.Fprintln(o.Out, "No changes recorded.")
				return err
			}

			data := pterm.TableData{{"time", "run", "path", "replaced", "pattern", "replacement", "checksum"}}
			for _, e := range entries {
				data = append(data, []string{
					e.Time.Format(time.DateTime),
					e.RunID,
					e.Path,
					strconv.Itoa(e.Accepted) + "/" + strconv.Itoa(e.Matches),
					e.Pattern,
					e.Replacement,
					short(e.Before) + " -> " + short(e.After),
				})
			}

			out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return errors.Errorf("rendering history: %w", err)
			}
			_, err = fmt.Fprintln(o.Out, out)
			return err
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")

	return cmd
}

func short(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}
