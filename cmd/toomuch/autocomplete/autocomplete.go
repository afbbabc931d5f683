// Copyright 2025 Emiliano Spinella (eminwux)
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
//
// SPDX-License-Identifier: Apache-2.0

package autocomplete

import (
	"fmt"

	"github.com/eminwux/toomuch/internal/errdefs"
	"github.com/spf13/cobra"
)

const Command = "autocomplete"

// NewAutoCompleteCmd prints a completion script for root. Completion of the
// supervised command itself is left to the shell's file completion.
func NewAutoCompleteCmd(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   Command + " bash|zsh|fish",
		Short: "Generate shell autocompletion scripts",
		Long: `Generate shell autocompletion scripts for toomuch.

Bash:
  $ source <(toomuch autocomplete bash)

Zsh:
  $ toomuch autocomplete zsh > "${fpath[1]}/_toomuch"

Fish:
  $ toomuch autocomplete fish > ~/.config/fish/completions/toomuch.fish
`,
		DisableFlagsInUseLine: true,
		SilenceUsage:          true,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs:             []string{"bash", "zsh", "fish"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(cmd.OutOrStdout(), true)
			case "zsh":
				return root.GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return root.GenFishCompletion(cmd.OutOrStdout(), true)
			default:
				return fmt.Errorf("%w: unsupported shell %q", errdefs.ErrInvalidArgument, args[0])
			}
		},
	}
}
