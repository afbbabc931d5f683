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

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/eminwux/toomuch/internal/env"
	"github.com/eminwux/toomuch/internal/errdefs"
	"github.com/eminwux/toomuch/internal/logging"
	"github.com/eminwux/toomuch/pkg/api"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"
)

const outputFormatConfigInput = "toomuch.config.output"

func NewConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:          "config",
		Short:        "Print the effective configuration",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer closeLogging(cmd)

			logger, ok := cmd.Context().Value(logging.CtxLogger).(*slog.Logger)
			if !ok || logger == nil {
				return errdefs.ErrLoggerNotFound
			}

			format := viper.GetString(outputFormatConfigInput)
			logger.DebugContext(cmd.Context(), "config command invoked", "output_format", format)

			return printConfig(cmd.OutOrStdout(), currentConfig(), format)
		},
	}

	configCmd.Flags().StringP("output", "o", "yaml", "Output format: json|yaml")
	_ = viper.BindPFlag(outputFormatConfigInput, configCmd.Flags().Lookup("output"))
	_ = configCmd.RegisterFlagCompletionFunc(
		"output",
		func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return []string{"json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
		},
	)

	return configCmd
}

func currentConfig() api.Config {
	return api.Config{
		ConfigFile:   viper.GetString(env.CONFIG_FILE.ViperKey),
		LogFile:      viper.GetString(env.LOG_FILE.ViperKey),
		LogLevel:     viper.GetString(env.LOG_LEVEL.ViperKey),
		PollInterval: viper.GetString(env.POLL_INTERVAL.ViperKey),
	}
}

func printConfig(w io.Writer, cfg api.Config, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	case "yaml", "":
		b, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	default:
		return fmt.Errorf("%w: %q (use json|yaml)", errdefs.ErrOutputFormat, format)
	}
}
