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
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/eminwux/toomuch/cmd/toomuch/autocomplete"
	"github.com/eminwux/toomuch/internal/duration"
	"github.com/eminwux/toomuch/internal/env"
	"github.com/eminwux/toomuch/internal/errdefs"
	"github.com/eminwux/toomuch/internal/logging"
	"github.com/eminwux/toomuch/internal/supervisor"
	"github.com/eminwux/toomuch/pkg/api"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

//nolint:gochecknoglobals // overridden in tests
var newSupervisorController = supervisor.NewSupervisorController

func NewToomuchRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "toomuch [flags] DURATION COMMAND [ARG]...",
		Short: "Run a command under a deadline and ask before killing it",
		Long: `toomuch runs COMMAND in its own process group and hands it the terminal.

When DURATION elapses the command is suspended and you are asked whether to
close it (exit code 124) or let it resume. You are asked only once.

DURATION is a number with an optional unit: s (default), m, h or ms.
  toomuch 10 make test
  toomuch 5m vim notes.txt
  toomuch --log-file /tmp/toomuch.log 90m ./long-job
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(_ *cobra.Command, args []string) error {
			//nolint:mnd // DURATION and COMMAND
			if len(args) < 2 {
				return fmt.Errorf("%w: requires DURATION and COMMAND", errdefs.ErrInvalidArgument)
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := LoadConfig(); err != nil {
				return fmt.Errorf("%w: %w", errdefs.ErrConfig, err)
			}
			return setupLogging(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			defer closeLogging(cmd)

			logger, ok := cmd.Context().Value(logging.CtxLogger).(*slog.Logger)
			if !ok || logger == nil {
				return errdefs.ErrLoggerNotFound
			}

			cmd.Flags().VisitAll(func(f *pflag.Flag) {
				logger.DebugContext(cmd.Context(), "flag value", "name", f.Name, "value", f.Value.String())
			})

			spec, err := buildSpec(args)
			if err != nil {
				return err
			}

			logger.DebugContext(cmd.Context(), "SupervisorSpec values",
				"command", spec.Command,
				"args", spec.CommandArgs,
				"deadline", spec.Deadline,
				"poll_interval", spec.PollInterval,
				"terminal_fd", spec.TerminalFd,
			)
			if !term.IsTerminal(spec.TerminalFd) {
				logger.WarnContext(cmd.Context(), "stdin is not a terminal, job control is disabled",
					"fd", spec.TerminalFd)
			}

			ctrl := newSupervisorController(cmd.Context(), logger)
			return runSupervisor(cmd.Context(), logger, ctrl, spec)
		},
	}

	setupRootCmd(rootCmd)

	return rootCmd
}

func setupRootCmd(rootCmd *cobra.Command) {
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(autocomplete.NewAutoCompleteCmd(rootCmd))
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Everything after DURATION belongs to the command, flags included.
	rootCmd.Flags().SetInterspersed(false)

	rootCmd.PersistentFlags().String(env.CONFIG_FILE.CobraKey, "", "config file (default is $HOME/.toomuch/config.yaml)")
	_ = viper.BindPFlag(env.CONFIG_FILE.ViperKey, rootCmd.PersistentFlags().Lookup(env.CONFIG_FILE.CobraKey))

	rootCmd.PersistentFlags().String(env.LOG_FILE.CobraKey, "", "Optional log file (logging is disabled when empty)")
	_ = viper.BindPFlag(env.LOG_FILE.ViperKey, rootCmd.PersistentFlags().Lookup(env.LOG_FILE.CobraKey))

	rootCmd.PersistentFlags().String(env.LOG_LEVEL.CobraKey, "", "Log level (debug, info, warn, error)")
	_ = viper.BindPFlag(env.LOG_LEVEL.ViperKey, rootCmd.PersistentFlags().Lookup(env.LOG_LEVEL.CobraKey))

	rootCmd.Flags().String(env.POLL_INTERVAL.CobraKey, "", "How often the deadline and the command are checked")
	_ = viper.BindPFlag(env.POLL_INTERVAL.ViperKey, rootCmd.Flags().Lookup(env.POLL_INTERVAL.CobraKey))
}

func buildSpec(args []string) (*api.SupervisorSpec, error) {
	deadline, err := duration.Parse(args[0])
	if err != nil {
		return nil, err
	}

	pollInterval, err := duration.Parse(viper.GetString(env.POLL_INTERVAL.ViperKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errdefs.ErrConfig, env.POLL_INTERVAL.ViperKey, err)
	}
	if pollInterval <= 0 {
		return nil, fmt.Errorf("%w: %s must be positive", errdefs.ErrConfig, env.POLL_INTERVAL.ViperKey)
	}

	return &api.SupervisorSpec{
		Command:      args[1],
		CommandArgs:  args[2:],
		Env:          os.Environ(),
		Deadline:     deadline,
		PollInterval: pollInterval,
		TerminalFd:   int(os.Stdin.Fd()),
		Stdin:        os.Stdin,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
	}, nil
}

func runSupervisor(
	ctx context.Context,
	logger *slog.Logger,
	ctrl api.SupervisorController,
	spec *api.SupervisorSpec,
) error {
	logger.DebugContext(ctx, "starting supervisor controller", "command", spec.Command)

	out, err := ctrl.Run(spec)
	logger.DebugContext(ctx, "controller stopped", "outcome", out.Kind, "exit_code", out.ExitCode, "error", err)

	switch {
	case err != nil && out.Kind != api.OutcomeInterrupted:
		// the command never ran
		return err
	case out.Kind == api.OutcomeInterrupted:
		reason := fmt.Errorf("%w: %v", errdefs.ErrSignalReceived, out.Signal)
		if err != nil {
			reason = fmt.Errorf("%w: %w", reason, err)
		}
		return &ExitError{Code: out.ExitCode, Err: reason}
	case out.ExitCode != 0:
		return &ExitError{Code: out.ExitCode}
	default:
		return nil
	}
}

// LoadConfig resolves the config file and binds every TOOMUCH_* variable.
// A missing config file is not an error.
func LoadConfig() error {
	for _, v := range env.All() {
		if err := v.BindEnv(); err != nil {
			return err
		}
		if def, ok := v.DefaultValue(); ok {
			v.SetDefault(def)
		}
	}

	configFile := viper.GetString(env.CONFIG_FILE.ViperKey)
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		configFile = filepath.Join(home, ".toomuch", "config.yaml")
		viper.SetDefault(env.CONFIG_FILE.ViperKey, configFile)
	}

	viper.SetConfigFile(configFile)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	return nil
}

func setupLogging(cmd *cobra.Command) error {
	logFile := viper.GetString(env.LOG_FILE.ViperKey)
	if logFile == "" {
		return nil
	}

	logger, levelVar, closer, err := logging.NewFileLogger(logFile, viper.GetString(env.LOG_LEVEL.ViperKey))
	if err != nil {
		return fmt.Errorf("%w: %w", errdefs.ErrConfig, err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, logging.CtxLogger, logger)
	ctx = context.WithValue(ctx, logging.CtxLevelVar, levelVar)
	ctx = context.WithValue(ctx, logging.CtxCloser, closer)
	cmd.SetContext(ctx)
	return nil
}

func closeLogging(cmd *cobra.Command) {
	if c, _ := cmd.Context().Value(logging.CtxCloser).(io.Closer); c != nil {
		_ = c.Close()
	}
}
