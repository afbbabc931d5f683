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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"syscall"
	"testing"
	"time"

	"github.com/eminwux/toomuch/internal/errdefs"
	"github.com/eminwux/toomuch/internal/logging"
	"github.com/eminwux/toomuch/internal/supervisor"
	"github.com/eminwux/toomuch/pkg/api"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newTestRoot(t *testing.T, ctrl *supervisor.ControllerTest) (*cobra.Command, *bytes.Buffer) {
	t.Helper()

	viper.Reset()
	t.Setenv("HOME", t.TempDir())

	prev := newSupervisorController
	newSupervisorController = func(_ context.Context, _ *slog.Logger) api.SupervisorController {
		return ctrl
	}
	t.Cleanup(func() {
		newSupervisorController = prev
		viper.Reset()
	})

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	root := NewToomuchRootCmd()
	root.SetContext(context.WithValue(context.Background(), logging.CtxLogger, logger))

	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	return root, out
}

func Test_ExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"exit error", &ExitError{Code: 3}, 3},
		{"timeout", &ExitError{Code: api.ExitCodeTimeout}, 124},
		{"not found", errdefs.ErrCmdNotFound, ExitCodeNotFound},
		{"not executable", errdefs.ErrCmdNotExecutable, ExitCodeNotExecutable},
		{"invalid duration", errdefs.ErrInvalidDuration, ExitCodeUsage},
		{"config", errdefs.ErrConfig, ExitCodeUsage},
		{"other", errors.New("boom"), ExitCodeUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Fatalf("expected %d; got %d", tt.want, got)
			}
		})
	}
}

func Test_RunSupervisorOutcomes(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name     string
		outcome  api.Outcome
		err      error
		wantCode int
		wantIs   error
	}{
		{"exited zero", api.Outcome{Kind: api.OutcomeExited}, nil, 0, nil},
		{"exited non-zero", api.Outcome{Kind: api.OutcomeExited, ExitCode: 3}, nil, 3, nil},
		{"closed", api.Outcome{Kind: api.OutcomeClosed, ExitCode: api.ExitCodeTimeout, Prompted: true}, nil, 124, nil},
		{
			"interrupted",
			api.Outcome{Kind: api.OutcomeInterrupted, ExitCode: 143, Signal: syscall.SIGTERM},
			nil, 143, errdefs.ErrSignalReceived,
		},
		{"not found", api.Outcome{}, errdefs.ErrCmdNotFound, ExitCodeNotFound, errdefs.ErrCmdNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := &supervisor.ControllerTest{
				RunFunc: func(_ *api.SupervisorSpec) (api.Outcome, error) {
					return tt.outcome, tt.err
				},
			}

			err := runSupervisor(context.Background(), logger, ctrl, &api.SupervisorSpec{Command: "fake"})
			if got := exitCodeFor(err); got != tt.wantCode {
				t.Fatalf("expected exit code %d; got %d (err: %v)", tt.wantCode, got, err)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Fatalf("expected '%v'; got '%v'", tt.wantIs, err)
			}
		})
	}
}

func Test_ErrLoggerNotFound(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	cmd := NewToomuchRootCmd()
	cmd.SetContext(context.Background())

	err := cmd.RunE(cmd, []string{"1", "true"})
	if !errors.Is(err, errdefs.ErrLoggerNotFound) {
		t.Fatalf("expected '%v'; got '%v'", errdefs.ErrLoggerNotFound, err)
	}
}

func Test_MissingArguments(t *testing.T) {
	for _, args := range [][]string{{}, {"5"}} {
		root, _ := newTestRoot(t, supervisor.NewSupervisorControllerTest())
		root.SetArgs(args)

		err := root.Execute()
		if !errors.Is(err, errdefs.ErrInvalidArgument) {
			t.Fatalf("args %v: expected '%v'; got '%v'", args, errdefs.ErrInvalidArgument, err)
		}
		if got := exitCodeFor(err); got != ExitCodeUsage {
			t.Fatalf("expected exit code %d; got %d", ExitCodeUsage, got)
		}
	}
}

func Test_InvalidDuration(t *testing.T) {
	ctrl := supervisor.NewSupervisorControllerTest()
	root, _ := newTestRoot(t, ctrl)
	root.SetArgs([]string{"5x", "true"})

	err := root.Execute()
	if !errors.Is(err, errdefs.ErrInvalidDuration) {
		t.Fatalf("expected '%v'; got '%v'", errdefs.ErrInvalidDuration, err)
	}
	if ctrl.LastSpec != nil {
		t.Fatalf("expected controller not to run")
	}
}

func Test_InvalidPollInterval(t *testing.T) {
	root, _ := newTestRoot(t, supervisor.NewSupervisorControllerTest())
	root.SetArgs([]string{"--poll-interval", "fast", "5", "true"})

	if err := root.Execute(); !errors.Is(err, errdefs.ErrConfig) {
		t.Fatalf("expected '%v'; got '%v'", errdefs.ErrConfig, err)
	}
}

func Test_CommandFlagsPassThrough(t *testing.T) {
	ctrl := supervisor.NewSupervisorControllerTest()
	root, _ := newTestRoot(t, ctrl)
	root.SetArgs([]string{"--poll-interval", "10ms", "2m", "ls", "-l", "--color", "/tmp"})

	if err := root.Execute(); err != nil {
		t.Fatalf("expected nil error; got %v", err)
	}
	spec := ctrl.LastSpec
	if spec == nil {
		t.Fatalf("expected controller to run")
	}
	if spec.Command != "ls" {
		t.Fatalf("expected command ls; got %q", spec.Command)
	}
	if want := []string{"-l", "--color", "/tmp"}; !slices.Equal(spec.CommandArgs, want) {
		t.Fatalf("expected args %v; got %v", want, spec.CommandArgs)
	}
	if spec.Deadline != 2*time.Minute {
		t.Fatalf("expected deadline 2m; got %v", spec.Deadline)
	}
	if spec.PollInterval != 10*time.Millisecond {
		t.Fatalf("expected poll interval 10ms; got %v", spec.PollInterval)
	}
}

func Test_ChildExitCodeIsReturned(t *testing.T) {
	ctrl := &supervisor.ControllerTest{
		RunFunc: func(_ *api.SupervisorSpec) (api.Outcome, error) {
			return api.Outcome{Kind: api.OutcomeExited, ExitCode: 42}, nil
		},
	}
	root, _ := newTestRoot(t, ctrl)
	root.SetArgs([]string{"1", "false"})

	if got := exitCodeFor(root.Execute()); got != 42 {
		t.Fatalf("expected 42; got %d", got)
	}
}

func Test_LogFile(t *testing.T) {
	root, _ := newTestRoot(t, supervisor.NewSupervisorControllerTest())
	logFile := filepath.Join(t.TempDir(), "logs", "toomuch.log")
	root.SetArgs([]string{"--log-file", logFile, "--log-level", "debug", "1", "true"})

	if err := root.Execute(); err != nil {
		t.Fatalf("expected nil error; got %v", err)
	}
	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if !bytes.Contains(data, []byte("SupervisorSpec values")) {
		t.Fatalf("expected debug record in log file; got %q", data)
	}
}

func Test_ConfigCmdDefaults(t *testing.T) {
	root, out := newTestRoot(t, supervisor.NewSupervisorControllerTest())
	t.Setenv("TOOMUCH_LOG_LEVEL", "warn")
	root.SetArgs([]string{"config", "-o", "json"})

	if err := root.Execute(); err != nil {
		t.Fatalf("expected nil error; got %v", err)
	}

	var cfg api.Config
	if err := json.Unmarshal(out.Bytes(), &cfg); err != nil {
		t.Fatalf("invalid json %q: %v", out.String(), err)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected log level from env; got %q", cfg.LogLevel)
	}
	if cfg.PollInterval != "50ms" {
		t.Fatalf("expected default poll interval; got %q", cfg.PollInterval)
	}
	if filepath.Base(cfg.ConfigFile) != "config.yaml" {
		t.Fatalf("expected default config file; got %q", cfg.ConfigFile)
	}
}

func Test_ConfigCmdReadsFile(t *testing.T) {
	root, out := newTestRoot(t, supervisor.NewSupervisorControllerTest())
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configFile, []byte("toomuch:\n  pollInterval: 10ms\n  logLevel: error\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	root.SetArgs([]string{"--config", configFile, "config"})

	if err := root.Execute(); err != nil {
		t.Fatalf("expected nil error; got %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("pollInterval: 10ms")) {
		t.Fatalf("expected poll interval from file; got %q", out.String())
	}
	if !bytes.Contains(out.Bytes(), []byte("logLevel: error")) {
		t.Fatalf("expected log level from file; got %q", out.String())
	}
}

func Test_ConfigCmdBadFile(t *testing.T) {
	root, _ := newTestRoot(t, supervisor.NewSupervisorControllerTest())
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configFile, []byte("toomuch: [unterminated\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	root.SetArgs([]string{"--config", configFile, "config"})

	if err := root.Execute(); !errors.Is(err, errdefs.ErrConfig) {
		t.Fatalf("expected '%v'; got '%v'", errdefs.ErrConfig, err)
	}
}

func Test_ConfigCmdOutputFormat(t *testing.T) {
	root, _ := newTestRoot(t, supervisor.NewSupervisorControllerTest())
	root.SetArgs([]string{"config", "-o", "xml"})

	if err := root.Execute(); !errors.Is(err, errdefs.ErrOutputFormat) {
		t.Fatalf("expected '%v'; got '%v'", errdefs.ErrOutputFormat, err)
	}
}
