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

package jobrunner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/eminwux/toomuch/internal/errdefs"
	"github.com/eminwux/toomuch/pkg/api"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for job event")
	}
	return Event{}
}

func TestStart_ExitCode(t *testing.T) {
	evCh := make(chan Event, 1)
	spec := &api.SupervisorSpec{Command: "sh", CommandArgs: []string{"-c", "exit 7"}}
	r := NewJobRunnerExec(context.Background(), newTestLogger(), spec, evCh)

	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if r.Pid() <= 0 || r.Pgid() != r.Pid() {
		t.Fatalf("expected child to lead its own group; pid=%d pgid=%d", r.Pid(), r.Pgid())
	}

	ev := waitEvent(t, evCh)
	if ev.Type != EvCmdExited || ev.ExitCode != 7 {
		t.Fatalf("expected EvCmdExited with code 7; got %+v", ev)
	}
}

func TestKill_ReportsZero(t *testing.T) {
	evCh := make(chan Event, 1)
	spec := &api.SupervisorSpec{Command: "sleep", CommandArgs: []string{"30"}}
	r := NewJobRunnerExec(context.Background(), newTestLogger(), spec, evCh)

	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := r.Kill(); err != nil {
		t.Fatalf("Kill: %v", err)
	}

	ev := waitEvent(t, evCh)
	if ev.Type != EvCmdExited || ev.ExitCode != 0 {
		t.Fatalf("expected EvCmdExited with code 0 for a signalled child; got %+v", ev)
	}
}

func TestStopContinue_ChildSurvives(t *testing.T) {
	evCh := make(chan Event, 1)
	spec := &api.SupervisorSpec{Command: "sh", CommandArgs: []string{"-c", "sleep 0.3; exit 3"}}
	r := NewJobRunnerExec(context.Background(), newTestLogger(), spec, evCh)

	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := r.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	select {
	case ev := <-evCh:
		t.Fatalf("stopped child must not exit; got %+v", ev)
	case <-time.After(500 * time.Millisecond):
	}

	if err := r.Continue(); err != nil {
		t.Fatalf("Continue: %v", err)
	}
	ev := waitEvent(t, evCh)
	if ev.ExitCode != 3 {
		t.Fatalf("expected exit code 3 after continue; got %+v", ev)
	}
}

func TestStart_Errors(t *testing.T) {
	dir := t.TempDir()
	notExec := dir + "/script.sh"
	if err := os.WriteFile(notExec, []byte("#!/bin/sh\nexit 0\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	tests := []struct {
		name string
		spec *api.SupervisorSpec
		want error
	}{
		{"nil spec", nil, errdefs.ErrNoSpecDefined},
		{"empty command", &api.SupervisorSpec{}, errdefs.ErrSpecCmdMissing},
		{"not found", &api.SupervisorSpec{Command: "toomuch-no-such-command-xyz"}, errdefs.ErrCmdNotFound},
		{"missing path", &api.SupervisorSpec{Command: dir + "/missing"}, errdefs.ErrCmdNotFound},
		{"not executable", &api.SupervisorSpec{Command: notExec}, errdefs.ErrCmdNotExecutable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewJobRunnerExec(context.Background(), newTestLogger(), tt.spec, make(chan Event, 1))
			err := r.Start()
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected '%v'; got: '%v'", tt.want, err)
			}
		})
	}
}

func TestSignal_NotStarted(t *testing.T) {
	r := NewJobRunnerExec(context.Background(), newTestLogger(), &api.SupervisorSpec{}, make(chan Event, 1))
	if err := r.Continue(); !errors.Is(err, errdefs.ErrChildNotStarted) {
		t.Fatalf("expected '%v'; got: '%v'", errdefs.ErrChildNotStarted, err)
	}
}
