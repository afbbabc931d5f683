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
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"syscall"
	"time"

	"github.com/eminwux/toomuch/internal/errdefs"
	"github.com/eminwux/toomuch/internal/jobcontrol"
)

func (e *Exec) Start() error {
	if e.spec == nil {
		return errdefs.ErrNoSpecDefined
	}
	if e.spec.Command == "" {
		return errdefs.ErrSpecCmdMissing
	}

	e.logger.Debug("Start: preparing command", "command", e.spec.Command, "args", e.spec.CommandArgs)

	//nolint:gosec,noctx // the user chooses the command; the context must not kill it behind our back
	cmd := exec.Command(e.spec.Command, e.spec.CommandArgs...)
	if cmd.Err != nil {
		e.logger.Error("Start: command lookup failed", "command", e.spec.Command, "error", cmd.Err)
		return classifyStartError(cmd.Err)
	}

	// A nil *os.File must not end up in an io.Reader or io.Writer.
	if e.spec.Stdin != nil {
		cmd.Stdin = e.spec.Stdin
	}
	if e.spec.Stdout != nil {
		cmd.Stdout = e.spec.Stdout
	}
	if e.spec.Stderr != nil {
		cmd.Stderr = e.spec.Stderr
	}
	cmd.Env = e.spec.Env
	// Own process group: stop, continue and kill reach the whole job and never the supervisor.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		e.logger.Error("Start: failed to start command", "command", e.spec.Command, "error", err)
		return classifyStartError(err)
	}

	e.cmd = cmd
	e.pid = cmd.Process.Pid
	e.logger.Info("Start: process started", "pid", e.pid, "pgid", e.pid)

	go e.wait()

	return nil
}

// wait reaps the child and reports its exit code. A child without an exit
// code (killed by a signal) reports 0.
func (e *Exec) wait() {
	errWait := e.cmd.Wait()

	code := e.cmd.ProcessState.ExitCode()
	if code < 0 {
		if ws, ok := e.cmd.ProcessState.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			e.logger.Info("wait: process terminated by signal", "pid", e.pid, "signal", ws.Signal())
		}
		code = 0
	}

	var exitErr *exec.ExitError
	if errWait != nil && !errors.As(errWait, &exitErr) {
		e.logger.Warn("wait: process exited with error", "pid", e.pid, "error", errWait)
		trySendEvent(e.logger, e.events, Event{Pid: e.pid, Type: EvError, ExitCode: code, Err: errWait, When: time.Now()})
		return
	}

	e.logger.Info("wait: process exited", "pid", e.pid, "exit_code", code)
	trySendEvent(e.logger, e.events, Event{Pid: e.pid, Type: EvCmdExited, ExitCode: code, When: time.Now()})
}

func (e *Exec) Stop() error     { return e.deliver(syscall.SIGSTOP, jobcontrol.Stop) }
func (e *Exec) Continue() error { return e.deliver(syscall.SIGCONT, jobcontrol.Continue) }
func (e *Exec) Kill() error     { return e.deliver(syscall.SIGKILL, jobcontrol.Kill) }

func (e *Exec) Signal(sig syscall.Signal) error {
	return e.deliver(sig, func(pgid int) error { return jobcontrol.Signal(pgid, sig) })
}

func (e *Exec) deliver(sig syscall.Signal, send func(pgid int) error) error {
	if e.pid == 0 {
		return errdefs.ErrChildNotStarted
	}
	if err := send(e.Pgid()); err != nil {
		e.logger.Debug("Signal: delivery failed", "pgid", e.Pgid(), "signal", sig, "error", err)
		return err
	}
	e.logger.Debug("Signal: delivered", "pgid", e.Pgid(), "signal", sig)
	return nil
}

func classifyStartError(err error) error {
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %w", errdefs.ErrCmdNotFound, err)
	case errors.Is(err, fs.ErrPermission), errors.Is(err, syscall.EISDIR), errors.Is(err, syscall.ENOEXEC):
		return fmt.Errorf("%w: %w", errdefs.ErrCmdNotExecutable, err)
	default:
		return fmt.Errorf("%w: %w", errdefs.ErrStartCmd, err)
	}
}
