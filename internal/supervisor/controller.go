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

package supervisor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eminwux/toomuch/internal/errdefs"
	"github.com/eminwux/toomuch/internal/jobcontrol"
	"github.com/eminwux/toomuch/internal/prompt"
	"github.com/eminwux/toomuch/internal/resize"
	"github.com/eminwux/toomuch/internal/supervisor/jobrunner"
	"github.com/eminwux/toomuch/internal/termmode"
	"github.com/eminwux/toomuch/pkg/api"
)

const (
	DefaultPollInterval = 50 * time.Millisecond
	// DefaultKillGrace bounds how long a signalled child may take to exit
	// before it is killed.
	DefaultKillGrace = 2 * time.Second
)

// TerminalMode saves and restores terminal attributes.
type TerminalMode interface {
	Capture() termmode.Snapshot
	SetCooked() error
	Restore(s termmode.Snapshot) error
	Reset() error
}

// TerminalOwner hands the terminal's foreground group around.
type TerminalOwner interface {
	Give(pgid int)
	Reclaim()
}

// Prompter draws the timeout dialog.
type Prompter interface {
	DrawPrompt() error
	DrawResume() error
	DrawKilled() error
}

// ResizeNotifier reports terminal resizes with test-and-clear semantics.
type ResizeNotifier interface {
	Start()
	Stop()
	Consume() bool
}

/* ---------- Controller ---------- */

// Controller supervises a single command under a deadline.
type Controller struct {
	ctx    context.Context
	logger *slog.Logger

	NewJobRunner      func(ctx context.Context, logger *slog.Logger, spec *api.SupervisorSpec, evCh chan<- jobrunner.Event) jobrunner.JobRunner
	NewTerminalMode   func(fd int, logger *slog.Logger) TerminalMode
	NewTerminalOwner  func(fd int, logger *slog.Logger) TerminalOwner
	NewPrompter       func(out io.Writer, fd int, logger *slog.Logger) Prompter
	NewResizeNotifier func() ResizeNotifier
	ReadAnswer        func(r io.Reader) <-chan prompt.Answer
	NotifyTermination func(ch chan<- os.Signal)
	StopTermination   func(ch chan<- os.Signal)

	KillGrace time.Duration

	jr       jobrunner.JobRunner
	mode     TerminalMode
	owner    TerminalOwner
	prompter Prompter
	resize   ResizeNotifier

	spec         *api.SupervisorSpec
	pollInterval time.Duration
	eventsCh     chan jobrunner.Event

	state    api.State
	prompted bool
	snapshot termmode.Snapshot
}

func NewSupervisorController(ctx context.Context, logger *slog.Logger) api.SupervisorController {
	return newController(ctx, logger)
}

func newController(ctx context.Context, logger *slog.Logger) *Controller {
	logger.DebugContext(ctx, "New supervisor controller is being created")
	return &Controller{
		ctx:    ctx,
		logger: logger,

		NewJobRunner: jobrunner.NewJobRunnerExec,
		NewTerminalMode: func(fd int, logger *slog.Logger) TerminalMode {
			return termmode.New(fd, logger)
		},
		NewTerminalOwner: func(fd int, logger *slog.Logger) TerminalOwner {
			return jobcontrol.New(fd, logger)
		},
		NewPrompter: func(out io.Writer, fd int, logger *slog.Logger) Prompter {
			return prompt.NewRenderer(out, fd, logger)
		},
		NewResizeNotifier: func() ResizeNotifier {
			return resize.New()
		},
		ReadAnswer: prompt.ReadAnswer,
		NotifyTermination: func(ch chan<- os.Signal) {
			signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		},
		StopTermination: func(ch chan<- os.Signal) {
			signal.Stop(ch)
		},

		KillGrace: DefaultKillGrace,
		eventsCh:  make(chan jobrunner.Event, 1),
		state:     api.StateRunning,
	}
}

// State returns the current suspend/resume state.
func (c *Controller) State() api.State { return c.state }

func (c *Controller) setState(s api.State) {
	c.logger.Debug("state transition", "from", c.state, "to", s)
	c.state = s
}

// Run spawns the command, hands it the terminal and waits for it to exit or
// for the deadline to pass. It returns an error only when the command could
// not be supervised at all.
func (c *Controller) Run(spec *api.SupervisorSpec) (api.Outcome, error) {
	if spec == nil {
		return api.Outcome{}, errdefs.ErrNoSpecDefined
	}
	c.spec = spec
	c.pollInterval = spec.PollInterval
	if c.pollInterval <= 0 {
		c.pollInterval = DefaultPollInterval
	}

	stdout := io.Writer(spec.Stdout)
	if spec.Stdout == nil {
		stdout = os.Stdout
	}

	c.mode = c.NewTerminalMode(spec.TerminalFd, c.logger)
	c.owner = c.NewTerminalOwner(spec.TerminalFd, c.logger)
	c.prompter = c.NewPrompter(stdout, spec.TerminalFd, c.logger)
	c.resize = c.NewResizeNotifier()
	c.jr = c.NewJobRunner(c.ctx, c.logger, spec, c.eventsCh)

	c.logger.Info("controller loop started",
		"command", spec.Command,
		"args", spec.CommandArgs,
		"deadline", spec.Deadline,
		"poll_interval", c.pollInterval,
	)
	defer c.logger.Info("controller loop stopped")

	c.resize.Start()
	defer c.resize.Stop()

	sigCh := make(chan os.Signal, 1)
	c.NotifyTermination(sigCh)
	defer c.StopTermination(sigCh)

	if err := c.jr.Start(); err != nil {
		c.logger.Error("failed to start command", "error", err)
		return api.Outcome{}, err
	}

	c.owner.Give(c.jr.Pgid())
	// The child may have touched the terminal before it became foreground
	// and been stopped by SIGTTIN or SIGTTOU.
	_ = c.jr.Continue()

	deadline := time.Now().Add(spec.Deadline)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case ev := <-c.eventsCh:
			return c.onExited(ev), nil

		case sig := <-sigCh:
			return c.onTermination(sig), nil

		case <-c.ctx.Done():
			c.logger.Warn("parent context canceled, shutting down controller")
			return c.onTermination(syscall.SIGTERM), fmt.Errorf("%w: %w", errdefs.ErrContextDone, c.ctx.Err())

		case <-ticker.C:
			// A finished child always wins over an expired deadline.
			select {
			case ev := <-c.eventsCh:
				return c.onExited(ev), nil
			default:
			}

			if c.prompted || time.Now().Before(deadline) {
				continue
			}
			c.prompted = true

			outcome, done, err := c.suspend(sigCh)
			if done {
				return outcome, err
			}
		}
	}
}

func (c *Controller) onExited(ev jobrunner.Event) api.Outcome {
	if ev.Type == jobrunner.EvError {
		c.logger.Error("command wait failed", "pid", ev.Pid, "error", ev.Err)
	} else {
		c.logger.Info("command exited", "pid", ev.Pid, "exit_code", ev.ExitCode)
	}
	c.owner.Reclaim()
	return api.Outcome{Kind: api.OutcomeExited, ExitCode: ev.ExitCode, Prompted: c.prompted}
}

// onTermination forwards a termination signal to the child's group, makes sure
// a stopped child can act on it and puts the terminal back in a usable state.
func (c *Controller) onTermination(sig os.Signal) api.Outcome {
	c.logger.Warn("termination signal received", "signal", sig, "state", c.state)

	sysSig, ok := sig.(syscall.Signal)
	if !ok {
		sysSig = syscall.SIGTERM
	}

	_ = c.jr.Signal(sysSig)
	_ = c.jr.Continue()

	if _, exited := c.waitExit(c.KillGrace); !exited {
		c.logger.Warn("command ignored termination signal, killing", "grace", c.KillGrace)
		_ = c.jr.Kill()
		c.waitExit(c.KillGrace)
	}

	c.owner.Reclaim()
	if err := c.mode.Reset(); err != nil {
		c.logger.Debug("could not reset terminal", "error", err)
	}

	return api.Outcome{
		Kind:     api.OutcomeInterrupted,
		ExitCode: 128 + int(sysSig),
		Prompted: c.prompted,
		Signal:   sig,
	}
}

func (c *Controller) waitExit(timeout time.Duration) (jobrunner.Event, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ev := <-c.eventsCh:
		return ev, true
	case <-timer.C:
		return jobrunner.Event{}, false
	}
}
