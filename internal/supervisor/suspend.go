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
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/eminwux/toomuch/internal/errdefs"
	"github.com/eminwux/toomuch/internal/prompt"
	"github.com/eminwux/toomuch/internal/termmode"
	"github.com/eminwux/toomuch/pkg/api"
)

// suspend stops the child, takes the terminal back and asks the user what to
// do. It reports done when Run must return the given outcome.
func (c *Controller) suspend(sigCh <-chan os.Signal) (api.Outcome, bool, error) {
	c.logger.Info("deadline exceeded, suspending command", "pid", c.jr.Pid(), "deadline", c.spec.Deadline)

	if err := c.jr.Stop(); err != nil {
		c.logger.Warn("could not stop command group", "error", err)
	}
	c.owner.Reclaim()

	c.snapshot = c.mode.Capture()
	if err := c.mode.SetCooked(); err != nil {
		c.logger.Debug("could not switch terminal to cooked mode", "error", err)
	}

	c.setState(api.StateAwaitingInput)
	if err := c.prompter.DrawPrompt(); err != nil {
		c.logger.Warn("could not draw prompt", "error", err)
	}

	var stdin io.Reader = c.spec.Stdin
	if c.spec.Stdin == nil {
		stdin = os.Stdin
	}
	answers := c.ReadAnswer(stdin)

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case ans := <-answers:
			if ans.Err != nil {
				c.logger.Warn("could not read answer, resuming", "error", ans.Err)
			}
			switch prompt.Decide(ans) {
			case prompt.Close:
				return c.closeJob(), true, nil
			default:
				c.resume()
				return api.Outcome{}, false, nil
			}

		case <-ticker.C:
			if c.resize.Consume() {
				c.logger.Debug("terminal resized, redrawing prompt")
				if err := c.prompter.DrawPrompt(); err != nil {
					c.logger.Warn("could not redraw prompt", "error", err)
				}
			}

		case sig := <-sigCh:
			c.setState(api.StateTerminating)
			return c.onTermination(sig), true, nil

		case <-c.ctx.Done():
			c.setState(api.StateTerminating)
			return c.onTermination(syscall.SIGTERM), true, fmt.Errorf("%w: %w", errdefs.ErrContextDone, c.ctx.Err())
		}
	}
}

func (c *Controller) closeJob() api.Outcome {
	c.setState(api.StateTerminating)
	c.logger.Info("closing command", "pid", c.jr.Pid())

	if err := c.jr.Kill(); err != nil {
		c.logger.Warn("could not kill command group", "error", err)
	}
	if _, exited := c.waitExit(c.KillGrace); !exited {
		c.logger.Warn("command did not report exit after kill", "grace", c.KillGrace)
	}

	c.owner.Reclaim()
	if err := c.mode.Reset(); err != nil {
		c.logger.Debug("could not reset terminal", "error", err)
	}
	if err := c.prompter.DrawKilled(); err != nil {
		c.logger.Debug("could not draw kill notice", "error", err)
	}

	return api.Outcome{Kind: api.OutcomeClosed, ExitCode: api.ExitCodeTimeout, Prompted: true}
}

func (c *Controller) resume() {
	c.setState(api.StateResuming)
	c.logger.Info("resuming command", "pid", c.jr.Pid())

	if err := c.prompter.DrawResume(); err != nil {
		c.logger.Debug("could not draw resume notice", "error", err)
	}
	if err := c.mode.Restore(c.snapshot); err != nil {
		c.logger.Debug("could not restore terminal mode", "error", err)
	}
	c.snapshot = termmode.Snapshot{}

	c.owner.Give(c.jr.Pgid())
	if err := c.jr.Continue(); err != nil {
		c.logger.Warn("could not continue command group", "error", err)
	}
	c.setState(api.StateRunning)
}
