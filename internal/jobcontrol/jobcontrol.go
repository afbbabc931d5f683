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

// Package jobcontrol moves the controlling terminal between process groups and
// signals whole process groups. Controller.Give is the only place toomuch
// changes the terminal's foreground group.
package jobcontrol

import (
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

type Controller struct {
	fd     int
	self   int
	logger *slog.Logger
}

// New returns a controller for the terminal on fd. The caller's own process
// group is recorded as the supervisor group.
func New(fd int, logger *slog.Logger) *Controller {
	return &Controller{
		fd:     fd,
		self:   unix.Getpgrp(),
		logger: logger,
	}
}

// Give makes pgid the foreground process group of the terminal.
//
// A background process calling tcsetpgrp receives SIGTTOU, which would stop
// it. SIGTTOU is ignored before the ioctl and stays ignored afterwards: the
// supervisor is never meant to be stopped by terminal output. Errors are
// logged and swallowed.
func (c *Controller) Give(pgid int) {
	signal.Ignore(syscall.SIGTTOU)

	if err := unix.IoctlSetPointerInt(c.fd, unix.TIOCSPGRP, pgid); err != nil {
		c.logger.Debug("Give: could not set foreground process group", "fd", c.fd, "pgid", pgid, "error", err)
		return
	}
	c.logger.Debug("Give: foreground process group set", "fd", c.fd, "pgid", pgid)
}

// Reclaim gives the terminal back to the supervisor's own group.
func (c *Controller) Reclaim() { c.Give(c.self) }

// Foreground returns the terminal's current foreground process group.
func (c *Controller) Foreground() (int, error) {
	return unix.IoctlGetInt(c.fd, unix.TIOCGPGRP)
}

// Signal delivers sig to every process in group pgid. A group that no longer
// exists is not an error.
func Signal(pgid int, sig syscall.Signal) error {
	if pgid <= 0 {
		return unix.EINVAL
	}
	err := unix.Kill(-pgid, sig)
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}

func Stop(pgid int) error     { return Signal(pgid, unix.SIGSTOP) }
func Continue(pgid int) error { return Signal(pgid, unix.SIGCONT) }
func Kill(pgid int) error     { return Signal(pgid, unix.SIGKILL) }
