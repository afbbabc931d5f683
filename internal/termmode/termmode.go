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

// Package termmode saves and restores terminal attributes around the
// interactive prompt. It is the only writer of termios state in toomuch.
package termmode

import (
	"fmt"
	"log/slog"

	"github.com/eminwux/toomuch/internal/errdefs"
	"golang.org/x/sys/unix"
)

// Snapshot is an opaque copy of a terminal's attributes. The zero value is the
// "absent" snapshot: restoring it does nothing.
type Snapshot struct {
	termios *unix.Termios
}

// Valid reports whether the snapshot holds attributes.
func (s Snapshot) Valid() bool { return s.termios != nil }

type Controller struct {
	fd     int
	logger *slog.Logger
}

func New(fd int, logger *slog.Logger) *Controller {
	return &Controller{fd: fd, logger: logger}
}

// Capture returns the current attributes of the terminal. If they cannot be
// read (fd is not a terminal) the returned snapshot is absent.
func (c *Controller) Capture() Snapshot {
	t, err := unix.IoctlGetTermios(c.fd, ioctlGetTermios)
	if err != nil {
		c.logger.Debug("Capture: could not read terminal attributes", "fd", c.fd, "error", err)
		return Snapshot{}
	}
	return Snapshot{termios: t}
}

// SetCooked turns on canonical input, echo and CR to NL translation.
// Pending output is drained first, pending input is kept.
func (c *Controller) SetCooked() error {
	t, err := unix.IoctlGetTermios(c.fd, ioctlGetTermios)
	if err != nil {
		return fmt.Errorf("%w: %w", errdefs.ErrNotATerminal, err)
	}
	t.Lflag |= unix.ICANON | unix.ECHO
	t.Iflag |= unix.ICRNL
	if errSet := unix.IoctlSetTermios(c.fd, ioctlSetTermiosDrain, t); errSet != nil {
		c.logger.Debug("SetCooked: could not set terminal attributes", "fd", c.fd, "error", errSet)
		return errSet
	}
	c.logger.Debug("SetCooked: terminal switched to cooked mode", "fd", c.fd)
	return nil
}

// Restore reapplies s verbatim after draining pending output.
func (c *Controller) Restore(s Snapshot) error {
	if !s.Valid() {
		c.logger.Debug("Restore: no snapshot, skipping", "fd", c.fd)
		return nil
	}
	t := *s.termios
	if err := unix.IoctlSetTermios(c.fd, ioctlSetTermiosDrain, &t); err != nil {
		c.logger.Debug("Restore: could not set terminal attributes", "fd", c.fd, "error", err)
		return err
	}
	c.logger.Debug("Restore: terminal attributes restored", "fd", c.fd)
	return nil
}

// Reset forces a sane interactive mode immediately: canonical input, echo,
// CR to NL on input and NL to CRNL on output.
func (c *Controller) Reset() error {
	t, err := unix.IoctlGetTermios(c.fd, ioctlGetTermios)
	if err != nil {
		return fmt.Errorf("%w: %w", errdefs.ErrNotATerminal, err)
	}
	t.Lflag |= unix.ICANON | unix.ECHO
	t.Iflag |= unix.ICRNL
	t.Oflag |= unix.OPOST | unix.ONLCR
	if errSet := unix.IoctlSetTermios(c.fd, ioctlSetTermiosNow, t); errSet != nil {
		c.logger.Debug("Reset: could not set terminal attributes", "fd", c.fd, "error", errSet)
		return errSet
	}
	return nil
}
