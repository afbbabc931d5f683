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

package e2e_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/Netflix/go-expect"
	"github.com/creack/pty"
)

const toomuch = "toomuch"

func binPath(t *testing.T, command string) string {
	t.Helper()

	dir := os.Getenv("E2E_BIN_DIR")
	if dir == "" {
		dir = ".."
	}
	bin := filepath.Join(dir, command)

	if _, err := os.Stat(bin); os.IsNotExist(err) {
		t.Skipf("binary %s not found, skipping", bin)
	}
	return bin
}

// runReturningBinary runs the binary without a terminal and returns its
// combined output and exit code.
func runReturningBinary(t *testing.T, command string, args ...string) ([]byte, int) {
	t.Helper()

	bin := binPath(t, command)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("running %s %v failed: %v\noutput:\n%s", bin, args, err, string(out))
		}
	}
	return out, cmd.ProcessState.ExitCode()
}

// setupPty opens a pty sized like a regular terminal window.
func setupPty(t *testing.T) (*os.File, *os.File) {
	t.Helper()

	ptmx, pts, err := pty.Open()
	if err != nil {
		t.Fatalf("error opening pty: %v", err)
	}
	if err := pty.Setsize(ptmx, &pty.Winsize{Cols: 120, Rows: 40}); err != nil {
		t.Fatalf("error setting pty size: %v", err)
	}
	return ptmx, pts
}

// runBinaryPty starts the binary as a session leader with pts as its
// controlling terminal. The exit code is delivered on the returned channel.
func runBinaryPty(t *testing.T, pts *os.File, command string, args ...string) <-chan int {
	t.Helper()

	bin := binPath(t, command)

	env := append(os.Environ(),
		"TERM=xterm",
		"LANG=C",
		"COLUMNS=120",
		"LINES=40",
	)
	procAttr := &os.ProcAttr{
		Env:   env,
		Files: []*os.File{pts, pts, pts},
		Sys: &syscall.SysProcAttr{
			Setsid:  true,
			Setctty: true,
			Ctty:    0,
		},
	}

	p, err := os.StartProcess(bin, append([]string{bin}, args...), procAttr)
	if err != nil {
		t.Fatalf("StartProcess: %v", err)
	}
	_ = pts.Close()

	ret := make(chan int, 1)
	go func() {
		state, errW := p.Wait()
		if errW != nil {
			t.Logf("process wait failed: %v", errW)
			ret <- -1
			return
		}
		ret <- state.ExitCode()
	}()
	return ret
}

// newConsole reads everything the binary writes to the terminal.
func newConsole(t *testing.T, ptmx *os.File) *expect.Console {
	t.Helper()

	console, err := expect.NewConsole(
		expect.WithStdin(ptmx),
		expect.WithDefaultTimeout(10*time.Second),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = console.Close() })
	return console
}

func waitExit(t *testing.T, ret <-chan int, timeout time.Duration) int {
	t.Helper()

	select {
	case code := <-ret:
		return code
	case <-time.After(timeout):
		t.Fatalf("timeout waiting for process to exit")
		return -1
	}
}
