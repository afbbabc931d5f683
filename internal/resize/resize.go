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

// Package resize turns SIGWINCH into a test-and-clear flag.
package resize

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// Notifier records whether the terminal was resized since the last Consume.
// The flag is set only by the signal goroutine and cleared only by Consume.
type Notifier struct {
	flag atomic.Bool
	ch   chan os.Signal
	done chan struct{}
}

func New() *Notifier {
	return &Notifier{}
}

// Start installs the SIGWINCH handler. Calling Start twice is a no-op.
func (n *Notifier) Start() {
	if n.ch != nil {
		return
	}
	n.ch = make(chan os.Signal, 1)
	n.done = make(chan struct{})
	signal.Notify(n.ch, syscall.SIGWINCH)

	go func(ch <-chan os.Signal, done <-chan struct{}) {
		for {
			select {
			case <-done:
				return
			case <-ch:
				n.mark()
			}
		}
	}(n.ch, n.done)
}

// Stop removes the handler. The flag keeps its last value.
func (n *Notifier) Stop() {
	if n.ch == nil {
		return
	}
	signal.Stop(n.ch)
	close(n.done)
	n.ch = nil
	n.done = nil
}

// Consume reports whether a resize happened since the previous call and clears
// the flag. Several resizes between two calls are reported once.
func (n *Notifier) Consume() bool {
	return n.flag.Swap(false)
}

func (n *Notifier) mark() {
	n.flag.Store(true)
}
