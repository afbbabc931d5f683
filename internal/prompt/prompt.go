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

// Package prompt draws the timeout dialog and reads the user's answer.
package prompt

import (
	"io"
	"strings"
)

type Action int

const (
	Resume Action = iota
	Close
)

func (a Action) String() string {
	switch a {
	case Close:
		return "close"
	case Resume:
		return "resume"
	default:
		return "unknown"
	}
}

// Answer is one line read from the terminal, or the error that ended the read.
type Answer struct {
	Line string
	Err  error
}

// Decide maps an answer to an action. Only "c" closes, ignoring case and
// surrounding whitespace. Everything else, including read errors, resumes.
func Decide(a Answer) Action {
	if a.Err != nil && a.Line == "" {
		return Resume
	}
	if strings.EqualFold(strings.TrimSpace(a.Line), "c") {
		return Close
	}
	return Resume
}

// ReadAnswer reads a single line from r in the background. The channel
// receives exactly one Answer. Nothing past the newline is consumed, so input
// queued behind the answer is left for the child.
func ReadAnswer(r io.Reader) <-chan Answer {
	ch := make(chan Answer, 1)
	go func() {
		line, err := readLine(r)
		if err == io.EOF && line != "" {
			err = nil
		}
		ch <- Answer{Line: line, Err: err}
	}()
	return ch
}

// readLine reads one byte at a time up to and including '\n'.
func readLine(r io.Reader) (string, error) {
	var b strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n == 1 {
			b.WriteByte(buf[0])
			if buf[0] == '\n' {
				return b.String(), nil
			}
		}
		if err != nil {
			return b.String(), err
		}
	}
}
