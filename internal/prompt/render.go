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

package prompt

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const (
	boxWidth  = 60
	boxHeight = 5

	defaultCols = 80
	defaultRows = 24

	TitleTimeout  = "[toomuch] Time limit exceeded."
	OptionsLine   = "(c) close | (r) resume"
	InputMarker   = "> "
	TitleResuming = "[toomuch] Resuming..."
	ResumeGuide   = "Press Ctrl-L to rerender your editor."
	KilledNotice  = "[toomuch] Command killed."
)

// Renderer draws the timeout box in the middle of the terminal.
type Renderer struct {
	out    io.Writer
	fd     int
	logger *slog.Logger

	box     lipgloss.Style
	warning lipgloss.Style
	ok      lipgloss.Style
}

func NewRenderer(out io.Writer, fd int, logger *slog.Logger) *Renderer {
	r := lipgloss.NewRenderer(out)
	return &Renderer{
		out:    out,
		fd:     fd,
		logger: logger,
		box: r.NewStyle().
			Border(lipgloss.NormalBorder()).
			Width(boxWidth - 2).
			Height(boxHeight - 2).
			Align(lipgloss.Center),
		warning: r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		ok:      r.NewStyle().Foreground(lipgloss.Color("2")),
	}
}

// Size returns the terminal size in columns and rows, 80x24 if unknown.
func (r *Renderer) Size() (int, int) {
	w, h, err := term.GetSize(r.fd)
	if err != nil || w <= 0 || h <= 0 {
		r.logger.Debug("Size: using default terminal size", "fd", r.fd, "error", err)
		return defaultCols, defaultRows
	}
	return w, h
}

// DrawPrompt clears the screen, draws the box and leaves the cursor after the
// input marker.
func (r *Renderer) DrawPrompt() error {
	w, h := r.Size()
	_, err := io.WriteString(r.out, r.renderPrompt(w, h))
	return err
}

// DrawResume replaces the box contents with the resume guidance.
func (r *Renderer) DrawResume() error {
	w, h := r.Size()
	_, err := io.WriteString(r.out, r.renderResume(w, h))
	return err
}

// DrawKilled prints the kill notice on its own line.
func (r *Renderer) DrawKilled() error {
	_, err := fmt.Fprintf(r.out, "\r\n%s\r\n", KilledNotice)
	return err
}

func (r *Renderer) renderPrompt(w, h int) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		r.warning.Render(TitleTimeout),
		OptionsLine,
		"",
	)

	top, left := origin(w, h)
	var b strings.Builder
	fmt.Fprintf(&b, termenv.CSI+termenv.EraseDisplaySeq, 2)
	place(&b, top, left, r.box.Render(content))
	moveCursor(&b, top+3, left+boxWidth/2-1)
	b.WriteString(InputMarker)
	return b.String()
}

func (r *Renderer) renderResume(w, h int) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		r.ok.Render(TitleResuming),
		ResumeGuide,
		"",
	)

	top, left := origin(w, h)
	var b strings.Builder
	place(&b, top, left, r.box.Render(content))
	moveCursor(&b, top+boxHeight, 1)
	return b.String()
}

// origin returns the 1-based row and column of the box's top-left corner.
func origin(w, h int) (int, int) {
	top := (h-boxHeight)/2 + 1
	left := (w-boxWidth)/2 + 1
	return max(top, 1), max(left, 1)
}

func place(b *strings.Builder, top, left int, block string) {
	for i, line := range strings.Split(block, "\n") {
		moveCursor(b, top+i, left)
		b.WriteString(line)
	}
}

func moveCursor(b *strings.Builder, row, col int) {
	fmt.Fprintf(b, termenv.CSI+termenv.CursorPositionSeq, row, col)
}
