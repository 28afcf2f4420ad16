// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// progress.go - Line spinner shown while long requests run.

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/flexchat/internal/util"
)

// Spinner animates a label on a single terminal line. It satisfies
// questions.Progress.
type Spinner struct {
	out      io.Writer
	animated bool
	frames   spinner.Spinner
	width    int
}

// NewSpinner creates a spinner writing to out. When animated is false the
// label is printed once and nothing else is drawn.
func NewSpinner(out io.Writer, animated bool) *Spinner {
	frames := spinner.Line
	if ColorsEnabled() {
		frames = spinner.MiniDot
	}
	return &Spinner{
		out:      out,
		animated: animated,
		frames:   frames,
		width:    GetTerminalWidth(),
	}
}

// Start begins animating label. The returned function stops the animation,
// waits for the line to be cleared, and is safe to call more than once.
func (s *Spinner) Start(label string) func() {
	if !s.animated {
		fmt.Fprintf(s.out, "%s...\n", label)
		return func() {}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	started := time.Now()

	go func() {
		defer close(done)

		fps := s.frames.FPS
		if fps <= 0 {
			fps = time.Second / 10
		}
		ticker := time.NewTicker(fps)
		defer ticker.Stop()

		drawn := 0
		for i := 0; ; i++ {
			frame := s.frames.Frames[i%len(s.frames.Frames)]
			line, w := spinnerLine(frame, label, time.Since(started), s.width-1)
			fmt.Fprint(s.out, "\r"+line)
			drawn = max(drawn, w)

			select {
			case <-ctx.Done():
				fmt.Fprint(s.out, "\r"+strings.Repeat(" ", drawn)+"\r")
				return
			case <-ticker.C:
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}

// spinnerLine builds one frame of the spinner no wider than width cells and
// returns it with its display width. Only plain text is truncated; the
// elapsed time is styled afterwards so escape sequences stay whole.
func spinnerLine(frame, label string, elapsed time.Duration, width int) (string, int) {
	timer := fmt.Sprintf("(%ds)", int(elapsed.Seconds()))
	head := frame + " " + label

	room := width - runewidth.StringWidth(timer) - 1
	if room < runewidth.StringWidth(frame) {
		// Too narrow for the timer.
		head = util.TruncateWidth(head, width)
		return head, runewidth.StringWidth(head)
	}

	head = util.TruncateWidth(head, room)
	return head + " " + DimStyle.Render(timer), runewidth.StringWidth(head) + 1 + runewidth.StringWidth(timer)
}
