// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// input.go - Line input for interactive commands.
//
// On a terminal, input goes through liner for line editing and history.
// Pipes and tests use a plain scanner. Both report end of input as io.EOF
// and Ctrl-C as ErrInterrupted.

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

// ErrInterrupted is returned by a LineReader when the user presses Ctrl-C at
// a prompt.
var ErrInterrupted = errors.New("input interrupted")

// LineReader reads one line of user input after showing prompt.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// NewLineReader returns a liner-backed reader when in is the terminal and a
// scanner-backed reader otherwise. historyFile may be empty.
func NewLineReader(in io.Reader, out io.Writer, historyFile string) LineReader {
	if f, ok := in.(*os.File); ok && f == os.Stdin && IsTTY() {
		return NewLinerReader(historyFile)
	}
	return NewScannerReader(in, out)
}

// =============================================================================
// SCANNER READER
// =============================================================================

type scannerReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewScannerReader reads lines from in and writes prompts to out.
func NewScannerReader(in io.Reader, out io.Writer) LineReader {
	return &scannerReader{scanner: bufio.NewScanner(in), out: out}
}

func (r *scannerReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	if !r.scanner.Scan() {
		// Keep the transcript tidy when input ends mid-prompt
		fmt.Fprintln(r.out)
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimRight(r.scanner.Text(), "\r"), nil
}

func (r *scannerReader) Close() error { return nil }

// =============================================================================
// LINER READER
// =============================================================================

// linerReader provides readline-style editing and persistent history.
type linerReader struct {
	line        *liner.State
	historyFile string
}

// NewLinerReader takes over the terminal until Close is called.
func NewLinerReader(historyFile string) LineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	r := &linerReader{line: line, historyFile: historyFile}
	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
	}
	return r
}

func (r *linerReader) ReadLine(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", ErrInterrupted
		}
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history with owner-only permissions and restores the terminal.
func (r *linerReader) Close() error {
	if r.historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(r.historyFile), 0700); err == nil {
			if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
				_, _ = r.line.WriteHistory(f)
				f.Close()
			}
		}
	}
	return r.line.Close()
}

// =============================================================================
// PROMPT HELPERS
// =============================================================================

// promptNonEmpty re-prompts until the user enters something. retry is printed
// after each blank answer.
func promptNonEmpty(r LineReader, out io.Writer, prompt, retry string) (string, error) {
	for {
		input, err := r.ReadLine(prompt)
		if err != nil {
			return "", err
		}
		if s := strings.TrimSpace(input); s != "" {
			return s, nil
		}
		fmt.Fprintln(out, retry)
	}
}

// promptQuestion asks for the seed question.
func promptQuestion(r LineReader, out io.Writer) (string, error) {
	fmt.Fprintln(out, "\nEnter your question below:")
	return promptNonEmpty(r, out, "Your question: ", "Please enter a valid question.")
}

// promptExpert asks for the expert role.
func promptExpert(r LineReader, out io.Writer) (string, error) {
	return promptNonEmpty(r, out, "Enter the expert type (e.g., financial expert): ", "Please enter a valid expert type.")
}

// promptYesNo accepts yes/y and no/n in any case.
func promptYesNo(r LineReader, out io.Writer, prompt string) (bool, error) {
	for {
		input, err := r.ReadLine(prompt)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(input)) {
		case "yes", "y":
			return true, nil
		case "no", "n":
			return false, nil
		}
		fmt.Fprintln(out, "Please enter 'yes' or 'no'")
	}
}

// isEndOfInput reports errors that mean the user is done typing.
func isEndOfInput(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, ErrInterrupted)
}
