// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScannerReader(t *testing.T) {
	var out bytes.Buffer
	r := NewLineReader(strings.NewReader("first\r\nsecond\n"), &out, "")

	line, err := r.ReadLine("> ")
	require.NoError(t, err)
	assert.Equal(t, "first", line)

	line, err = r.ReadLine("> ")
	require.NoError(t, err)
	assert.Equal(t, "second", line)

	_, err = r.ReadLine("> ")
	assert.ErrorIs(t, err, io.EOF)
	assert.True(t, isEndOfInput(err))

	assert.Equal(t, "> > > \n", out.String())
	assert.NoError(t, r.Close())
}

func TestPromptNonEmpty(t *testing.T) {
	var out bytes.Buffer
	r := NewScannerReader(strings.NewReader("\n   \n  answer  \n"), &out)

	got, err := promptNonEmpty(r, &out, "Q: ", "try again")
	require.NoError(t, err)
	assert.Equal(t, "answer", got)
	assert.Equal(t, 2, strings.Count(out.String(), "try again"))
}

func TestPromptQuestionAndExpert(t *testing.T) {
	var out bytes.Buffer
	r := NewScannerReader(strings.NewReader("\nWhat is yoga?\n\nwellness expert\n"), &out)

	q, err := promptQuestion(r, &out)
	require.NoError(t, err)
	assert.Equal(t, "What is yoga?", q)

	e, err := promptExpert(r, &out)
	require.NoError(t, err)
	assert.Equal(t, "wellness expert", e)

	text := out.String()
	assert.Contains(t, text, "Enter your question below:")
	assert.Contains(t, text, "Please enter a valid question.")
	assert.Contains(t, text, "Please enter a valid expert type.")
}

func TestPromptYesNo(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"yes\n", true},
		{"Y\n", true},
		{" No \n", false},
		{"n\n", false},
		{"what\nyes\n", true},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		r := NewScannerReader(strings.NewReader(tt.input), &out)
		got, err := promptYesNo(r, &out, "? ")
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestPromptYesNo_EOF(t *testing.T) {
	var out bytes.Buffer
	_, err := promptYesNo(NewScannerReader(strings.NewReader(""), &out), &out, "? ")
	assert.True(t, isEndOfInput(err))
}

func TestWrapText(t *testing.T) {
	got := WrapText("one two three four five six", 14)
	for _, line := range strings.Split(got, "\n") {
		assert.LessOrEqual(t, len(line), 12)
	}
	assert.Equal(t, "short", WrapText("short", 40))
	assert.Equal(t, "a\nb", WrapText("a\nb", 40))
}
