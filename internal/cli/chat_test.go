// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/flexchat/internal/logging"
	"github.com/jeranaias/flexchat/internal/provider"
)

// fakeRouter records every transcript it receives and replies with a fixed
// string per provider.
type fakeRouter struct {
	names   []string
	replies map[string]string
	err     error
	calls   []fakeCall
}

type fakeCall struct {
	provider   string
	transcript []provider.Message
}

func (f *fakeRouter) ListProviders() []string { return f.names }

func (f *fakeRouter) ChatStream(ctx context.Context, name string, tr []provider.Message, onText func(string)) (string, error) {
	cp := make([]provider.Message, len(tr))
	copy(cp, tr)
	f.calls = append(f.calls, fakeCall{provider: name, transcript: cp})
	if f.err != nil {
		return "", f.err
	}
	reply := f.replies[name]
	for _, part := range strings.SplitAfter(reply, " ") {
		if onText != nil && part != "" {
			onText(part)
		}
	}
	return reply, nil
}

// scriptedReader feeds fixed lines and then reports end of input.
type scriptedReader struct {
	lines   []string
	prompts []string
}

func (s *scriptedReader) ReadLine(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scriptedReader) Close() error { return nil }

func newTestLoop(r ChatRouter, lines ...string) (*Loop, *bytes.Buffer, *[]State) {
	var out bytes.Buffer
	var states []State
	l := NewLoop(r, &scriptedReader{lines: lines}, &out,
		WithLoopLogger(logging.Discard()),
		WithStateHook(func(s State) { states = append(states, s) }),
	)
	return l, &out, &states
}

func twoProviders() *fakeRouter {
	return &fakeRouter{
		names:   []string{"OpenAI", "Groq"},
		replies: map[string]string{"OpenAI": "Hi there!", "Groq": "Hello from Groq."},
	}
}

func roleCount(tr []provider.Message, role provider.Role) int {
	n := 0
	for _, m := range tr {
		if m.Role == role {
			n++
		}
	}
	return n
}

func TestLoop_SelectChatQuit(t *testing.T) {
	r := twoProviders()
	l, out, states := newTestLoop(r, "1", "hello", "/quit")

	require.NoError(t, l.Run(context.Background()))

	assert.Equal(t, []State{StateSelectingProvider, StateChatting, StateExited}, *states)
	assert.Equal(t, StateExited, l.State())

	tr := l.Transcript()
	assert.Equal(t, 1, roleCount(tr, provider.RoleUser))
	assert.Equal(t, 1, roleCount(tr, provider.RoleAssistant))
	assert.Equal(t, provider.NewUserMessage("hello"), tr[1])
	assert.Equal(t, provider.NewAssistantMessage("Hi there!"), tr[2])

	text := out.String()
	assert.Contains(t, text, "Select a provider:\n1. OpenAI\n2. Groq\n")
	assert.Contains(t, text, "Hi there!")
	assert.True(t, strings.HasSuffix(text, "Exiting chat.\n"))

	require.Len(t, r.calls, 1)
	assert.Equal(t, "OpenAI", r.calls[0].provider)
}

func TestLoop_SwitchDiscardsTranscript(t *testing.T) {
	r := twoProviders()
	l, _, states := newTestLoop(r, "1", "first question", "switch", "2", "second question", "/quit")

	require.NoError(t, l.Run(context.Background()))

	assert.Equal(t, []State{
		StateSelectingProvider, StateChatting,
		StateSelectingProvider, StateChatting,
		StateExited,
	}, *states)

	require.Len(t, r.calls, 2)
	second := r.calls[1]
	assert.Equal(t, "Groq", second.provider)
	require.Len(t, second.transcript, 2)
	assert.Equal(t, provider.RoleSystem, second.transcript[0].Role)
	assert.Equal(t, provider.NewUserMessage("second question"), second.transcript[1])

	for _, m := range l.Transcript() {
		assert.NotEqual(t, "first question", m.Content)
	}
}

func TestLoop_InvalidSelectionReprompts(t *testing.T) {
	r := twoProviders()
	l, out, states := newTestLoop(r, "", "abc", "0", "3", "2", "/quit")

	require.NoError(t, l.Run(context.Background()))

	assert.Equal(t, 4, strings.Count(out.String(), msgInvalidChoice))
	assert.Equal(t, "Groq", l.Provider())
	assert.Equal(t, []State{StateSelectingProvider, StateChatting, StateExited}, *states)
}

func TestLoop_QuitFromSelection(t *testing.T) {
	l, out, states := newTestLoop(twoProviders(), "/quit")
	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, []State{StateSelectingProvider, StateExited}, *states)
	assert.Contains(t, out.String(), "Exiting chat.")
}

func TestLoop_EmptyMessageIgnored(t *testing.T) {
	r := twoProviders()
	l, _, _ := newTestLoop(r, "1", "", "   ", "/quit")
	require.NoError(t, l.Run(context.Background()))
	assert.Empty(t, r.calls)
	assert.Len(t, l.Transcript(), 1)
}

func TestLoop_FailedTurnRollsBack(t *testing.T) {
	r := twoProviders()
	r.err = errors.New("503 upstream")
	l, out, _ := newTestLoop(r, "1", "hello", "/quit")

	require.NoError(t, l.Run(context.Background()))

	tr := l.Transcript()
	require.Len(t, tr, 1)
	assert.Equal(t, provider.RoleSystem, tr[0].Role)
	assert.Contains(t, out.String(), "503 upstream")
	assert.Equal(t, StateExited, l.State())
}

func TestLoop_EndOfInputExits(t *testing.T) {
	l, out, states := newTestLoop(twoProviders(), "1", "hello")
	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, StateExited, (*states)[len(*states)-1])
	assert.Contains(t, out.String(), "Exiting chat.")
	assert.Len(t, l.Transcript(), 3)
}

func TestLoop_CustomSystemPrompt(t *testing.T) {
	r := twoProviders()
	l := NewLoop(r, &scriptedReader{lines: []string{"1", "hi", "/quit"}}, &bytes.Buffer{},
		WithSystemPrompt("You are terse."),
		WithLoopLogger(logging.Discard()),
	)
	require.NoError(t, l.Run(context.Background()))
	require.Len(t, r.calls, 1)
	assert.Equal(t, provider.NewSystemMessage("You are terse."), r.calls[0].transcript[0])
}

func TestLoop_NoProviders(t *testing.T) {
	l, _, _ := newTestLoop(&fakeRouter{}, "1")
	assert.ErrorIs(t, l.Run(context.Background()), ErrNoProviders)
}

func TestLoop_CancelledContextExits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l, _, _ := newTestLoop(twoProviders(), "1", "hello")
	require.NoError(t, l.Run(ctx))
	assert.Equal(t, StateExited, l.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "SelectingProvider", StateSelectingProvider.String())
	assert.Equal(t, "Chatting", StateChatting.String())
	assert.Equal(t, "Exited", StateExited.String())
}

func TestLoop_CommandsIgnoreCase(t *testing.T) {
	r := twoProviders()
	l, out, states := newTestLoop(r, "1", "hello", "SWITCH", "2", "/QUIT")

	require.NoError(t, l.Run(context.Background()))

	assert.Equal(t, []State{
		StateSelectingProvider, StateChatting,
		StateSelectingProvider, StateChatting,
		StateExited,
	}, *states)
	require.Len(t, r.calls, 1)
	assert.Equal(t, provider.NewUserMessage("hello"), r.calls[0].transcript[len(r.calls[0].transcript)-1])
	assert.Equal(t, "Groq", l.Provider())
	assert.Contains(t, out.String(), "Exiting chat.")
}

func TestLoop_QuitFromSelectionIgnoresCase(t *testing.T) {
	l, _, states := newTestLoop(twoProviders(), "/Quit")
	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, []State{StateSelectingProvider, StateExited}, *states)
}
