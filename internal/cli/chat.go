// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive provider-switching chat.
//
// Command: chat
// Short:   Chat with any registered provider
//
// Interactive Commands (during chat):
//   switch              Drop the conversation and pick another provider
//   /quit               Exit chat
//   Ctrl+C, Ctrl+D      Exit chat

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jeranaias/flexchat/internal/config"
	"github.com/jeranaias/flexchat/internal/provider"
)

// Loop tokens and messages.
const (
	quitCommand   = "/quit"
	switchCommand = "switch"

	msgSelectProvider = "Select a provider:"
	msgEnterNumber    = "Enter the number of the provider: "
	msgInvalidChoice  = "Invalid input. Please enter a valid number or '/quit' to exit."
	msgExiting        = "Exiting chat."
	userPrompt        = "You: "
)

// ErrNoProviders is returned when the chat loop has nothing to select.
var ErrNoProviders = errors.New("no providers registered")

// =============================================================================
// STATE MACHINE
// =============================================================================

// State is a chat loop state.
type State int

const (
	StateSelectingProvider State = iota
	StateChatting
	StateExited
)

func (s State) String() string {
	switch s {
	case StateSelectingProvider:
		return "SelectingProvider"
	case StateChatting:
		return "Chatting"
	case StateExited:
		return "Exited"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ChatRouter is the part of the router the loop needs.
type ChatRouter interface {
	ListProviders() []string
	ChatStream(ctx context.Context, name string, transcript []provider.Message, onText func(string)) (string, error)
}

// Loop drives one interactive chat session. It is not safe for concurrent
// use.
type Loop struct {
	router       ChatRouter
	in           LineReader
	out          io.Writer
	errOut       io.Writer
	systemPrompt string
	logger       *slog.Logger
	onState      func(State)

	state      State
	current    string
	transcript []provider.Message
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithSystemPrompt sets the system message that starts every transcript.
func WithSystemPrompt(prompt string) LoopOption {
	return func(l *Loop) { l.systemPrompt = prompt }
}

// WithLoopLogger sets the session logger.
func WithLoopLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) { l.logger = logger }
}

// WithErrorOutput sends error messages to w instead of the main output.
func WithErrorOutput(w io.Writer) LoopOption {
	return func(l *Loop) { l.errOut = w }
}

// WithStateHook calls fn with every state the loop enters, including the
// initial one.
func WithStateHook(fn func(State)) LoopOption {
	return func(l *Loop) { l.onState = fn }
}

// NewLoop creates a chat loop reading from in and writing to out.
func NewLoop(r ChatRouter, in LineReader, out io.Writer, opts ...LoopOption) *Loop {
	l := &Loop{
		router:       r,
		in:           in,
		out:          out,
		systemPrompt: config.DefaultSystemPrompt,
		state:        StateSelectingProvider,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.errOut == nil {
		l.errOut = out
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	l.logger = l.logger.With("session_id", uuid.NewString())
	return l
}

// State returns the current state.
func (l *Loop) State() State { return l.state }

// Provider returns the provider being chatted with, or "" while selecting.
func (l *Loop) Provider() string { return l.current }

// Transcript returns a copy of the current conversation.
func (l *Loop) Transcript() []provider.Message {
	out := make([]provider.Message, len(l.transcript))
	copy(out, l.transcript)
	return out
}

// Run steps the loop until it exits. Ending input or Ctrl-C counts as /quit.
func (l *Loop) Run(ctx context.Context) error {
	if len(l.router.ListProviders()) == 0 {
		return ErrNoProviders
	}
	l.enter(l.state)

	for l.state != StateExited {
		if err := l.Step(ctx); err != nil {
			return err
		}
	}
	fmt.Fprintln(l.out, msgExiting)
	return nil
}

// Step performs one transition.
func (l *Loop) Step(ctx context.Context) error {
	if ctx.Err() != nil {
		l.enter(StateExited)
		return nil
	}

	switch l.state {
	case StateSelectingProvider:
		return l.selectProvider()
	case StateChatting:
		return l.chatTurn(ctx)
	default:
		return nil
	}
}

func (l *Loop) enter(s State) {
	if s != l.state {
		l.logger.Debug("chat state change", "from", l.state.String(), "to", s.String())
	}
	l.state = s
	if l.onState != nil {
		l.onState(s)
	}
}

// selectProvider handles one round of the provider menu.
func (l *Loop) selectProvider() error {
	names := l.router.ListProviders()

	fmt.Fprintln(l.out, PromptStyle.Render(msgSelectProvider))
	for i, name := range names {
		fmt.Fprintf(l.out, "%d. %s\n", i+1, name)
	}

	input, err := l.in.ReadLine(msgEnterNumber)
	if err != nil {
		if isEndOfInput(err) {
			l.enter(StateExited)
			return nil
		}
		return err
	}
	input = strings.TrimSpace(input)

	if strings.EqualFold(input, quitCommand) {
		l.enter(StateExited)
		return nil
	}

	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > len(names) {
		fmt.Fprintln(l.out, msgInvalidChoice)
		return nil
	}

	l.current = names[n-1]
	l.transcript = []provider.Message{provider.NewSystemMessage(l.systemPrompt)}
	l.logger.Info("provider selected", "provider", l.current)
	fmt.Fprintf(l.out, "Chatting with %s. Type '%s' to change provider or '%s' to exit.\n",
		l.current, switchCommand, quitCommand)
	l.enter(StateChatting)
	return nil
}

// chatTurn reads one user line and, for ordinary text, one reply.
func (l *Loop) chatTurn(ctx context.Context) error {
	input, err := l.in.ReadLine(userPrompt)
	if err != nil {
		if isEndOfInput(err) {
			l.enter(StateExited)
			return nil
		}
		return err
	}
	input = strings.TrimSpace(input)

	// Commands match in any case.
	switch strings.ToLower(input) {
	case "":
		return nil
	case quitCommand:
		l.enter(StateExited)
		return nil
	case switchCommand:
		l.logger.Info("switching provider", "from", l.current, "messages", len(l.transcript))
		l.transcript = nil
		l.current = ""
		l.enter(StateSelectingProvider)
		return nil
	}

	l.transcript = append(l.transcript, provider.NewUserMessage(input))

	fmt.Fprint(l.out, AssistantStyle.Render(l.current+":")+" ")
	reply, err := l.router.ChatStream(ctx, l.current, l.transcript, func(text string) {
		fmt.Fprint(l.out, text)
	})
	fmt.Fprintln(l.out)

	if err != nil {
		// The failed turn leaves no trace in the conversation.
		l.transcript = l.transcript[:len(l.transcript)-1]

		if ctx.Err() != nil {
			l.enter(StateExited)
			return nil
		}
		l.logger.Warn("chat turn failed", "provider", l.current, "error", err)
		DisplayError(l.errOut, err)
		return nil
	}

	l.transcript = append(l.transcript, provider.NewAssistantMessage(reply))
	return nil
}

// =============================================================================
// COMMAND
// =============================================================================

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with any registered provider",
		Long: `Start an interactive chat. Pick a provider by number, then type messages.
Type 'switch' to discard the conversation and pick another provider,
or '/quit' to exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChat(cmd.Context())
		},
	}
}

func (a *app) runChat(ctx context.Context) error {
	if err := a.load(); err != nil {
		return err
	}

	in := NewLineReader(a.stdin, a.stdout, a.cfg.Chat.HistoryFile)
	defer in.Close()

	fmt.Fprintln(a.stdout, TitleStyle.Render("flexchat"))
	loop := NewLoop(a.router, in, a.stdout,
		WithSystemPrompt(a.cfg.Chat.SystemPrompt),
		WithLoopLogger(a.logger),
		WithErrorOutput(a.stderr),
	)
	return loop.Run(ctx)
}
