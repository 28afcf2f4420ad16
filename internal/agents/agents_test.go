// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agents

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/flexchat/internal/logging"
	"github.com/jeranaias/flexchat/internal/provider"
)

// scriptedChatter replies based on the system prompt's leading words.
type scriptedChatter struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error
	seen    map[string][]provider.Message
}

func newScripted() *scriptedChatter {
	return &scriptedChatter{
		replies: map[string]string{},
		errs:    map[string]error{},
		seen:    map[string][]provider.Message{},
	}
}

func (s *scriptedChatter) Chat(ctx context.Context, name string, tr []provider.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	system := tr[0].Content
	for key, err := range s.errs {
		if strings.Contains(system, key) {
			return "", err
		}
	}
	for key, reply := range s.replies {
		if strings.Contains(system, key) {
			s.seen[key] = tr
			return reply, nil
		}
	}
	return "", nil
}

func TestBusinessBuilder_Build(t *testing.T) {
	c := newScripted()
	c.replies["clarity agent"] = "Who are your customers?"
	c.replies["niche agent"] = "Urban dog owners."
	c.replies["action agent"] = "1. Build a site."
	c.replies["business strategist"] = "Focus on urban dog owners."

	b := NewBusinessBuilder(c, "OpenAI", logging.Discard())
	s, err := b.Build(context.Background(), "  dog walking app ")
	require.NoError(t, err)

	assert.Equal(t, "dog walking app", s.Idea)
	assert.Equal(t, "Who are your customers?", s.Clarity)
	assert.Equal(t, "Urban dog owners.", s.Niche)
	assert.Equal(t, "1. Build a site.", s.Actions)
	assert.Equal(t, "# Business Strategy\n\nFocus on urban dog owners.", s.Markdown())

	synth := c.seen["business strategist"][1].Content
	assert.Contains(t, synth, "Clarity: Who are your customers?")
	assert.Contains(t, synth, "Niche: Urban dog owners.")
	assert.Contains(t, synth, "Actions: 1. Build a site.")

	assert.Equal(t, "Based on this input, ask 1 clarifying questions: dog walking app", c.seen["clarity agent"][1].Content)
}

func TestBusinessBuilder_EmptyReplyPlaceholder(t *testing.T) {
	c := newScripted()
	c.replies["clarity agent"] = "   "
	c.replies["niche agent"] = "n"
	c.replies["action agent"] = "a"
	c.replies["business strategist"] = "s"

	s, err := NewBusinessBuilder(c, "OpenAI", logging.Discard()).Build(context.Background(), "idea")
	require.NoError(t, err)
	assert.Equal(t, EmptyResponse, s.Clarity)
}

func TestBusinessBuilder_AgentFailureAborts(t *testing.T) {
	boom := errors.New("quota")
	c := newScripted()
	c.replies["clarity agent"] = "c"
	c.errs["niche agent"] = boom
	c.replies["action agent"] = "a"
	c.replies["business strategist"] = "s"

	s, err := NewBusinessBuilder(c, "OpenAI", logging.Discard()).Build(context.Background(), "idea")
	assert.Nil(t, s)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "niche agent")
}

func TestBusinessBuilder_EmptyIdea(t *testing.T) {
	_, err := NewBusinessBuilder(newScripted(), "OpenAI", nil).Build(context.Background(), " ")
	assert.ErrorIs(t, err, ErrEmptyIdea)
}

func TestPoemGenerator_Generate(t *testing.T) {
	c := newScripted()
	c.replies["best haiku"] = "Green brine, crisp and sour\nA jar on the kitchen shelf\nSummer kept in glass\n"

	g := NewPoemGenerator(c, "Groq", logging.Discard())
	lines, err := g.Generate(context.Background(), "pickles", Haiku)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Green brine, crisp and sour",
		"A jar on the kitchen shelf",
		"Summer kept in glass",
	}, lines)

	tr := c.seen["best haiku"]
	assert.Equal(t, "You are a wise poet and able to write the best haiku on any subject.", tr[0].Content)
	assert.Equal(t, "pickles", tr[1].Content)
}

func TestPoemGenerator_Limerick(t *testing.T) {
	c := newScripted()
	c.replies["beautiful limerick"] = "There once was a pickle\r\nWho cost but a nickel"

	lines, err := NewPoemGenerator(c, "Groq", nil).Generate(context.Background(), "pickles", Limerick)
	require.NoError(t, err)
	assert.Equal(t, []string{"There once was a pickle", "Who cost but a nickel"}, lines)
}

func TestPoemGenerator_Unsupported(t *testing.T) {
	_, err := NewPoemGenerator(newScripted(), "Groq", nil).Generate(context.Background(), "x", PoemType("sonnet"))
	assert.ErrorIs(t, err, ErrUnsupportedPoemType)
}

func TestParsePoemType(t *testing.T) {
	got, err := ParsePoemType(" Haiku ")
	require.NoError(t, err)
	assert.Equal(t, Haiku, got)

	_, err = ParsePoemType("ode")
	assert.ErrorIs(t, err, ErrUnsupportedPoemType)
}
