// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/flexchat/internal/config"
	"github.com/jeranaias/flexchat/internal/logging"
	"github.com/jeranaias/flexchat/internal/provider"
)

func strPtr(s string) *string { return &s }

// fixedHandler replays fragments and records the transcript it was given.
type fixedHandler struct {
	fragments []provider.Fragment
	err       error
	seen      [][]provider.Message
}

func (h *fixedHandler) Stream(ctx context.Context, transcript []provider.Message) (provider.Stream, error) {
	h.seen = append(h.seen, transcript)
	if h.err != nil {
		return nil, h.err
	}
	return provider.NewSliceStream(h.fragments...), nil
}

// failingStream yields some fragments then an error.
type failingStream struct {
	fragments []provider.Fragment
	err       error
}

func (s *failingStream) Recv() (provider.Fragment, error) {
	if len(s.fragments) == 0 {
		return provider.Fragment{}, s.err
	}
	f := s.fragments[0]
	s.fragments = s.fragments[1:]
	return f, nil
}

func (s *failingStream) Close() error { return nil }

func transcript() []provider.Message {
	return []provider.Message{
		provider.NewSystemMessage("You are a helpful assistant."),
		provider.NewUserMessage("hello"),
	}
}

// =============================================================================
// REGISTRY
// =============================================================================

func TestNew_FromConfigWithoutKeys(t *testing.T) {
	for _, p := range config.DefaultProviders() {
		t.Setenv(p.APIKeyEnv, "")
	}
	t.Setenv("FLEXCHAT_WORKERS", "")
	cfg := config.Default()
	require.NoError(t, cfg.ApplyEnvOverrides())
	cfg.Provider("Google").Disabled = true

	r, err := New(cfg, WithLogger(logging.Discard()))
	require.NoError(t, err, "missing keys must not fail construction")

	assert.Equal(t, []string{"OpenAI", "Groq", "OpenRouter", "Anthropic", "Perplexity"}, r.ListProviders())

	reg, ok := r.Lookup("anthropic")
	require.True(t, ok)
	assert.Equal(t, provider.KindAnthropic, reg.Kind)
	assert.Equal(t, 4, reg.ID)

	// First use reports the missing key.
	_, err = r.Chat(context.Background(), "Groq", transcript())
	assert.ErrorIs(t, err, provider.ErrNotConfigured)
}

func TestListProviders_EachNameOnce(t *testing.T) {
	names := []string{"OpenAI", "Groq", "OpenRouter"}
	var opts []Option
	for _, n := range names {
		opts = append(opts, WithHandler(n, provider.KindOpenAIFamily, &fixedHandler{}))
	}
	opts = append(opts, WithLogger(logging.Discard()))

	r, err := New(nil, opts...)
	require.NoError(t, err)

	listed := r.ListProviders()
	assert.Equal(t, names, listed)

	for _, n := range names {
		count := 0
		for _, l := range listed {
			if l == n {
				count++
			}
		}
		assert.Equal(t, 1, count, n)

		_, err := r.Chat(context.Background(), n, transcript())
		assert.False(t, errors.Is(err, ErrUnsupportedProvider), "registered provider %s", n)
	}

	for i, reg := range r.Providers() {
		assert.Equal(t, i+1, reg.ID)
	}
}

func TestNew_DuplicateNameFails(t *testing.T) {
	_, err := New(nil,
		WithHandler("Groq", provider.KindOpenAIFamily, &fixedHandler{}),
		WithHandler("groq", provider.KindOpenAIFamily, &fixedHandler{}),
	)
	assert.Error(t, err)
}

// =============================================================================
// CHAT
// =============================================================================

func TestChat_UnsupportedProvider(t *testing.T) {
	r, err := New(nil, WithHandler("OpenAI", provider.KindOpenAIFamily, &fixedHandler{}))
	require.NoError(t, err)

	for _, tr := range [][]provider.Message{nil, transcript(), {provider.NewUserMessage("x")}} {
		_, err := r.Chat(context.Background(), "unregistered-name", tr)

		var unsupported *UnsupportedProviderError
		require.True(t, errors.As(err, &unsupported))
		assert.Equal(t, "unregistered-name", unsupported.Name)
		assert.ErrorIs(t, err, ErrUnsupportedProvider)
	}
}

func TestChat_ConcatenatesInOrder(t *testing.T) {
	h := &fixedHandler{fragments: []provider.Fragment{
		provider.TextFragment("Hel"),
		provider.TextFragment("lo"),
		provider.TextFragment(", "),
		provider.TextFragment("world"),
	}}
	r, err := New(nil, WithHandler("Groq", provider.KindOpenAIFamily, h), WithLogger(logging.Discard()))
	require.NoError(t, err)

	got, err := r.Chat(context.Background(), "Groq", transcript())
	require.NoError(t, err)
	assert.Equal(t, "Hello, world", got)
}

func TestChat_NilDeltaContentIsEmpty(t *testing.T) {
	h := &fixedHandler{fragments: []provider.Fragment{
		provider.DeltaFragment(strPtr("Hel")),
		provider.DeltaFragment(nil),
		provider.DeltaFragment(strPtr("lo")),
		provider.DeltaFragment(nil),
	}}
	r, err := New(nil, WithHandler("OpenAI", provider.KindOpenAIFamily, h))
	require.NoError(t, err)

	got, err := r.Chat(context.Background(), "OpenAI", transcript())
	require.NoError(t, err)
	assert.Equal(t, "Hello", got)
	assert.NotContains(t, got, "None")
	assert.NotContains(t, got, "nil")
}

func TestChat_DoesNotMutateTranscript(t *testing.T) {
	h := &fixedHandler{fragments: []provider.Fragment{provider.TextFragment("ok")}}
	r, err := New(nil, WithHandler("OpenAI", provider.KindOpenAIFamily, h))
	require.NoError(t, err)

	tr := transcript()
	before := append([]provider.Message(nil), tr...)

	_, err = r.Chat(context.Background(), "OpenAI", tr)
	require.NoError(t, err)
	assert.Equal(t, before, tr)
	assert.Len(t, tr, 2)

	// The handler got a copy, not the caller's backing array.
	require.Len(t, h.seen, 1)
	h.seen[0][0].Content = "tampered"
	assert.Equal(t, "You are a helpful assistant.", tr[0].Content)
}

func TestChatStream_Callback(t *testing.T) {
	h := &fixedHandler{fragments: []provider.Fragment{
		provider.TextFragment("a"),
		provider.DeltaFragment(nil),
		provider.TextFragment("b"),
	}}
	r, err := New(nil, WithHandler("OpenAI", provider.KindOpenAIFamily, h))
	require.NoError(t, err)

	var pieces []string
	got, err := r.ChatStream(context.Background(), "OpenAI", transcript(), func(s string) {
		pieces = append(pieces, s)
	})
	require.NoError(t, err)
	assert.Equal(t, "ab", got)
	assert.Equal(t, []string{"a", "b"}, pieces)
}

func TestChat_HandlerErrorPropagates(t *testing.T) {
	boom := errors.New("auth exploded")
	r, err := New(nil, WithHandler("OpenAI", provider.KindOpenAIFamily, &fixedHandler{err: boom}))
	require.NoError(t, err)

	_, err = r.Chat(context.Background(), "OpenAI", transcript())
	assert.ErrorIs(t, err, boom)
}

func TestChat_StreamErrorKeepsPartial(t *testing.T) {
	boom := errors.New("connection reset")
	h := provider.HandlerFunc(func(ctx context.Context, _ []provider.Message) (provider.Stream, error) {
		return &failingStream{fragments: []provider.Fragment{provider.TextFragment("part")}, err: boom}, nil
	})
	r, err := New(nil, WithHandler("OpenAI", provider.KindOpenAIFamily, h))
	require.NoError(t, err)

	_, err = r.Chat(context.Background(), "OpenAI", transcript())
	var streamErr *StreamError
	require.True(t, errors.As(err, &streamErr))
	assert.Equal(t, "part", streamErr.Partial)
	assert.ErrorIs(t, err, boom)

	// No output before the failure returns the raw error.
	h2 := provider.HandlerFunc(func(ctx context.Context, _ []provider.Message) (provider.Stream, error) {
		return &failingStream{err: io.ErrUnexpectedEOF}, nil
	})
	r2, err := New(nil, WithHandler("Groq", provider.KindOpenAIFamily, h2))
	require.NoError(t, err)
	_, err = r2.Chat(context.Background(), "Groq", transcript())
	assert.Equal(t, io.ErrUnexpectedEOF, err)
}

func TestChat_EmptyTranscript(t *testing.T) {
	r, err := New(nil, WithHandler("OpenAI", provider.KindOpenAIFamily, &fixedHandler{}))
	require.NoError(t, err)

	_, err = r.Chat(context.Background(), "OpenAI", nil)
	assert.ErrorIs(t, err, ErrEmptyTranscript)
}
