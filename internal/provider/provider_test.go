// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"io"
	"testing"
)

func strPtr(s string) *string { return &s }

// =============================================================================
// FRAGMENT TESTS
// =============================================================================

func TestFragmentText(t *testing.T) {
	tests := []struct {
		name string
		frag Fragment
		want string
	}{
		{"plain", TextFragment("Hel"), "Hel"},
		{"delta", DeltaFragment(strPtr("lo")), "lo"},
		{"delta nil content", DeltaFragment(nil), ""},
		{"delta empty content", DeltaFragment(strPtr("")), ""},
		{"zero value", Fragment{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.frag.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSliceStream(t *testing.T) {
	s := NewSliceStream(TextFragment("a"), TextFragment("b"))
	defer s.Close()

	var got string
	for {
		f, err := s.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Recv() error = %v", err)
		}
		got += f.Text()
	}
	if got != "ab" {
		t.Errorf("got %q, want %q", got, "ab")
	}

	// Exhausted streams keep returning EOF
	if _, err := s.Recv(); err != io.EOF {
		t.Errorf("Recv() after end = %v, want io.EOF", err)
	}
}

// =============================================================================
// KIND TESTS
// =============================================================================

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"openai", KindOpenAIFamily, false},
		{"OpenAI-Compatible", KindOpenAIFamily, false},
		{"", KindOpenAIFamily, false},
		{"anthropic", KindAnthropic, false},
		{" Anthropic ", KindAnthropic, false},
		{"cohere", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestKindTextRoundTrip(t *testing.T) {
	for _, k := range []Kind{KindOpenAIFamily, KindAnthropic} {
		text, err := k.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v) error = %v", k, err)
		}
		var back Kind
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q) error = %v", text, err)
		}
		if back != k {
			t.Errorf("round trip %v -> %q -> %v", k, text, back)
		}
	}
}

// =============================================================================
// CONSTRUCTION TESTS
// =============================================================================

func TestNew_SelectsAdapterByKind(t *testing.T) {
	h, err := New(Spec{Name: "OpenAI", Kind: KindOpenAIFamily, BaseURL: OpenAIBaseURL})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := h.(*OpenAIClient); !ok {
		t.Errorf("New(openai) = %T, want *OpenAIClient", h)
	}

	h, err = New(Spec{Name: "Anthropic", Kind: KindAnthropic, BaseURL: AnthropicBaseURL})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := h.(*AnthropicClient); !ok {
		t.Errorf("New(anthropic) = %T, want *AnthropicClient", h)
	}
}

func TestNew_RejectsUnknownKindAndMissingURL(t *testing.T) {
	if _, err := New(Spec{Name: "X", Kind: Kind(99), BaseURL: "http://x"}); err == nil {
		t.Error("expected error for unknown kind")
	}
	if _, err := New(Spec{Name: "X", Kind: KindOpenAIFamily}); err == nil {
		t.Error("expected error for missing base URL")
	}
}

func TestHandlerFunc(t *testing.T) {
	var seen []Message
	h := HandlerFunc(func(ctx context.Context, transcript []Message) (Stream, error) {
		seen = transcript
		return NewSliceStream(), nil
	})

	if _, err := h.Stream(context.Background(), []Message{NewUserMessage("hi")}); err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if len(seen) != 1 || seen[0].Role != RoleUser {
		t.Errorf("handler saw %+v", seen)
	}
}
