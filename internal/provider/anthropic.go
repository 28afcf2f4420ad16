// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	// AnthropicVersion is the API version header value.
	AnthropicVersion = "2023-06-01"

	// DefaultAnthropicMaxTokens is used when the spec leaves MaxTokens unset;
	// the Messages API requires the field.
	DefaultAnthropicMaxTokens = 1024
)

// AnthropicClient streams from the Anthropic Messages API.
type AnthropicClient struct {
	baseClient
}

// messagesRequest is the Messages API request body. System prompts travel
// in their own field, never in Messages.
type messagesRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature *float64  `json:"temperature,omitempty"`
	Stream      bool      `json:"stream"`
}

// anthropicEvent is the subset of Messages stream events we act on.
type anthropicEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Error *apiErrorDetail `json:"error,omitempty"`
}

// splitSystem separates system messages from the conversational turns.
func splitSystem(transcript []Message) (string, []Message) {
	var system []string
	turns := make([]Message, 0, len(transcript))
	for _, m := range transcript {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	return strings.Join(system, "\n\n"), turns
}

// Stream opens a streaming Messages request.
func (c *AnthropicClient) Stream(ctx context.Context, transcript []Message) (Stream, error) {
	system, turns := splitSystem(transcript)

	req := messagesRequest{
		Model:     c.spec.Model,
		System:    system,
		Messages:  turns,
		MaxTokens: c.spec.MaxTokens,
		Stream:    true,
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = DefaultAnthropicMaxTokens
	}
	if c.spec.Temperature > 0 {
		t := c.spec.Temperature
		req.Temperature = &t
	}

	headers := map[string]string{
		"x-api-key":         c.spec.APIKey,
		"anthropic-version": AnthropicVersion,
	}

	resp, err := c.openStream(ctx, c.spec.BaseURL+"/v1/messages", req, headers)
	if err != nil {
		return nil, err
	}

	return &anthropicStream{
		provider: c.spec.Name,
		body:     resp.Body,
		reader:   NewSSEReader(resp.Body),
	}, nil
}

type anthropicStream struct {
	provider string
	body     io.ReadCloser
	reader   *SSEReader
	done     bool
}

func (s *anthropicStream) Recv() (Fragment, error) {
	for {
		if s.done {
			return Fragment{}, io.EOF
		}

		eventType, data, err := s.reader.ReadEvent()
		if err != nil {
			if err == io.EOF {
				s.done = true
				return Fragment{}, io.EOF
			}
			return Fragment{}, fmt.Errorf("read %s stream: %w", s.provider, err)
		}

		var ev anthropicEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		if ev.Type == "" {
			ev.Type = eventType
		}

		switch ev.Type {
		case "content_block_delta":
			if ev.Delta.Type == "text_delta" {
				return TextFragment(ev.Delta.Text), nil
			}
		case "message_stop":
			s.done = true
		case "error":
			s.done = true
			apiErr := &APIError{Provider: s.provider}
			if ev.Error != nil {
				apiErr.Code = ev.Error.code()
				apiErr.Message = ev.Error.Message
			}
			if apiErr.Code == "rate_limit_error" || apiErr.Code == "overloaded_error" {
				return Fragment{}, fmt.Errorf("%w: %w", ErrRateLimited, apiErr)
			}
			return Fragment{}, apiErr
		}
		// message_start, content_block_start/stop, message_delta and ping
		// carry no text.
	}
}

func (s *anthropicStream) Close() error {
	s.done = true
	return s.body.Close()
}
