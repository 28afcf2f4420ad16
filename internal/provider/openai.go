// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// doneMarker is the data payload that ends an OpenAI-style stream.
var doneMarker = []byte("[DONE]")

// OpenAIClient streams from any OpenAI-compatible chat-completions endpoint.
type OpenAIClient struct {
	baseClient
}

// chatRequest is the chat-completions request body.
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// streamChunk is one chat-completions SSE payload.
type streamChunk struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Delta        Delta   `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *apiErrorDetail `json:"error,omitempty"`
}

// Stream opens a streaming chat completion.
func (c *OpenAIClient) Stream(ctx context.Context, transcript []Message) (Stream, error) {
	req := chatRequest{
		Model:     c.spec.Model,
		Messages:  transcript,
		Stream:    true,
		MaxTokens: c.spec.MaxTokens,
	}
	if c.spec.Temperature > 0 {
		t := c.spec.Temperature
		req.Temperature = &t
	}

	headers := map[string]string{
		"Authorization": "Bearer " + c.spec.APIKey,
	}

	resp, err := c.openStream(ctx, c.spec.BaseURL+"/chat/completions", req, headers)
	if err != nil {
		return nil, err
	}

	return &openAIStream{
		provider: c.spec.Name,
		body:     resp.Body,
		reader:   NewSSEReader(resp.Body),
	}, nil
}

// openAIStream pulls chunks off the SSE body one event at a time.
type openAIStream struct {
	provider string
	body     io.ReadCloser
	reader   *SSEReader
	done     bool
}

func (s *openAIStream) Recv() (Fragment, error) {
	for {
		if s.done {
			return Fragment{}, io.EOF
		}

		_, data, err := s.reader.ReadEvent()
		if err != nil {
			if err == io.EOF {
				s.done = true
				return Fragment{}, io.EOF
			}
			return Fragment{}, fmt.Errorf("read %s stream: %w", s.provider, err)
		}

		if bytes.Equal(data, doneMarker) {
			s.done = true
			continue
		}

		var chunk streamChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			// Skip malformed chunks
			continue
		}

		if chunk.Error != nil {
			s.done = true
			return Fragment{}, &APIError{
				Provider: s.provider,
				Code:     chunk.Error.code(),
				Message:  chunk.Error.Message,
			}
		}

		// Usage-only and keep-alive chunks carry no choices.
		if len(chunk.Choices) == 0 {
			continue
		}

		choice := chunk.Choices[0]
		if choice.FinishReason != nil && *choice.FinishReason != "" {
			s.done = true
		}

		delta := choice.Delta
		return Fragment{Delta: &delta}, nil
	}
}

func (s *openAIStream) Close() error {
	s.done = true
	return s.body.Close()
}
