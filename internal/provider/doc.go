// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package provider implements streaming chat adapters for hosted LLM APIs.
//
// Two adapter shapes cover every supported vendor:
//
//   - KindOpenAIFamily speaks the OpenAI chat-completions SSE protocol and
//     serves OpenAI, Groq, OpenRouter, Perplexity and Google's
//     OpenAI-compatible endpoint.
//   - KindAnthropic speaks the Anthropic Messages SSE protocol, which keeps
//     the system prompt outside the message array.
//
// A Handler opens one request per Stream call. The returned Stream is pulled
// with Recv until io.EOF; nothing is read from the network until the caller
// asks for the next fragment.
//
// # Usage
//
//	h, err := provider.New(provider.Spec{
//		Name:    "Groq",
//		Kind:    provider.KindOpenAIFamily,
//		BaseURL: provider.GroqBaseURL,
//		Model:   "mixtral-8x7b-32768",
//		APIKey:  os.Getenv("GROQ_API_KEY"),
//	})
//	stream, err := h.Stream(ctx, transcript)
//	defer stream.Close()
//	for {
//		frag, err := stream.Recv()
//		if err == io.EOF {
//			break
//		}
//		fmt.Print(frag.Text())
//	}
package provider
