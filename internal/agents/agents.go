// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agents

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jeranaias/flexchat/internal/provider"
)

// EmptyResponse replaces a blank agent reply.
const EmptyResponse = "Error: Received an empty response."

// Chatter sends a transcript to a named provider and returns the full reply.
type Chatter interface {
	Chat(ctx context.Context, name string, transcript []provider.Message) (string, error)
}

// agent is one system prompt plus a user prompt template.
type agent struct {
	name   string
	system string
	prompt func(input string) string
}

// ask runs a single agent and substitutes EmptyResponse for blank output.
func ask(ctx context.Context, c Chatter, providerName string, logger *slog.Logger, a agent, input string) (string, error) {
	logger.Info("agent processing input", "agent", a.name)
	reply, err := c.Chat(ctx, providerName, []provider.Message{
		provider.NewSystemMessage(a.system),
		provider.NewUserMessage(a.prompt(input)),
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		logger.Error("agent returned an empty response", "agent", a.name)
		return EmptyResponse, nil
	}
	logger.Info("agent generated response", "agent", a.name, "chars", len(reply))
	return reply, nil
}
