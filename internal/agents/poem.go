// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrUnsupportedPoemType is returned for any form other than haiku or limerick.
var ErrUnsupportedPoemType = errors.New("unsupported poem type")

// PoemType names a poetic form.
type PoemType string

const (
	Haiku    PoemType = "haiku"
	Limerick PoemType = "limerick"
)

// ParsePoemType normalizes user input into a PoemType.
func ParsePoemType(s string) (PoemType, error) {
	switch t := PoemType(strings.ToLower(strings.TrimSpace(s))); t {
	case Haiku, Limerick:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPoemType, s)
	}
}

func (t PoemType) systemMessage() (string, error) {
	switch t {
	case Haiku:
		return "You are a wise poet and able to write the best haiku on any subject.", nil
	case Limerick:
		return "You are a poet able to write the most beautiful limerick on any subject.", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPoemType, string(t))
	}
}

// PoemGenerator writes short poems on a topic.
type PoemGenerator struct {
	chatter  Chatter
	provider string
	logger   *slog.Logger
}

// NewPoemGenerator creates a generator bound to providerName.
func NewPoemGenerator(c Chatter, providerName string, logger *slog.Logger) *PoemGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &PoemGenerator{chatter: c, provider: providerName, logger: logger}
}

// Generate returns the poem split into lines.
func (g *PoemGenerator) Generate(ctx context.Context, topic string, kind PoemType) ([]string, error) {
	system, err := kind.systemMessage()
	if err != nil {
		return nil, err
	}
	a := agent{
		name:   string(kind),
		system: system,
		prompt: func(in string) string { return in },
	}
	out, err := ask(ctx, g.chatter, g.provider, g.logger, a, topic)
	if err != nil {
		return nil, err
	}
	return strings.Split(strings.TrimRight(strings.ReplaceAll(out, "\r\n", "\n"), "\n"), "\n"), nil
}
