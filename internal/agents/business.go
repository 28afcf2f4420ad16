// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ErrEmptyIdea is returned when Build is given a blank idea.
var ErrEmptyIdea = errors.New("business idea is empty")

var (
	clarityAgent = agent{
		name:   "clarity",
		system: "You are a clarity agent. Your job is to ask questions to clarify the user's business needs.",
		prompt: func(in string) string { return "Based on this input, ask 1 clarifying questions: " + in },
	}
	nicheAgent = agent{
		name:   "niche",
		system: "You are a niche agent. Your job is to generate niche content and identify the ideal target avatar.",
		prompt: func(in string) string {
			return "Based on this input, suggest a niche and describe the ideal target avatar: " + in
		},
	}
	actionAgent = agent{
		name: "action",
		system: "You are an action agent. Your job is to deliver precise, impactful, and actionable steps " +
			"that the user can implement immediately to achieve their goals.",
		prompt: func(in string) string { return "Based on this input, provide 3 specific actions the user should take: " + in },
	}
	strategistAgent = agent{
		name: "strategist",
		system: "You are a business strategist. Your role is to integrate diverse insights and craft a comprehensive, " +
			"strategic roadmap that aligns with the user's business objectives and drives sustainable growth.",
		prompt: func(in string) string { return in },
	}
)

// Strategy is the output of one Build.
type Strategy struct {
	Idea     string
	Clarity  string
	Niche    string
	Actions  string
	Strategy string
}

// Markdown renders the strategy document written to strategy.md.
func (s *Strategy) Markdown() string {
	return "# Business Strategy\n\n" + s.Strategy
}

// BusinessBuilder turns a business idea into a strategy using three analyst
// agents and a strategist that merges their output.
type BusinessBuilder struct {
	chatter  Chatter
	provider string
	logger   *slog.Logger
}

// NewBusinessBuilder creates a builder that sends every request to
// providerName. logger may be nil.
func NewBusinessBuilder(c Chatter, providerName string, logger *slog.Logger) *BusinessBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &BusinessBuilder{chatter: c, provider: providerName, logger: logger}
}

// Build runs the clarity, niche and action agents concurrently and then the
// strategist. Any agent failure aborts the build.
func (b *BusinessBuilder) Build(ctx context.Context, idea string) (*Strategy, error) {
	idea = strings.TrimSpace(idea)
	if idea == "" {
		return nil, ErrEmptyIdea
	}
	b.logger.Info("starting business builder", "provider", b.provider)

	s := &Strategy{Idea: idea}
	g, gctx := errgroup.WithContext(ctx)
	for _, job := range []struct {
		a   agent
		out *string
	}{
		{clarityAgent, &s.Clarity},
		{nicheAgent, &s.Niche},
		{actionAgent, &s.Actions},
	} {
		g.Go(func() error {
			reply, err := ask(gctx, b.chatter, b.provider, b.logger, job.a, idea)
			if err != nil {
				return fmt.Errorf("%s agent: %w", job.a.name, err)
			}
			*job.out = reply
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	synthesis := fmt.Sprintf("Synthesize the following information into a clear, concise business strategy:\n\n"+
		"Clarity: %s\n\nNiche: %s\n\nActions: %s", s.Clarity, s.Niche, s.Actions)
	strategy, err := ask(ctx, b.chatter, b.provider, b.logger, strategistAgent, synthesis)
	if err != nil {
		return nil, fmt.Errorf("strategist agent: %w", err)
	}
	s.Strategy = strategy

	b.logger.Info("business builder completed", "chars", len(strategy))
	return s, nil
}
