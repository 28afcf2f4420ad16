// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/flexchat/internal/agents"
	"github.com/jeranaias/flexchat/internal/router"
)

func newPoemCmd(a *app) *cobra.Command {
	var (
		providerName string
		kind         string
	)

	cmd := &cobra.Command{
		Use:   "poem [topic]",
		Short: "Write a haiku or limerick",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			if providerName == "" {
				providerName = a.cfg.Agents.PoemProvider
			}
			if _, ok := a.router.Lookup(providerName); !ok {
				return &router.UnsupportedProviderError{Name: providerName}
			}

			var in LineReader
			prompt := func(p string) (string, error) {
				if in == nil {
					in = NewLineReader(a.stdin, a.stdout, "")
				}
				return promptNonEmpty(in, a.stdout, p, "Please enter a value.")
			}
			defer func() {
				if in != nil {
					in.Close()
				}
			}()

			topic := ""
			if len(args) == 1 {
				topic = strings.TrimSpace(args[0])
			}
			var err error
			if topic == "" {
				if topic, err = prompt("Enter a topic for your poem: "); err != nil {
					return endOfInputOr(err)
				}
			}
			if kind == "" {
				if kind, err = prompt("Choose the type of poem (haiku or limerick): "); err != nil {
					return endOfInputOr(err)
				}
			}

			poemType, err := agents.ParsePoemType(kind)
			if err != nil {
				return &UsageError{Reason: err.Error()}
			}

			lines, err := agents.NewPoemGenerator(a.router, providerName, a.logger).Generate(cmd.Context(), topic, poemType)
			if err != nil {
				return err
			}
			for _, line := range lines {
				fmt.Fprintln(a.stdout, line)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&providerName, "provider", "p", "", "provider to use (default from config)")
	cmd.Flags().StringVarP(&kind, "type", "t", "", "poem type: haiku or limerick")
	return cmd
}
