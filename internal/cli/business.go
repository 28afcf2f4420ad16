// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jeranaias/flexchat/internal/agents"
	"github.com/jeranaias/flexchat/internal/router"
	"github.com/jeranaias/flexchat/internal/util"
)

// StrategyFile is the name of the business builder's output.
const StrategyFile = "strategy.md"

func newBusinessCmd(a *app) *cobra.Command {
	var (
		providerName string
		outputDir    string
	)

	cmd := &cobra.Command{
		Use:   "business [idea]",
		Short: "Turn a business idea into a strategy",
		Long: `Run the clarity, niche and action agents on a business idea, then merge
their answers into a strategy written to strategy.md.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			if providerName == "" {
				providerName = a.cfg.Agents.BusinessProvider
			}
			if _, ok := a.router.Lookup(providerName); !ok {
				return &router.UnsupportedProviderError{Name: providerName}
			}

			idea := ""
			if len(args) == 1 {
				idea = args[0]
			} else {
				in := NewLineReader(a.stdin, a.stdout, "")
				defer in.Close()
				fmt.Fprintln(a.stdout, "Tell me about your business idea or current business:")
				var err error
				if idea, err = promptNonEmpty(in, a.stdout, "> ", "Please describe your idea."); err != nil {
					return endOfInputOr(err)
				}
			}

			spin := NewSpinner(a.stderr, IsStderrTTY())
			stop := spin.Start("Building strategy")
			strategy, err := agents.NewBusinessBuilder(a.router, providerName, a.logger).Build(cmd.Context(), idea)
			stop()
			if err != nil {
				return err
			}

			displayMarkdown(a.stdout, strategy.Markdown(), IsStdoutTTY())

			if outputDir == "" {
				outputDir = "."
			}
			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			path := filepath.Join(outputDir, StrategyFile)
			if err := util.AtomicWriteFile(path, []byte(strategy.Markdown()), 0644); err != nil {
				return fmt.Errorf("write strategy: %w", err)
			}
			a.logger.Info("strategy written", "path", path)
			fmt.Fprintf(a.stdout, "\n%s %s\n", SuccessStyle.Render("Strategy written to"), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&providerName, "provider", "p", "", "provider for every agent (default from config)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for strategy.md (default current directory)")
	return cmd
}

// endOfInputOr turns Ctrl-C or Ctrl-D at a prompt into a quiet exit.
func endOfInputOr(err error) error {
	if isEndOfInput(err) {
		return nil
	}
	return err
}
