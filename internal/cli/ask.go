// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Expert Q&A with related-question fan-out.
//
// Command: ask [question]
// Short:   Answer a question plus related questions in parallel
//
// Examples:
//   flexchat ask                                        Interactive session
//   flexchat ask "What is yoga?" --expert "wellness expert"
//   flexchat ask "How do index funds work?" --provider OpenAI --workers 3

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jeranaias/flexchat/internal/export"
	"github.com/jeranaias/flexchat/internal/questions"
	"github.com/jeranaias/flexchat/internal/router"
)

const msgAskAnother = "\nWould you like to ask another question? (yes/no): "

// askOptions holds the ask command's flags.
type askOptions struct {
	expert    string
	provider  string
	workers   int
	outputDir string
	prefix    string
	noSave    bool
}

// pipelineFlags groups the overrides for the questions config section so
// their Changed state can be checked in one place.
func pipelineFlags(o *askOptions) *pflag.FlagSet {
	fs := pflag.NewFlagSet("pipeline", pflag.ContinueOnError)
	fs.StringVarP(&o.provider, "provider", "p", "", "provider for every request (default from config)")
	fs.IntVarP(&o.workers, "workers", "w", 0, "concurrent answer requests (default from config)")
	fs.StringVarP(&o.outputDir, "output-dir", "o", "", "directory for result files")
	fs.StringVar(&o.prefix, "prefix", "", "result file name prefix")
	return fs
}

func newAskCmd(a *app) *cobra.Command {
	o := &askOptions{}
	fs := pipelineFlags(o)

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a question plus related questions in parallel",
		Long: `Expand a question into up to five related questions, answer all of them
concurrently as the chosen expert, print the results and save them as JSON
and Markdown. Without a question argument, runs an interactive session.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			applyPipelineOverrides(a, o, fs)

			if len(args) == 1 {
				return a.askOnce(cmd.Context(), o, args[0])
			}
			return a.askInteractive(cmd.Context(), o)
		},
	}
	cmd.Flags().AddFlagSet(fs)
	cmd.Flags().StringVarP(&o.expert, "expert", "e", "", "expert role, e.g. \"financial expert\"")
	cmd.Flags().BoolVar(&o.noSave, "no-save", false, "print results without writing files")
	return cmd
}

// applyPipelineOverrides copies explicitly set flags into the loaded config.
func applyPipelineOverrides(a *app, o *askOptions, fs *pflag.FlagSet) {
	q := &a.cfg.Questions
	// Parsed via cmd.Flags(); only the *Flag values are shared with fs.
	fs.VisitAll(func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		switch f.Name {
		case "provider":
			q.Provider = o.provider
		case "workers":
			q.Workers = o.workers
		case "output-dir":
			q.OutputDir = o.outputDir
		case "prefix":
			q.Prefix = o.prefix
		}
	})
}

func (a *app) newPipeline() (*questions.Pipeline, error) {
	q := a.cfg.Questions
	if _, ok := a.router.Lookup(q.Provider); !ok {
		return nil, &router.UnsupportedProviderError{Name: q.Provider}
	}
	if q.Workers < 1 {
		return nil, &UsageError{Reason: fmt.Sprintf("workers must be at least 1, got %d", q.Workers)}
	}
	return questions.New(a.router, q.Provider,
		questions.WithWorkers(q.Workers),
		questions.WithMaxRelated(q.MaxRelated),
		questions.WithLogger(a.logger),
		questions.WithProgress(NewSpinner(a.stderr, IsStderrTTY())),
	), nil
}

// askOnce answers a single question from the command line.
func (a *app) askOnce(ctx context.Context, o *askOptions, question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return &UsageError{Reason: "question must not be empty"}
	}
	expert := strings.TrimSpace(o.expert)
	if expert == "" {
		expert = a.cfg.Questions.DefaultExpert
	}

	p, err := a.newPipeline()
	if err != nil {
		return err
	}
	return a.processQuestion(ctx, p, o, question, expert)
}

// askInteractive loops: question, expert, results, continue?
func (a *app) askInteractive(ctx context.Context, o *askOptions) error {
	p, err := a.newPipeline()
	if err != nil {
		return err
	}

	in := NewLineReader(a.stdin, a.stdout, "")
	defer in.Close()

	fmt.Fprintln(a.stdout, TitleStyle.Render("Welcome to the Q&A Assistant!"))
	if !o.noSave {
		fmt.Fprintln(a.stdout, DimStyle.Render("Results will be saved to: "+a.cfg.Questions.OutputDir))
	}

	for {
		question, err := promptQuestion(in, a.stdout)
		if err != nil {
			return endOfSession(a, err)
		}

		expert := strings.TrimSpace(o.expert)
		if expert == "" {
			if expert, err = promptExpert(in, a.stdout); err != nil {
				return endOfSession(a, err)
			}
		}

		if err := a.processQuestion(ctx, p, o, question, expert); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// One bad run should not end the session.
			DisplayError(a.stderr, err)
			fmt.Fprintln(a.stdout, "Please try again or answer 'no' to exit.")
		}

		again, err := promptYesNo(in, a.stdout, msgAskAnother)
		if err != nil || !again {
			return endOfSession(a, err)
		}
	}
}

func endOfSession(a *app, err error) error {
	if err != nil && !isEndOfInput(err) {
		return err
	}
	fmt.Fprintln(a.stdout, "\nThank you for using the Q&A Assistant!")
	return nil
}

// processQuestion runs the pipeline, prints the results and saves them. A
// partial failure still prints and saves what was answered, then returns the
// *questions.BatchError.
func (a *app) processQuestion(ctx context.Context, p *questions.Pipeline, o *askOptions, question, expert string) error {
	res, runErr := p.Run(ctx, question, expert)
	if res == nil {
		return runErr
	}

	fmt.Fprint(a.stdout, renderResults(res, min(GetTerminalWidth(), 80)))

	if !o.noSave && len(res.Records) > 0 {
		paths, err := export.Save(res, export.Options{
			OutputDir: a.cfg.Questions.OutputDir,
			Prefix:    a.cfg.Questions.Prefix,
			Title:     a.cfg.Questions.Title,
		})
		if err != nil {
			return errors.Join(runErr, fmt.Errorf("save results: %w", err))
		}
		a.logger.Info("results saved", "run_id", res.RunID, "json", paths.JSON, "markdown", paths.Markdown)
		fmt.Fprintf(a.stdout, "\n%s\n  %s\n  %s\n", SuccessStyle.Render("Results saved to:"), paths.JSON, paths.Markdown)
	}

	return runErr
}
