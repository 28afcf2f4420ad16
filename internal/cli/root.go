// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jeranaias/flexchat/internal/config"
	"github.com/jeranaias/flexchat/internal/logging"
	"github.com/jeranaias/flexchat/internal/router"
)

var version = "dev"

// SetVersion records build information for --version.
func SetVersion(v, commit, date string) {
	version = v
	if commit != "" && commit != "unknown" {
		version += " (" + commit
		if date != "" && date != "unknown" {
			version += ", " + date
		}
		version += ")"
	}
}

// app carries per-invocation state shared by the commands. Nothing here is
// global; tests build their own.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// Persistent flags
	configPath string
	logLevel   string
	logFile    string

	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
	router *router.Router

	// routerOpts are appended when the router is built (tests inject
	// handlers here).
	routerOpts []router.Option
}

// load reads configuration, then builds the logger and router. It runs once
// per invocation.
func (a *app) load() error {
	if a.router != nil {
		return nil
	}

	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.LoadFromPath(a.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		if _, err := logging.ParseLevel(a.logLevel); err != nil {
			return &UsageError{Reason: err.Error()}
		}
		cfg.Logging.Level = a.logLevel
	}
	if a.logFile != "" {
		cfg.Logging.LogFile = a.logFile
		cfg.Logging.LogToFile = true
	}

	logger, closer, err := logging.New(cfg.Logging, a.stderr)
	if err != nil {
		return err
	}

	opts := append([]router.Option{router.WithLogger(logger)}, a.routerOpts...)
	r, err := router.New(cfg, opts...)
	if err != nil {
		closer.Close()
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.closer = closer
	a.router = r
	return nil
}

func (a *app) close() {
	if a.closer != nil {
		a.closer.Close()
		a.closer = nil
	}
}

// NewRootCmd builds the command tree bound to the given streams.
func NewRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	return newRootCmd(a)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "flexchat",
		Short: "Chat with hosted LLM providers and fan out expert Q&A",
		Long: `flexchat talks to OpenAI, Groq, OpenRouter, Anthropic, Perplexity and Google
through one interface. Chat interactively and switch providers at will, or
expand a question into related questions that are answered in parallel and
saved as JSON and Markdown.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand: chat on a terminal, help otherwise
			if f, ok := a.stdin.(*os.File); !ok || f != os.Stdin || !IsTTY() {
				return cmd.Help()
			}
			return a.runChat(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default ~/.flexchat/config.toml)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&a.logFile, "log-file", "", "append logs to this file instead of stderr")

	root.AddCommand(
		newChatCmd(a),
		newAskCmd(a),
		newBusinessCmd(a),
		newPoemCmd(a),
		newProvidersCmd(a),
		newConfigCmd(a),
	)
	return root
}

// Execute runs the CLI and returns the process exit code. Called from main.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	defer a.close()

	err := newRootCmd(a).ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	DisplayError(os.Stderr, err)
	return GetExitCode(err)
}
