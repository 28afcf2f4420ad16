// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error display and exit codes for flexchat commands.
//
// Commands always return errors. Execute prints them once and maps them to
// an exit code.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/flexchat/internal/config"
	"github.com/jeranaias/flexchat/internal/provider"
	"github.com/jeranaias/flexchat/internal/questions"
	"github.com/jeranaias/flexchat/internal/router"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates an upstream authentication failure
	ExitAuthError = 4
	// ExitPartialError indicates some pipeline questions failed
	ExitPartialError = 5
	// ExitInterrupted indicates the user cancelled with Ctrl-C
	ExitInterrupted = 130
)

// UsageError reports bad command-line input.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string {
	return e.Reason
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError prints err in the shared error format.
func DisplayError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())

	if hint := errorHint(err); hint != "" {
		fmt.Fprintf(w, "        %s\n", DimStyle.Render(hint))
	}
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, provider.ErrNotConfigured):
		return "Set the provider's API key environment variable (see `flexchat providers`)."
	case errors.Is(err, provider.ErrAuthFailed):
		return "The API key was rejected. Check that it is current."
	case errors.Is(err, provider.ErrRateLimited):
		return "The provider is rate limiting requests. Try again shortly."
	case errors.Is(err, router.ErrUnsupportedProvider):
		return "Run `flexchat providers` to list registered providers."
	}
	return ""
}

// GetExitCode determines the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}

	var validateErrs config.ValidateErrors
	if errors.As(err, &validateErrs) || errors.Is(err, provider.ErrNotConfigured) {
		return ExitConfigError
	}

	if errors.Is(err, provider.ErrAuthFailed) {
		return ExitAuthError
	}

	var batchErr *questions.BatchError
	if errors.As(err, &batchErr) {
		return ExitPartialError
	}

	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}

	return ExitGeneralError
}
