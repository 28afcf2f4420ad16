// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/flexchat/internal/config"
	"github.com/jeranaias/flexchat/internal/provider"
	"github.com/jeranaias/flexchat/internal/questions"
	"github.com/jeranaias/flexchat/internal/router"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"usage", &UsageError{Reason: "bad"}, ExitUsageError},
		{"validation", fmt.Errorf("invalid config: %w", config.ValidateErrors{{Field: "x", Message: "y"}}), ExitConfigError},
		{"missing key", fmt.Errorf("OpenAI: %w", provider.ErrNotConfigured), ExitConfigError},
		{"auth", fmt.Errorf("%w: nope", provider.ErrAuthFailed), ExitAuthError},
		{"partial", &questions.BatchError{Failed: 1, Total: 3}, ExitPartialError},
		{"cancelled", fmt.Errorf("chat: %w", context.Canceled), ExitInterrupted},
		{"other", errors.New("boom"), ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestDisplayError_Hint(t *testing.T) {
	var out bytes.Buffer
	DisplayError(&out, &router.UnsupportedProviderError{Name: "Nope"})
	assert.Contains(t, out.String(), "unsupported provider: Nope")
	assert.Contains(t, out.String(), "flexchat providers")

	out.Reset()
	DisplayError(&out, nil)
	assert.Empty(t, out.String())
}
