// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/flexchat/internal/util"
)

// baseClient holds what both adapters share: endpoint spec, transport,
// optional pacing and logging.
type baseClient struct {
	spec       Spec
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// IsConfigured reports whether an API key is present.
func (c *baseClient) IsConfigured() bool {
	return c.spec.APIKey != ""
}

// openStream POSTs body to url and returns the response once a 200 arrives.
// Non-200 responses are read (size-limited) and mapped to errors.
func (c *baseClient) openStream(ctx context.Context, url string, body any, headers map[string]string) (*http.Response, error) {
	if !c.IsConfigured() {
		return nil, fmt.Errorf("%s: %w", c.spec.Name, ErrNotConfigured)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for rate limiter: %w", err)
		}
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	for k, v := range c.spec.Headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	c.logger.Debug("api request",
		"method", req.Method,
		"url", url,
		"model", c.spec.Model,
		"key", util.MaskSecret(c.spec.APIKey))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", c.spec.Name, err)
	}

	c.logger.Debug("api response",
		"status", resp.StatusCode,
		"duration", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBodySize))
		return nil, handleErrorResponse(c.spec.Name, resp.StatusCode, errBody)
	}

	return resp, nil
}
