// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jeranaias/flexchat/internal/config"
	"github.com/jeranaias/flexchat/internal/provider"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrUnsupportedProvider is matched by every *UnsupportedProviderError.
var ErrUnsupportedProvider = errors.New("unsupported provider")

// ErrEmptyTranscript is returned when Chat is called without messages.
var ErrEmptyTranscript = errors.New("transcript is empty")

// UnsupportedProviderError reports a provider name that is not registered.
type UnsupportedProviderError struct {
	Name string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported provider: %s", e.Name)
}

// Is lets errors.Is(err, ErrUnsupportedProvider) match.
func (e *UnsupportedProviderError) Is(target error) bool {
	return target == ErrUnsupportedProvider
}

// StreamError is returned when a stream fails after producing output. Partial
// holds the text received before the failure.
type StreamError struct {
	Provider string
	Partial  string
	Err      error
}

func (e *StreamError) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("%s stream error (partial content received: %d chars): %v", e.Provider, len(e.Partial), e.Err)
	}
	return fmt.Sprintf("%s stream error: %v", e.Provider, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registration is one provider known to the router. IDs are 1-based in
// registration order.
type Registration struct {
	ID      int
	Name    string
	Kind    provider.Kind
	Model   string
	Handler provider.Handler
}

// Router owns the provider registry. It is read-only after New returns and
// safe for concurrent use.
type Router struct {
	providers []Registration
	byName    map[string]int
	logger    *slog.Logger
}

// Option configures a Router.
type Option func(*routerOptions)

type routerOptions struct {
	logger     *slog.Logger
	httpClient *http.Client
	extra      []Registration
}

// WithLogger sets the router and handler logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *routerOptions) { o.logger = l }
}

// WithHTTPClient overrides the HTTP client given to every handler.
func WithHTTPClient(c *http.Client) Option {
	return func(o *routerOptions) { o.httpClient = c }
}

// WithHandler registers an additional provider after the configured ones.
func WithHandler(name string, kind provider.Kind, h provider.Handler) Option {
	return func(o *routerOptions) {
		o.extra = append(o.extra, Registration{Name: name, Kind: kind, Handler: h})
	}
}

// New builds a Router from cfg. cfg may be nil when every provider comes from
// WithHandler. Missing API keys do not fail construction.
func New(cfg *config.Config, opts ...Option) (*Router, error) {
	o := routerOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	r := &Router{
		byName: make(map[string]int),
		logger: o.logger,
	}

	var handlerOpts []provider.Option
	handlerOpts = append(handlerOpts, provider.WithLogger(o.logger))
	if o.httpClient != nil {
		handlerOpts = append(handlerOpts, provider.WithHTTPClient(o.httpClient))
	}

	if cfg != nil {
		for _, pc := range cfg.EnabledProviders() {
			spec, err := pc.Spec()
			if err != nil {
				return nil, fmt.Errorf("provider %s: %w", pc.Name, err)
			}
			h, err := provider.New(spec, handlerOpts...)
			if err != nil {
				return nil, err
			}
			if err := r.register(Registration{Name: pc.Name, Kind: spec.Kind, Model: spec.Model, Handler: h}); err != nil {
				return nil, err
			}
			if spec.APIKey == "" {
				r.logger.Debug("provider registered without API key", "provider", pc.Name, "env", pc.APIKeyEnv)
			}
		}
	}

	for _, reg := range o.extra {
		if err := r.register(reg); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (r *Router) register(reg Registration) error {
	key := strings.ToLower(reg.Name)
	if _, dup := r.byName[key]; dup {
		return fmt.Errorf("provider %q registered twice", reg.Name)
	}
	if reg.Handler == nil {
		return fmt.Errorf("provider %q has no handler", reg.Name)
	}
	reg.ID = len(r.providers) + 1
	r.byName[key] = len(r.providers)
	r.providers = append(r.providers, reg)
	return nil
}

// ListProviders returns provider names in registration order.
func (r *Router) ListProviders() []string {
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name
	}
	return names
}

// Providers returns a copy of the registrations in order.
func (r *Router) Providers() []Registration {
	out := make([]Registration, len(r.providers))
	copy(out, r.providers)
	return out
}

// Lookup finds a registration by name (case-insensitive).
func (r *Router) Lookup(name string) (Registration, bool) {
	i, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return Registration{}, false
	}
	return r.providers[i], true
}

// =============================================================================
// CHAT
// =============================================================================

// Chat sends transcript to the named provider and returns the concatenated
// response. The caller's transcript is never modified.
func (r *Router) Chat(ctx context.Context, name string, transcript []provider.Message) (string, error) {
	return r.ChatStream(ctx, name, transcript, nil)
}

// ChatStream is Chat with a callback invoked with each fragment's text in
// arrival order. onText may be nil.
func (r *Router) ChatStream(ctx context.Context, name string, transcript []provider.Message, onText func(string)) (string, error) {
	reg, ok := r.Lookup(name)
	if !ok {
		return "", &UnsupportedProviderError{Name: name}
	}
	if len(transcript) == 0 {
		return "", ErrEmptyTranscript
	}

	// Handlers receive their own copy.
	msgs := make([]provider.Message, len(transcript))
	copy(msgs, transcript)

	start := time.Now()
	stream, err := reg.Handler.Stream(ctx, msgs)
	if err != nil {
		r.logger.Debug("chat request failed", "provider", reg.Name, "error", err)
		return "", err
	}
	defer stream.Close()

	var response strings.Builder
	fragments := 0
	for {
		frag, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			if response.Len() == 0 {
				return "", err
			}
			return "", &StreamError{Provider: reg.Name, Partial: response.String(), Err: err}
		}

		text := frag.Text()
		response.WriteString(text)
		fragments++
		if onText != nil && text != "" {
			onText(text)
		}
	}

	r.logger.Debug("chat complete",
		"provider", reg.Name,
		"fragments", fragments,
		"chars", response.Len(),
		"duration", time.Since(start).Round(time.Millisecond))

	return response.String(), nil
}
