// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// ENDPOINT DEFAULTS
// =============================================================================

const (
	OpenAIBaseURL     = "https://api.openai.com/v1"
	GroqBaseURL       = "https://api.groq.com/openai/v1"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
	PerplexityBaseURL = "https://api.perplexity.ai"
	GoogleBaseURL     = "https://generativelanguage.googleapis.com/v1beta/openai"
	AnthropicBaseURL  = "https://api.anthropic.com"

	// MaxErrorBodySize caps how much of an error response is read.
	MaxErrorBodySize = 10 * 1024 * 1024
)

// sharedStreamingClient is used for all streaming requests. It has no overall
// timeout; the request context bounds it.
var sharedStreamingClient = &http.Client{
	Transport: &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
	},
}

// =============================================================================
// KIND
// =============================================================================

// Kind selects the wire protocol an adapter speaks.
type Kind int

const (
	// KindOpenAIFamily is the OpenAI-compatible chat-completions protocol.
	KindOpenAIFamily Kind = iota
	// KindAnthropic is the Anthropic Messages protocol.
	KindAnthropic
)

// String returns the config spelling of k.
func (k Kind) String() string {
	switch k {
	case KindOpenAIFamily:
		return "openai"
	case KindAnthropic:
		return "anthropic"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind parses a config value into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "openai", "openai-compatible", "openai_family", "":
		return KindOpenAIFamily, nil
	case "anthropic":
		return KindAnthropic, nil
	default:
		return 0, fmt.Errorf("unknown provider kind %q (want openai or anthropic)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// =============================================================================
// MESSAGES
// =============================================================================

// Role is the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in a chat transcript.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// =============================================================================
// FRAGMENTS
// =============================================================================

// Delta is the incremental message shape of a chat-completions chunk.
// Content is nil when the vendor omitted it or sent null.
type Delta struct {
	Role    string  `json:"role,omitempty"`
	Content *string `json:"content"`
}

// Fragment is one incremental piece of a streamed completion. It is either
// delta-shaped (Delta != nil) or plain text.
type Fragment struct {
	Delta *Delta
	Plain string
}

// TextFragment returns a plain-text fragment.
func TextFragment(s string) Fragment {
	return Fragment{Plain: s}
}

// DeltaFragment returns a delta-shaped fragment. A nil content is allowed.
func DeltaFragment(content *string) Fragment {
	return Fragment{Delta: &Delta{Content: content}}
}

// Text extracts the fragment's text. A delta with no content yields "".
func (f Fragment) Text() string {
	if f.Delta != nil {
		if f.Delta.Content == nil {
			return ""
		}
		return *f.Delta.Content
	}
	return f.Plain
}

// =============================================================================
// HANDLER / STREAM
// =============================================================================

// Stream is a lazy, single-pass sequence of fragments. Recv returns io.EOF
// once the vendor signals completion. Close releases the connection and may be
// called at any point.
type Stream interface {
	Recv() (Fragment, error)
	Close() error
}

// Handler opens a streaming completion for a transcript.
type Handler interface {
	Stream(ctx context.Context, transcript []Message) (Stream, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, transcript []Message) (Stream, error)

// Stream calls f.
func (f HandlerFunc) Stream(ctx context.Context, transcript []Message) (Stream, error) {
	return f(ctx, transcript)
}

// sliceStream replays a fixed fragment sequence.
type sliceStream struct {
	fragments []Fragment
	pos       int
}

// NewSliceStream returns a Stream that yields fragments in order, then io.EOF.
func NewSliceStream(fragments ...Fragment) Stream {
	return &sliceStream{fragments: fragments}
}

func (s *sliceStream) Recv() (Fragment, error) {
	if s.pos >= len(s.fragments) {
		return Fragment{}, io.EOF
	}
	f := s.fragments[s.pos]
	s.pos++
	return f, nil
}

func (s *sliceStream) Close() error { return nil }

// =============================================================================
// CONSTRUCTION
// =============================================================================

// Spec describes one vendor endpoint.
type Spec struct {
	Name        string
	Kind        Kind
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float64
	MaxTokens   int

	// RequestsPerMinute paces requests through a token bucket. Zero disables it.
	RequestsPerMinute int

	// Headers are sent with every request, e.g. OpenRouter attribution.
	Headers map[string]string
}

// Option configures a handler.
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// WithHTTPClient overrides the shared streaming HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New builds the adapter matching spec.Kind. A missing API key is not an
// error here; the first Stream call reports ErrNotConfigured.
func New(spec Spec, opts ...Option) (Handler, error) {
	o := options{httpClient: sharedStreamingClient}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	if spec.BaseURL == "" {
		return nil, fmt.Errorf("provider %s: base URL is required", spec.Name)
	}

	base := baseClient{
		spec:       spec,
		httpClient: o.httpClient,
		logger:     o.logger.With("provider", spec.Name),
	}
	base.spec.BaseURL = strings.TrimRight(spec.BaseURL, "/")
	if spec.RequestsPerMinute > 0 {
		base.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(spec.RequestsPerMinute)), 1)
	}

	switch spec.Kind {
	case KindOpenAIFamily:
		return &OpenAIClient{baseClient: base}, nil
	case KindAnthropic:
		return &AnthropicClient{baseClient: base}, nil
	default:
		return nil, fmt.Errorf("provider %s: unsupported kind %s", spec.Name, spec.Kind)
	}
}
