// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package questions

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/flexchat/internal/provider"
)

// DefaultWorkers is the fan-out width when none is configured.
const DefaultWorkers = 5

// Chatter sends a transcript to a named provider and returns the full reply.
// *router.Router satisfies it.
type Chatter interface {
	Chat(ctx context.Context, name string, transcript []provider.Message) (string, error)
}

// Progress shows activity while a phase runs. Start returns a function that
// stops the indicator and blocks until it has cleared.
type Progress interface {
	Start(label string) func()
}

type noProgress struct{}

func (noProgress) Start(string) func() { return func() {} }

// Record is one answered question.
type Record struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Result is the outcome of one Run.
type Result struct {
	RunID            string
	OriginalQuestion string
	ExpertRole       string
	Provider         string
	Timestamp        time.Time

	// Records keeps submission order with failed questions removed.
	Records []Record

	// SeedIndex is the position of the seed in Records, or -1 if the seed
	// failed.
	SeedIndex int

	Failures []QuestionError
}

// Seed returns the seed record, if it was answered.
func (r *Result) Seed() (Record, bool) {
	if r.SeedIndex < 0 || r.SeedIndex >= len(r.Records) {
		return Record{}, false
	}
	return r.Records[r.SeedIndex], true
}

// Related returns every record except the seed.
func (r *Result) Related() []Record {
	out := make([]Record, 0, len(r.Records))
	for i, rec := range r.Records {
		if i != r.SeedIndex {
			out = append(out, rec)
		}
	}
	return out
}

// =============================================================================
// PIPELINE
// =============================================================================

// Pipeline runs the related-question fan-out against one provider.
type Pipeline struct {
	chatter    Chatter
	provider   string
	workers    int
	maxRelated int
	logger     *slog.Logger
	progress   Progress
	now        func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkers sets the answer fan-out width. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithMaxRelated caps the number of related questions kept (at most 5).
// Zero skips related-question generation and answers the seed alone.
func WithMaxRelated(n int) Option {
	return func(p *Pipeline) { p.maxRelated = min(max(n, 0), MaxRelated) }
}

// WithLogger sets the pipeline logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithProgress installs a progress indicator for the two phases.
func WithProgress(pr Progress) Option {
	return func(p *Pipeline) {
		if pr != nil {
			p.progress = pr
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a Pipeline that sends every request to providerName.
func New(chatter Chatter, providerName string, opts ...Option) *Pipeline {
	p := &Pipeline{
		chatter:    chatter,
		provider:   providerName,
		workers:    DefaultWorkers,
		maxRelated: MaxRelated,
		progress:   noProgress{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Provider returns the provider name requests go to.
func (p *Pipeline) Provider() string {
	return p.provider
}

// relatedSystemPrompt frames the expert for question generation.
func relatedSystemPrompt(expertRole string) string {
	return fmt.Sprintf("You are a %s. You help people explore a topic by asking the questions an expert would ask next.", expertRole)
}

func relatedUserPrompt(seed string, max int) string {
	return fmt.Sprintf("Generate up to %d related questions that would help provide a comprehensive answer to the following question. "+
		"Return only the questions as a numbered list, no other text.\n\nQuestion: %s", max, seed)
}

func answerSystemPrompt(expertRole string) string {
	return fmt.Sprintf("You are a %s. Provide a clear, concise, and accurate answer to the following question.", expertRole)
}

// GenerateRelated asks the model for up to five follow-up questions. A reply
// without numbered lines yields an empty slice and no error. With a cap of
// zero no request is made.
func (p *Pipeline) GenerateRelated(ctx context.Context, seed, expertRole string) ([]string, error) {
	max := p.maxRelated
	if max == 0 {
		return []string{}, nil
	}

	transcript := []provider.Message{
		provider.NewSystemMessage(relatedSystemPrompt(expertRole)),
		provider.NewUserMessage(relatedUserPrompt(seed, max)),
	}
	reply, err := p.chatter.Chat(ctx, p.provider, transcript)
	if err != nil {
		return nil, fmt.Errorf("generate related questions: %w", err)
	}

	related := ParseRelated(reply, max)
	if len(related) == 0 {
		p.logger.Warn("no numbered questions in reply", "provider", p.provider, "chars", len(reply))
	}
	return related, nil
}

// Answer asks the expert one question. Record.Question is question verbatim.
func (p *Pipeline) Answer(ctx context.Context, question, expertRole string) (Record, error) {
	transcript := []provider.Message{
		provider.NewSystemMessage(answerSystemPrompt(expertRole)),
		provider.NewUserMessage(question),
	}
	reply, err := p.chatter.Chat(ctx, p.provider, transcript)
	if err != nil {
		return Record{}, err
	}
	return Record{Question: question, Answer: reply}, nil
}

// Run generates related questions for seed and answers all of them.
//
// A failure while generating related questions aborts the run. After that,
// a failed question is logged and left out of Records; Run then returns the
// partial Result together with a *BatchError.
func (p *Pipeline) Run(ctx context.Context, seed, expertRole string) (*Result, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return nil, ErrEmptyQuestion
	}

	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID, "provider", p.provider)
	start := p.now()

	var related []string
	if p.maxRelated > 0 {
		stop := p.progress.Start("Generating related questions")
		var err error
		related, err = p.GenerateRelated(ctx, seed, expertRole)
		stop()
		if err != nil {
			return nil, err
		}
		logger.Info("related questions generated", "count", len(related))
	}

	all := make([]string, 0, len(related)+1)
	all = append(all, seed)
	all = append(all, related...)

	stop := p.progress.Start("Fetching answers")
	slots, failures := p.answerAll(ctx, logger, all, expertRole)
	stop()

	result := &Result{
		RunID:            runID,
		OriginalQuestion: seed,
		ExpertRole:       expertRole,
		Provider:         p.provider,
		Timestamp:        start,
		Records:          make([]Record, 0, len(all)),
		SeedIndex:        -1,
		Failures:         failures,
	}
	for i, rec := range slots {
		if rec == nil {
			continue
		}
		if i == 0 {
			result.SeedIndex = len(result.Records)
		}
		result.Records = append(result.Records, *rec)
	}

	logger.Info("run complete",
		"answered", len(result.Records),
		"failed", len(failures),
		"duration", time.Since(start).Round(time.Millisecond))

	if len(failures) > 0 {
		return result, &BatchError{Failed: len(failures), Total: len(all), Errs: failures}
	}
	return result, nil
}

// answerAll fans questions out over at most p.workers goroutines. Slot i
// holds the answer to questions[i] or nil when it failed.
func (p *Pipeline) answerAll(ctx context.Context, logger *slog.Logger, questions []string, expertRole string) ([]*Record, []QuestionError) {
	slots := make([]*Record, len(questions))

	var (
		mu       sync.Mutex
		failures []QuestionError
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, q := range questions {
		g.Go(func() error {
			rec, err := p.Answer(gctx, q, expertRole)
			if err != nil {
				logger.Error("question failed", "index", i, "question", q, "error", err)
				mu.Lock()
				failures = append(failures, QuestionError{Index: i, Question: q, Err: err})
				mu.Unlock()
				// Siblings keep running.
				return nil
			}
			slots[i] = &rec
			return nil
		})
	}
	_ = g.Wait()

	slices.SortFunc(failures, func(a, b QuestionError) int { return cmp.Compare(a.Index, b.Index) })
	return slots, failures
}
