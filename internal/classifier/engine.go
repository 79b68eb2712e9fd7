// Package classifier orchestrates the hybrid intent classification pipeline:
// pattern rules first, then the semantic neighbor vote, then the TF-IDF
// keyword fallback, fused into one category and confidence.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/fyrsmithlabs/intentd/internal/category"
	"github.com/fyrsmithlabs/intentd/internal/dataset"
	"github.com/fyrsmithlabs/intentd/internal/fusion"
	"github.com/fyrsmithlabs/intentd/internal/keyword"
	"github.com/fyrsmithlabs/intentd/internal/rules"
	"github.com/fyrsmithlabs/intentd/internal/semantic"
	"github.com/fyrsmithlabs/intentd/internal/vectorindex"
)

var engineTracer = otel.Tracer("intentd.classifier")

var (
	// ErrInvalidConfig indicates invalid engine configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotTrained indicates Classify was called before Train.
	ErrNotTrained = errors.New("engine not trained")

	// ErrNoTrainingData indicates Train received no examples.
	ErrNoTrainingData = errors.New("no training examples")
)

// Result is one classification outcome. Produced fresh per query and never
// mutated afterwards.
type Result struct {
	Query       string              `json:"query"`
	Category    category.Category   `json:"category"`
	Confidence  float64             `json:"confidence"`
	Method      fusion.Method       `json:"method"`
	MatchedRule string              `json:"matched_rule,omitempty"`
	Neighbors   []semantic.Neighbor `json:"neighbors,omitempty"`
}

// Config holds engine configuration.
type Config struct {
	// K is the neighbor count for the semantic vote. Default: 5
	K int

	// BatchSize is how many texts go into one embedding call during
	// training. Default: 64
	BatchSize int

	// Workers is how many embedding batches run concurrently during
	// training. Default: 4
	Workers int

	// Fusion holds the fusion policy constants.
	Fusion fusion.Config
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.K == 0 {
		c.K = 5
	}
	if c.BatchSize == 0 {
		c.BatchSize = 64
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
	c.Fusion.ApplyDefaults()
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.K < 1 {
		return fmt.Errorf("%w: k must be at least 1", ErrInvalidConfig)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("%w: batch size must be at least 1", ErrInvalidConfig)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidConfig)
	}
	return c.Fusion.Validate()
}

// Engine runs the full pipeline. It is read-only after Train, so concurrent
// Classify calls are safe; Train must not run concurrently with Classify.
type Engine struct {
	config   Config
	rules    *rules.RuleSet
	embedder vectorindex.Embedder
	index    vectorindex.Index
	matcher  *semantic.Matcher
	keywords *keyword.Matcher
	policy   *fusion.Policy
	logger   *zap.Logger

	mu      sync.RWMutex
	trained bool
}

// NewEngine creates an Engine over the given rule set, embedder, and index.
func NewEngine(config Config, ruleSet *rules.RuleSet, embedder vectorindex.Embedder, index vectorindex.Index, logger *zap.Logger) (*Engine, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if ruleSet == nil {
		return nil, fmt.Errorf("%w: rule set is required", ErrInvalidConfig)
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfig)
	}
	if index == nil {
		return nil, fmt.Errorf("%w: index is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	matcher, err := semantic.NewMatcher(semantic.Config{K: config.K}, embedder, index, logger)
	if err != nil {
		return nil, fmt.Errorf("creating semantic matcher: %w", err)
	}
	policy, err := fusion.NewPolicy(config.Fusion)
	if err != nil {
		return nil, fmt.Errorf("creating fusion policy: %w", err)
	}

	return &Engine{
		config:   config,
		rules:    ruleSet,
		embedder: embedder,
		index:    index,
		matcher:  matcher,
		keywords: keyword.NewMatcher(),
		policy:   policy,
		logger:   logger,
	}, nil
}

// Train fits the keyword space, embeds every training text, and builds the
// index. Training is idempotent: the index is reset and rebuilt, so a
// successful retrain replaces all previous state. A failure before the index
// is touched (keyword fit, embedding) leaves the previous training fully
// intact; a failure while rebuilding the index leaves it partial, so the
// engine reverts to untrained until a later run succeeds.
func (e *Engine) Train(ctx context.Context, examples []dataset.TrainingExample) error {
	ctx, span := engineTracer.Start(ctx, "Engine.Train")
	defer span.End()
	span.SetAttributes(attribute.Int("example_count", len(examples)))

	if len(examples) == 0 {
		return ErrNoTrainingData
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()

	// Fit into a fresh matcher; it is swapped in only once the whole run
	// succeeds, so an aborted retrain cannot mix new keyword state with the
	// old index.
	kwExamples := make([]keyword.Example, len(examples))
	for i, ex := range examples {
		kwExamples[i] = keyword.Example{ID: ex.ID(), Text: ex.Text, Category: ex.Category}
	}
	kw := keyword.NewMatcher()
	if err := kw.Fit(kwExamples); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("fitting keyword matcher: %w", err)
	}

	vectors, err := e.embedAll(ctx, examples)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("embedding training texts: %w", err)
	}

	if err := e.index.Reset(ctx); err != nil {
		e.trained = false
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("resetting index: %w", err)
	}

	docs := make([]vectorindex.Document, len(examples))
	for i, ex := range examples {
		docs[i] = vectorindex.Document{
			ID:        ex.ID(),
			Content:   ex.Text,
			Embedding: vectors[i],
			Metadata:  map[string]string{"category": string(ex.Category)},
		}
	}
	if err := e.index.Add(ctx, docs); err != nil {
		e.trained = false
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("indexing training documents: %w", err)
	}

	e.keywords = kw
	e.trained = true
	e.logger.Info("engine trained",
		zap.Int("examples", len(examples)),
		zap.Int("rules", e.rules.Len()),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// embedAll embeds texts in batches, with up to Workers batches in flight.
// Results land at fixed offsets, so the outcome is deterministic regardless
// of scheduling.
func (e *Engine) embedAll(ctx context.Context, examples []dataset.TrainingExample) ([][]float32, error) {
	vectors := make([][]float32, len(examples))

	type batch struct{ lo, hi int }
	var batches []batch
	for lo := 0; lo < len(examples); lo += e.config.BatchSize {
		hi := lo + e.config.BatchSize
		if hi > len(examples) {
			hi = len(examples)
		}
		batches = append(batches, batch{lo, hi})
	}

	sem := make(chan struct{}, e.config.Workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, b := range batches {
		mu.Lock()
		failed := firstErr != nil
		mu.Unlock()
		if failed {
			break
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(b batch) {
			defer wg.Done()
			defer func() { <-sem }()

			texts := make([]string, b.hi-b.lo)
			for i := b.lo; i < b.hi; i++ {
				texts[i-b.lo] = examples[i].Text
			}
			vecs, err := e.embedder.EmbedDocuments(ctx, texts)
			if err == nil && len(vecs) != len(texts) {
				err = fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(texts))
			}
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			for i, v := range vecs {
				vectors[b.lo+i] = v
			}
		}(b)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return vectors, nil
}

// Classify runs one query through the pipeline. The semantic stage degrading
// (embedder or index failure) is logged and the decision falls through to the
// keyword stage; only calling before Train is an error.
func (e *Engine) Classify(ctx context.Context, query string) (Result, error) {
	ctx, span := engineTracer.Start(ctx, "Engine.Classify")
	defer span.End()

	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.trained {
		return Result{}, ErrNotTrained
	}

	start := time.Now()
	normalized := norm.NFC.String(strings.TrimSpace(query))
	if normalized == "" {
		d := e.policy.Decide(fusion.Signals{})
		return e.finish(span, normalized, d, nil, start), nil
	}

	var signals fusion.Signals

	if m, ok := e.rules.Match(normalized); ok {
		signals.Pattern = &m
	}

	var neighbors []semantic.Neighbor
	if signals.Pattern == nil {
		vote, ns, err := e.matcher.Match(ctx, normalized)
		switch {
		case errors.Is(err, semantic.ErrNoNeighbors):
			// Empty index; keyword stage still applies.
		case err != nil:
			RecordDegradation("semantic")
			e.logger.Warn("semantic stage degraded", zap.Error(err))
		default:
			signals.Vote = &vote
			neighbors = ns
		}

		scores, err := e.keywords.Score(normalized)
		if err != nil {
			RecordDegradation("keyword")
			e.logger.Warn("keyword stage degraded", zap.Error(err))
		} else {
			signals.Keyword = scores
		}
	}

	d := e.policy.Decide(signals)
	return e.finish(span, normalized, d, neighbors, start), nil
}

func (e *Engine) finish(span trace.Span, query string, d fusion.Decision, neighbors []semantic.Neighbor, start time.Time) Result {
	ObserveDecision(string(d.Method), string(d.Category), time.Since(start))
	span.SetAttributes(
		attribute.String("category", string(d.Category)),
		attribute.String("method", string(d.Method)),
		attribute.Float64("confidence", d.Confidence),
	)
	e.logger.Debug("classified query",
		zap.String("category", string(d.Category)),
		zap.String("method", string(d.Method)),
		zap.Float64("confidence", d.Confidence),
	)
	return Result{
		Query:       query,
		Category:    d.Category,
		Confidence:  d.Confidence,
		Method:      d.Method,
		MatchedRule: d.MatchedRule,
		Neighbors:   neighbors,
	}
}

// Trained reports whether Train has completed successfully.
func (e *Engine) Trained() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.trained
}
