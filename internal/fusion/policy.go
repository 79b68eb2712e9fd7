// Package fusion combines the pattern, semantic, and keyword signals into one
// final category and confidence.
package fusion

import (
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/intentd/internal/category"
	"github.com/fyrsmithlabs/intentd/internal/keyword"
	"github.com/fyrsmithlabs/intentd/internal/rules"
	"github.com/fyrsmithlabs/intentd/internal/semantic"
)

// ErrInvalidConfig indicates invalid policy configuration.
var ErrInvalidConfig = errors.New("invalid configuration")

// Method identifies which signal produced the final decision.
type Method string

const (
	MethodPattern         Method = "pattern"
	MethodSemantic        Method = "semantic"
	MethodKeyword         Method = "keyword"
	MethodFallbackDefault Method = "fallback_default"
)

// Config holds the tunable fusion constants. Zero values take defaults, so a
// literal Config{} is a usable production policy.
type Config struct {
	// PatternConfidence is the fixed confidence for pattern matches.
	// Patterns are treated as ground truth for the phrasings they cover.
	// Default: 0.90
	PatternConfidence float64

	// SemanticThreshold is the minimum top-1 similarity for accepting the
	// semantic vote. A similarity exactly at the threshold is accepted.
	// Default: 0.55
	SemanticThreshold float64

	// Boost scales how far neighbor agreement pushes semantic confidence
	// toward 1.0. Default: 0.30
	Boost float64

	// KeywordThreshold is the minimum TF-IDF similarity for accepting the
	// keyword fallback. Default: 0.25
	KeywordThreshold float64

	// KeywordMarginWeight shapes keyword confidence by the margin between
	// the best and second-best category scores: an ambiguous best match
	// earns less confidence than an uncontested one. Default: 0.25
	KeywordMarginWeight float64

	// DefaultConfidence is the fixed low confidence of the fallback
	// default. Default: 0.20
	DefaultConfidence float64
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.PatternConfidence == 0 {
		c.PatternConfidence = 0.90
	}
	if c.SemanticThreshold == 0 {
		c.SemanticThreshold = 0.55
	}
	if c.Boost == 0 {
		c.Boost = 0.30
	}
	if c.KeywordThreshold == 0 {
		c.KeywordThreshold = 0.25
	}
	if c.KeywordMarginWeight == 0 {
		c.KeywordMarginWeight = 0.25
	}
	if c.DefaultConfidence == 0 {
		c.DefaultConfidence = 0.20
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	for name, v := range map[string]float64{
		"pattern_confidence":    c.PatternConfidence,
		"semantic_threshold":    c.SemanticThreshold,
		"boost":                 c.Boost,
		"keyword_threshold":     c.KeywordThreshold,
		"keyword_margin_weight": c.KeywordMarginWeight,
		"default_confidence":    c.DefaultConfidence,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s must be in [0,1], got %v", ErrInvalidConfig, name, v)
		}
	}
	return nil
}

// Decision is the fused outcome.
type Decision struct {
	Category   category.Category
	Confidence float64
	Method     Method

	// MatchedRule is set when Method is pattern.
	MatchedRule string

	// ExampleID is set when Method is keyword.
	ExampleID string
}

// Signals carries the per-stage outputs. A nil pointer means the stage did
// not produce a usable signal (no match, degraded, or skipped).
type Signals struct {
	Pattern *rules.Match
	Vote    *semantic.Vote
	Keyword []keyword.CategoryScore
}

// Policy applies the fixed priority order over the three signals.
type Policy struct {
	config Config
}

// NewPolicy creates a Policy with the given constants.
func NewPolicy(config Config) (*Policy, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &Policy{config: config}, nil
}

// Config returns the effective (defaulted) configuration.
func (p *Policy) Config() Config {
	return p.config
}

// Decide fuses the signals in strict order: pattern, then semantic if its
// top-1 similarity reaches the threshold, then keyword if its best score
// reaches the keyword threshold, then the irrelevant default.
func (p *Policy) Decide(s Signals) Decision {
	if s.Pattern != nil {
		return Decision{
			Category:    s.Pattern.Category,
			Confidence:  p.config.PatternConfidence,
			Method:      MethodPattern,
			MatchedRule: s.Pattern.RuleID,
		}
	}

	if s.Vote != nil && float64(s.Vote.Top1) >= p.config.SemanticThreshold {
		return Decision{
			Category:   s.Vote.Category,
			Confidence: p.semanticConfidence(*s.Vote),
			Method:     MethodSemantic,
		}
	}

	if len(s.Keyword) > 0 && s.Keyword[0].Similarity >= p.config.KeywordThreshold {
		return Decision{
			Category:   s.Keyword[0].Category,
			Confidence: p.keywordConfidence(s.Keyword),
			Method:     MethodKeyword,
			ExampleID:  s.Keyword[0].ExampleID,
		}
	}

	return Decision{
		Category:   category.Default,
		Confidence: p.config.DefaultConfidence,
		Method:     MethodFallbackDefault,
	}
}

// semanticConfidence maps the vote to [0,1]. The base is the top-1 cosine
// similarity normalized from [-1,1], then boosted toward 1.0 as more of the
// K neighbors agree on the winning category:
//
//	conf = base + (1-base) * boost * (agree-1)/(k-1)
//
// which is monotonically non-decreasing in the agreement count.
func (p *Policy) semanticConfidence(v semantic.Vote) float64 {
	base := clamp01((float64(v.Top1) + 1) / 2)
	if v.K <= 1 {
		return base
	}
	agreement := float64(v.Agreement-1) / float64(v.K-1)
	return clamp01(base + (1-base)*p.config.Boost*agreement)
}

// keywordConfidence shapes the best score by its margin over the runner-up
// category. With no runner-up the full margin weight applies.
func (p *Policy) keywordConfidence(scores []keyword.CategoryScore) float64 {
	best := scores[0].Similarity
	margin := best
	if len(scores) > 1 {
		margin = best - scores[1].Similarity
	}
	return clamp01(best + p.config.KeywordMarginWeight*margin)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
