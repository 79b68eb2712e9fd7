// Package semantic matches queries against indexed training examples by
// embedding nearest-neighbor vote.
package semantic

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/intentd/internal/category"
	"github.com/fyrsmithlabs/intentd/internal/vectorindex"
)

var matcherTracer = otel.Tracer("intentd.semantic")

var (
	// ErrInvalidConfig indicates invalid matcher configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNoNeighbors indicates the index returned no candidates, typically
	// because it is empty.
	ErrNoNeighbors = errors.New("no neighbors returned")
)

// Neighbor is one retrieved training example.
type Neighbor struct {
	ID         string
	Category   category.Category
	Similarity float32
	Content    string
}

// Vote is the outcome of a weighted majority vote over neighbors.
type Vote struct {
	// Category is the winning label.
	Category category.Category

	// Top1 is the similarity of the single nearest neighbor, regardless of
	// which category won the vote.
	Top1 float32

	// Agreement is how many of the K neighbors carry the winning label.
	Agreement int

	// K is the number of neighbors that voted.
	K int
}

// Config holds configuration for the Matcher.
type Config struct {
	// K is the number of neighbors to retrieve per query. Default: 5
	K int
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.K == 0 {
		c.K = 5
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.K < 1 {
		return fmt.Errorf("%w: k must be at least 1", ErrInvalidConfig)
	}
	return nil
}

// Matcher embeds a query and votes over its nearest indexed neighbors.
type Matcher struct {
	embedder vectorindex.Embedder
	index    vectorindex.Index
	config   Config
	logger   *zap.Logger
}

// NewMatcher creates a Matcher over the given embedder and index.
func NewMatcher(config Config, embedder vectorindex.Embedder, index vectorindex.Index, logger *zap.Logger) (*Matcher, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
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
	return &Matcher{embedder: embedder, index: index, config: config, logger: logger}, nil
}

// K returns the configured neighbor count.
func (m *Matcher) K() int {
	return m.config.K
}

// Query embeds text and returns its nearest neighbors, most similar first.
// Neighbors whose category label is unknown are dropped with a warning; equal
// similarities are ordered by ID so results are deterministic.
func (m *Matcher) Query(ctx context.Context, text string) ([]Neighbor, error) {
	ctx, span := matcherTracer.Start(ctx, "Matcher.Query")
	defer span.End()
	span.SetAttributes(attribute.Int("k", m.config.K))

	vector, err := m.embedder.EmbedQuery(ctx, text)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := m.index.Search(ctx, vector, m.config.K)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("searching index: %w", err)
	}

	neighbors := make([]Neighbor, 0, len(results))
	for _, r := range results {
		cat, err := category.Parse(r.Metadata["category"])
		if err != nil {
			m.logger.Warn("dropping neighbor with unknown category",
				zap.String("id", r.ID),
				zap.String("category", r.Metadata["category"]),
			)
			continue
		}
		neighbors = append(neighbors, Neighbor{
			ID:         r.ID,
			Category:   cat,
			Similarity: r.Similarity,
			Content:    r.Content,
		})
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		if neighbors[i].Similarity != neighbors[j].Similarity {
			return neighbors[i].Similarity > neighbors[j].Similarity
		}
		return neighbors[i].ID < neighbors[j].ID
	})
	span.SetAttributes(attribute.Int("neighbor_count", len(neighbors)))
	return neighbors, nil
}

// Tally runs a similarity-weighted majority vote over neighbors. Each
// neighbor contributes its similarity as vote weight; ties between categories
// go to the one whose best neighbor ranks earliest.
func Tally(neighbors []Neighbor) (Vote, error) {
	if len(neighbors) == 0 {
		return Vote{}, ErrNoNeighbors
	}

	weights := make(map[category.Category]float32)
	counts := make(map[category.Category]int)
	bestRank := make(map[category.Category]int)
	for rank, n := range neighbors {
		weights[n.Category] += n.Similarity
		counts[n.Category]++
		if _, seen := bestRank[n.Category]; !seen {
			bestRank[n.Category] = rank
		}
	}

	winner := neighbors[0].Category
	for cat := range weights {
		if cat == winner {
			continue
		}
		switch {
		case weights[cat] > weights[winner]:
			winner = cat
		case weights[cat] == weights[winner] && bestRank[cat] < bestRank[winner]:
			winner = cat
		}
	}

	return Vote{
		Category:  winner,
		Top1:      neighbors[0].Similarity,
		Agreement: counts[winner],
		K:         len(neighbors),
	}, nil
}

// Match embeds, retrieves, and votes in one call.
func (m *Matcher) Match(ctx context.Context, text string) (Vote, []Neighbor, error) {
	neighbors, err := m.Query(ctx, text)
	if err != nil {
		return Vote{}, nil, err
	}
	vote, err := Tally(neighbors)
	if err != nil {
		return Vote{}, neighbors, err
	}
	return vote, neighbors, nil
}
