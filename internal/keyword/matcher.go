// Package keyword provides a TF-IDF fallback matcher for queries neither the
// rule table nor the semantic vote could resolve.
package keyword

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/fyrsmithlabs/intentd/internal/category"
)

var (
	// ErrNotFitted indicates Match was called before Fit.
	ErrNotFitted = errors.New("matcher not fitted")

	// ErrEmptyCorpus indicates Fit received no examples.
	ErrEmptyCorpus = errors.New("empty training corpus")
)

// Example is one training text for fitting the matcher.
type Example struct {
	ID       string
	Text     string
	Category category.Category
}

// Match is a keyword-fallback result. Similarity is cosine similarity in
// TF-IDF space against the best-matching training example of the category.
type Match struct {
	Category   category.Category
	Similarity float64
	ExampleID  string
}

// sparse is an L2-normalized sparse TF-IDF vector keyed by vocabulary index.
type sparse map[int]float64

// Matcher scores queries against the training corpus in TF-IDF space.
// The vocabulary is frozen at Fit time; query terms outside it are dropped.
type Matcher struct {
	vocab   map[string]int
	idf     []float64
	vectors []sparse
	ids     []string
	cats    []category.Category
}

// NewMatcher creates an unfitted Matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Fitted reports whether Fit has run.
func (m *Matcher) Fitted() bool {
	return m.vocab != nil
}

// Fit builds the vocabulary and per-example TF-IDF vectors. Terms are
// unigrams and bigrams of the tokenized text. Calling Fit again replaces the
// previous state entirely.
func (m *Matcher) Fit(examples []Example) error {
	if len(examples) == 0 {
		return ErrEmptyCorpus
	}

	termLists := make([][]string, len(examples))
	vocab := make(map[string]int)
	df := []int{}
	for i, ex := range examples {
		if !category.Known(string(ex.Category)) {
			return fmt.Errorf("%w: example %s", category.ErrUnknownCategory, ex.ID)
		}
		terms := ngrams(tokenize(ex.Text))
		termLists[i] = terms

		seen := make(map[int]bool, len(terms))
		for _, t := range terms {
			idx, ok := vocab[t]
			if !ok {
				idx = len(vocab)
				vocab[t] = idx
				df = append(df, 0)
			}
			if !seen[idx] {
				df[idx]++
				seen[idx] = true
			}
		}
	}

	// Smoothed idf, so terms present in every document still carry a
	// little weight.
	n := float64(len(examples))
	idf := make([]float64, len(df))
	for i, d := range df {
		idf[i] = math.Log((1+n)/(1+float64(d))) + 1
	}

	vectors := make([]sparse, len(examples))
	ids := make([]string, len(examples))
	cats := make([]category.Category, len(examples))
	for i, ex := range examples {
		vectors[i] = vectorize(termLists[i], vocab, idf)
		ids[i] = ex.ID
		cats[i] = ex.Category
	}

	m.vocab = vocab
	m.idf = idf
	m.vectors = vectors
	m.ids = ids
	m.cats = cats
	return nil
}

// CategoryScore is one category's best-matching example similarity.
type CategoryScore struct {
	Category   category.Category
	Similarity float64
	ExampleID  string
}

// Score scores text against every training example and aggregates per
// category by its best-matching example. Results come back sorted by
// descending similarity, ties broken by earlier training example. Categories
// with no overlap are omitted; an empty slice means nothing in the query
// overlaps the vocabulary.
func (m *Matcher) Score(text string) ([]CategoryScore, error) {
	if !m.Fitted() {
		return nil, ErrNotFitted
	}

	query := vectorize(ngrams(tokenize(text)), m.vocab, m.idf)
	if len(query) == 0 {
		return nil, nil
	}

	best := make(map[category.Category]int)
	bestSim := make(map[category.Category]float64)
	for i, vec := range m.vectors {
		sim := dot(query, vec)
		if sim <= 0 {
			continue
		}
		cat := m.cats[i]
		if prev, ok := bestSim[cat]; !ok || sim > prev {
			bestSim[cat] = sim
			best[cat] = i
		}
	}

	scores := make([]CategoryScore, 0, len(bestSim))
	for cat, idx := range best {
		scores = append(scores, CategoryScore{
			Category:   cat,
			Similarity: bestSim[cat],
			ExampleID:  m.ids[idx],
		})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Similarity != scores[j].Similarity {
			return scores[i].Similarity > scores[j].Similarity
		}
		return best[scores[i].Category] < best[scores[j].Category]
	})
	return scores, nil
}

// Match returns the single best CategoryScore. The boolean is false when
// nothing overlaps the vocabulary at all.
func (m *Matcher) Match(text string) (Match, bool, error) {
	scores, err := m.Score(text)
	if err != nil {
		return Match{}, false, err
	}
	if len(scores) == 0 {
		return Match{}, false, nil
	}
	return Match{
		Category:   scores[0].Category,
		Similarity: scores[0].Similarity,
		ExampleID:  scores[0].ExampleID,
	}, true, nil
}

// tokenize splits text into lowercase terms. Splitting on anything that is
// not a letter or digit keeps Bengali script intact while stripping
// punctuation, danda marks included.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// ngrams returns unigrams plus adjacent bigrams joined by a space.
func ngrams(tokens []string) []string {
	terms := make([]string, 0, 2*len(tokens))
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}

// vectorize builds an L2-normalized TF-IDF vector. Terms outside the
// vocabulary are dropped.
func vectorize(terms []string, vocab map[string]int, idf []float64) sparse {
	vec := make(sparse)
	for _, t := range terms {
		if idx, ok := vocab[t]; ok {
			vec[idx]++
		}
	}
	var norm float64
	for idx := range vec {
		vec[idx] *= idf[idx]
		norm += vec[idx] * vec[idx]
	}
	if norm == 0 {
		return sparse{}
	}
	norm = math.Sqrt(norm)
	for idx := range vec {
		vec[idx] /= norm
	}
	return vec
}

// dot computes the dot product of two normalized sparse vectors, which is
// their cosine similarity.
func dot(a, b sparse) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for idx, v := range a {
		sum += v * b[idx]
	}
	return sum
}
