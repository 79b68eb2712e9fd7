package keyword

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/intentd/internal/category"
)

func fittedMatcher(t *testing.T) *Matcher {
	t.Helper()
	m := NewMatcher()
	err := m.Fit([]Example{
		{ID: "row-0", Text: "নামজারি করতে কত টাকা লাগে", Category: category.NamjariFee},
		{ID: "row-1", Text: "নামজারির ফি কত", Category: category.NamjariFee},
		{ID: "row-2", Text: "নামজারি আবেদন কিভাবে করব", Category: category.NamjariApplicationProcedure},
		{ID: "row-3", Text: "আসসালামু আলাইকুম", Category: category.Greetings},
	})
	require.NoError(t, err)
	return m
}

func TestMatchPicksBestExamplePerCategory(t *testing.T) {
	m := fittedMatcher(t)

	match, ok, err := m.Match("নামজারি করতে কত টাকা")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, category.NamjariFee, match.Category)
	assert.Equal(t, "row-0", match.ExampleID)
	assert.Greater(t, match.Similarity, 0.5)
}

func TestMatchExactTextScoresOne(t *testing.T) {
	m := fittedMatcher(t)

	match, ok, err := m.Match("আসসালামু আলাইকুম")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, category.Greetings, match.Category)
	assert.InDelta(t, 1.0, match.Similarity, 1e-9)
}

func TestMatchOutOfVocabulary(t *testing.T) {
	m := fittedMatcher(t)

	_, ok, err := m.Match("weather forecast today")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScoreSortedDescending(t *testing.T) {
	m := fittedMatcher(t)

	scores, err := m.Score("নামজারি আবেদন কত টাকা")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(scores), 2)
	for i := 1; i < len(scores); i++ {
		assert.GreaterOrEqual(t, scores[i-1].Similarity, scores[i].Similarity)
	}
	// One entry per category at most.
	seen := map[category.Category]bool{}
	for _, s := range scores {
		assert.False(t, seen[s.Category])
		seen[s.Category] = true
	}
}

func TestMatchBeforeFit(t *testing.T) {
	_, _, err := NewMatcher().Match("anything")
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestFitEmptyCorpus(t *testing.T) {
	assert.ErrorIs(t, NewMatcher().Fit(nil), ErrEmptyCorpus)
}

func TestFitRejectsUnknownCategory(t *testing.T) {
	err := NewMatcher().Fit([]Example{
		{ID: "row-0", Text: "hello", Category: category.Category("weather")},
	})
	assert.ErrorIs(t, err, category.ErrUnknownCategory)
}

func TestRefitReplacesState(t *testing.T) {
	m := fittedMatcher(t)
	require.NoError(t, m.Fit([]Example{
		{ID: "row-0", Text: "বিদায় ভালো থাকবেন", Category: category.Goodbye},
	}))

	// Old vocabulary is gone after refit.
	_, ok, err := m.Match("নামজারি ফি")
	require.NoError(t, err)
	assert.False(t, ok)

	match, ok, err := m.Match("বিদায়")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, category.Goodbye, match.Category)
}

func TestBigramsDisambiguate(t *testing.T) {
	m := NewMatcher()
	require.NoError(t, m.Fit([]Example{
		{ID: "row-0", Text: "khatian copy download", Category: category.NamjariKhatianCopy},
		{ID: "row-1", Text: "khatian correction application", Category: category.NamjariKhatianCorrection},
	}))

	match, ok, err := m.Match("how to download khatian copy")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, category.NamjariKhatianCopy, match.Category)
}

func TestTokenizeBengali(t *testing.T) {
	tokens := tokenize("নামজারি, করতে। কত টাকা?")
	assert.Equal(t, []string{"নামজারি", "করতে", "কত", "টাকা"}, tokens)
}
