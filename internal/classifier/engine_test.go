package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fyrsmithlabs/intentd/internal/category"
	"github.com/fyrsmithlabs/intentd/internal/dataset"
	"github.com/fyrsmithlabs/intentd/internal/fusion"
	"github.com/fyrsmithlabs/intentd/internal/rules"
	"github.com/fyrsmithlabs/intentd/internal/vectorindex"
)

// mapEmbedder returns a fixed vector per known text and a far-away default
// for everything else. Queries fail on demand to exercise degradation.
type mapEmbedder struct {
	vecs     map[string][]float32
	failNext bool
	failDocs bool
}

var farAway = []float32{0, 0, 0, 1}

func (m *mapEmbedder) lookup(text string) []float32 {
	if v, ok := m.vecs[text]; ok {
		return v
	}
	return farAway
}

func (m *mapEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if m.failDocs {
		return nil, errors.New("onnx runtime crashed")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.lookup(t)
	}
	return out, nil
}

func (m *mapEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if m.failNext {
		return nil, errors.New("onnx runtime crashed")
	}
	return m.lookup(text), nil
}

// Training corpus: a status-check cluster around one direction and one
// greeting far from it.
func trainingSet() []dataset.TrainingExample {
	return []dataset.TrainingExample{
		{Row: 0, Text: "আমার আবেদনের অবস্থা কি", Category: category.NamjariStatusCheck},
		{Row: 1, Text: "আবেদন কতদূর এগোলো", Category: category.NamjariStatusCheck},
		{Row: 2, Text: "নামজারি আবেদনের খবর কি", Category: category.NamjariStatusCheck},
		{Row: 3, Text: "আবেদনের সর্বশেষ অবস্থা জানতে চাই", Category: category.NamjariStatusCheck},
		{Row: 4, Text: "স্ট্যাটাস জানান", Category: category.NamjariStatusCheck},
		{Row: 5, Text: "আসসালামু আলাইকুম", Category: category.Greetings},
		{Row: 6, Text: "খতিয়ান সংশোধন করতে চাই", Category: category.NamjariKhatianCorrection},
	}
}

func testVectors() map[string][]float32 {
	vecs := map[string][]float32{
		"আসসালামু আলাইকুম":                 {0, 1, 0, 0},
		"খতিয়ান সংশোধন করতে চাই":          {0, 0, 1, 0},
		"আমার আবেদনের অবস্থা কি":           {1, 0, 0, 0},
		"আবেদন কতদূর এগোলো":                {0.99, 0.05, 0, 0},
		"নামজারি আবেদনের খবর কি":           {0.98, 0.07, 0, 0},
		"আবেদনের সর্বশেষ অবস্থা জানতে চাই": {0.97, 0.09, 0, 0},
		"স্ট্যাটাস জানান":                  {0.96, 0.1, 0, 0},
		// A paraphrase near the status-check cluster.
		"আবেদনটা এখন কোন পর্যায়ে": {0.95, 0.12, 0, 0},
	}
	return vecs
}

func testRules(t *testing.T) *rules.RuleSet {
	t.Helper()
	rs, err := rules.NewRuleSet([]rules.Spec{
		{ID: "fee-direct", Pattern: `নামজারি.*কত টাকা`, Category: category.NamjariFee, Priority: 1},
		{ID: "appeal", Pattern: `আপিল`, Category: category.NamjariRejectedAppeal, Priority: 2},
		{ID: "goodbye", Pattern: `ধন্যবাদ`, Category: category.Goodbye, Priority: 2},
	}, []rules.AntiSpec{
		{Category: category.NamjariRejectedAppeal, Pattern: `ধন্যবাদ`},
	})
	require.NoError(t, err)
	return rs
}

func newTrainedEngine(t *testing.T, embedder *mapEmbedder) *Engine {
	t.Helper()
	index, err := vectorindex.NewChromemIndex(vectorindex.ChromemConfig{
		Collection: "test",
		VectorSize: 4,
	}, embedder, zaptest.NewLogger(t))
	require.NoError(t, err)

	engine, err := NewEngine(Config{K: 5, BatchSize: 2, Workers: 2}, testRules(t), embedder, index, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, engine.Train(context.Background(), trainingSet()))
	return engine
}

func TestClassifyPatternMatch(t *testing.T) {
	engine := newTrainedEngine(t, &mapEmbedder{vecs: testVectors()})

	result, err := engine.Classify(context.Background(), "নামজারি করতে কত টাকা লাগে?")
	require.NoError(t, err)

	assert.Equal(t, category.NamjariFee, result.Category)
	assert.Equal(t, fusion.MethodPattern, result.Method)
	assert.Equal(t, 0.90, result.Confidence)
	assert.Equal(t, "fee-direct", result.MatchedRule)
	assert.Empty(t, result.Neighbors)
}

func TestClassifySemanticParaphrase(t *testing.T) {
	engine := newTrainedEngine(t, &mapEmbedder{vecs: testVectors()})

	result, err := engine.Classify(context.Background(), "আবেদনটা এখন কোন পর্যায়ে")
	require.NoError(t, err)

	assert.Equal(t, category.NamjariStatusCheck, result.Category)
	assert.Equal(t, fusion.MethodSemantic, result.Method)
	assert.GreaterOrEqual(t, result.Confidence, 0.55)
	assert.NotEmpty(t, result.Neighbors)
	for _, n := range result.Neighbors {
		assert.Equal(t, category.NamjariStatusCheck, n.Category)
	}
}

func TestClassifyKeywordFallback(t *testing.T) {
	// The query embeds far from every training vector, but shares tokens
	// with the khatian-correction example.
	engine := newTrainedEngine(t, &mapEmbedder{vecs: testVectors()})

	result, err := engine.Classify(context.Background(), "খতিয়ান সংশোধন")
	require.NoError(t, err)

	assert.Equal(t, category.NamjariKhatianCorrection, result.Category)
	assert.Equal(t, fusion.MethodKeyword, result.Method)
}

func TestClassifyGibberishDefaultsToIrrelevant(t *testing.T) {
	engine := newTrainedEngine(t, &mapEmbedder{vecs: testVectors()})

	result, err := engine.Classify(context.Background(), "xyzzy plugh quux")
	require.NoError(t, err)

	assert.Equal(t, category.Irrelevant, result.Category)
	assert.Equal(t, fusion.MethodFallbackDefault, result.Method)
	assert.Equal(t, 0.20, result.Confidence)
}

func TestClassifyAntiPatternVeto(t *testing.T) {
	engine := newTrainedEngine(t, &mapEmbedder{vecs: testVectors()})

	// "আপিল" alone matches the appeal rule.
	result, err := engine.Classify(context.Background(), "আপিল করব")
	require.NoError(t, err)
	assert.Equal(t, category.NamjariRejectedAppeal, result.Category)

	// With "ধন্যবাদ" present the appeal match is vetoed and the goodbye
	// rule fires instead.
	result, err = engine.Classify(context.Background(), "আপিল হয়ে গেছে, ধন্যবাদ")
	require.NoError(t, err)
	assert.Equal(t, category.Goodbye, result.Category)
	assert.Equal(t, fusion.MethodPattern, result.Method)
}

func TestClassifyEmptyQuery(t *testing.T) {
	embedder := &mapEmbedder{vecs: testVectors()}
	engine := newTrainedEngine(t, embedder)

	// Stage invocations would fail loudly if attempted.
	embedder.failNext = true

	result, err := engine.Classify(context.Background(), "   \t  ")
	require.NoError(t, err)
	assert.Equal(t, category.Irrelevant, result.Category)
	assert.Equal(t, fusion.MethodFallbackDefault, result.Method)
}

func TestClassifySemanticDegradation(t *testing.T) {
	embedder := &mapEmbedder{vecs: testVectors()}
	engine := newTrainedEngine(t, embedder)

	// Embedding the query fails; the keyword stage still resolves it.
	embedder.failNext = true

	result, err := engine.Classify(context.Background(), "খতিয়ান সংশোধন")
	require.NoError(t, err)
	assert.Equal(t, category.NamjariKhatianCorrection, result.Category)
	assert.Equal(t, fusion.MethodKeyword, result.Method)
}

func TestClassifyBeforeTrain(t *testing.T) {
	embedder := &mapEmbedder{vecs: testVectors()}
	index, err := vectorindex.NewChromemIndex(vectorindex.ChromemConfig{
		Collection: "test",
		VectorSize: 4,
	}, embedder, zaptest.NewLogger(t))
	require.NoError(t, err)

	engine, err := NewEngine(Config{}, testRules(t), embedder, index, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = engine.Classify(context.Background(), "কিছু একটা")
	assert.ErrorIs(t, err, ErrNotTrained)
}

func TestTrainEmpty(t *testing.T) {
	embedder := &mapEmbedder{vecs: testVectors()}
	index, err := vectorindex.NewChromemIndex(vectorindex.ChromemConfig{
		Collection: "test",
		VectorSize: 4,
	}, embedder, zaptest.NewLogger(t))
	require.NoError(t, err)

	engine, err := NewEngine(Config{}, testRules(t), embedder, index, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.ErrorIs(t, engine.Train(context.Background(), nil), ErrNoTrainingData)
	assert.False(t, engine.Trained())
}

func TestRetrainReplacesIndex(t *testing.T) {
	embedder := &mapEmbedder{vecs: testVectors()}
	engine := newTrainedEngine(t, embedder)

	// Retrain with only the greeting; the status cluster must be gone.
	require.NoError(t, engine.Train(context.Background(), []dataset.TrainingExample{
		{Row: 0, Text: "আসসালামু আলাইকুম", Category: category.Greetings},
	}))

	n, err := engine.index.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	result, err := engine.Classify(context.Background(), "আবেদনটা এখন কোন পর্যায়ে")
	require.NoError(t, err)
	assert.NotEqual(t, fusion.MethodSemantic, result.Method)
}

func TestFailedRetrainKeepsPreviousState(t *testing.T) {
	embedder := &mapEmbedder{vecs: testVectors()}
	engine := newTrainedEngine(t, embedder)

	// A retrain that dies at the embedding stage must not leak any of the
	// aborted corpus into the serving state.
	embedder.failDocs = true
	err := engine.Train(context.Background(), []dataset.TrainingExample{
		{Row: 0, Text: "নতুন ভিন্ন শব্দগুচ্ছ", Category: category.Greetings},
	})
	require.Error(t, err)
	embedder.failDocs = false

	assert.True(t, engine.Trained())

	n, err := engine.index.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(trainingSet()), n)

	// A query that only the aborted corpus could keyword-match falls
	// through to the default.
	result, err := engine.Classify(context.Background(), "নতুন ভিন্ন শব্দগুচ্ছ")
	require.NoError(t, err)
	assert.NotEqual(t, category.Greetings, result.Category)
	assert.Equal(t, fusion.MethodFallbackDefault, result.Method)

	// The previous corpus keeps serving through the old keyword space.
	result, err = engine.Classify(context.Background(), "খতিয়ান সংশোধন")
	require.NoError(t, err)
	assert.Equal(t, category.NamjariKhatianCorrection, result.Category)
	assert.Equal(t, fusion.MethodKeyword, result.Method)
}

func TestClassifyConcurrent(t *testing.T) {
	engine := newTrainedEngine(t, &mapEmbedder{vecs: testVectors()})

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := engine.Classify(context.Background(), "আবেদনটা এখন কোন পর্যায়ে")
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		assert.NoError(t, <-done)
	}
}
