package classifier

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fyrsmithlabs/intentd/internal/category"
	"github.com/fyrsmithlabs/intentd/internal/dataset"
	"github.com/fyrsmithlabs/intentd/internal/fusion"
	"github.com/fyrsmithlabs/intentd/internal/vectorindex"
)

func newTestIndexForEval(t *testing.T, embedder *mapEmbedder) *vectorindex.ChromemIndex {
	t.Helper()
	index, err := vectorindex.NewChromemIndex(vectorindex.ChromemConfig{
		Collection: "test",
		VectorSize: 4,
	}, embedder, zaptest.NewLogger(t))
	require.NoError(t, err)
	return index
}

func TestEvaluateMixedOutcomes(t *testing.T) {
	engine := newTrainedEngine(t, &mapEmbedder{vecs: testVectors()})

	report, err := engine.Evaluate(context.Background(), []dataset.EvalExample{
		{Row: 0, Text: "নামজারি করতে কত টাকা লাগে?", Expected: category.NamjariFee},
		{Row: 1, Text: "আবেদনটা এখন কোন পর্যায়ে", Expected: category.NamjariStatusCheck},
		// Expected label deliberately wrong, so this lands in Failures.
		{Row: 2, Text: "আবেদনটা এখন কোন পর্যায়ে", Expected: category.Greetings},
		{Row: 3, Text: "xyzzy plugh", Expected: category.Irrelevant},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 3, report.Correct)
	assert.InDelta(t, 0.75, report.Accuracy, 1e-9)
	assert.Greater(t, report.AvgConfidence, 0.0)

	assert.Equal(t, 1, report.Methods[fusion.MethodPattern])
	assert.Equal(t, 2, report.Methods[fusion.MethodSemantic])
	assert.Equal(t, 1, report.Methods[fusion.MethodFallbackDefault])

	require.Len(t, report.Failures, 1)
	f := report.Failures[0]
	assert.Equal(t, 2, f.Row)
	assert.Equal(t, category.Greetings, f.Expected)
	assert.Equal(t, category.NamjariStatusCheck, f.Predicted)
	assert.Empty(t, report.Errors)
}

func TestEvaluateBeforeTrain(t *testing.T) {
	embedder := &mapEmbedder{vecs: testVectors()}
	index := newTestIndexForEval(t, embedder)

	engine, err := NewEngine(Config{}, testRules(t), embedder, index, nil)
	require.NoError(t, err)

	_, err = engine.Evaluate(context.Background(), []dataset.EvalExample{{Text: "x", Expected: category.Irrelevant}})
	assert.ErrorIs(t, err, ErrNotTrained)
}

func TestReportWrite(t *testing.T) {
	report := Report{
		Total:         2,
		Correct:       1,
		Accuracy:      0.5,
		AvgConfidence: 0.7,
		Methods:       map[fusion.Method]int{fusion.MethodPattern: 1, fusion.MethodKeyword: 1},
		Failures: []Failure{{
			Row:       4,
			Query:     "নামজারি",
			Expected:  category.NamjariFee,
			Predicted: category.Irrelevant,
			Method:    fusion.MethodKeyword,
		}},
	}

	var sb strings.Builder
	require.NoError(t, report.Write(&sb))
	out := sb.String()

	assert.Contains(t, out, "50.0% accuracy")
	assert.Contains(t, out, "pattern")
	assert.Contains(t, out, "row 4")
	assert.Contains(t, out, "namjari_fee")
}
