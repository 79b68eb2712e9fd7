package classifier

import (
	"context"
	"fmt"
	"io"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/intentd/internal/category"
	"github.com/fyrsmithlabs/intentd/internal/dataset"
	"github.com/fyrsmithlabs/intentd/internal/fusion"
)

// Failure is one misclassified evaluation example.
type Failure struct {
	Row        int               `json:"row"`
	Query      string            `json:"query"`
	Expected   category.Category `json:"expected"`
	Predicted  category.Category `json:"predicted"`
	Method     fusion.Method     `json:"method"`
	Confidence float64           `json:"confidence"`
}

// ItemError is an evaluation example the engine failed to classify at all.
type ItemError struct {
	Row   int    `json:"row"`
	Query string `json:"query"`
	Err   string `json:"error"`
}

// Report aggregates an evaluation run.
type Report struct {
	Total         int                   `json:"total"`
	Correct       int                   `json:"correct"`
	Accuracy      float64               `json:"accuracy"`
	AvgConfidence float64               `json:"avg_confidence"`
	Methods       map[fusion.Method]int `json:"methods"`
	Failures      []Failure             `json:"failures"`
	Errors        []ItemError           `json:"errors,omitempty"`
}

// Evaluate classifies every evaluation example and aggregates accuracy,
// method distribution, and the misclassification list. Per-item failures are
// recorded; the run itself never aborts early.
func (e *Engine) Evaluate(ctx context.Context, examples []dataset.EvalExample) (Report, error) {
	ctx, span := engineTracer.Start(ctx, "Engine.Evaluate")
	defer span.End()
	span.SetAttributes(attribute.Int("example_count", len(examples)))

	if !e.Trained() {
		return Report{}, ErrNotTrained
	}

	report := Report{
		Total:   len(examples),
		Methods: make(map[fusion.Method]int),
	}

	var confidenceSum float64
	for _, ex := range examples {
		result, err := e.Classify(ctx, ex.Text)
		if err != nil {
			report.Errors = append(report.Errors, ItemError{Row: ex.Row, Query: ex.Text, Err: err.Error()})
			continue
		}

		report.Methods[result.Method]++
		confidenceSum += result.Confidence

		if result.Category == ex.Expected {
			report.Correct++
			continue
		}
		report.Failures = append(report.Failures, Failure{
			Row:        ex.Row,
			Query:      ex.Text,
			Expected:   ex.Expected,
			Predicted:  result.Category,
			Method:     result.Method,
			Confidence: result.Confidence,
		})
	}

	classified := report.Total - len(report.Errors)
	if classified > 0 {
		report.Accuracy = float64(report.Correct) / float64(classified)
		report.AvgConfidence = confidenceSum / float64(classified)
	}

	e.logger.Info("evaluation complete",
		zap.Int("total", report.Total),
		zap.Int("correct", report.Correct),
		zap.Float64("accuracy", report.Accuracy),
		zap.Int("errors", len(report.Errors)),
	)
	return report, nil
}

// Write renders the report as a plain-text summary.
func (r Report) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Evaluated %d queries: %d correct (%.1f%% accuracy), avg confidence %.2f\n",
		r.Total, r.Correct, 100*r.Accuracy, r.AvgConfidence); err != nil {
		return err
	}

	methods := make([]fusion.Method, 0, len(r.Methods))
	for m := range r.Methods {
		methods = append(methods, m)
	}
	sort.Slice(methods, func(i, j int) bool { return methods[i] < methods[j] })
	for _, m := range methods {
		if _, err := fmt.Fprintf(w, "  %-17s %d\n", m, r.Methods[m]); err != nil {
			return err
		}
	}

	if len(r.Failures) > 0 {
		if _, err := fmt.Fprintf(w, "Misclassified (%d):\n", len(r.Failures)); err != nil {
			return err
		}
		for _, f := range r.Failures {
			if _, err := fmt.Fprintf(w, "  row %d: %q expected %s, got %s (%s, %.2f)\n",
				f.Row, f.Query, f.Expected, f.Predicted, f.Method, f.Confidence); err != nil {
				return err
			}
		}
	}

	for _, e := range r.Errors {
		if _, err := fmt.Fprintf(w, "  row %d errored: %s\n", e.Row, e.Err); err != nil {
			return err
		}
	}
	return nil
}
