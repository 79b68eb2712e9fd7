package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/intentd/internal/dataset"
)

var evaluateJSON bool

// evaluateCmd runs the classifier against a labeled evaluation dataset
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate classifier accuracy against a labeled dataset",
	Long: `Train the classifier on the configured training dataset and run it
against the configured evaluation dataset, reporting accuracy, average
confidence, the per-method decision breakdown and every misclassified
query.

Examples:
  # Evaluate with datasets from the config file
  intentd evaluate --config intentd.yaml

  # Emit the report as JSON
  intentd evaluate --json`,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().BoolVar(&evaluateJSON, "json", false, "emit the report as JSON")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if a.cfg.Dataset.Eval == "" {
		return fmt.Errorf("dataset.eval is not configured")
	}

	ctx := cmd.Context()
	if err := a.train(ctx); err != nil {
		return err
	}

	examples, err := dataset.LoadEval(a.cfg.Dataset.Eval)
	if err != nil {
		return fmt.Errorf("failed to load eval data: %w", err)
	}

	report, err := a.engine.Evaluate(ctx, examples)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	if evaluateJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return report.Write(cmd.OutOrStdout())
}
