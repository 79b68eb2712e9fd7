package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// classifyCmd classifies a single query or queries from stdin
var classifyCmd = &cobra.Command{
	Use:   "classify [query]",
	Short: "Classify a Bengali query into an intent category",
	Long: `Classify a Bengali namjari query into an intent category.

The classifier trains on the configured training dataset first, then
classifies the query given as an argument, or reads one query per line
from stdin when no argument is given.

Examples:
  # Classify a single query
  intentd classify "নামজারি করতে কত টাকা লাগে?"

  # Classify queries line by line from a file
  cat queries.txt | intentd classify`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	if err := a.train(ctx); err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)

	if len(args) == 1 {
		result, err := a.engine.Classify(ctx, args[0])
		if err != nil {
			return fmt.Errorf("classification failed: %w", err)
		}
		return enc.Encode(result)
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		result, err := a.engine.Classify(ctx, query)
		if err != nil {
			return fmt.Errorf("classification failed: %w", err)
		}
		if err := enc.Encode(result); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	return nil
}
