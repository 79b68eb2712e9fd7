// Package dataset loads and validates the tabular training and evaluation
// datasets consumed by the classifier.
//
// Rows are validated at load time: an empty question or a label outside the
// closed category set fails the whole load rather than silently leaking into
// training.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fyrsmithlabs/intentd/internal/category"
)

// Sentinel errors for dataset loading.
var (
	// ErrMissingColumn indicates a required CSV header column is absent.
	ErrMissingColumn = errors.New("missing required column")

	// ErrEmptyText indicates a row with an empty question text.
	ErrEmptyText = errors.New("empty question text")

	// ErrEmptyDataset indicates a dataset with no data rows.
	ErrEmptyDataset = errors.New("dataset contains no rows")
)

// TrainingExample is one labeled question from the training corpus.
// The set is constructed once at training time and read-only afterward.
type TrainingExample struct {
	// Row is the zero-based dataset row index. It is the stable identity of
	// the example and the deterministic tie-breaker for equal similarities.
	Row int

	// Text is the question text. Never empty.
	Text string

	// Category is the intent label, drawn from the closed set.
	Category category.Category

	// Answer is the canned response associated with this intent.
	Answer string
}

// ID returns the stable document identifier derived from the row index.
func (e TrainingExample) ID() string {
	return fmt.Sprintf("row-%06d", e.Row)
}

// EvalExample is one labeled query from the evaluation set.
type EvalExample struct {
	Row      int
	Text     string
	Expected category.Category
}

// LoadTraining reads training examples from a CSV file with columns
// question, tag, answer (answer optional).
func LoadTraining(path string) ([]TrainingExample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening training data: %w", err)
	}
	defer f.Close()

	examples, err := ReadTraining(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return examples, nil
}

// ReadTraining parses training examples from CSV content.
func ReadTraining(r io.Reader) ([]TrainingExample, error) {
	records, header, err := readAll(r)
	if err != nil {
		return nil, err
	}

	qIdx, err := columnIndex(header, "question")
	if err != nil {
		return nil, err
	}
	tagIdx, err := columnIndex(header, "tag")
	if err != nil {
		return nil, err
	}
	ansIdx := optionalColumnIndex(header, "answer")

	examples := make([]TrainingExample, 0, len(records))
	for i, rec := range records {
		if len(rec) <= qIdx || len(rec) <= tagIdx {
			return nil, fmt.Errorf("row %d: %w: row has %d fields", i, ErrMissingColumn, len(rec))
		}
		text := strings.TrimSpace(rec[qIdx])
		if text == "" {
			return nil, fmt.Errorf("row %d: %w", i, ErrEmptyText)
		}
		cat, err := category.Parse(strings.TrimSpace(rec[tagIdx]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		answer := ""
		if ansIdx >= 0 && ansIdx < len(rec) {
			answer = rec[ansIdx]
		}
		examples = append(examples, TrainingExample{
			Row:      i,
			Text:     text,
			Category: cat,
			Answer:   answer,
		})
	}

	if len(examples) == 0 {
		return nil, ErrEmptyDataset
	}
	return examples, nil
}

// LoadEval reads evaluation examples from a CSV file with columns
// question, expected_tag.
func LoadEval(path string) ([]EvalExample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening evaluation data: %w", err)
	}
	defer f.Close()

	examples, err := ReadEval(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return examples, nil
}

// ReadEval parses evaluation examples from CSV content.
func ReadEval(r io.Reader) ([]EvalExample, error) {
	records, header, err := readAll(r)
	if err != nil {
		return nil, err
	}

	qIdx, err := columnIndex(header, "question")
	if err != nil {
		return nil, err
	}
	tagIdx, err := columnIndex(header, "expected_tag")
	if err != nil {
		return nil, err
	}

	examples := make([]EvalExample, 0, len(records))
	for i, rec := range records {
		if len(rec) <= qIdx || len(rec) <= tagIdx {
			return nil, fmt.Errorf("row %d: %w: row has %d fields", i, ErrMissingColumn, len(rec))
		}
		text := strings.TrimSpace(rec[qIdx])
		if text == "" {
			return nil, fmt.Errorf("row %d: %w", i, ErrEmptyText)
		}
		cat, err := category.Parse(strings.TrimSpace(rec[tagIdx]))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		examples = append(examples, EvalExample{Row: i, Text: text, Expected: cat})
	}

	if len(examples) == 0 {
		return nil, ErrEmptyDataset
	}
	return examples, nil
}

// readAll reads the CSV header plus all data records.
func readAll(r io.Reader) (records [][]string, header []string, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // rows may legitimately omit trailing answer cells

	header, err = cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, ErrEmptyDataset
		}
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}

	records, err = cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading rows: %w", err)
	}
	return records, header, nil
}

// columnIndex finds a required header column, case-insensitively.
func columnIndex(header []string, name string) (int, error) {
	if idx := optionalColumnIndex(header, name); idx >= 0 {
		return idx, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrMissingColumn, name)
}

func optionalColumnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}
