package analogy

import (
	"context"
	"sort"

	"github.com/sanonone/wordanalogy/pkg/metrics"
)

// DefaultCategory groups questions that carry no category.
const DefaultCategory = "default"

// Question is an analogy query with its expected answer.
type Question struct {
	Query    Query  `json:"query" yaml:"query"`
	Answer   string `json:"answer" yaml:"answer"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
}

// CategoryResult is the accuracy over the questions of one category.
type CategoryResult struct {
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

// Report summarizes an evaluation run.
type Report struct {
	Method      string                    `json:"method"`
	Total       int                       `json:"total"`
	Correct     int                       `json:"correct"`
	Accuracy    float64                   `json:"accuracy"`
	Categories  map[string]CategoryResult `json:"categories"`
	Predictions []string                  `json:"predictions"`
}

// CategoryNames returns the report's categories in lexical order.
func (r *Report) CategoryNames() []string {
	names := make([]string, 0, len(r.Categories))
	for name := range r.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Evaluate answers every question with one Predict call and reports the
// overall and per-category accuracy.
func Evaluate(ctx context.Context, s *Solver, questions []Question) (*Report, error) {
	queries := make([]Query, len(questions))
	for i, q := range questions {
		queries[i] = q.Query
	}
	predicted, err := s.Predict(ctx, queries)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Method:      s.Method().String(),
		Total:       len(questions),
		Categories:  make(map[string]CategoryResult),
		Predictions: predicted,
	}
	for i, q := range questions {
		name := q.Category
		if name == "" {
			name = DefaultCategory
		}
		res := report.Categories[name]
		res.Total++
		if predicted[i] == q.Answer {
			res.Correct++
			report.Correct++
		}
		report.Categories[name] = res
	}
	for name, res := range report.Categories {
		res.Accuracy = float64(res.Correct) / float64(res.Total)
		report.Categories[name] = res
	}
	if report.Total > 0 {
		report.Accuracy = float64(report.Correct) / float64(report.Total)
		metrics.Accuracy.Set(report.Accuracy)
	}
	return report, nil
}
