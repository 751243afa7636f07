// Package analogy answers word analogy questions ("A is to B as C is to ?")
// over a dense word embedding.
//
// Candidates are scored either additively (dot product with B - A + C) or
// multiplicatively (log-shifted similarities). The query words themselves are
// never returned. Out-of-vocabulary query words are replaced by the mean
// candidate vector.
//
// Basic usage:
//
//	solver, err := analogy.New(emb, analogy.WithMethod(analogy.Mul))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	answers, err := solver.Predict(ctx, []analogy.Query{{"man", "king", "woman"}})
package analogy

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sanonone/wordanalogy/pkg/core/distance"
	"github.com/sanonone/wordanalogy/pkg/embedding"
	"github.com/sanonone/wordanalogy/pkg/metrics"
)

// excludedScore marks a query word in the score matrix.
const excludedScore = -math.MaxFloat32

// Solver answers analogy queries against a fixed embedding.
// It holds no state between calls and is safe for concurrent use.
type Solver struct {
	emb       embedding.Embedding
	method    Method
	batchSize int
	k         int
	workers   int
	logger    *slog.Logger
}

// New creates a Solver over emb. The embedding must not be modified while the
// solver is in use.
func New(emb embedding.Embedding, opts ...Option) (*Solver, error) {
	s := &Solver{
		emb:       emb,
		method:    Add,
		batchSize: DefaultBatchSize,
		workers:   1,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if !s.method.valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnrecognizedMethod, s.method)
	}
	if emb == nil || emb.Len() == 0 || emb.Dim() == 0 {
		return nil, fmt.Errorf("%w: embedding is empty", ErrInvalidConfig)
	}
	if s.batchSize <= 0 {
		return nil, fmt.Errorf("%w: batch size must be positive, got %d", ErrInvalidConfig, s.batchSize)
	}
	if s.k < 0 {
		return nil, fmt.Errorf("%w: k must not be negative, got %d", ErrInvalidConfig, s.k)
	}
	if s.workers <= 0 {
		return nil, fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, s.workers)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// NewFromConfig creates a Solver from a Config. Extra options are applied after
// the configuration.
func NewFromConfig(emb embedding.Embedding, cfg Config, opts ...Option) (*Solver, error) {
	cfgOpts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return New(emb, append(cfgOpts, opts...)...)
}

// Method returns the scoring method.
func (s *Solver) Method() Method { return s.method }

// batchScope holds the read-only data shared by all batches of one Predict call.
type batchScope struct {
	emb    embedding.Embedding
	vocab  embedding.Vocabulary
	matrix []float32
	mean   []float32
	n      int
	dim    int
}

// Predict answers every query and returns one word per query, in input order.
func (s *Solver) Predict(ctx context.Context, queries []Query) ([]string, error) {
	out := make([]string, len(queries))
	if len(queries) == 0 {
		return out, nil
	}

	w := s.candidates()
	scope := &batchScope{
		emb:    w,
		vocab:  w.Vocabulary(),
		matrix: w.Vectors(),
		n:      w.Len(),
		dim:    w.Dim(),
	}
	scope.mean = meanVector(scope.matrix, scope.n, scope.dim)

	if missing := countMissing(queries, scope.vocab); missing > 0 {
		attrs := []any{"missing", missing}
		if s.k > 0 {
			// Words known to the embedding but outside the K most frequent
			// are substituted too; report how many are truly unknown.
			attrs = append(attrs, "k", s.k, "not_in_vocabulary", countMissing(queries, s.emb.Vocabulary()))
		}
		s.logger.Warn("[Analogy] Missing words. Will replace them with mean vector", attrs...)
		metrics.MissingWordsTotal.Add(float64(missing))
	}

	numBatches := (len(queries) + s.batchSize - 1) / s.batchSize
	logEvery := max(1, numBatches/10)
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for b := 0; b < numBatches; b++ {
		if gctx.Err() != nil {
			break
		}
		b := b
		start := b * s.batchSize
		end := min(start+s.batchSize, len(queries))

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			began := time.Now()
			if err := s.solveBatch(scope, queries[start:end], out[start:end]); err != nil {
				return fmt.Errorf("batch %d: %w", b, err)
			}
			metrics.BatchDuration.WithLabelValues(s.method.String()).Observe(time.Since(began).Seconds())

			if d := int(done.Add(1)); d%logEvery == 0 || d == numBatches {
				s.logger.Info("[Analogy] Processing batch", "done", d, "total", numBatches)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	metrics.AnalogyQueriesTotal.WithLabelValues(s.method.String()).Add(float64(len(queries)))
	return out, nil
}

// Score returns the fraction of queries whose prediction equals the expected
// answer. An empty question set scores 0.
func (s *Solver) Score(ctx context.Context, queries []Query, expected []string) (float64, error) {
	if len(queries) != len(expected) {
		return 0, fmt.Errorf("%w: %d queries, %d answers", ErrLengthMismatch, len(queries), len(expected))
	}
	if len(queries) == 0 {
		return 0, nil
	}

	predicted, err := s.Predict(ctx, queries)
	if err != nil {
		return 0, err
	}
	correct := 0
	for i := range predicted {
		if predicted[i] == expected[i] {
			correct++
		}
	}
	accuracy := float64(correct) / float64(len(queries))
	metrics.Accuracy.Set(accuracy)
	return accuracy, nil
}

func (s *Solver) candidates() embedding.Embedding {
	if s.k > 0 {
		return s.emb.MostFrequent(s.k)
	}
	return s.emb
}

// solveBatch writes the answer of queries[j] to out[j].
func (s *Solver) solveBatch(scope *batchScope, queries []Query, out []string) error {
	m, n, dim := len(queries), scope.n, scope.dim

	a := make([]float32, m*dim)
	b := make([]float32, m*dim)
	c := make([]float32, m*dim)
	for j, q := range queries {
		copy(a[j*dim:(j+1)*dim], scope.emb.Get(q.A(), scope.mean))
		copy(b[j*dim:(j+1)*dim], scope.emb.Get(q.B(), scope.mean))
		copy(c[j*dim:(j+1)*dim], scope.emb.Get(q.C(), scope.mean))
	}

	// One row of n candidate scores per query.
	scores := make([]float32, m*n)
	switch s.method {
	case Add:
		for i := range b {
			b[i] = b[i] - a[i] + c[i]
		}
		if err := distance.ScoreMatrix(scores, b, m, scope.matrix, n, dim); err != nil {
			return err
		}
	case Mul:
		if err := mulScores(scores, scope, a, b, c, m); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnrecognizedMethod, s.method)
	}

	for j, q := range queries {
		row := scores[j*n : (j+1)*n]
		var excluded [3]int
		for i, word := range q {
			excluded[i] = -1
			if id, ok := scope.vocab.ID(word); ok {
				row[id] = excludedScore
				excluded[i] = id
			}
		}

		best := argmax(row, excluded[:])
		if best < 0 {
			return fmt.Errorf("query %v: %w", [3]string(q), ErrNoCandidate)
		}
		out[j] = scope.vocab.Word(best)
	}
	return nil
}

// mulScores fills scores with log-sim(B) - log-sim(A) + log-sim(C).
func mulScores(scores []float32, scope *batchScope, a, b, c []float32, m int) error {
	n, dim := scope.n, scope.dim
	if err := distance.ScoreMatrix(scores, b, m, scope.matrix, n, dim); err != nil {
		return err
	}
	distance.LogSimilarity(scores)

	tmp := make([]float32, len(scores))
	if err := distance.ScoreMatrix(tmp, a, m, scope.matrix, n, dim); err != nil {
		return err
	}
	distance.LogSimilarity(tmp)
	for i := range scores {
		scores[i] -= tmp[i]
	}

	if err := distance.ScoreMatrix(tmp, c, m, scope.matrix, n, dim); err != nil {
		return err
	}
	distance.LogSimilarity(tmp)
	for i := range scores {
		scores[i] += tmp[i]
	}
	return nil
}

// argmax returns the index of the largest score outside skip, the lowest
// index on ties. NaN scores never win. It returns -1 if no score qualifies.
func argmax(row []float32, skip []int) int {
	best := -1
	var bestScore float32
	for i, v := range row {
		if math.IsNaN(float64(v)) || slices.Contains(skip, i) {
			continue
		}
		if best < 0 || v > bestScore {
			best, bestScore = i, v
		}
	}
	return best
}

// meanVector averages the n rows of a row-major matrix.
func meanVector(matrix []float32, n, dim int) []float32 {
	sum := make([]float64, dim)
	for i := 0; i < n; i++ {
		for j, v := range matrix[i*dim : (i+1)*dim] {
			sum[j] += float64(v)
		}
	}
	mean := make([]float32, dim)
	for j := range sum {
		mean[j] = float32(sum[j] / float64(n))
	}
	return mean
}

// countMissing counts query word occurrences absent from vocab.
func countMissing(queries []Query, vocab embedding.Vocabulary) int {
	missing := 0
	for _, q := range queries {
		for _, word := range q {
			if _, ok := vocab.ID(word); !ok {
				missing++
			}
		}
	}
	return missing
}
