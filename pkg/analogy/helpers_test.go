package analogy

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/sanonone/wordanalogy/pkg/core/distance"
	"github.com/sanonone/wordanalogy/pkg/embedding"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// logBuffer collects log lines written by concurrent workers.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *logBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

func (l *logBuffer) count(substr string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Count(l.buf.String(), substr)
}

func (l *logBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.String()
}

func captureLogger() (*slog.Logger, *logBuffer) {
	buf := &logBuffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// royalty is a small embedding where queen = king - man + woman.
func royalty(t testing.TB) *embedding.Dense {
	t.Helper()
	emb, err := embedding.NewDense(
		[]string{"king", "queen", "man", "woman", "prince", "apple"},
		[][]float32{
			{1, 0, 1},
			{0, 1, 1},
			{1, 0, 0},
			{0, 1, 0},
			{1, 0, 0.8},
			{0.5, 0.5, 0},
		},
	)
	require.NoError(t, err)
	return emb
}

func randomEmbedding(t testing.TB, r *rand.Rand, n, dim int) *embedding.Dense {
	t.Helper()
	words := make([]string, n)
	vectors := make([][]float32, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%03d", i)
		vectors[i] = make([]float32, dim)
		for j := range vectors[i] {
			vectors[i][j] = r.Float32()*2 - 1
		}
	}
	emb, err := embedding.NewDense(words, vectors)
	require.NoError(t, err)
	return emb.Normalize()
}

// randomQueries draws query words from the vocabulary, replacing a word with an
// unknown one with probability oov.
func randomQueries(r *rand.Rand, vocab embedding.Vocabulary, m int, oov float64) []Query {
	queries := make([]Query, m)
	for i := range queries {
		for j := range queries[i] {
			if r.Float64() < oov {
				queries[i][j] = fmt.Sprintf("unknown-%d", r.Intn(5))
				continue
			}
			queries[i][j] = vocab.Word(r.Intn(vocab.Len()))
		}
	}
	return queries
}

// referenceAddScores computes candidate · (B - A + C) for one query with the
// pure Go kernel, substituting mean for unknown words.
func referenceAddScores(t testing.TB, emb embedding.Embedding, q Query, mean []float32) []float32 {
	t.Helper()
	dot, err := distance.GetDotFunc(distance.Reference)
	require.NoError(t, err)

	a, b, c := emb.Get(q.A(), mean), emb.Get(q.B(), mean), emb.Get(q.C(), mean)
	target := make([]float32, emb.Dim())
	for i := range target {
		target[i] = b[i] - a[i] + c[i]
	}
	scores := make([]float32, emb.Len())
	for id := range scores {
		scores[id], err = dot(emb.Vector(id), target)
		require.NoError(t, err)
	}
	return scores
}
