package distance

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"
)

func floatsAreEqual(a, b float64) bool {
	const tolerance = 1e-4
	return math.Abs(a-b) < tolerance
}

func generateMatrix(rows, dims int) []float32 {
	m := make([]float32, rows*dims)
	for i := range m {
		m[i] = rand.Float32()*2 - 1
	}
	return m
}

func TestImplementations(t *testing.T) {
	t.Run("DotReference", func(t *testing.T) {
		fn, _ := GetDotFunc(Reference)
		got, err := fn([]float32{1, 2, 3}, []float32{4, 5, 6})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 32 {
			t.Errorf("got %f, want 32", got)
		}
	})

	t.Run("DotActive", func(t *testing.T) {
		got, err := Dot([]float32{1, 2, 3}, []float32{4, 5, 6})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 32 {
			t.Errorf("got %f, want 32", got)
		}
	})

	t.Run("DotMismatch", func(t *testing.T) {
		_, err := Dot([]float32{1, 2}, []float32{1})
		if !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("got %v, want ErrDimensionMismatch", err)
		}
	})

	t.Run("ScoreMatrixSmall", func(t *testing.T) {
		rows := []float32{
			1, 0,
			0, 1,
			1, 1,
		}
		cols := []float32{
			2, 3,
			-1, 4,
		}
		dst := make([]float32, 3*2)
		if err := ScoreMatrix(dst, rows, 3, cols, 2, 2); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []float32{2, -1, 3, 4, 5, 3}
		for i := range want {
			if dst[i] != want[i] {
				t.Errorf("dst[%d] = %f, want %f", i, dst[i], want[i])
			}
		}
	})

	t.Run("ScoreMatrixShape", func(t *testing.T) {
		dst := make([]float32, 4)
		err := ScoreMatrix(dst, make([]float32, 6), 2, make([]float32, 5), 2, 3)
		if !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("got %v, want ErrDimensionMismatch", err)
		}
		if err := ScoreMatrix(make([]float32, 3), make([]float32, 6), 2, make([]float32, 6), 2, 3); err == nil {
			t.Error("expected an error for a short destination")
		}
	})
}

func TestScoreMatrixMatchesReference(t *testing.T) {
	ref, _ := GetScoreFunc(Reference)
	for _, dims := range []int{1, 7, 50, 300} {
		t.Run(fmt.Sprintf("%dD", dims), func(t *testing.T) {
			const n, m = 37, 11
			rows := generateMatrix(n, dims)
			cols := generateMatrix(m, dims)
			want := make([]float32, n*m)
			got := make([]float32, n*m)
			if err := ref(want, rows, n, cols, m, dims); err != nil {
				t.Fatal(err)
			}
			if err := ScoreMatrix(got, rows, n, cols, m, dims); err != nil {
				t.Fatal(err)
			}
			for i := range want {
				if !floatsAreEqual(float64(got[i]), float64(want[i])) {
					t.Fatalf("entry %d: got %f, want %f", i, got[i], want[i])
				}
			}
		})
	}
}

// A query must get bit-identical scores whether it is scored alone or
// alongside others, including dimensions above the BLAS block size and
// matrices large enough for the parallel path.
func TestScoreMatrixIndependentOfBatchWidth(t *testing.T) {
	for _, dims := range []int{50, 64, 65, 300} {
		t.Run(fmt.Sprintf("%dD", dims), func(t *testing.T) {
			const queries, candidates = 300, 100
			rows := generateMatrix(queries, dims)
			cols := generateMatrix(candidates, dims)

			batch := make([]float32, queries*candidates)
			if err := ScoreMatrix(batch, rows, queries, cols, candidates, dims); err != nil {
				t.Fatal(err)
			}

			single := make([]float32, candidates)
			for q := 0; q < queries; q++ {
				if err := ScoreMatrix(single, rows[q*dims:(q+1)*dims], 1, cols, candidates, dims); err != nil {
					t.Fatal(err)
				}
				for j, v := range single {
					if got := batch[q*candidates+j]; got != v {
						t.Fatalf("query %d candidate %d: batched %v, alone %v", q, j, got, v)
					}
				}
			}
		})
	}
}

func TestGonumSupported(t *testing.T) {
	cases := []struct {
		arch string
		sse3 bool
		want bool
	}{
		{"amd64", true, true},
		{"amd64", false, false},
		{"arm64", false, true},
		{"386", false, true},
	}
	for _, tc := range cases {
		if got := gonumSupported(tc.arch, tc.sse3); got != tc.want {
			t.Errorf("gonumSupported(%q, %v) = %v, want %v", tc.arch, tc.sse3, got, tc.want)
		}
	}
}

func TestUnknownBackend(t *testing.T) {
	if _, err := GetDotFunc("avx512"); err == nil {
		t.Error("expected an error for an unknown backend")
	}
	if _, err := GetScoreFunc("avx512"); err == nil {
		t.Error("expected an error for an unknown backend")
	}
}

func TestParsePrecision(t *testing.T) {
	cases := map[string]PrecisionType{"": Float32, "float32": Float32, "float16": Float16}
	for in, want := range cases {
		got, err := ParsePrecision(in)
		if err != nil || got != want {
			t.Errorf("ParsePrecision(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParsePrecision("int8"); err == nil {
		t.Error("expected int8 to be rejected")
	}
}

func TestFloat16RoundTrip(t *testing.T) {
	src := []float32{0, 1, -1, 0.5, 0.333, 1024, -7.25}
	bits := EncodeFloat16(src)
	dst := DecodeFloat16(bits)
	if len(dst) != len(src) {
		t.Fatalf("decoded %d values, want %d", len(dst), len(src))
	}
	for i := range src {
		if math.Abs(float64(dst[i]-src[i])) > 1e-3 {
			t.Errorf("value %d: got %f, want %f", i, dst[i], src[i])
		}
	}
}

func TestLogSimilarity(t *testing.T) {
	scores := []float32{1, 0, -1, -3}
	LogSimilarity(scores)

	want := []float64{
		math.Log(1 + LogEpsilon),
		math.Log(0.5 + LogEpsilon),
		math.Log(LogEpsilon),
		math.Log(LogEpsilon), // clamped
	}
	for i := range want {
		if !floatsAreEqual(float64(scores[i]), want[i]) {
			t.Errorf("scores[%d] = %f, want %f", i, scores[i], want[i])
		}
		if math.IsNaN(float64(scores[i])) || math.IsInf(float64(scores[i]), 0) {
			t.Errorf("scores[%d] is not finite", i)
		}
	}
}

// --- BENCHMARK ---

func BenchmarkScoreMatrix(b *testing.B) {
	ref, _ := GetScoreFunc(Reference)
	const n, m = 2000, 300
	for _, d := range []int{50, 300} {
		rows := generateMatrix(n, d)
		cols := generateMatrix(m, d)
		dst := make([]float32, n*m)

		b.Run(fmt.Sprintf("Gonum_%dD", d), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				ScoreMatrix(dst, rows, n, cols, m, d)
			}
		})

		b.Run(fmt.Sprintf("PureGo_%dD", d), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				ref(dst, rows, n, cols, m, d)
			}
		})
	}
}
