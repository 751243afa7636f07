// Package distance provides the numeric kernels used to score word vectors.
//
// It supports float32 and float16 storage precisions. Dot products and the dense
// candidate-by-query score matrix are dispatched to the fastest implementation
// available: Gonum's BLAS (which handles SIMD dispatch internally) by default, with
// pure Go reference implementations kept for testing and as a fallback.
package distance

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/klauspost/cpuid/v2"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/gonum"
)

func init() {
	backend := "go"
	if gonumSupported(runtime.GOARCH, cpuid.CPU.Has(cpuid.SSE3)) {
		// Override defaults with optimized versions from Gonum.
		dotFuncs[Active] = dotProductGonum
		scoreFuncs[Active] = scoreMatrixGonum
		backend = "gonum"
	}

	slog.Debug("[Distance] compute engine selected",
		"backend", backend,
		"cpu", cpuid.CPU.BrandName,
		"sse3", cpuid.CPU.Has(cpuid.SSE3),
		"avx2", cpuid.CPU.Has(cpuid.AVX2),
		"fma", cpuid.CPU.Has(cpuid.FMA3),
		"f16c", cpuid.CPU.Has(cpuid.F16C),
	)
}

// gonumSupported reports whether Gonum's float32 kernels can run on this CPU.
// Its amd64 assembly uses SSE3 instructions (HADDPS), which are not part of
// the amd64 baseline; other architectures use Gonum's pure Go kernels.
func gonumSupported(arch string, sse3 bool) bool {
	return arch != "amd64" || sse3
}

// --- Public Types ---

// PrecisionType defines the data type used for vector storage.
type PrecisionType string

// Backend names an implementation of the kernels.
type Backend string

const (
	// Float32 represents single-precision floating-point numbers.
	Float32 PrecisionType = "float32"
	// Float16 represents half-precision floating-point numbers.
	Float16 PrecisionType = "float16"

	// Reference is the pure Go implementation.
	Reference Backend = "go"
	// Active is the implementation used by Dot and ScoreMatrix.
	Active Backend = "active"
)

// ErrDimensionMismatch is returned when operand sizes do not agree.
var ErrDimensionMismatch = errors.New("vectors must have the same length")

// ParsePrecision resolves a precision name.
func ParsePrecision(s string) (PrecisionType, error) {
	switch PrecisionType(s) {
	case Float32, "":
		return Float32, nil
	case Float16:
		return Float16, nil
	default:
		return "", fmt.Errorf("precision '%s' not supported", s)
	}
}

// DotFunc computes the dot product of two vectors.
type DotFunc func(v1, v2 []float32) (float32, error)

// ScoreFunc fills dst (n x m, row-major) with the dot product of every row of
// rows (n x dim) with every row of cols (m x dim).
type ScoreFunc func(dst, rows []float32, n int, cols []float32, m int, dim int) error

// --- REFERENCE IMPLEMENTATIONS (PURE GO) ---

// dotProductGo is the pure Go reference implementation for the dot product.
func dotProductGo(v1, v2 []float32) (float32, error) {
	if len(v1) != len(v2) {
		return 0, fmt.Errorf("dotProduct: %w", ErrDimensionMismatch)
	}
	var sum float32
	for i := range v1 {
		sum += v1[i] * v2[i]
	}
	return sum, nil
}

// scoreMatrixGo is the pure Go reference implementation of ScoreMatrix.
func scoreMatrixGo(dst, rows []float32, n int, cols []float32, m int, dim int) error {
	if err := checkScoreShape(dst, rows, n, cols, m, dim); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		r := rows[i*dim : (i+1)*dim]
		for j := 0; j < m; j++ {
			c := cols[j*dim : (j+1)*dim]
			var sum float32
			for k := range r {
				sum += r[k] * c[k]
			}
			dst[i*m+j] = sum
		}
	}
	return nil
}

// --- Gonum-based Implementations ---
var gonumEngine = gonum.Implementation{}

// dotProductGonum uses the Gonum BLAS library for an optimized dot product.
func dotProductGonum(v1, v2 []float32) (float32, error) {
	if len(v1) != len(v2) {
		return 0, fmt.Errorf("dotProduct: %w", ErrDimensionMismatch)
	}
	if len(v1) == 0 {
		return 0, nil
	}
	return gonumEngine.Sdot(len(v1), v1, 1, v2, 1), nil
}

// innerPanel is the widest slice of the inner dimension passed to one Sgemm
// call. It matches Gonum's block size, below which Sgemm sums every entry with
// a single dot product on both its serial and parallel paths.
const innerPanel = 64

// scoreMatrixGonum computes rows · colsᵀ as a sum of Sgemm calls over
// innerPanel-wide slices of the inner dimension. Each entry is accumulated in
// the same order whatever n and m are, so a row scores identically alone or
// in a larger batch.
func scoreMatrixGonum(dst, rows []float32, n int, cols []float32, m int, dim int) error {
	if err := checkScoreShape(dst, rows, n, cols, m, dim); err != nil {
		return err
	}
	if n == 0 || m == 0 {
		return nil
	}
	for k := 0; k < dim; k += innerPanel {
		width := min(innerPanel, dim-k)
		beta := float32(1)
		if k == 0 {
			beta = 0
		}
		gonumEngine.Sgemm(blas.NoTrans, blas.Trans, n, m, width,
			1, rows[k:], dim, cols[k:], dim,
			beta, dst, m)
	}
	return nil
}

func checkScoreShape(dst, rows []float32, n int, cols []float32, m int, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("scoreMatrix: dimension must be positive, got %d", dim)
	}
	if len(rows) != n*dim || len(cols) != m*dim {
		return fmt.Errorf("scoreMatrix: %w (rows %d/%d, cols %d/%d)",
			ErrDimensionMismatch, len(rows), n*dim, len(cols), m*dim)
	}
	if len(dst) != n*m {
		return fmt.Errorf("scoreMatrix: destination has %d entries, want %d", len(dst), n*m)
	}
	return nil
}

// --- Function Catalogs and Dispatchers ---

var dotFuncs = map[Backend]DotFunc{
	Reference: dotProductGo,
	Active:    dotProductGo, // default
}

var scoreFuncs = map[Backend]ScoreFunc{
	Reference: scoreMatrixGo,
	Active:    scoreMatrixGo, // default
}

// GetDotFunc returns the dot product implementation for a backend.
func GetDotFunc(b Backend) (DotFunc, error) {
	fn, ok := dotFuncs[b]
	if !ok {
		return nil, fmt.Errorf("backend '%s' not supported", b)
	}
	return fn, nil
}

// GetScoreFunc returns the score matrix implementation for a backend.
func GetScoreFunc(b Backend) (ScoreFunc, error) {
	fn, ok := scoreFuncs[b]
	if !ok {
		return nil, fmt.Errorf("backend '%s' not supported", b)
	}
	return fn, nil
}

// Dot computes the dot product of v1 and v2 with the active backend.
func Dot(v1, v2 []float32) (float32, error) {
	return dotFuncs[Active](v1, v2)
}

// ScoreMatrix fills dst (n x m, row-major) so that dst[i*m+j] is the dot
// product of row i of rows with row j of cols. Both inputs are row-major with
// dim columns.
func ScoreMatrix(dst, rows []float32, n int, cols []float32, m int, dim int) error {
	return scoreFuncs[Active](dst, rows, n, cols, m, dim)
}
