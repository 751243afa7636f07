package embedding

import (
	"fmt"
	"math"

	"github.com/sanonone/wordanalogy/pkg/core/distance"
)

// vocabulary is the slice+map Vocabulary used by Dense.
type vocabulary struct {
	words []string
	ids   map[string]int
}

func newVocabulary(words []string) (*vocabulary, error) {
	v := &vocabulary{
		words: make([]string, len(words)),
		ids:   make(map[string]int, len(words)),
	}
	for i, w := range words {
		if _, exists := v.ids[w]; exists {
			return nil, fmt.Errorf("%w: '%s'", ErrDuplicateWord, w)
		}
		v.ids[w] = i
		v.words[i] = w
	}
	return v, nil
}

func (v *vocabulary) Len() int { return len(v.words) }

func (v *vocabulary) Words() []string {
	out := make([]string, len(v.words))
	copy(out, v.words)
	return out
}

func (v *vocabulary) Word(id int) string { return v.words[id] }

func (v *vocabulary) ID(word string) (int, bool) {
	id, ok := v.ids[word]
	return id, ok
}

// Dense is an in-memory Embedding backed by a row-major matrix.
// Vectors are stored as float32 or, with WithPrecision(distance.Float16), as
// half-precision floats that are expanded on access.
type Dense struct {
	vocab     *vocabulary
	dim       int
	precision distance.PrecisionType

	data []float32 // float32 storage
	half []uint16  // float16 storage

	rank *frequencyRank // nil means id order is frequency order
}

// DenseOption configures NewDense.
type DenseOption func(*denseConfig)

type denseConfig struct {
	precision distance.PrecisionType
	counts    []int
}

// WithPrecision selects the storage precision.
func WithPrecision(p distance.PrecisionType) DenseOption {
	return func(c *denseConfig) { c.precision = p }
}

// WithCounts attaches corpus frequencies, one per word. MostFrequent ranks
// words by descending count, ties by id. Without counts the input order is
// taken to be the frequency order.
func WithCounts(counts []int) DenseOption {
	return func(c *denseConfig) { c.counts = counts }
}

// NewDense builds a Dense embedding. words[i] is given id i and vector
// vectors[i]. The vectors are copied.
func NewDense(words []string, vectors [][]float32, opts ...DenseOption) (*Dense, error) {
	cfg := denseConfig{precision: distance.Float32}
	for _, opt := range opts {
		opt(&cfg)
	}
	if _, err := distance.ParsePrecision(string(cfg.precision)); err != nil {
		return nil, err
	}
	if len(words) != len(vectors) {
		return nil, fmt.Errorf("got %d words and %d vectors", len(words), len(vectors))
	}
	if cfg.counts != nil && len(cfg.counts) != len(words) {
		return nil, fmt.Errorf("got %d words and %d counts", len(words), len(cfg.counts))
	}

	vocab, err := newVocabulary(words)
	if err != nil {
		return nil, err
	}

	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
		if dim == 0 {
			return nil, ErrEmpty
		}
	}
	flat := make([]float32, 0, len(vectors)*dim)
	for i, vec := range vectors {
		if len(vec) != dim {
			return nil, fmt.Errorf("%w: '%s' has %d dimensions, want %d",
				ErrDimensionMismatch, words[i], len(vec), dim)
		}
		flat = append(flat, vec...)
	}

	d := &Dense{vocab: vocab, dim: dim, precision: cfg.precision}
	d.store(flat)
	if cfg.counts != nil {
		d.rank = newFrequencyRank(cfg.counts)
	}
	return d, nil
}

func (d *Dense) store(flat []float32) {
	if d.precision == distance.Float16 {
		d.half = distance.EncodeFloat16(flat)
		return
	}
	d.data = flat
}

// Dim returns the dimensionality of the vectors.
func (d *Dense) Dim() int { return d.dim }

// Len returns the number of words.
func (d *Dense) Len() int { return d.vocab.Len() }

// Precision returns the storage precision.
func (d *Dense) Precision() distance.PrecisionType { return d.precision }

// Vocabulary returns the word mapping.
func (d *Dense) Vocabulary() Vocabulary { return d.vocab }

// Vector returns the vector for id. For float32 storage this is a view into
// the matrix; for float16 storage a new slice is decoded.
func (d *Dense) Vector(id int) []float32 {
	start, end := id*d.dim, (id+1)*d.dim
	if d.precision == distance.Float16 {
		return distance.DecodeFloat16(d.half[start:end])
	}
	return d.data[start:end:end]
}

// Vectors returns the full row-major matrix.
func (d *Dense) Vectors() []float32 {
	if d.precision == distance.Float16 {
		return distance.DecodeFloat16(d.half)
	}
	return d.data
}

// Get returns the vector of word, or def when word is unknown.
func (d *Dense) Get(word string, def []float32) []float32 {
	id, ok := d.vocab.ID(word)
	if !ok {
		return def
	}
	return d.Vector(id)
}

// MostFrequent returns a Dense holding the k most frequent words, whose ids
// follow frequency rank. k <= 0 or k >= Len() returns d itself.
func (d *Dense) MostFrequent(k int) Embedding {
	if k <= 0 || k >= d.Len() {
		return d
	}

	var ids []int
	if d.rank != nil {
		ids = d.rank.top(k)
	} else {
		ids = make([]int, k)
		for i := range ids {
			ids[i] = i
		}
	}

	words := make([]string, k)
	res := &Dense{dim: d.dim, precision: d.precision}
	if d.precision == distance.Float16 {
		res.half = make([]uint16, 0, k*d.dim)
	} else {
		res.data = make([]float32, 0, k*d.dim)
	}
	for i, id := range ids {
		words[i] = d.vocab.Word(id)
		start, end := id*d.dim, (id+1)*d.dim
		if d.precision == distance.Float16 {
			res.half = append(res.half, d.half[start:end]...)
		} else {
			res.data = append(res.data, d.data[start:end]...)
		}
	}
	// Words of a valid vocabulary stay unique.
	res.vocab, _ = newVocabulary(words)
	return res
}

// Normalize returns a copy whose rows have unit Euclidean length.
// Zero rows are left as they are.
func (d *Dense) Normalize() *Dense {
	flat := make([]float32, d.Len()*d.dim)
	copy(flat, d.Vectors())
	for i := 0; i < d.Len(); i++ {
		row := flat[i*d.dim : (i+1)*d.dim]
		dot, _ := distance.Dot(row, row)
		if dot == 0 {
			continue
		}
		inv := float32(1 / math.Sqrt(float64(dot)))
		for j := range row {
			row[j] *= inv
		}
	}
	res := &Dense{vocab: d.vocab, dim: d.dim, precision: d.precision, rank: d.rank}
	res.store(flat)
	return res
}
