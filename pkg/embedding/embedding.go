// Package embedding defines the read contract of a word embedding and provides
// Dense, an in-memory implementation.
//
// Word ids are dense integers in [0, Len()). Row i of the vector matrix belongs
// to the word with id i. Implementations are immutable once built and safe for
// concurrent readers.
package embedding

import "errors"

var (
	// ErrDuplicateWord is returned when two rows share a word.
	ErrDuplicateWord = errors.New("duplicate word")
	// ErrDimensionMismatch is returned when vectors do not share one dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrEmpty is returned when an embedding would have no dimensions.
	ErrEmpty = errors.New("embedding has no dimensions")
)

// Vocabulary is a bidirectional word <-> id mapping.
type Vocabulary interface {
	// Len returns the number of words.
	Len() int
	// Words returns the words ordered by id.
	Words() []string
	// Word returns the word with the given id.
	Word(id int) string
	// ID returns the id of word and whether it is present.
	ID(word string) (int, bool)
}

// Embedding is an ordered set of word vectors aligned with a Vocabulary.
type Embedding interface {
	// Dim returns the dimensionality of the vectors.
	Dim() int
	// Len returns the number of vectors, equal to Vocabulary().Len().
	Len() int
	// Vocabulary returns the word mapping.
	Vocabulary() Vocabulary
	// Vector returns the vector of the word with the given id.
	// The result must not be modified.
	Vector(id int) []float32
	// Vectors returns all vectors as one row-major Len() x Dim() matrix.
	// The result must not be modified.
	Vectors() []float32
	// Get returns the vector of word, or def if the word is unknown.
	Get(word string, def []float32) []float32
	// MostFrequent returns a view restricted to the k most frequent words,
	// re-indexed by frequency rank. If k >= Len() every word is kept.
	MostFrequent(k int) Embedding
}
