package analogy

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrecognizedMethod is returned for a scoring method other than add or mul.
	ErrUnrecognizedMethod = errors.New("unrecognized method parameter")
	// ErrInvalidConfig is returned for an unusable solver configuration.
	ErrInvalidConfig = errors.New("invalid solver configuration")
	// ErrMalformedQuery is returned for a query row that is not a word triple.
	ErrMalformedQuery = errors.New("analogy query must have exactly 3 words")
	// ErrLengthMismatch is returned when queries and expected answers differ in length.
	ErrLengthMismatch = errors.New("queries and answers differ in length")
	// ErrNoCandidate is returned when no candidate word is left to answer a query.
	ErrNoCandidate = errors.New("no candidate word left after excluding the query words")
)

// Method selects how candidate words are scored.
type Method int

const (
	// Add scores candidates by their dot product with B - A + C.
	Add Method = iota + 1
	// Mul combines log-shifted similarities to A, B and C multiplicatively,
	// which is less sensitive to vector magnitude.
	Mul
)

// ParseMethod resolves a method name ("add" or "mul").
func ParseMethod(s string) (Method, error) {
	switch s {
	case "add":
		return Add, nil
	case "mul":
		return Mul, nil
	default:
		return 0, fmt.Errorf("%w: '%s'", ErrUnrecognizedMethod, s)
	}
}

// String returns the method name.
func (m Method) String() string {
	switch m {
	case Add:
		return "add"
	case Mul:
		return "mul"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

func (m Method) valid() bool {
	return m == Add || m == Mul
}
