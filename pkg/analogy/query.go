package analogy

import "fmt"

// Query is an analogy question "A is to B as C is to ?".
type Query [3]string

// A returns the first word of the query.
func (q Query) A() string { return q[0] }

// B returns the second word of the query.
func (q Query) B() string { return q[1] }

// C returns the third word of the query.
func (q Query) C() string { return q[2] }

// ParseQueries converts word rows into queries. Every row must hold exactly
// three words.
func ParseQueries(rows [][]string) ([]Query, error) {
	queries := make([]Query, len(rows))
	for i, row := range rows {
		if len(row) != 3 {
			return nil, fmt.Errorf("row %d has %d words: %w", i, len(row), ErrMalformedQuery)
		}
		queries[i] = Query{row[0], row[1], row[2]}
	}
	return queries, nil
}
