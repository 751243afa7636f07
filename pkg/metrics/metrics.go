package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors are registered with the default registry through promauto.

var (
	// AnalogyQueriesTotal counts answered analogy queries, labeled by method.
	AnalogyQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordanalogy_queries_total",
			Help: "Total number of analogy queries answered",
		},
		[]string{"method"},
	)

	// MissingWordsTotal counts query words replaced by the mean vector.
	MissingWordsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wordanalogy_missing_words_total",
			Help: "Total number of out-of-vocabulary query words substituted with the mean vector",
		},
	)

	// BatchDuration measures the time spent scoring one chunk of queries.
	BatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "wordanalogy_batch_duration_seconds",
			Help: "Duration of scoring one batch of analogy queries in seconds",
			// From a few candidates (sub-millisecond) to full vocabularies on large batches.
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method"},
	)

	// Accuracy holds the accuracy of the last scored question set.
	Accuracy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wordanalogy_accuracy",
			Help: "Accuracy of the most recently scored analogy question set",
		},
	)
)
