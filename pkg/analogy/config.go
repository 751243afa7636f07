package analogy

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultBatchSize is the number of queries scored together.
const DefaultBatchSize = 300

// Config holds the solver settings.
// It is designed to be embedded in YAML configuration files.
type Config struct {
	// Method is the scoring method: "add" or "mul".
	Method string `yaml:"method" json:"method"`

	// BatchSize bounds the queries scored at once. Peak memory is roughly
	// BatchSize x vocabulary size floats per worker.
	BatchSize int `yaml:"batch_size" json:"batch_size"`

	// K restricts candidates to the K most frequent words. 0 keeps the full vocabulary.
	K int `yaml:"k" json:"k"`

	// Workers is the number of batches scored concurrently.
	Workers int `yaml:"workers" json:"workers"`
}

// DefaultConfig returns the additive method over the full vocabulary,
// one worker and batches of DefaultBatchSize.
func DefaultConfig() Config {
	return Config{
		Method:    "add",
		BatchSize: DefaultBatchSize,
		K:         0,
		Workers:   1,
	}
}

// LoadConfig reads the YAML configuration file using strict parsing.
// Fields missing from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open analogy config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("YAML syntax error in analogy config: %w", err)
	}

	return cfg, nil
}

// Options converts the configuration into solver options.
func (c Config) Options() ([]Option, error) {
	method, err := ParseMethod(c.Method)
	if err != nil {
		return nil, err
	}
	return []Option{
		WithMethod(method),
		WithBatchSize(c.BatchSize),
		WithK(c.K),
		WithWorkers(c.Workers),
	}, nil
}

// Option configures a Solver.
type Option func(*Solver)

// WithMethod sets the scoring method. Default: Add.
func WithMethod(m Method) Option {
	return func(s *Solver) { s.method = m }
}

// WithBatchSize sets the number of queries per batch. Default: DefaultBatchSize.
func WithBatchSize(n int) Option {
	return func(s *Solver) { s.batchSize = n }
}

// WithK restricts candidates to the k most frequent words. Default: 0 (all).
func WithK(k int) Option {
	return func(s *Solver) { s.k = k }
}

// WithWorkers sets how many batches are scored concurrently. Default: 1.
func WithWorkers(n int) Option {
	return func(s *Solver) { s.workers = n }
}

// WithLogger sets the logger that receives progress and missing-word reports.
// Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Solver) { s.logger = l }
}
