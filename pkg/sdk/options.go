package entlink

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver     string // "valkey" or "redis"
	addrs      []string
	password   string
	standalone bool
	keyPrefix  string

	stages        []string
	resolver      string
	rating        string
	hitsMaxIter   int
	hitsTolerance float64

	maxBatchSize int
	workers      int

	cacheDisabled bool
	cacheEntries  int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey configures the client to connect to a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithStandalone disables cluster topology discovery.
func WithStandalone() Option {
	return optionFunc(func(c *clientConfig) {
		c.standalone = true
	})
}

// WithKeyPrefix namespaces every key the client reads or writes.
// Default: "entlink:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithStages selects the stage list by name, in order:
// "subject_index", "disambiguation", "rating". Default: all three.
func WithStages(names ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.stages = append([]string(nil), names...)
	})
}

// WithResolver picks the disambiguation strategy:
// "degree" (default), "flow", "authority", "classification".
func WithResolver(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.resolver = name
	})
}

// WithRating picks the relevance rating strategy:
// "position" (default), "term_frequency", "hub", "idf".
func WithRating(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.rating = name
	})
}

// WithHITS bounds the hub/authority iteration used by "authority" and "hub".
func WithHITS(maxIterations int, tolerance float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.hitsMaxIter = maxIterations
		c.hitsTolerance = tolerance
	})
}

// WithMaxBatchSize sets the maximum number of documents per call.
// Default: 100.
func WithMaxBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxBatchSize = size
	})
}

// WithWorkers bounds how many documents are processed concurrently.
// Default: 4.
func WithWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.workers = n
	})
}

// WithCacheSize bounds the in-process knowledge-base cache.
// Default: 100000 entries.
func WithCacheSize(entries int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheEntries = entries
	})
}

// WithoutCache sends every knowledge-base lookup to the database.
func WithoutCache() Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheDisabled = true
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK and pipeline metrics on the given registerer.
// Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
