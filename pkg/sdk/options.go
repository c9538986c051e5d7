package snowball

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/snowball/internal/domain"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	parameters    string
	seeds         string
	negativeSeeds string
	sentences     string

	thresholdSimilarity float64
	instanceConfidence  float64

	driver   string // "file", "redis", "valkey"; empty disables the model cache
	dir      string
	addrs    []string
	password string
	ttl      time.Duration

	workers    int
	linguistic domain.LinguisticModel

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithFiles sets the parameters, positive seeds and sentence files. Required.
func WithFiles(parameters, seeds, sentences string) Option {
	return optionFunc(func(c *clientConfig) {
		c.parameters = parameters
		c.seeds = seeds
		c.sentences = sentences
	})
}

// WithNegativeSeeds sets the optional negative seeds file.
func WithNegativeSeeds(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.negativeSeeds = path
	})
}

// WithThresholds overrides the pattern similarity threshold and the minimum
// instance confidence. Defaults: 0.6 and 0.7.
func WithThresholds(similarity, confidence float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.thresholdSimilarity = similarity
		c.instanceConfidence = confidence
	})
}

// WithFileCache keeps vector space models under dir.
func WithFileCache(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "file"
		c.dir = dir
	})
}

// WithValkey keeps vector space models in a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis keeps vector space models in a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithCacheTTL expires cached models in Redis/Valkey. Zero keeps them forever.
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.ttl = ttl
	})
}

// WithWorkers bounds concurrent tuple builds. Default: 1.
func WithWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.workers = n
	})
}

// WithLogger enables structured logging. Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts, durations and model
// cache results) on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

// withLinguisticModel replaces the English tokenizer and tagger.
func withLinguisticModel(lm domain.LinguisticModel) Option {
	return optionFunc(func(c *clientConfig) {
		c.linguistic = lm
	})
}
