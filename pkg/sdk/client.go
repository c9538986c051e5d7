package snowball

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/snowball/internal/db"
	dbFile "github.com/kailas-cloud/snowball/internal/db/file"
	dbRedis "github.com/kailas-cloud/snowball/internal/db/redis"
	"github.com/kailas-cloud/snowball/internal/domain/configuration"
	"github.com/kailas-cloud/snowball/internal/domain/tuple"
	"github.com/kailas-cloud/snowball/internal/linguistic"
	"github.com/kailas-cloud/snowball/internal/repository/vsmcache"
	"github.com/kailas-cloud/snowball/internal/usecase/extraction"
	healthuc "github.com/kailas-cloud/snowball/internal/usecase/health"
	"github.com/kailas-cloud/snowball/internal/usecase/setup"
)

const (
	defaultReadinessTimeout    = 10 * time.Second
	defaultThresholdSimilarity = 0.6
	defaultInstanceConfidence  = 0.7
)

// extractionUseCase is replaced in tests.
type extractionUseCase interface {
	Extract(ctx context.Context, cfg *configuration.Configuration, sentences []string) ([]*tuple.Tuple, error)
	Build(ctx context.Context, cfg *configuration.Configuration, occs []tuple.Occurrence) ([]*tuple.Tuple, error)
}

// Client is the snowball SDK entry point. It is safe for concurrent use.
type Client struct {
	store      db.Store
	run        *setup.Run
	extraction extractionUseCase
	healthSvc  healthUseCase
	obs        *observer
}

// New loads a run and returns a Client for it. The provided context bounds
// the cache readiness check and the model build.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		thresholdSimilarity: defaultThresholdSimilarity,
		instanceConfidence:  defaultInstanceConfidence,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.parameters == "" || cfg.seeds == "" || cfg.sentences == "" {
		return nil, errors.New("snowball: parameters, seeds and sentences files required (use WithFiles)")
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}
	if store != nil {
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("snowball: model cache not ready: %w", err)
		}
	}

	// Pass a nil interface (not a typed nil pointer) when caching is off.
	var cacheStore db.KVStore
	if store != nil {
		cacheStore = store
	}
	lm := cfg.linguistic
	if lm == nil {
		lm = linguistic.NewEnglish(logger)
	}
	cache := vsmcache.New(cacheStore, obs.cacheCounter(), nil, logger)

	start := time.Now()
	run, err := setup.New(cache, lm, logger).Load(ctx, setup.Inputs{
		Parameters:          cfg.parameters,
		Seeds:               cfg.seeds,
		NegativeSeeds:       cfg.negativeSeeds,
		Sentences:           cfg.sentences,
		ThresholdSimilarity: cfg.thresholdSimilarity,
		InstanceConfidence:  cfg.instanceConfidence,
	})
	obs.observe("load", start, err)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("snowball: %w", err)
	}

	return wireClient(store, run, cfg, obs), nil
}

// createStore returns nil when no cache backend is configured.
func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "":
		return nil, nil
	case "file":
		s, err := dbFile.NewStore(cfg.dir)
		if err != nil {
			return nil, fmt.Errorf("snowball: create file store: %w", err)
		}
		return s, nil
	case "redis", "valkey":
		if len(cfg.addrs) == 0 || cfg.addrs[0] == "" {
			return nil, fmt.Errorf("snowball: %s address required", cfg.driver)
		}
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
			TTL:      cfg.ttl,
		})
		if err != nil {
			return nil, fmt.Errorf("snowball: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("snowball: unknown cache driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, run *setup.Run, cfg *clientConfig, obs *observer) *Client {
	var pinger healthuc.CachePinger
	if store != nil {
		pinger = store
	}
	return &Client{
		store:      store,
		run:        run,
		extraction: extraction.New(cfg.workers),
		healthSvc:  healthuc.New(pinger),
		obs:        obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Extract builds the candidate tuples of every sentence in the loaded corpus.
func (c *Client) Extract(ctx context.Context) ([]Tuple, error) {
	return c.ExtractSentences(ctx, c.run.Sentences)
}

// ExtractSentences builds candidate tuples from tagged sentences such as
// "<ORG>Google</ORG> was founded by <PER>Larry Page</PER> .". Duplicates are
// dropped, first occurrence wins.
func (c *Client) ExtractSentences(ctx context.Context, sentences []string) (_ []Tuple, err error) {
	start := time.Now()
	defer func() { c.obs.observe("extract", start, err) }()

	ts, err := c.extraction.Extract(ctx, c.run.Config, sentences)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	return tuplesFromDomain(ts, c.run.Config.VSM()), nil
}

// Build creates one candidate tuple per distinct occurrence, in input order.
func (c *Client) Build(ctx context.Context, occs []Occurrence) (_ []Tuple, err error) {
	start := time.Now()
	defer func() { c.obs.observe("build", start, err) }()

	in := make([]tuple.Occurrence, len(occs))
	for i, o := range occs {
		in[i] = o.toDomain()
	}
	ts, err := c.extraction.Build(ctx, c.run.Config, in)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	return tuplesFromDomain(ts, c.run.Config.VSM()), nil
}

// Configuration summarizes the loaded run.
func (c *Client) Configuration() ConfigurationInfo {
	cfg := c.run.Config
	return ConfigurationInfo{
		E1Type:              cfg.E1Type(),
		E2Type:              cfg.E2Type(),
		Seeds:               len(cfg.Seeds()),
		NegativeSeeds:       len(cfg.NegativeSeeds()),
		Sentences:           len(c.run.Sentences),
		Vocabulary:          cfg.VSM().Size(),
		UseReverb:           string(cfg.UseReverb()),
		ThresholdSimilarity: cfg.ThresholdSimilarity(),
		InstanceConfidence:  cfg.InstanceConfidence(),
	}
}

// Sentences returns a copy of the loaded corpus.
func (c *Client) Sentences() []string {
	return slices.Clone(c.run.Sentences)
}
