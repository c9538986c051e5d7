package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/snowball/internal/config"
	"github.com/kailas-cloud/snowball/internal/db"
	dbFile "github.com/kailas-cloud/snowball/internal/db/file"
	dbRedis "github.com/kailas-cloud/snowball/internal/db/redis"
	"github.com/kailas-cloud/snowball/internal/linguistic"
	logpkg "github.com/kailas-cloud/snowball/internal/logger"
	"github.com/kailas-cloud/snowball/internal/metrics"
	"github.com/kailas-cloud/snowball/internal/repository/vsmcache"
	"github.com/kailas-cloud/snowball/internal/usecase/setup"
	"github.com/kailas-cloud/snowball/internal/version"
)

// runOverrides replace the run files named in the config when set.
type runOverrides struct {
	parameters    string
	seeds         string
	negativeSeeds string
	sentences     string
}

// app is the composition root shared by extract and serve.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	store  db.Store
	run    *setup.Run
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
	_ = a.logger.Sync()
}

func loadConfig(o runOverrides) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(envName)
	}
	if err != nil {
		return config.Config{}, err
	}
	if o.parameters != "" {
		cfg.Run.Parameters = o.parameters
	}
	if o.seeds != "" {
		cfg.Run.Seeds = o.seeds
	}
	if o.negativeSeeds != "" {
		cfg.Run.NegativeSeeds = o.negativeSeeds
	}
	if o.sentences != "" {
		cfg.Run.Sentences = o.sentences
	}
	if err := cfg.Run.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func bootstrap(ctx context.Context, o runOverrides) (*app, error) {
	cfg, err := loadConfig(o)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	logger, err := logpkg.NewLogger(envName, level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	logger.Info("Starting snowball",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", envName),
		zap.String("cache_driver", cfg.Cache.Driver),
		zap.Int("workers", cfg.Extraction.Workers),
	)

	metrics.Register()

	a := &app{cfg: cfg, logger: logger}
	a.store = openStore(ctx, cfg.Cache, logger)

	// Pass a nil interface (not a typed nil pointer) when caching is off.
	var cacheStore db.KVStore
	if a.store != nil {
		cacheStore = a.store
	}
	cache := vsmcache.New(cacheStore, metrics.VSMCacheTotal, metrics.VSMBuildDuration, logger)
	svc := setup.New(cache, linguistic.NewEnglish(logger), logger)

	a.run, err = svc.Load(ctx, setup.Inputs{
		Parameters:          cfg.Run.Parameters,
		Seeds:               cfg.Run.Seeds,
		NegativeSeeds:       cfg.Run.NegativeSeeds,
		Sentences:           cfg.Run.Sentences,
		ThresholdSimilarity: cfg.Run.Similarity(),
		InstanceConfidence:  cfg.Run.Confidence(),
	})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("load run: %w", err)
	}
	return a, nil
}

// openStore returns the configured cache backend, or nil when caching is
// disabled or the backend is unavailable.
func openStore(ctx context.Context, c config.CacheConfig, logger *zap.Logger) db.Store {
	var (
		store db.Store
		err   error
	)
	switch c.Driver {
	case config.CacheNone:
		return nil
	case config.CacheFile:
		store, err = dbFile.NewStore(c.Dir)
	case config.CacheRedis, config.CacheValkey:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    c.Addrs,
			Username: c.Username,
			Password: c.Password,
			DB:       c.DB,
			TTL:      time.Duration(c.TTLSec) * time.Second,
		})
	default:
		logger.Warn("Unknown cache driver, caching disabled", zap.String("driver", c.Driver))
		return nil
	}
	if err != nil {
		logger.Warn("Failed to open model cache, caching disabled", zap.String("driver", c.Driver), zap.Error(err))
		return nil
	}

	if err := store.WaitForReady(ctx, time.Duration(c.ReadinessTimeout)*time.Second); err != nil {
		logger.Warn("Model cache not ready, caching disabled", zap.String("driver", c.Driver), zap.Error(err))
		store.Close()
		return nil
	}
	logger.Info("Connected to model cache", zap.String("driver", c.Driver))
	return store
}
