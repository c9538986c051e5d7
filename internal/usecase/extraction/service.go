// Package extraction turns annotated sentences into deduplicated candidate tuples.
package extraction

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/snowball/internal/domain/configuration"
	"github.com/kailas-cloud/snowball/internal/domain/params"
	"github.com/kailas-cloud/snowball/internal/domain/sentence"
	"github.com/kailas-cloud/snowball/internal/domain/tuple"
	"github.com/kailas-cloud/snowball/internal/logger"
)

// Pattern outcomes reported to the patterns counter.
const (
	PatternActive  = "active"
	PatternPassive = "passive"
	PatternNone    = "none"
)

// Service builds tuples on a bounded worker pool.
type Service struct {
	workers     int
	tuplesBuilt *prometheus.CounterVec
	duplicates  prometheus.Counter
	patterns    *prometheus.CounterVec
}

// New creates an extraction service running at most workers builds at once.
func New(workers int) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{workers: workers}
}

// WithMetrics attaches counters: tuplesBuilt by "mode", patterns by "outcome".
// Any of them may be nil.
func (s *Service) WithMetrics(tuplesBuilt *prometheus.CounterVec, duplicates prometheus.Counter, patterns *prometheus.CounterVec) *Service {
	s.tuplesBuilt = tuplesBuilt
	s.duplicates = duplicates
	s.patterns = patterns
	return s
}

// Options derives sentence pairing options from the run configuration.
func Options(cfg *configuration.Configuration) sentence.Options {
	p := cfg.Parameters()
	return sentence.Options{
		E1Type:            cfg.E1Type(),
		E2Type:            cfg.E2Type(),
		MinTokensAway:     p.MinTokensAway,
		MaxTokensAway:     p.MaxTokensAway,
		ContextWindowSize: p.ContextWindowSize,
	}
}

// Extract pairs the entity mentions of every sentence and builds one tuple per
// distinct occurrence. Output follows sentence order; duplicates keep the
// first occurrence.
func (s *Service) Extract(ctx context.Context, cfg *configuration.Configuration, sentences []string) ([]*tuple.Tuple, error) {
	start := time.Now()
	opts := Options(cfg)

	occs := make([][]tuple.Occurrence, len(sentences))
	for i, text := range sentences {
		occs[i] = sentence.Parse(text).Occurrences(opts)
	}

	out, err := s.build(ctx, cfg, occs)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Extracted candidate tuples",
		zap.Int("sentences", len(sentences)),
		zap.Int("tuples", len(out)),
		zap.String("use_reverb", string(cfg.UseReverb())),
		zap.Duration("took", time.Since(start)))
	return out, nil
}

// Build creates tuples from explicit occurrences, deduplicated in input order.
func (s *Service) Build(ctx context.Context, cfg *configuration.Configuration, occs []tuple.Occurrence) ([]*tuple.Tuple, error) {
	groups := make([][]tuple.Occurrence, len(occs))
	for i := range occs {
		groups[i] = occs[i : i+1]
	}
	return s.build(ctx, cfg, groups)
}

// build runs one job per group; each job writes only its own slot.
func (s *Service) build(ctx context.Context, cfg *configuration.Configuration, groups [][]tuple.Occurrence) ([]*tuple.Tuple, error) {
	results := make([][]*tuple.Tuple, len(groups))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, group := range groups {
		if len(group) == 0 {
			continue
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			built := make([]*tuple.Tuple, 0, len(group))
			for _, occ := range group {
				t, err := tuple.New(cfg, occ)
				if err != nil {
					return fmt.Errorf("build tuple (%s, %s): %w", occ.Ent1, occ.Ent2, err)
				}
				s.observe(cfg.UseReverb(), t)
				built = append(built, t)
			}
			results[i] = built
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extract tuples: %w", err)
	}

	set := tuple.NewSet()
	for _, built := range results {
		for _, t := range built {
			if _, added := set.Add(t); !added && s.duplicates != nil {
				s.duplicates.Inc()
			}
		}
	}
	return set.Items(), nil
}

func (s *Service) observe(mode params.ReverbMode, t *tuple.Tuple) {
	if s.tuplesBuilt != nil {
		s.tuplesBuilt.WithLabelValues(string(mode)).Inc()
	}
	if s.patterns == nil || mode != params.ReverbYes {
		return
	}
	switch {
	case t.PassiveVoice == nil:
		s.patterns.WithLabelValues(PatternNone).Inc()
	case *t.PassiveVoice:
		s.patterns.WithLabelValues(PatternPassive).Inc()
	default:
		s.patterns.WithLabelValues(PatternActive).Inc()
	}
}
