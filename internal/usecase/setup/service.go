// Package setup loads the run files and assembles the run configuration.
package setup

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/snowball/internal/domain"
	"github.com/kailas-cloud/snowball/internal/domain/configuration"
	"github.com/kailas-cloud/snowball/internal/domain/params"
	"github.com/kailas-cloud/snowball/internal/domain/seed"
	"github.com/kailas-cloud/snowball/internal/vsm"
)

const maxSentenceBytes = 1 << 20

// Inputs name the files of a run. NegativeSeeds is optional.
type Inputs struct {
	Parameters          string
	Seeds               string
	NegativeSeeds       string
	Sentences           string
	ThresholdSimilarity float64
	InstanceConfidence  float64
}

// Run is a loaded run: the shared configuration and the corpus it was built from.
type Run struct {
	Config    *configuration.Configuration
	Sentences []string
}

// Service loads runs.
type Service struct {
	cache  ModelCache
	lm     domain.LinguisticModel
	logger *zap.Logger
}

// New creates a setup service.
func New(cache ModelCache, lm domain.LinguisticModel, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cache: cache, lm: lm, logger: logger}
}

// Load reads and validates every input, resolves the vector space model
// through the cache and builds the configuration. Any configuration fault
// aborts the load.
func (s *Service) Load(ctx context.Context, in Inputs) (*Run, error) {
	parsed, err := parseFile(in.Parameters, params.Parse)
	if err != nil {
		return nil, fmt.Errorf("load parameters: %w", err)
	}
	for _, key := range parsed.Unknown {
		s.logger.Warn("Ignoring unknown parameter", zap.String("key", key), zap.String("file", in.Parameters))
	}

	seeds, err := parseFile(in.Seeds, seed.Parse)
	if err != nil {
		return nil, fmt.Errorf("load seeds: %w", err)
	}
	var negative seed.File
	if in.NegativeSeeds != "" {
		negative, err = parseFile(in.NegativeSeeds, seed.Parse)
		if err != nil {
			return nil, fmt.Errorf("load negative seeds: %w", err)
		}
	}

	sentences, err := parseFile(in.Sentences, readSentences)
	if err != nil {
		return nil, fmt.Errorf("load sentences: %w", err)
	}

	stop := s.lm.Stopwords()
	model, err := s.cache.LoadOrBuild(ctx, vsm.Identity(sentences, s.lm, stop), func() (*vsm.Model, error) {
		return vsm.Build(sentences, s.lm, stop)
	})
	if err != nil {
		return nil, fmt.Errorf("load vector space model: %w", err)
	}

	cfg, err := configuration.New(configuration.Options{
		Parameters:          parsed.Parameters,
		Seeds:               seeds,
		NegativeSeeds:       negative,
		VSM:                 model,
		Linguistic:          s.lm,
		ThresholdSimilarity: in.ThresholdSimilarity,
		InstanceConfidence:  in.InstanceConfidence,
	})
	if err != nil {
		return nil, fmt.Errorf("build configuration: %w", err)
	}

	s.logSummary(cfg, len(sentences))
	return &Run{Config: cfg, Sentences: sentences}, nil
}

func (s *Service) logSummary(cfg *configuration.Configuration, sentences int) {
	p := cfg.Parameters()
	s.logger.Info("Configuration parameters",
		zap.String("e1_type", cfg.E1Type()),
		zap.String("e2_type", cfg.E2Type()),
		zap.Int("seeds", len(cfg.Seeds())),
		zap.Int("negative_seeds", len(cfg.NegativeSeeds())),
		zap.Int("sentences", sentences),
		zap.Int("vocabulary", cfg.VSM().Size()),
		zap.Float64("w_updt", p.WUpdt),
		zap.Float64("w_unk", p.WUnk),
		zap.Float64("w_neg", p.WNeg),
		zap.Int("number_iterations", p.NumberIterations),
		zap.Bool("use_rlogf", p.UseRlogF),
		zap.Int("min_pattern_support", p.MinPatternSupport),
		zap.Int("min_tokens_away", p.MinTokensAway),
		zap.Int("max_tokens_away", p.MaxTokensAway),
		zap.Int("context_window_size", p.ContextWindowSize),
		zap.String("use_reverb", string(p.UseReverb)),
		zap.Float64("alpha", p.Alpha),
		zap.Float64("beta", p.Beta),
		zap.Float64("gamma", p.Gamma),
		zap.Float64("threshold_similarity", cfg.ThresholdSimilarity()),
		zap.Float64("instance_confidence", cfg.InstanceConfidence()),
	)
}

func parseFile[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return zero, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	v, err := parse(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// readSentences returns the non-blank lines of r, trimmed.
func readSentences(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxSentenceBytes)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read sentences: %w", err)
	}
	return out, nil
}
