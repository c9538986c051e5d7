// Package configuration assembles the immutable state shared by every
// candidate tuple of a bootstrapping run.
package configuration

import (
	"github.com/kailas-cloud/snowball/internal/domain"
	"github.com/kailas-cloud/snowball/internal/domain/params"
	"github.com/kailas-cloud/snowball/internal/domain/seed"
	"github.com/kailas-cloud/snowball/internal/reverb"
	"github.com/kailas-cloud/snowball/internal/vsm"
)

// Options are the inputs of New.
type Options struct {
	Parameters          params.Parameters
	Seeds               seed.File
	NegativeSeeds       seed.File
	VSM                 *vsm.Model
	Linguistic          domain.LinguisticModel
	ThresholdSimilarity float64
	InstanceConfidence  float64
}

// Configuration is the validated run configuration (immutable value object).
// It is shared by pointer and safe for concurrent reads.
type Configuration struct {
	params              params.Parameters
	e1Type              string
	e2Type              string
	seeds               seed.Set
	negativeSeeds       seed.Set
	stopwords           domain.Stopwords
	vsm                 *vsm.Model
	linguistic          domain.LinguisticModel
	reverb              *reverb.Extractor
	thresholdSimilarity float64
	instanceConfidence  float64
}

// New validates opts and creates a Configuration. Entity types come from the
// positive seed file; non-empty types in the negative seed file overwrite them.
func New(opts Options) (*Configuration, error) {
	if err := opts.Parameters.Validate(); err != nil {
		return nil, err
	}
	if err := unitInterval("threshold_similarity", opts.ThresholdSimilarity); err != nil {
		return nil, err
	}
	if err := unitInterval("instance_confidence", opts.InstanceConfidence); err != nil {
		return nil, err
	}
	if opts.VSM == nil {
		return nil, domain.NewConfigurationError("vsm", "vector space model is required")
	}
	if opts.Linguistic == nil {
		return nil, domain.NewConfigurationError("linguistic_model", "linguistic model is required")
	}

	c := &Configuration{
		params:              opts.Parameters,
		e1Type:              opts.Seeds.E1Type,
		e2Type:              opts.Seeds.E2Type,
		seeds:               cloneOrEmpty(opts.Seeds.Seeds),
		negativeSeeds:       cloneOrEmpty(opts.NegativeSeeds.Seeds),
		stopwords:           opts.Linguistic.Stopwords(),
		vsm:                 opts.VSM,
		linguistic:          opts.Linguistic,
		reverb:              reverb.New(),
		thresholdSimilarity: opts.ThresholdSimilarity,
		instanceConfidence:  opts.InstanceConfidence,
	}
	if opts.NegativeSeeds.E1Type != "" {
		c.e1Type = opts.NegativeSeeds.E1Type
	}
	if opts.NegativeSeeds.E2Type != "" {
		c.e2Type = opts.NegativeSeeds.E2Type
	}
	if c.stopwords == nil {
		c.stopwords = domain.Stopwords{}
	}
	return c, nil
}

func unitInterval(key string, v float64) error {
	if v < 0 || v > 1 {
		return domain.NewConfigurationError(key, "must be within [0, 1], got %v", v)
	}
	return nil
}

func cloneOrEmpty(s seed.Set) seed.Set {
	if s == nil {
		return make(seed.Set)
	}
	return s.Clone()
}

// Parameters returns a copy of the scalar run parameters.
func (c *Configuration) Parameters() params.Parameters { return c.params }

// UseReverb returns the context vectorization mode.
func (c *Configuration) UseReverb() params.ReverbMode { return c.params.UseReverb }

// E1Type returns the first entity type label, empty when unset.
func (c *Configuration) E1Type() string { return c.e1Type }

// E2Type returns the second entity type label, empty when unset.
func (c *Configuration) E2Type() string { return c.e2Type }

// Seeds returns a copy of the positive seed set.
func (c *Configuration) Seeds() seed.Set { return c.seeds.Clone() }

// NegativeSeeds returns a copy of the negative seed set.
func (c *Configuration) NegativeSeeds() seed.Set { return c.negativeSeeds.Clone() }

// IsSeed reports whether (e1, e2) is a positive seed.
func (c *Configuration) IsSeed(e1, e2 string) bool { return c.seeds.Contains(e1, e2) }

// IsNegativeSeed reports whether (e1, e2) is a negative seed.
func (c *Configuration) IsNegativeSeed(e1, e2 string) bool { return c.negativeSeeds.Contains(e1, e2) }

// Stopwords returns the shared stopword set. Callers must not modify it.
func (c *Configuration) Stopwords() domain.Stopwords { return c.stopwords }

// VSM returns the shared vector space model.
func (c *Configuration) VSM() *vsm.Model { return c.vsm }

// Linguistic returns the tokenizer/tagger.
func (c *Configuration) Linguistic() domain.LinguisticModel { return c.linguistic }

// Reverb returns the pattern extractor.
func (c *Configuration) Reverb() *reverb.Extractor { return c.reverb }

// ThresholdSimilarity returns the minimum similarity for a tuple to match a pattern.
func (c *Configuration) ThresholdSimilarity() float64 { return c.thresholdSimilarity }

// InstanceConfidence returns the minimum confidence for a tuple to become a seed.
func (c *Configuration) InstanceConfidence() float64 { return c.instanceConfidence }
