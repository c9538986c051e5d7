// Package tuple builds candidate tuples: one observed occurrence of an entity
// pair together with term-weighted vectors of its surrounding contexts.
package tuple

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/kailas-cloud/snowball/internal/domain"
	"github.com/kailas-cloud/snowball/internal/domain/configuration"
	"github.com/kailas-cloud/snowball/internal/domain/params"
)

// filteredTags are adjectives and adverbs, which rarely carry the relation.
var filteredTags = map[string]struct{}{
	"JJ": {}, "JJR": {}, "JJS": {},
	"RB": {}, "RBR": {}, "RBS": {}, "WRB": {},
}

// Context names one of the three windows around an entity pair.
type Context string

const (
	// Before is the window preceding the first entity.
	Before Context = "bef"
	// Between is the text separating the two entities.
	Between Context = "bet"
	// After is the window following the second entity.
	After Context = "aft"
)

// Occurrence is the raw input of a tuple.
type Occurrence struct {
	Ent1     string
	Ent2     string
	Sentence string
	Before   string
	Between  string
	After    string
}

// Tuple is a candidate relation instance. Only Confidence and ConfidenceOld
// change after construction.
type Tuple struct {
	Ent1     string `json:"ent1"`
	Ent2     string `json:"ent2"`
	Sentence string `json:"sentence"`
	BefWords string `json:"bef_words"`
	BetWords string `json:"bet_words"`
	AftWords string `json:"aft_words"`

	BefVector domain.SparseVector `json:"bef_vector"`
	BetVector domain.SparseVector `json:"bet_vector"`
	AftVector domain.SparseVector `json:"aft_vector"`

	// PassiveVoice is nil unless a pattern was extracted from the between-context.
	PassiveVoice *bool `json:"passive_voice"`

	Confidence    float64 `json:"confidence"`
	ConfidenceOld float64 `json:"confidence_old"`
}

// New builds the tuple and its context vectors according to cfg's
// vectorization mode. cfg is shared, never copied.
func New(cfg *configuration.Configuration, occ Occurrence) (*Tuple, error) {
	t := &Tuple{
		Ent1:     occ.Ent1,
		Ent2:     occ.Ent2,
		Sentence: occ.Sentence,
		BefWords: occ.Before,
		BetWords: occ.Between,
		AftWords: occ.After,
	}

	switch mode := cfg.UseReverb(); mode {
	case params.ReverbNo:
		t.BefVector = bagOfWords(cfg, t.BefWords)
		t.BetVector = bagOfWords(cfg, t.BetWords)
		t.AftVector = bagOfWords(cfg, t.AftWords)
	case params.ReverbYes:
		t.buildFromPatterns(cfg)
	default:
		return nil, domain.NewConfigurationError(params.KeyUseReverb,
			"must be %q or %q, got %q", params.ReverbYes, params.ReverbNo, mode)
	}
	return t, nil
}

func (t *Tuple) buildFromPatterns(cfg *configuration.Configuration) {
	lm := cfg.Linguistic()
	ext := cfg.Reverb()

	tagged := lm.Tag(t.BetWords)
	pattern := ext.ExtractPatterns(tagged)
	if len(pattern) > 0 && !ext.IsContractionArtifact(pattern) {
		passive := ext.DetectPassiveVoice(pattern)
		t.PassiveVoice = &passive
		t.BetVector = weightTagged(cfg, pattern)
	} else {
		t.BetVector = weightTagged(cfg, tagged)
	}

	if t.BefWords != "" {
		t.BefVector = weightTagged(cfg, lm.Tag(t.BefWords))
	}
	if t.AftWords != "" {
		t.AftVector = weightTagged(cfg, lm.Tag(t.AftWords))
	}
}

// bagOfWords lower-cases, tokenizes and drops stopwords.
func bagOfWords(cfg *configuration.Configuration, text string) domain.SparseVector {
	stop := cfg.Stopwords()
	var tokens []string
	for _, tok := range cfg.Linguistic().Tokenize(strings.ToLower(text)) {
		if !stop.Contains(tok) {
			tokens = append(tokens, tok)
		}
	}
	return weigh(cfg, tokens)
}

// weightTagged drops stopwords and adjectives/adverbs before weighting.
func weightTagged(cfg *configuration.Configuration, tagged []domain.TaggedToken) domain.SparseVector {
	stop := cfg.Stopwords()
	var tokens []string
	for _, tt := range tagged {
		if stop.Contains(tt.Text) {
			continue
		}
		if _, ok := filteredTags[tt.Tag]; ok {
			continue
		}
		// the vocabulary is lower-cased at build time
		tokens = append(tokens, strings.ToLower(tt.Text))
	}
	return weigh(cfg, tokens)
}

func weigh(cfg *configuration.Configuration, tokens []string) domain.SparseVector {
	if len(tokens) == 0 {
		return nil
	}
	return cfg.VSM().Weight(tokens)
}

// Vector returns the vector of the given context.
func (t *Tuple) Vector(c Context) (domain.SparseVector, error) {
	switch c {
	case Before:
		return t.BefVector, nil
	case Between:
		return t.BetVector, nil
	case After:
		return t.AftVector, nil
	default:
		return nil, fmt.Errorf("%w: %q, want %q, %q or %q", domain.ErrUnknownContext, c, Before, Between, After)
	}
}

func (t *Tuple) String() string {
	return t.BefWords + "  " + t.BetWords + "  " + t.AftWords
}

// Key is the structural identity of a tuple. It is comparable and usable as a map key.
type Key struct {
	Ent1     string
	Ent2     string
	BefWords string
	BetWords string
	AftWords string
}

// Key returns the fields equality and hashing are defined over.
func (t *Tuple) Key() Key {
	return Key{Ent1: t.Ent1, Ent2: t.Ent2, BefWords: t.BefWords, BetWords: t.BetWords, AftWords: t.AftWords}
}

// Equal reports structural equality; vectors and confidence are ignored.
func (t *Tuple) Equal(other *Tuple) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.Key() == other.Key()
}

// Hash returns a 64-bit hash of the key, stable across processes.
func (t *Tuple) Hash() uint64 { return t.Key().Hash() }

// Hash length-prefixes each field so that shifting text between fields
// changes the digest.
func (k Key) Hash() uint64 {
	d := xxhash.New()
	var n [binary.MaxVarintLen64]byte
	for _, f := range [...]string{k.Ent1, k.Ent2, k.BefWords, k.BetWords, k.AftWords} {
		_, _ = d.Write(n[:binary.PutUvarint(n[:], uint64(len(f)))])
		_, _ = d.WriteString(f)
	}
	return d.Sum64()
}
