package snowball

import (
	"github.com/kailas-cloud/snowball/internal/domain"
	"github.com/kailas-cloud/snowball/internal/domain/tuple"
)

// Occurrence is one entity pair with the text around it.
type Occurrence struct {
	Ent1     string
	Ent2     string
	Sentence string
	Before   string
	Between  string
	After    string
}

// Term is one weighted vocabulary term of a context vector.
type Term struct {
	Word   string
	Weight float64
}

// Tuple is a candidate relation instance.
type Tuple struct {
	Ent1     string
	Ent2     string
	Sentence string
	BefWords string
	BetWords string
	AftWords string

	// Context vectors; nil when the context has no usable tokens.
	BefVector []Term
	BetVector []Term
	AftVector []Term

	// PassiveVoice is nil unless a relational pattern was found.
	PassiveVoice *bool

	// Hash identifies the tuple by entities and context words.
	Hash uint64
}

// ConfigurationInfo summarizes the loaded run.
type ConfigurationInfo struct {
	E1Type              string
	E2Type              string
	Seeds               int
	NegativeSeeds       int
	Sentences           int
	Vocabulary          int
	UseReverb           string
	ThresholdSimilarity float64
	InstanceConfidence  float64
}

// termLookup resolves vocabulary IDs to words.
type termLookup interface {
	Term(id int) string
}

func (o Occurrence) toDomain() tuple.Occurrence {
	return tuple.Occurrence{
		Ent1:     o.Ent1,
		Ent2:     o.Ent2,
		Sentence: o.Sentence,
		Before:   o.Before,
		Between:  o.Between,
		After:    o.After,
	}
}

func tupleFromDomain(t *tuple.Tuple, vocab termLookup) Tuple {
	return Tuple{
		Ent1:         t.Ent1,
		Ent2:         t.Ent2,
		Sentence:     t.Sentence,
		BefWords:     t.BefWords,
		BetWords:     t.BetWords,
		AftWords:     t.AftWords,
		BefVector:    termsFromDomain(t.BefVector, vocab),
		BetVector:    termsFromDomain(t.BetVector, vocab),
		AftVector:    termsFromDomain(t.AftVector, vocab),
		PassiveVoice: t.PassiveVoice,
		Hash:         t.Hash(),
	}
}

func termsFromDomain(v domain.SparseVector, vocab termLookup) []Term {
	if v.IsNull() {
		return nil
	}
	out := make([]Term, len(v))
	for i, term := range v {
		out[i] = Term{Word: vocab.Term(term.ID), Weight: term.Weight}
	}
	return out
}

func tuplesFromDomain(ts []*tuple.Tuple, vocab termLookup) []Tuple {
	out := make([]Tuple, len(ts))
	for i, t := range ts {
		out[i] = tupleFromDomain(t, vocab)
	}
	return out
}
