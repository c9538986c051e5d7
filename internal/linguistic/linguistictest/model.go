// Package linguistictest provides a deterministic LinguisticModel for tests.
package linguistictest

import (
	"strings"
	"sync/atomic"

	"github.com/kailas-cloud/snowball/internal/domain"
)

// DefaultTag is assigned to words missing from the lexicon.
const DefaultTag = "NN"

// Model splits on whitespace and tags from a fixed lexicon.
type Model struct {
	Lexicon map[string]string // lower-cased word -> tag
	Stop    domain.Stopwords

	tagCalls atomic.Int64
}

// New creates a Model with a small English lexicon and stopword set.
func New() *Model {
	return &Model{
		Lexicon: map[string]string{
			"'s": "VBZ", "is": "VBZ", "was": "VBD", "were": "VBD", "been": "VBN",
			"has": "VBZ", "founded": "VBN", "acquired": "VBN", "works": "VBZ",
			"studied": "VBD", "based": "VBN", "headquartered": "VBN", "located": "VBN",
			"a": "DT", "the": "DT", "an": "DT", "its": "PRP$",
			"of": "IN", "in": "IN", "at": "IN", "by": "IN", "for": "IN", "to": "TO",
			"and": "CC", "new": "JJ", "largest": "JJS", "big": "JJ", "quickly": "RB",
			"recently": "RB", "where": "WRB", ",": ",", ".": ".",
		},
		Stop: domain.NewStopwords(
			"a", "an", "the", "of", "in", "at", "by", "for", "to", "and",
			"is", "was", "were", "been", "has", "its", "'s", "s", ",", ".",
		),
	}
}

// Tokenize splits on whitespace.
func (m *Model) Tokenize(text string) []string {
	return strings.Fields(text)
}

// Tag tags each whitespace token from the lexicon.
func (m *Model) Tag(text string) []domain.TaggedToken {
	m.tagCalls.Add(1)
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	out := make([]domain.TaggedToken, len(fields))
	for i, f := range fields {
		tag, ok := m.Lexicon[strings.ToLower(f)]
		if !ok {
			tag = DefaultTag
		}
		out[i] = domain.TaggedToken{Text: f, Tag: tag}
	}
	return out
}

// TagCalls returns how many times Tag was called.
func (m *Model) TagCalls() int64 { return m.tagCalls.Load() }

// Stopwords returns the configured stopwords.
func (m *Model) Stopwords() domain.Stopwords { return m.Stop }
