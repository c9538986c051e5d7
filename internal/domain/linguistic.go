package domain

import (
	"slices"
	"strings"
)

// TaggedToken is a token with its Penn Treebank part-of-speech tag.
type TaggedToken struct {
	Text string `json:"text"`
	Tag  string `json:"tag"`
}

// Tokens returns the surface forms of tagged.
func Tokens(tagged []TaggedToken) []string {
	out := make([]string, len(tagged))
	for i, t := range tagged {
		out[i] = t.Text
	}
	return out
}

// LinguisticModel is the tokenizer/tagger contract consumed by the pipeline.
// Implementations must be safe for concurrent use.
type LinguisticModel interface {
	Tokenize(text string) []string
	Tag(text string) []TaggedToken
	Stopwords() Stopwords
}

// Stopwords is a read-only set of lower-cased stopwords.
type Stopwords map[string]struct{}

// NewStopwords builds a set from words, lower-casing each one.
func NewStopwords(words ...string) Stopwords {
	s := make(Stopwords, len(words))
	for _, w := range words {
		s[strings.ToLower(w)] = struct{}{}
	}
	return s
}

// Contains reports whether word (case-insensitive) is a stopword.
func (s Stopwords) Contains(word string) bool {
	_, ok := s[strings.ToLower(word)]
	return ok
}

// Sorted returns the stopwords in lexical order.
func (s Stopwords) Sorted() []string {
	out := make([]string, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}
