// Package vsm implements the corpus-wide vector space model: a vocabulary
// frozen at build time and TF-IDF weighting over it.
package vsm

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/kailas-cloud/snowball/internal/domain"
)

// FormatVersion is bumped whenever weighting or the snapshot layout changes,
// which also invalidates every cached model.
const FormatVersion = 1

// zeroWeight drops terms whose weight is numerically zero.
const zeroWeight = 1e-12

var entityMarkup = regexp.MustCompile(`<[A-Z]+>[^<]+</[A-Z]+>`)

// ErrEmptyCorpus is returned when no document survives preprocessing.
var ErrEmptyCorpus = errors.New("vsm: corpus has no usable tokens")

// Tokenizer splits text into tokens.
type Tokenizer interface {
	Tokenize(text string) []string
}

// TokenizerName names tok for the cache identity. Tokenizers that implement
// Name() string are named by it, others by their Go type.
func TokenizerName(tok Tokenizer) string {
	if n, ok := tok.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", tok)
}

// Model maps token multisets to L2-normalized TF-IDF vectors.
// It is read-only after Build or Decode and safe for concurrent use.
type Model struct {
	identity  string
	documents int
	vocab     map[string]int
	terms     []string
	idf       []float64
}

// Identity returns the cache key material of the corpus the model was built
// from: format version, tokenizer, stopwords and sentences.
func Identity(sentences []string, tok Tokenizer, stopwords domain.Stopwords) string {
	h := sha256.New()
	h.Write([]byte("v" + strconv.Itoa(FormatVersion) + "\n"))
	h.Write([]byte(TokenizerName(tok) + "\n"))
	for _, w := range stopwords.Sorted() {
		h.Write([]byte(w))
		h.Write([]byte{0})
	}
	h.Write([]byte{'\n'})
	for _, s := range sentences {
		h.Write([]byte(s))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Build creates a model from one document per sentence. Entity markup is
// removed, text is lower-cased and tokenized, stopwords are dropped, and
// tokens that occur only once in the whole corpus are discarded before the
// vocabulary is frozen.
func Build(sentences []string, tok Tokenizer, stopwords domain.Stopwords) (*Model, error) {
	docs := make([][]string, 0, len(sentences))
	counts := make(map[string]int)
	for _, s := range sentences {
		s = entityMarkup.ReplaceAllString(s, "")
		var doc []string
		for _, t := range tok.Tokenize(strings.ToLower(s)) {
			if t == "" || stopwords.Contains(t) {
				continue
			}
			doc = append(doc, t)
			counts[t]++
		}
		docs = append(docs, doc)
	}

	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, t := range doc {
			if counts[t] < 2 {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}
	if len(df) == 0 {
		return nil, ErrEmptyCorpus
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	slices.Sort(terms)

	n := float64(len(docs))
	m := &Model{
		identity:  Identity(sentences, tok, stopwords),
		documents: len(docs),
		vocab:     make(map[string]int, len(terms)),
		terms:     terms,
		idf:       make([]float64, len(terms)),
	}
	for id, t := range terms {
		m.vocab[t] = id
		m.idf[id] = math.Log2(n / float64(df[t]))
	}
	return m, nil
}

// Size returns the vocabulary size.
func (m *Model) Size() int { return len(m.terms) }

// Documents returns the number of corpus documents.
func (m *Model) Documents() int { return m.documents }

// ID returns the vocabulary id of token.
func (m *Model) ID(token string) (int, bool) {
	id, ok := m.vocab[token]
	return id, ok
}

// Term returns the token for a vocabulary id.
func (m *Model) Term(id int) string {
	if id < 0 || id >= len(m.terms) {
		return ""
	}
	return m.terms[id]
}

// Weight converts a token multiset into a TF-IDF vector. Tokens outside the
// vocabulary are ignored; nil is returned when nothing remains.
func (m *Model) Weight(tokens []string) domain.SparseVector {
	tf := make(map[int]int, len(tokens))
	for _, t := range tokens {
		if id, ok := m.vocab[t]; ok {
			tf[id]++
		}
	}
	if len(tf) == 0 {
		return nil
	}

	vec := make(domain.SparseVector, 0, len(tf))
	for id, c := range tf {
		vec = append(vec, domain.Term{ID: id, Weight: float64(c) * m.idf[id]})
	}
	// sum in id order so the result does not depend on map iteration
	slices.SortFunc(vec, func(a, b domain.Term) int { return a.ID - b.ID })

	var norm float64
	for _, t := range vec {
		norm += t.Weight * t.Weight
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil
	}

	out := vec[:0]
	for _, t := range vec {
		t.Weight /= norm
		if math.Abs(t.Weight) > zeroWeight {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
