// Package linguistic adapts an English tokenizer and Penn Treebank tagger to
// domain.LinguisticModel.
package linguistic

import (
	"strings"

	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/kailas-cloud/snowball/internal/domain"
)

// Compile-time check: English implements domain.LinguisticModel.
var _ domain.LinguisticModel = (*English)(nil)

// ModelName identifies the tokenizer and tagger. It is part of the vector
// space cache identity.
const ModelName = "prose-en-v2.0.0"

// English tokenizes and tags English text with prose's averaged perceptron
// tagger. Stopwords are the NLTK English list. The tagger weights are loaded
// once and only read afterwards, so an English is safe for concurrent use.
type English struct {
	model     *prose.Model
	stopwords domain.Stopwords
	logger    *zap.Logger
}

// NewEnglish loads the tagger. logger may be nil.
func NewEnglish(logger *zap.Logger) *English {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &English{
		model:     prose.ModelFromData("en"),
		stopwords: EnglishStopwords(),
		logger:    logger,
	}
}

// Name identifies the model.
func (e *English) Name() string { return ModelName }

// Normalize applies NFKC and collapses whitespace.
func Normalize(text string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(text)), " ")
}

// Tokenize splits text into Treebank-style tokens.
func (e *English) Tokenize(text string) []string {
	text = Normalize(text)
	if text == "" {
		return nil
	}
	doc, err := prose.NewDocument(text,
		prose.UsingModel(e.model),
		prose.WithSegmentation(false),
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		e.logger.Warn("Failed to tokenize text", zap.Int("len", len(text)), zap.Error(err))
		return strings.Fields(text)
	}
	toks := doc.Tokens()
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text
	}
	return out
}

// Tag tokenizes text and assigns a Penn Treebank tag to every token.
func (e *English) Tag(text string) []domain.TaggedToken {
	text = Normalize(text)
	if text == "" {
		return nil
	}
	doc, err := prose.NewDocument(text,
		prose.UsingModel(e.model),
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		e.logger.Warn("Failed to tag text", zap.Int("len", len(text)), zap.Error(err))
		return nil
	}
	toks := doc.Tokens()
	out := make([]domain.TaggedToken, len(toks))
	for i, t := range toks {
		out[i] = domain.TaggedToken{Text: t.Text, Tag: t.Tag}
	}
	return out
}

// Stopwords returns the shared stopword set. Callers must not modify it.
func (e *English) Stopwords() domain.Stopwords { return e.stopwords }
