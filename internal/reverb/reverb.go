// Package reverb extracts ReVerb-style relational patterns from POS-tagged text.
//
// A pattern is anchored at the first verb of the input and matches
//
//	V | V P | V W* P
//
// where V is a verb group (verbs, optionally separated by adverbs or particles),
// W is a noun, adjective, adverb, pronoun or determiner and P is a preposition,
// particle or infinitive marker.
package reverb

import (
	"strings"

	"github.com/kailas-cloud/snowball/internal/domain"
)

var (
	verbTags = tagSet("VB", "VBD", "VBG", "VBN", "VBP", "VBZ")

	// adverbs and particles may sit inside a verb group: "was originally founded"
	verbGroupGlue = tagSet("RB", "RBR", "RBS", "RP")

	wordTags = tagSet(
		"NN", "NNS", "NNP", "NNPS",
		"JJ", "JJR", "JJS",
		"RB", "RBR", "RBS", "WRB",
		"PRP", "PRP$", "WP", "WP$",
		"DT", "PDT", "WDT", "EX",
	)

	prepositionTags = tagSet("IN", "RP", "TO")

	beForms = map[string]struct{}{
		"be": {}, "am": {}, "is": {}, "are": {}, "was": {}, "were": {},
		"been": {}, "being": {}, "'m": {}, "'re": {},
	}
)

const contraction = "'s"

func tagSet(tags ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		m[t] = struct{}{}
	}
	return m
}

func in(set map[string]struct{}, tag string) bool {
	_, ok := set[tag]
	return ok
}

// Extractor finds verb-anchored patterns. The zero value is ready to use and
// safe for concurrent use.
type Extractor struct{}

// New creates an Extractor.
func New() *Extractor { return &Extractor{} }

// ExtractPatterns returns the pattern tokens with their tags, or nil when the
// input holds no verb.
func (e *Extractor) ExtractPatterns(tagged []domain.TaggedToken) []domain.TaggedToken {
	start := -1
	for i, t := range tagged {
		if in(verbTags, t.Tag) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}

	end := verbGroupEnd(tagged, start)

	// V W* P: skip words up to the first preposition run ("out of", "up by")
	for k := end; k < len(tagged); k++ {
		tag := tagged[k].Tag
		if in(prepositionTags, tag) {
			end = k + 1
			for end < len(tagged) && in(prepositionTags, tagged[end].Tag) {
				end++
			}
			break
		}
		if !in(wordTags, tag) {
			break
		}
	}

	out := make([]domain.TaggedToken, end-start)
	copy(out, tagged[start:end])
	return out
}

// verbGroupEnd returns the exclusive end of the verb group starting at start.
// Glue tokens are only kept when another verb follows them.
func verbGroupEnd(tagged []domain.TaggedToken, start int) int {
	end := start + 1
	for k := start + 1; k < len(tagged); k++ {
		tag := tagged[k].Tag
		if in(verbTags, tag) {
			end = k + 1
			continue
		}
		if in(verbGroupGlue, tag) {
			continue
		}
		break
	}
	return end
}

// DetectPassiveVoice reports whether pattern holds a form of "be" followed,
// possibly across adverbs, by a past participle.
func (e *Extractor) DetectPassiveVoice(pattern []domain.TaggedToken) bool {
	for i, t := range pattern {
		if !in(verbTags, t.Tag) {
			continue
		}
		if _, ok := beForms[strings.ToLower(t.Text)]; !ok {
			continue
		}
		for k := i + 1; k < len(pattern); k++ {
			tag := pattern[k].Tag
			if tag == "VBN" {
				return true
			}
			if !in(verbGroupGlue, tag) {
				break
			}
		}
	}
	return false
}

// IsContractionArtifact reports whether the pattern starts with "'s", which a
// tagger may mark as VBZ even when it is a possessive or a copula contraction
// glued to the first entity. The English tagger usually marks it POS, so no
// pattern is found in the first place.
func (e *Extractor) IsContractionArtifact(pattern []domain.TaggedToken) bool {
	return len(pattern) > 0 && pattern[0].Text == contraction
}
