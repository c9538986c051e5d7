// Package sentence parses sentences annotated with inline entity markup,
// such as "<ORG>Google</ORG> is based in <LOC>Mountain View</LOC> .", and
// turns pairs of neighbouring mentions into tuple occurrences.
package sentence

import (
	"regexp"
	"strings"

	"github.com/kailas-cloud/snowball/internal/domain/tuple"
)

var markup = regexp.MustCompile(`<([A-Z]+)>([^<]+)</([A-Z]+)>`)

// Mention is one annotated entity.
type Mention struct {
	Type    string
	Surface string
	// Index is the token position of the mention in Sentence.Tokens.
	Index int
}

// Sentence is a parsed annotated sentence. Each mention occupies a single
// token; the rest of the text is split on whitespace.
type Sentence struct {
	Text     string
	Tokens   []string
	Mentions []Mention
}

// Options select which mention pairs become occurrences.
type Options struct {
	// E1Type and E2Type restrict mention types; empty matches any type.
	E1Type            string
	E2Type            string
	MinTokensAway     int
	MaxTokensAway     int
	ContextWindowSize int
}

// Parse splits text into tokens and mentions. Tags whose opening and closing
// types differ are kept as plain text.
func Parse(text string) Sentence {
	s := Sentence{Text: text}
	last := 0
	for _, m := range markup.FindAllStringSubmatchIndex(text, -1) {
		open, closing := text[m[2]:m[3]], text[m[6]:m[7]]
		if open != closing {
			continue
		}
		surface := strings.TrimSpace(text[m[4]:m[5]])
		if surface == "" {
			continue
		}
		s.Tokens = append(s.Tokens, strings.Fields(text[last:m[0]])...)
		s.Mentions = append(s.Mentions, Mention{Type: open, Surface: surface, Index: len(s.Tokens)})
		s.Tokens = append(s.Tokens, surface)
		last = m[1]
	}
	s.Tokens = append(s.Tokens, strings.Fields(text[last:])...)
	return s
}

// Occurrences pairs each mention with the next one. A pair is kept when both
// types match and the number of tokens between them lies within
// [MinTokensAway, MaxTokensAway].
func (s Sentence) Occurrences(opts Options) []tuple.Occurrence {
	var out []tuple.Occurrence
	for i := 0; i+1 < len(s.Mentions); i++ {
		m1, m2 := s.Mentions[i], s.Mentions[i+1]
		if !typeMatches(opts.E1Type, m1.Type) || !typeMatches(opts.E2Type, m2.Type) {
			continue
		}
		gap := m2.Index - m1.Index - 1
		if gap < opts.MinTokensAway || gap > opts.MaxTokensAway {
			continue
		}

		before := max(0, m1.Index-opts.ContextWindowSize)
		after := min(len(s.Tokens), m2.Index+1+opts.ContextWindowSize)
		out = append(out, tuple.Occurrence{
			Ent1:     m1.Surface,
			Ent2:     m2.Surface,
			Sentence: s.Text,
			Before:   strings.Join(s.Tokens[before:m1.Index], " "),
			Between:  strings.Join(s.Tokens[m1.Index+1:m2.Index], " "),
			After:    strings.Join(s.Tokens[m2.Index+1:after], " "),
		})
	}
	return out
}

func typeMatches(want, got string) bool {
	return want == "" || want == got
}
