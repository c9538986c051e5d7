package sentence

import (
	"reflect"
	"testing"

	"github.com/kailas-cloud/snowball/internal/domain/tuple"
)

func TestParse(t *testing.T) {
	s := Parse("Today <ORG>Google</ORG> is based in <LOC>Mountain View</LOC> , California .")

	wantTokens := []string{"Today", "Google", "is", "based", "in", "Mountain View", ",", "California", "."}
	if !reflect.DeepEqual(s.Tokens, wantTokens) {
		t.Errorf("tokens = %q, want %q", s.Tokens, wantTokens)
	}
	wantMentions := []Mention{
		{Type: "ORG", Surface: "Google", Index: 1},
		{Type: "LOC", Surface: "Mountain View", Index: 5},
	}
	if !reflect.DeepEqual(s.Mentions, wantMentions) {
		t.Errorf("mentions = %+v, want %+v", s.Mentions, wantMentions)
	}
}

func TestParse_MismatchedTagsArePlainText(t *testing.T) {
	s := Parse("<ORG>Google</LOC> moved to <LOC>Paris</LOC>")
	if len(s.Mentions) != 1 || s.Mentions[0].Surface != "Paris" {
		t.Fatalf("mentions = %+v", s.Mentions)
	}
	if s.Tokens[0] != "<ORG>Google</LOC>" {
		t.Errorf("expected mismatched markup to stay a token, got %q", s.Tokens[0])
	}
}

func TestParse_NoMarkup(t *testing.T) {
	s := Parse("nothing to see here")
	if len(s.Mentions) != 0 || len(s.Tokens) != 4 {
		t.Errorf("unexpected parse: %+v", s)
	}
}

func TestOccurrences(t *testing.T) {
	s := Parse("Yesterday , <ORG>Google</ORG> is headquartered in <LOC>Mountain View</LOC> near <LOC>San Jose</LOC> .")

	tests := []struct {
		name string
		opts Options
		want []tuple.Occurrence
	}{
		{
			name: "typed pair with windows",
			opts: Options{E1Type: "ORG", E2Type: "LOC", MaxTokensAway: 6, ContextWindowSize: 2},
			want: []tuple.Occurrence{{
				Ent1: "Google", Ent2: "Mountain View", Sentence: s.Text,
				Before: "Yesterday ,", Between: "is headquartered in", After: "near San Jose",
			}},
		},
		{
			name: "untyped pairs every neighbour",
			opts: Options{MaxTokensAway: 6, ContextWindowSize: 1},
			want: []tuple.Occurrence{
				{Ent1: "Google", Ent2: "Mountain View", Sentence: s.Text, Before: ",", Between: "is headquartered in", After: "near"},
				{Ent1: "Mountain View", Ent2: "San Jose", Sentence: s.Text, Before: "in", Between: "near", After: "."},
			},
		},
		{
			name: "too close",
			opts: Options{E1Type: "LOC", E2Type: "LOC", MinTokensAway: 2, MaxTokensAway: 6},
		},
		{
			name: "too far",
			opts: Options{E1Type: "ORG", E2Type: "LOC", MaxTokensAway: 2},
		},
		{
			name: "zero window",
			opts: Options{E1Type: "LOC", E2Type: "LOC", MaxTokensAway: 1},
			want: []tuple.Occurrence{
				{Ent1: "Mountain View", Ent2: "San Jose", Sentence: s.Text, Between: "near"},
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := s.Occurrences(tc.opts)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %+v\nwant %+v", got, tc.want)
			}
		})
	}
}

func TestOccurrences_AdjacentMentions(t *testing.T) {
	s := Parse("<ORG>Alphabet</ORG> <ORG>Google</ORG>")
	got := s.Occurrences(Options{MaxTokensAway: 5})
	if len(got) != 1 || got[0].Between != "" {
		t.Fatalf("got %+v", got)
	}
}
