package params

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/snowball/internal/domain"
)

const validFile = `# Snowball parameters
wUpdt=0.5
wUnk=0.1
wNeg=2

number_iterations=4
use_RlogF=true
min_pattern_support=2
max_tokens_away=6
min_tokens_away=1
context_window_size=2
use_reverb=yes
alpha=0.2
beta=0.6
gamma=0.2
`

// withLine replaces the line starting with key (or appends when absent).
func withLine(key, line string) string {
	var out []string
	replaced := false
	for _, l := range strings.Split(validFile, "\n") {
		if strings.HasPrefix(l, key+"=") {
			replaced = true
			if line != "" {
				out = append(out, line)
			}
			continue
		}
		out = append(out, l)
	}
	if !replaced {
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func configErr(t *testing.T, err error) *domain.ConfigurationError {
	t.Helper()
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	var ce *domain.ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConfigurationError, got %T", err)
	}
	return ce
}

func TestParse_Valid(t *testing.T) {
	got, err := Parse(strings.NewReader(validFile))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Parameters{
		WUpdt: 0.5, WUnk: 0.1, WNeg: 2,
		NumberIterations: 4, UseRlogF: true, MinPatternSupport: 2,
		MaxTokensAway: 6, MinTokensAway: 1, ContextWindowSize: 2,
		UseReverb: ReverbYes, Alpha: 0.2, Beta: 0.6, Gamma: 0.2,
	}
	if got.Parameters != want {
		t.Errorf("got %+v\nwant %+v", got.Parameters, want)
	}
	if len(got.Unknown) != 0 {
		t.Errorf("expected no unknown keys, got %v", got.Unknown)
	}
}

func TestParse_AlphaBetaGammaMustSumToOne(t *testing.T) {
	input := withLine("alpha", "alpha=0.2")
	input = strings.Replace(input, "beta=0.6", "beta=0.2", 1)
	input = strings.Replace(input, "gamma=0.2", "gamma=0.5", 1)

	_, err := Parse(strings.NewReader(input))
	ce := configErr(t, err)
	if ce.Key != "alpha+beta+gamma" {
		t.Errorf("expected alpha+beta+gamma key, got %q", ce.Key)
	}
}

func TestParse_MissingRequiredKey(t *testing.T) {
	for _, key := range []string{KeyWUpdt, KeyNumberIterations, KeyUseReverb, KeyGamma} {
		t.Run(key, func(t *testing.T) {
			_, err := Parse(strings.NewReader(withLine(key, "")))
			ce := configErr(t, err)
			if ce.Key != key {
				t.Errorf("expected missing key %q, got %q", key, ce.Key)
			}
			if !strings.Contains(err.Error(), key) {
				t.Errorf("error message must name the key: %q", err.Error())
			}
		})
	}
}

func TestParse_UnknownKeysAreIgnored(t *testing.T) {
	got, err := Parse(strings.NewReader(validFile + "future_option=42\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Unknown) != 1 || got.Unknown[0] != "future_option" {
		t.Errorf("Unknown = %v, want [future_option]", got.Unknown)
	}
}

func TestParse_KeysMatchedByPrefix(t *testing.T) {
	input := withLine("gamma", "gamma\t=0.2")
	input = strings.Replace(input, "wUpdt=0.5", "wUpdt = 0.25", 1)
	input += "wUpdtMax=9\n"

	got, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Parameters.WUpdt != 0.25 || got.Parameters.Gamma != 0.2 {
		t.Errorf("WUpdt = %v, Gamma = %v, want 0.25, 0.2", got.Parameters.WUpdt, got.Parameters.Gamma)
	}
	if len(got.Unknown) != 1 || got.Unknown[0] != "wUpdtMax" {
		t.Errorf("Unknown = %v, want [wUpdtMax]", got.Unknown)
	}
}

func TestParse_RecognizedKeyWithoutValue(t *testing.T) {
	input := "wUpdt 0.5\n" + withLine("wUpdt", "")

	_, err := Parse(strings.NewReader(input))
	ce := configErr(t, err)
	if ce.Key != KeyWUpdt || ce.Line != 1 {
		t.Errorf("got key %q line %d, want %q line 1", ce.Key, ce.Line, KeyWUpdt)
	}
}

func TestParse_MalformedValues(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		key     string
		wantKey string
	}{
		{"missing equals", "wUpdt 0.5", "wUpdt", KeyWUpdt},
		{"bad float", "alpha=abc", "alpha", KeyAlpha},
		{"bad int", "number_iterations=2.5", "number_iterations", KeyNumberIterations},
		{"bad bool", "use_RlogF=maybe", "use_RlogF", KeyUseRlogF},
		{"unknown reverb mode", "use_reverb=maybe", "use_reverb", KeyUseReverb},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(withLine(tc.key, tc.line)))
			ce := configErr(t, err)
			if ce.Key != tc.wantKey {
				t.Errorf("got key %q, want %q", ce.Key, tc.wantKey)
			}
			if ce.Line == 0 {
				t.Error("expected line number")
			}
		})
	}
}

func TestValidate_Ranges(t *testing.T) {
	base, err := Parse(strings.NewReader(validFile))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(p *Parameters)
		wantKey string
	}{
		{"zero iterations", func(p *Parameters) { p.NumberIterations = 0 }, KeyNumberIterations},
		{"negative window", func(p *Parameters) { p.ContextWindowSize = -1 }, KeyContextWindowSize},
		{"min above max", func(p *Parameters) { p.MinTokensAway = 7 }, KeyMinTokensAway},
		{"empty reverb mode", func(p *Parameters) { p.UseReverb = "" }, KeyUseReverb},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := base.Parameters
			tc.mutate(&p)
			ce := configErr(t, p.Validate())
			if ce.Key != tc.wantKey {
				t.Errorf("got key %q, want %q", ce.Key, tc.wantKey)
			}
		})
	}
}

func TestParseReverbMode(t *testing.T) {
	for _, s := range []string{"yes", " no "} {
		if _, err := ParseReverbMode(s); err != nil {
			t.Errorf("ParseReverbMode(%q): unexpected error %v", s, err)
		}
	}
	_, err := ParseReverbMode("maybe")
	ce := configErr(t, err)
	if ce.Key != KeyUseReverb {
		t.Errorf("got key %q", ce.Key)
	}
}
