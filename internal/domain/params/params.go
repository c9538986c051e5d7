// Package params parses and validates the bootstrapping run parameters.
package params

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/kailas-cloud/snowball/internal/domain"
)

// ReverbMode selects how tuple contexts are vectorized.
type ReverbMode string

const (
	// ReverbYes vectorizes the between-context from a ReVerb pattern when one is found.
	ReverbYes ReverbMode = "yes"
	// ReverbNo vectorizes every context as a plain bag of words.
	ReverbNo ReverbMode = "no"
)

// IsValid checks that m is one of the two supported modes.
func (m ReverbMode) IsValid() bool {
	return m == ReverbYes || m == ReverbNo
}

// ParseReverbMode converts the raw use_reverb value.
func ParseReverbMode(s string) (ReverbMode, error) {
	m := ReverbMode(strings.TrimSpace(s))
	if !m.IsValid() {
		return "", domain.NewConfigurationError(KeyUseReverb, "must be %q or %q, got %q", ReverbYes, ReverbNo, s)
	}
	return m, nil
}

// Parameter file keys.
const (
	KeyWUpdt             = "wUpdt"
	KeyWUnk              = "wUnk"
	KeyWNeg              = "wNeg"
	KeyNumberIterations  = "number_iterations"
	KeyUseRlogF          = "use_RlogF"
	KeyMinPatternSupport = "min_pattern_support"
	KeyMaxTokensAway     = "max_tokens_away"
	KeyMinTokensAway     = "min_tokens_away"
	KeyContextWindowSize = "context_window_size"
	KeyUseReverb         = "use_reverb"
	KeyAlpha             = "alpha"
	KeyBeta              = "beta"
	KeyGamma             = "gamma"
)

// Parameters are the scalar settings of a bootstrapping run.
type Parameters struct {
	WUpdt             float64    `json:"w_updt"`
	WUnk              float64    `json:"w_unk"`
	WNeg              float64    `json:"w_neg"`
	NumberIterations  int        `json:"number_iterations"`
	UseRlogF          bool       `json:"use_rlogf"`
	MinPatternSupport int        `json:"min_pattern_support"`
	MaxTokensAway     int        `json:"max_tokens_away"`
	MinTokensAway     int        `json:"min_tokens_away"`
	ContextWindowSize int        `json:"context_window_size"`
	UseReverb         ReverbMode `json:"use_reverb"`
	Alpha             float64    `json:"alpha"`
	Beta              float64    `json:"beta"`
	Gamma             float64    `json:"gamma"`
}

// Parsed is the result of reading a parameter file.
type Parsed struct {
	Parameters Parameters
	// Unknown lists keys present in the file but not recognized, in file order.
	Unknown []string
}

type setter func(p *Parameters, v string) error

func floatSetter(dst func(*Parameters) *float64) setter {
	return func(p *Parameters, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("not a float: %q", v)
		}
		*dst(p) = f
		return nil
	}
}

func intSetter(dst func(*Parameters) *int) setter {
	return func(p *Parameters, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("not an integer: %q", v)
		}
		*dst(p) = n
		return nil
	}
}

// keys is the required-key table in declaration order.
var keys = []struct {
	name string
	set  setter
}{
	{KeyWUpdt, floatSetter(func(p *Parameters) *float64 { return &p.WUpdt })},
	{KeyWUnk, floatSetter(func(p *Parameters) *float64 { return &p.WUnk })},
	{KeyWNeg, floatSetter(func(p *Parameters) *float64 { return &p.WNeg })},
	{KeyNumberIterations, intSetter(func(p *Parameters) *int { return &p.NumberIterations })},
	{KeyUseRlogF, func(p *Parameters, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("not a boolean: %q", v)
		}
		p.UseRlogF = b
		return nil
	}},
	{KeyMinPatternSupport, intSetter(func(p *Parameters) *int { return &p.MinPatternSupport })},
	{KeyMaxTokensAway, intSetter(func(p *Parameters) *int { return &p.MaxTokensAway })},
	{KeyMinTokensAway, intSetter(func(p *Parameters) *int { return &p.MinTokensAway })},
	{KeyContextWindowSize, intSetter(func(p *Parameters) *int { return &p.ContextWindowSize })},
	{KeyUseReverb, func(p *Parameters, v string) error {
		m, err := ParseReverbMode(v)
		if err != nil {
			return fmt.Errorf("must be %q or %q, got %q", ReverbYes, ReverbNo, v)
		}
		p.UseReverb = m
		return nil
	}},
	{KeyAlpha, floatSetter(func(p *Parameters) *float64 { return &p.Alpha })},
	{KeyBeta, floatSetter(func(p *Parameters) *float64 { return &p.Beta })},
	{KeyGamma, floatSetter(func(p *Parameters) *float64 { return &p.Gamma })},
}

// byLength orders the key table longest name first so that prefix matching
// never picks a key that is a prefix of another.
var byLength = func() []int {
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return len(keys[b].name) - len(keys[a].name)
	})
	return idx
}()

// match finds the recognized key line starts with. The key must be followed
// by '=', a blank or the end of the line. rest is what follows the key.
func match(line string) (name string, set setter, rest string, ok bool) {
	for _, i := range byLength {
		k := keys[i]
		after, found := strings.CutPrefix(line, k.name)
		if !found {
			continue
		}
		if after == "" || after[0] == '=' || after[0] == ' ' || after[0] == '\t' {
			return k.name, k.set, after, true
		}
	}
	return "", nil, "", false
}

// Parse reads key=value lines. Recognized keys are matched by line prefix.
// Lines starting with '#' and blank lines are skipped, unknown keys are
// collected in Parsed.Unknown. Every recognized key
// is required; the first missing one is reported as a ConfigurationError.
// The result is validated before it is returned.
func Parse(r io.Reader) (Parsed, error) {
	var out Parsed
	seen := make(map[string]bool, len(keys))

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, set, rest, known := match(line)
		if !known {
			name, _, _ := strings.Cut(line, "=")
			out.Unknown = append(out.Unknown, strings.TrimSpace(name))
			continue
		}
		value, hasEq := strings.CutPrefix(strings.TrimSpace(rest), "=")
		if !hasEq {
			return Parsed{}, domain.NewLineConfigurationError(key, lineNo, "expected %s=<value>", key)
		}
		if err := set(&out.Parameters, strings.TrimSpace(value)); err != nil {
			return Parsed{}, domain.NewLineConfigurationError(key, lineNo, "%v", err)
		}
		seen[key] = true
	}
	if err := sc.Err(); err != nil {
		return Parsed{}, fmt.Errorf("read parameters: %w", err)
	}

	for _, k := range keys {
		if !seen[k.name] {
			return Parsed{}, domain.NewConfigurationError(k.name, "required parameter is missing")
		}
	}

	if err := out.Parameters.Validate(); err != nil {
		return Parsed{}, err
	}
	return out, nil
}

// Validate checks ranges and the alpha+beta+gamma == 1 invariant.
func (p Parameters) Validate() error {
	if !p.UseReverb.IsValid() {
		return domain.NewConfigurationError(KeyUseReverb, "must be %q or %q, got %q", ReverbYes, ReverbNo, p.UseReverb)
	}
	if p.NumberIterations < 1 {
		return domain.NewConfigurationError(KeyNumberIterations, "must be >= 1, got %d", p.NumberIterations)
	}
	nonNegative := []struct {
		key string
		v   int
	}{
		{KeyMinPatternSupport, p.MinPatternSupport},
		{KeyMaxTokensAway, p.MaxTokensAway},
		{KeyMinTokensAway, p.MinTokensAway},
		{KeyContextWindowSize, p.ContextWindowSize},
	}
	for _, f := range nonNegative {
		if f.v < 0 {
			return domain.NewConfigurationError(f.key, "must be >= 0, got %d", f.v)
		}
	}
	if p.MinTokensAway > p.MaxTokensAway {
		return domain.NewConfigurationError(KeyMinTokensAway,
			"must not exceed %s (%d > %d)", KeyMaxTokensAway, p.MinTokensAway, p.MaxTokensAway)
	}
	if sum := p.Alpha + p.Beta + p.Gamma; sum != 1 {
		return domain.NewConfigurationError("alpha+beta+gamma", "must equal 1, got %v", sum)
	}
	return nil
}
