// Package seed holds known relation instances and the seed file grammar.
package seed

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/kailas-cloud/snowball/internal/domain"
)

// Seed is an immutable entity pair. Equality is structural, so Seed is a valid map key.
type Seed struct {
	E1 string
	E2 string
}

// New trims both entities and rejects empty ones.
func New(e1, e2 string) (Seed, error) {
	e1 = strings.TrimSpace(e1)
	e2 = strings.TrimSpace(e2)
	if e1 == "" || e2 == "" {
		return Seed{}, domain.NewConfigurationError("seed", "entities must be non-empty, got %q;%q", e1, e2)
	}
	return Seed{E1: e1, E2: e2}, nil
}

func (s Seed) String() string { return s.E1 + ";" + s.E2 }

// Set is a set of seeds.
type Set map[Seed]struct{}

// Add inserts s and reports whether it was new.
func (set Set) Add(s Seed) bool {
	if _, ok := set[s]; ok {
		return false
	}
	set[s] = struct{}{}
	return true
}

// Contains reports membership of the pair (e1, e2).
func (set Set) Contains(e1, e2 string) bool {
	_, ok := set[Seed{E1: e1, E2: e2}]
	return ok
}

// Clone returns an independent copy.
func (set Set) Clone() Set {
	out := make(Set, len(set))
	for s := range set {
		out[s] = struct{}{}
	}
	return out
}

// Sorted returns the seeds ordered by E1 then E2.
func (set Set) Sorted() []Seed {
	out := make([]Seed, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b Seed) int {
		if c := strings.Compare(a.E1, b.E1); c != 0 {
			return c
		}
		return strings.Compare(a.E2, b.E2)
	})
	return out
}

// File is the parsed content of a seed file.
type File struct {
	E1Type string
	E2Type string
	Seeds  Set
}

// Parse reads a seed file. Each non-comment, non-blank line is either
// "e1:<type>", "e2:<type>" or "<entity1>;<entity2>".
func Parse(r io.Reader) (File, error) {
	f := File{Seeds: make(Set)}
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if typ, ok := strings.CutPrefix(line, "e1:"); ok {
			if f.E1Type = strings.TrimSpace(typ); f.E1Type == "" {
				return File{}, domain.NewLineConfigurationError("e1", lineNo, "entity type is empty")
			}
			continue
		}
		if typ, ok := strings.CutPrefix(line, "e2:"); ok {
			if f.E2Type = strings.TrimSpace(typ); f.E2Type == "" {
				return File{}, domain.NewLineConfigurationError("e2", lineNo, "entity type is empty")
			}
			continue
		}

		parts := strings.Split(line, ";")
		if len(parts) != 2 {
			return File{}, domain.NewLineConfigurationError("seed", lineNo,
				"expected <entity1>;<entity2>, got %q", line)
		}
		s, err := New(parts[0], parts[1])
		if err != nil {
			return File{}, domain.NewLineConfigurationError("seed", lineNo, "%q has an empty entity", line)
		}
		f.Seeds.Add(s)
	}
	if err := sc.Err(); err != nil {
		return File{}, fmt.Errorf("read seeds: %w", err)
	}
	return f, nil
}
