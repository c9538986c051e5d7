package vsm

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/snowball/internal/domain"
)

// snapshot is the persisted form of a Model. Vocabulary index is the term id.
type snapshot struct {
	Version    int       `json:"version"`
	Identity   string    `json:"identity"`
	Documents  int       `json:"documents"`
	Vocabulary []string  `json:"vocabulary"`
	IDF        []float64 `json:"idf"`
}

// Encode serializes m. Decoding the result yields an identical model.
func Encode(m *Model) ([]byte, error) {
	data, err := json.Marshal(snapshot{
		Version:    FormatVersion,
		Identity:   m.identity,
		Documents:  m.documents,
		Vocabulary: m.terms,
		IDF:        m.idf,
	})
	if err != nil {
		return nil, &domain.VectorSpaceModelError{Op: "encode", Err: err}
	}
	return data, nil
}

// Decode restores a model and checks that it was built from the corpus with
// the given identity. Any mismatch is reported as a VectorSpaceModelError.
func Decode(data []byte, identity string) (*Model, error) {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &domain.VectorSpaceModelError{Op: "decode", Err: err}
	}
	if s.Version != FormatVersion {
		return nil, &domain.VectorSpaceModelError{
			Op:  "decode",
			Err: fmt.Errorf("snapshot version %d, want %d", s.Version, FormatVersion),
		}
	}
	if s.Identity != identity {
		return nil, &domain.VectorSpaceModelError{
			Op:  "decode",
			Err: fmt.Errorf("snapshot built from corpus %.12s, want %.12s", s.Identity, identity),
		}
	}
	if len(s.Vocabulary) != len(s.IDF) || len(s.Vocabulary) == 0 {
		return nil, &domain.VectorSpaceModelError{
			Op:  "decode",
			Err: fmt.Errorf("vocabulary/idf length mismatch: %d/%d", len(s.Vocabulary), len(s.IDF)),
		}
	}

	m := &Model{
		identity:  s.Identity,
		documents: s.Documents,
		vocab:     make(map[string]int, len(s.Vocabulary)),
		terms:     s.Vocabulary,
		idf:       s.IDF,
	}
	for id, t := range s.Vocabulary {
		if _, dup := m.vocab[t]; dup {
			return nil, &domain.VectorSpaceModelError{Op: "decode", Err: fmt.Errorf("duplicate term %q", t)}
		}
		m.vocab[t] = id
	}
	return m, nil
}

// CorpusIdentity returns the corpus identity m was built from.
func (m *Model) CorpusIdentity() string { return m.identity }
