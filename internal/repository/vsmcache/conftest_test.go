package vsmcache

import (
	"context"
	"strings"
	"testing"

	"github.com/kailas-cloud/snowball/internal/db"
	"github.com/kailas-cloud/snowball/internal/domain"
	"github.com/kailas-cloud/snowball/internal/vsm"
)

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	return nil
}

type fieldsTokenizer struct{}

func (fieldsTokenizer) Tokenize(text string) []string { return strings.Fields(text) }

var (
	testCorpus = []string{
		"<ORG>Google</ORG> headquartered in <LOC>Mountain View</LOC>",
		"<ORG>Apple</ORG> headquartered in <LOC>Cupertino</LOC>",
		"<ORG>Nokia</ORG> based in <LOC>Espoo</LOC>",
		"<ORG>Kone</ORG> based in <LOC>Espoo</LOC>",
	}
	testStop = domain.NewStopwords("in")
)

// builder counts how often the model is actually built.
type builder struct {
	calls int
}

func (b *builder) build(t *testing.T) func() (*vsm.Model, error) {
	t.Helper()
	return func() (*vsm.Model, error) {
		b.calls++
		return vsm.Build(testCorpus, fieldsTokenizer{}, testStop)
	}
}

func testIdentity() string {
	return vsm.Identity(testCorpus, fieldsTokenizer{}, testStop)
}
