package vsmcache

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/snowball/internal/vsm"
)

func newCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_vsm_cache_total"}, []string{"result"})
}

func TestLoadOrBuild_MissThenStore(t *testing.T) {
	ms := &mockKVStore{}
	var stored []byte
	var storedKey string
	ms.setFn = func(_ context.Context, key string, value []byte) error {
		storedKey, stored = key, value
		return nil
	}
	counter := newCounter()
	c := New(ms, counter, nil, zap.NewNop())
	b := &builder{}

	m, err := c.LoadOrBuild(context.Background(), testIdentity(), b.build(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.calls != 1 || m.Size() == 0 {
		t.Fatalf("expected one build, got %d (size %d)", b.calls, m.Size())
	}
	if !strings.HasPrefix(storedKey, KeyPrefix) || storedKey != Key(testIdentity()) {
		t.Errorf("unexpected key %q", storedKey)
	}
	if len(stored) == 0 {
		t.Fatal("expected model to be stored")
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("miss")); got != 1 {
		t.Errorf("miss = %f, want 1", got)
	}
}

func TestLoadOrBuild_Hit(t *testing.T) {
	b := &builder{}
	built, err := b.build(t)()
	if err != nil {
		t.Fatal(err)
	}
	data, err := vsm.Encode(built)
	if err != nil {
		t.Fatal(err)
	}

	ms := &mockKVStore{getFn: func(_ context.Context, _ string) ([]byte, error) { return data, nil }}
	ms.setFn = func(_ context.Context, _ string, _ []byte) error {
		t.Error("SET must not be called on a hit")
		return nil
	}
	counter := newCounter()
	c := New(ms, counter, nil, zap.NewNop())

	m, err := c.LoadOrBuild(context.Background(), testIdentity(), b.build(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.calls != 1 {
		t.Errorf("expected no rebuild on hit, builds = %d", b.calls)
	}
	if m.Size() != built.Size() {
		t.Errorf("size = %d, want %d", m.Size(), built.Size())
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("hit")); got != 1 {
		t.Errorf("hit = %f, want 1", got)
	}
}

func TestLoadOrBuild_CorruptEntryIsRebuilt(t *testing.T) {
	ms := &mockKVStore{getFn: func(_ context.Context, _ string) ([]byte, error) {
		return []byte("{not json"), nil
	}}
	var setCalled bool
	ms.setFn = func(_ context.Context, _ string, _ []byte) error {
		setCalled = true
		return nil
	}
	counter := newCounter()
	c := New(ms, counter, nil, zap.NewNop())
	b := &builder{}

	if _, err := c.LoadOrBuild(context.Background(), testIdentity(), b.build(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.calls != 1 || !setCalled {
		t.Errorf("expected rebuild and overwrite, builds=%d set=%v", b.calls, setCalled)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("corrupt")); got != 1 {
		t.Errorf("corrupt = %f, want 1", got)
	}
}

func TestLoadOrBuild_ForeignCorpusIsRebuilt(t *testing.T) {
	other, err := vsm.Build([]string{"a b", "a b"}, fieldsTokenizer{}, testStop)
	if err != nil {
		t.Fatal(err)
	}
	data, _ := vsm.Encode(other)
	ms := &mockKVStore{getFn: func(_ context.Context, _ string) ([]byte, error) { return data, nil }}
	c := New(ms, nil, nil, zap.NewNop())
	b := &builder{}

	m, err := c.LoadOrBuild(context.Background(), testIdentity(), b.build(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.calls != 1 || m.CorpusIdentity() != testIdentity() {
		t.Error("expected a model of the requested corpus")
	}
}

func TestLoadOrBuild_StoreErrorsAreNotFatal(t *testing.T) {
	ms := &mockKVStore{
		getFn: func(_ context.Context, _ string) ([]byte, error) { return nil, errors.New("connection refused") },
		setFn: func(_ context.Context, _ string, _ []byte) error { return errors.New("connection refused") },
	}
	c := New(ms, nil, nil, nil)
	b := &builder{}

	if _, err := c.LoadOrBuild(context.Background(), testIdentity(), b.build(t)); err != nil {
		t.Fatalf("cache failure must not fail the call: %v", err)
	}
}

func TestLoadOrBuild_NilStore(t *testing.T) {
	c := New(nil, nil, nil, zap.NewNop())
	b := &builder{}
	for i := 0; i < 2; i++ {
		if _, err := c.LoadOrBuild(context.Background(), testIdentity(), b.build(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if b.calls != 2 {
		t.Errorf("expected a build per call without a store, got %d", b.calls)
	}
}

func TestLoadOrBuild_BuildError(t *testing.T) {
	c := New(&mockKVStore{}, nil, nil, zap.NewNop())
	_, err := c.LoadOrBuild(context.Background(), "id", func() (*vsm.Model, error) {
		return nil, vsm.ErrEmptyCorpus
	})
	if !errors.Is(err, vsm.ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
}
