// Package file implements db.Store on a local directory. Values are written
// atomically and guarded by an advisory lock so several processes can share
// one cache directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"github.com/kailas-cloud/snowball/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

const (
	lockFile   = ".lock"
	valueExt   = ".json"
	retryDelay = 50 * time.Millisecond
)

var keyReplacer = strings.NewReplacer(":", "_", "/", "_", "\\", "_", "..", "_")

// Store keeps one file per key under Dir. The flock guards other processes;
// mu guards goroutines sharing the handle.
type Store struct {
	dir    string
	mu     sync.RWMutex
	lock   *flock.Flock
	closed atomic.Bool
}

// NewStore creates dir if needed and opens a store on it.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Store{dir: dir, lock: flock.New(filepath.Join(dir, lockFile))}, nil
}

// Dir returns the backing directory.
func (s *Store) Dir() string { return s.dir }

// Ping checks that the directory is still usable.
func (s *Store) Ping(_ context.Context) error {
	if s.closed.Load() {
		return &db.Error{Op: db.OpPing, Err: db.ErrClosed}
	}
	info, err := os.Stat(s.dir)
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	if !info.IsDir() {
		return &db.Error{Op: db.OpPing, Err: fmt.Errorf("%s is not a directory", s.dir)}
	}
	return nil
}

// Close releases the lock handle. Further calls fail with db.ErrClosed.
func (s *Store) Close() {
	if s.closed.Swap(true) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.lock.Close()
}

// WaitForReady returns once Ping succeeds; a directory is either usable or not.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// Get reads the value stored at key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if s.closed.Load() {
		return nil, &db.Error{Op: db.OpGet, Key: key, Err: db.ErrClosed}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	locked, err := s.lock.TryRLockContext(ctx, retryDelay)
	if err != nil || !locked {
		return nil, &db.Error{Op: db.OpLock, Key: key, Err: lockErr(err)}
	}
	defer func() { _ = s.lock.Unlock() }()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpGet, Key: key, Err: err}
	}
	return data, nil
}

// Set writes value to a temp file and renames it over the key's file.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if s.closed.Load() {
		return &db.Error{Op: db.OpSet, Key: key, Err: db.ErrClosed}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	locked, err := s.lock.TryLockContext(ctx, retryDelay)
	if err != nil || !locked {
		return &db.Error{Op: db.OpLock, Key: key, Err: lockErr(err)}
	}
	defer func() { _ = s.lock.Unlock() }()

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return &db.Error{Op: db.OpSet, Key: key, Err: err}
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return &db.Error{Op: db.OpSet, Key: key, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &db.Error{Op: db.OpSet, Key: key, Err: err}
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		return &db.Error{Op: db.OpSet, Key: key, Err: err}
	}
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, keyReplacer.Replace(key)+valueExt)
}

func lockErr(err error) error {
	if err != nil {
		return err
	}
	return errors.New("lock not acquired")
}
