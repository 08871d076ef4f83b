package cryptox

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Hasher is the subset of Argon2idHasher wrapped by LimitedHasher.
type Hasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, digest string) (bool, error)
}

// LimitedHasher caps the number of hashes computed at once.
type LimitedHasher struct {
	next Hasher
	sem  *semaphore.Weighted
}

// NewLimitedHasher wraps next allowing at most workers concurrent operations.
// workers <= 0 selects GOMAXPROCS.
func NewLimitedHasher(next Hasher, workers int) *LimitedHasher {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &LimitedHasher{next: next, sem: semaphore.NewWeighted(int64(workers))}
}

// Hash waits for a free slot, then delegates.
func (l *LimitedHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("acquire hashing slot: %w", err)
	}
	defer l.sem.Release(1)

	return l.next.Hash(ctx, password)
}

// Verify waits for a free slot, then delegates.
func (l *LimitedHasher) Verify(ctx context.Context, password, digest string) (bool, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("acquire hashing slot: %w", err)
	}
	defer l.sem.Release(1)

	return l.next.Verify(ctx, password, digest)
}
