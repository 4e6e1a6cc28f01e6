package indexer

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
)

// IndexLock provides non-blocking lock semantics using atomic operations.
type IndexLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// TryAcquire attempts to acquire the lock without blocking.
// Returns true if the lock was successfully acquired, false otherwise.
func (l *IndexLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release releases the lock.
// Must only be called by the goroutine that successfully acquired the lock.
func (l *IndexLock) Release() {
	l.state.Store(0)
}

// FileLock serializes index writers across processes with an flock on
// <db>.lock next to the database.
type FileLock struct {
	fl *flock.Flock
}

const lockRetryDelay = 100 * time.Millisecond

// NewFileLock returns the lock guarding the database at dbPath
func NewFileLock(dbPath string) *FileLock {
	return &FileLock{fl: flock.New(dbPath + ".lock")}
}

// Path returns the lock file path
func (l *FileLock) Path() string {
	return l.fl.Path()
}

// TryLock takes the lock if no other process holds it
func (l *FileLock) TryLock() (bool, error) {
	ok, err := l.fl.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to lock %s: %w", l.fl.Path(), err)
	}
	return ok, nil
}

// Lock waits for the lock until ctx is done
func (l *FileLock) Lock(ctx context.Context) error {
	ok, err := l.fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to lock %s: %w", l.fl.Path(), err)
	}
	if !ok {
		return ErrIndexInProgress
	}
	return nil
}

// Unlock releases the lock
func (l *FileLock) Unlock() error {
	return l.fl.Unlock()
}
