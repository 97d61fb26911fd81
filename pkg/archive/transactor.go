package archive

import "github.com/blkarchive/archive/internal/filelock"

// Transactor mediates the store's concurrency model (§5): any number of
// concurrent readers (queries), or exactly one writer at a time, enforced
// via an advisory flock on a dedicated lock file distinct from the
// per-process lock. Within a process, Go-level concurrency (goroutines
// running queries against the mapped files) is safe without the
// transactor; the transactor exists for coordination when a writer
// performs a flush or backup that must see a quiescent set of files.
type Transactor struct {
	locker   *filelock.Locker
	lockPath string
}

// NewTransactor wires a Locker to the flush-lock path for one store.
func NewTransactor(locker *filelock.Locker, lockPath string) *Transactor {
	return &Transactor{locker: locker, lockPath: lockPath}
}

// LockShared blocks until a shared (reader) lock is available and returns
// a function that releases it.
func (t *Transactor) LockShared() (func(), error) {
	lock, err := t.locker.RLock(t.lockPath)
	if err != nil {
		return nil, err
	}
	return func() { _ = lock.Close() }, nil
}

// LockExclusive blocks until an exclusive (writer) lock is available and
// returns a function that releases it. Backup and any operation that
// must observe a consistent snapshot across tables takes this lock.
func (t *Transactor) LockExclusive() (func(), error) {
	lock, err := t.locker.Lock(t.lockPath)
	if err != nil {
		return nil, err
	}
	return func() { _ = lock.Close() }, nil
}
