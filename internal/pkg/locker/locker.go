package locker

import (
	"context"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
)

type Redsync struct {
	rs      *redsync.Redsync
	options []redsync.Option
}

func NewRedsync(rs *redsync.Redsync, options ...redsync.Option) *Redsync {
	if len(options) == 0 {
		options = []redsync.Option{
			redsync.WithExpiry(10 * time.Second),
			redsync.WithTries(20),
			redsync.WithRetryDelay(50 * time.Millisecond),
		}
	}
	return &Redsync{rs, options}
}

func (l *Redsync) Obtain(ctx context.Context, key string) (func(), error) {
	mutex := l.rs.NewMutex(key, l.options...)
	if err := mutex.LockContext(ctx); err != nil {
		return nil, err
	}

	return func() {
		// nolint:errcheck
		mutex.UnlockContext(context.Background())
	}, nil
}

type entry struct {
	ch   chan struct{}
	refs int
}

// Local is a per-key mutex for a single process.
type Local struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewLocal() *Local {
	return &Local{entries: map[string]*entry{}}
}

func (l *Local) Obtain(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e)
		return nil, ctx.Err()
	}

	return func() {
		<-e.ch
		l.release(key, e)
	}, nil
}

func (l *Local) release(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}
